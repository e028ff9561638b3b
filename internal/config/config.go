// Package config handles configuration loading and management
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no explicit config file is given. It may be absent.
const DefaultPath = "wireshairk.yaml"

const (
	DecoderGopacket = "gopacket"
	DecoderTshark   = "tshark"
)

type Config struct {
	Ollama     OllamaConfig     `yaml:"ollama"`
	Models     ModelsConfig     `yaml:"models"`
	Capture    CaptureConfig    `yaml:"capture"`
	Filter     FilterConfig     `yaml:"filter"`
	Dataset    DatasetConfig    `yaml:"dataset"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Scraper    ScraperConfig    `yaml:"scraper"`
	LogLevel   string           `yaml:"log_level"`
}

type OllamaConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ModelsConfig struct {
	Evaluate  string `yaml:"evaluate"`
	Evaluator string `yaml:"evaluator"`
}

type CaptureConfig struct {
	Decoder    string `yaml:"decoder"`
	TsharkPath string `yaml:"tshark_path"`
}

type FilterConfig struct {
	RawDir     string `yaml:"raw_dir"`
	CleanedDir string `yaml:"cleaned_dir"`
	MinPackets int    `yaml:"min_packets"`
	MaxPackets int    `yaml:"max_packets"`
	RequireIP  bool   `yaml:"require_ip"`
}

type DatasetConfig struct {
	DataPath  string `yaml:"data_path"`
	OutputDir string `yaml:"output_dir"`
	// LegacyPacketRate answers the packets-per-second question with the bytes-per-second value.
	LegacyPacketRate bool `yaml:"legacy_packet_rate"`
}

type EvaluationConfig struct {
	OutputDir       string `yaml:"output_dir"`
	MaxRetries      int    `yaml:"max_retries"`
	StrictAlignment bool   `yaml:"strict_alignment"`
}

type ScraperConfig struct {
	IndexURL          string  `yaml:"index_url"`
	BaseURL           string  `yaml:"base_url"`
	RawDir            string  `yaml:"raw_dir"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:     "http://localhost:11434",
			Timeout: 5 * time.Minute,
		},
		Models: ModelsConfig{
			Evaluate:  "llama2",
			Evaluator: "llama3",
		},
		Capture: CaptureConfig{
			Decoder:    DecoderGopacket,
			TsharkPath: "tshark",
		},
		Filter: FilterConfig{
			RawDir:     "data/raw",
			CleanedDir: "data/cleaned",
			MinPackets: 1,
			MaxPackets: 125,
			RequireIP:  true,
		},
		Dataset: DatasetConfig{
			DataPath:  "data/cleaned",
			OutputDir: "data",
		},
		Evaluation: EvaluationConfig{
			OutputDir:  "data/evaluation",
			MaxRetries: 10,
		},
		Scraper: ScraperConfig{
			IndexURL:          "https://wiki.wireshark.org/SampleCaptures",
			BaseURL:           "https://wiki.wireshark.org",
			RawDir:            "data/raw",
			RequestsPerSecond: 2,
		},
		LogLevel: "info",
	}
}

// Load reads the .env file, the YAML file at path and then the environment,
// each overriding the previous. An empty path falls back to WIRESHAIRK_CONFIG
// and then to DefaultPath, which may be missing.
func Load(path string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = os.Getenv("WIRESHAIRK_CONFIG")
		explicit = path != ""
	}
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Ollama.URL = getEnv("OLLAMA_HOST", c.Ollama.URL)
	c.Models.Evaluate = getEnv("WIRESHAIRK_MODEL", c.Models.Evaluate)
	c.Models.Evaluator = getEnv("WIRESHAIRK_EVALUATOR_MODEL", c.Models.Evaluator)
	c.Capture.Decoder = getEnv("WIRESHAIRK_DECODER", c.Capture.Decoder)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	switch c.Capture.Decoder {
	case DecoderGopacket, DecoderTshark:
	default:
		return fmt.Errorf("unknown capture decoder %q (want %s or %s)", c.Capture.Decoder, DecoderGopacket, DecoderTshark)
	}
	if c.Filter.MinPackets < 0 || c.Filter.MaxPackets < c.Filter.MinPackets {
		return fmt.Errorf("invalid packet bounds: min %d, max %d", c.Filter.MinPackets, c.Filter.MaxPackets)
	}
	if c.Evaluation.MaxRetries < 0 {
		return fmt.Errorf("invalid max_retries %d", c.Evaluation.MaxRetries)
	}
	if c.Ollama.URL == "" {
		return errors.New("ollama url must not be empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) String() string {
	return fmt.Sprintf(`Current Configuration:
======================
Ollama URL:          %s
Model:               %s
Evaluator model:     %s
Capture decoder:     %s
Raw captures:        %s
Cleaned captures:    %s
Dataset output:      %s
Evaluation output:   %s
Log level:           %s`,
		c.Ollama.URL,
		c.Models.Evaluate,
		c.Models.Evaluator,
		c.Capture.Decoder,
		c.Filter.RawDir,
		c.Filter.CleanedDir,
		c.Dataset.OutputDir,
		c.Evaluation.OutputDir,
		c.LogLevel,
	)
}
