package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"WIRESHAIRK_CONFIG", "OLLAMA_HOST", "WIRESHAIRK_MODEL", "WIRESHAIRK_EVALUATOR_MODEL", "WIRESHAIRK_DECODER", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.URL)
	assert.Equal(t, 125, cfg.Filter.MaxPackets)
	assert.Equal(t, 10, cfg.Evaluation.MaxRetries)
	assert.False(t, cfg.Dataset.LegacyPacketRate)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ollama:
  url: http://gpu-box:11434
  timeout: 30s
models:
  evaluate: mistral
capture:
  decoder: tshark
dataset:
  legacy_packet_rate: true
evaluation:
  strict_alignment: true
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://gpu-box:11434", cfg.Ollama.URL)
	assert.Equal(t, 30*time.Second, cfg.Ollama.Timeout)
	assert.Equal(t, "mistral", cfg.Models.Evaluate)
	assert.Equal(t, "llama3", cfg.Models.Evaluator)
	assert.Equal(t, DecoderTshark, cfg.Capture.Decoder)
	assert.True(t, cfg.Dataset.LegacyPacketRate)
	assert.True(t, cfg.Evaluation.StrictAlignment)
	assert.Equal(t, 10, cfg.Evaluation.MaxRetries)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultPath), []byte("models:\n  evaluate: mistral\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WIRESHAIRK_EVALUATOR_MODEL=phi3\n"), 0o644))
	// .env never overrides a variable that is already set, even to "".
	require.NoError(t, os.Unsetenv("WIRESHAIRK_EVALUATOR_MODEL"))
	t.Setenv("WIRESHAIRK_MODEL", "gemma")
	t.Setenv("OLLAMA_HOST", "http://remote:11434")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "gemma", cfg.Models.Evaluate)
	assert.Equal(t, "http://remote:11434", cfg.Ollama.URL)
	assert.Equal(t, "phi3", cfg.Models.Evaluator)
}

func TestLoadErrors(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "unknown field", content: "ollama:\n  port: 1\n", want: "parse config"},
		{name: "bad decoder", content: "capture:\n  decoder: scapy\n", want: "unknown capture decoder"},
		{name: "bad bounds", content: "filter:\n  min_packets: 10\n  max_packets: 5\n", want: "invalid packet bounds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := Load(path)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
