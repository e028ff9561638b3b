// Package scraper downloads the public sample captures listed on an index page.
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"wireshairk/internal/capture"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	DefaultIndexURL = "https://wiki.wireshark.org/SampleCaptures"
	DefaultBaseURL  = "https://wiki.wireshark.org"
)

// Result counts the outcome of a download pass.
type Result struct {
	Found      int
	Downloaded int
	Failed     int
}

type Scraper struct {
	indexURL string
	base     *url.URL
	rawDir   string
	client   *http.Client
	limiter  *rate.Limiter
	log      logrus.FieldLogger
}

type Option func(*Scraper)

// WithRate paces index and download requests.
func WithRate(requestsPerSecond float64, burst int) Option {
	return func(s *Scraper) {
		if requestsPerSecond > 0 {
			if burst <= 0 {
				burst = 1
			}
			s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
		}
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(s *Scraper) {
		if client != nil {
			s.client = client
		}
	}
}

func New(indexURL, baseURL, rawDir string, log logrus.FieldLogger, opts ...Option) (*Scraper, error) {
	if indexURL == "" {
		indexURL = DefaultIndexURL
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	s := &Scraper{
		indexURL: indexURL,
		base:     base,
		rawDir:   rawDir,
		client:   http.DefaultClient,
		limiter:  rate.NewLimiter(rate.Limit(2), 1),
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run downloads every capture linked from the index page into the raw directory.
func (s *Scraper) Run(ctx context.Context) (Result, error) {
	links, err := s.DownloadURLs(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.Download(ctx, links)
}

// DownloadURLs fetches the index page and returns the absolute URLs of the
// capture files it links to, in document order.
func (s *Scraper) DownloadURLs(ctx context.Context) ([]string, error) {
	body, err := s.get(ctx, s.indexURL)
	if err != nil {
		return nil, fmt.Errorf("fetch index: %w", err)
	}
	defer body.Close()

	return ExtractLinks(body, s.base)
}

// ExtractLinks returns the hrefs of capture-file anchors resolved against base.
func ExtractLinks(r io.Reader, base *url.URL) ([]string, error) {
	var links []string
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return links, nil
			}
			return links, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "a" || !hasAttr {
				continue
			}
			for {
				key, val, more := z.TagAttr()
				if string(key) == "href" {
					if link, ok := resolve(base, string(val)); ok {
						links = append(links, link)
					}
				}
				if !more {
					break
				}
			}
		}
	}
}

func resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil || !capture.IsCaptureFile(ref.Path) {
		return "", false
	}
	if ref.IsAbs() {
		return ref.String(), true
	}
	// Relative hrefs are taken from the site root.
	root := *base
	root.Path = "/"
	return root.ResolveReference(ref).String(), true
}

// Download fetches each link into the raw directory. Failed downloads are
// logged and counted; only context cancellation stops the pass.
func (s *Scraper) Download(ctx context.Context, links []string) (Result, error) {
	res := Result{Found: len(links)}
	if err := os.MkdirAll(s.rawDir, 0o755); err != nil {
		return res, err
	}

	for _, link := range links {
		log := s.log.WithField("url", link)
		name, err := s.fetch(ctx, link)
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		if err != nil {
			log.WithError(err).Warn("Download failed")
			res.Failed++
			continue
		}
		log.WithField("file", name).Info("Downloaded capture")
		res.Downloaded++
	}
	return res, nil
}

func (s *Scraper) fetch(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		return "", fmt.Errorf("no file name in %q", link)
	}

	body, err := s.get(ctx, link)
	if err != nil {
		return "", err
	}
	defer body.Close()

	dst := filepath.Join(s.rawDir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", err
	}
	return dst, f.Close()
}

func (s *Scraper) get(ctx context.Context, link string) (io.ReadCloser, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
