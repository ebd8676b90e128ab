// Package glossaryloader loads glossary documents from the built-in copy, a
// local file or an HTTP(S) URL.
package glossaryloader

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
	"time"

	"github.com/giygas/cardioexplain-api/glossary"
	"github.com/giygas/cardioexplain-api/interfaces"
	"github.com/giygas/cardioexplain-api/logging"
)

// MaxDocumentSize caps how much of a glossary document is read.
const MaxDocumentSize = 5 * 1024 * 1024

var (
	_ interfaces.GlossarySource = (*EmbeddedSource)(nil)
	_ interfaces.GlossarySource = (*FileSource)(nil)
	_ interfaces.GlossarySource = (*HTTPSource)(nil)
)

// NewSource picks the source for location: the built-in glossary when it is
// empty, an HTTPSource for http(s) URLs and a FileSource otherwise.
func NewSource(location string) interfaces.GlossarySource {
	switch {
	case location == "":
		return &EmbeddedSource{}
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location)
	default:
		return &FileSource{Path: location}
	}
}

// EmbeddedSource serves the glossary compiled into the binary
type EmbeddedSource struct{}

func (s *EmbeddedSource) Load(ctx context.Context) (*glossary.Glossary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return glossary.Default()
}

func (s *EmbeddedSource) Describe() string {
	return "built-in"
}

// FileSource reads a JSON or YAML glossary from disk on every Load, so edits
// are picked up by the next scheduled reload.
type FileSource struct {
	Path string
}

func (s *FileSource) Load(ctx context.Context) (*glossary.Glossary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cleanPath := filepath.Clean(s.Path)
	format, err := glossary.FormatFromPath(cleanPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open glossary file %s: %w", cleanPath, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close glossary file", "path", cleanPath, "error", err)
		}
	}()

	body, err := readLimited(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file %s: %w", cleanPath, err)
	}

	g, err := glossary.Parse(body, format)
	if err != nil {
		return nil, fmt.Errorf("invalid glossary file %s: %w", cleanPath, err)
	}

	logging.Debug("Glossary file parsed", "path", cleanPath, "entries", g.Len())
	return g, nil
}

func (s *FileSource) Describe() string {
	return s.Path
}

// HTTPSource downloads a glossary document. The format comes from the URL
// path extension.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource creates an HTTPSource with a one minute client timeout.
func NewHTTPSource(rawURL string) *HTTPSource {
	return &HTTPSource{
		URL:    rawURL,
		Client: &http.Client{Timeout: time.Minute},
	}
}

func (s *HTTPSource) Load(ctx context.Context) (*glossary.Glossary, error) {
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid glossary URL %s: %w", s.URL, err)
	}

	format, err := glossary.FormatFromPath(path.Base(u.Path))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", s.URL, err)
	}

	response, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.URL, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: unexpected status %s", s.URL, response.Status)
	}

	body, err := readLimited(response.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	g, err := glossary.Parse(body, format)
	if err != nil {
		return nil, fmt.Errorf("invalid glossary at %s: %w", s.URL, err)
	}

	logging.Debug("Glossary downloaded", "url", s.URL, "entries", g.Len())
	return g, nil
}

func (s *HTTPSource) Describe() string {
	return s.URL
}

// readLimited reads r, failing when it holds more than MaxDocumentSize bytes
func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > MaxDocumentSize {
		return nil, fmt.Errorf("glossary document exceeds %d bytes", MaxDocumentSize)
	}
	return body, nil
}
