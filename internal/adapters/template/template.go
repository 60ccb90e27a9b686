// Package template loads the new-match player list.
//
// The source is an http(s) URL or a local file. A template has the snapshot
// shape; missing statistiques blocks read as zero.
package template

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/TissotPA/Match/internal/domain/snapshot"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultMaxBytes = 1 << 20
	userAgent       = "courtside/1.0"
)

// Fetcher reads a template from one source. Fetch never retries.
type Fetcher struct {
	source     string
	httpClient *http.Client
	maxBytes   int64
}

// New returns a Fetcher for source.
func New(source string, opts ...Option) *Fetcher {
	f := &Fetcher{
		source:     source,
		httpClient: &http.Client{Timeout: defaultTimeout},
		maxBytes:   defaultMaxBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch reads and decodes the template. Transport failures, non-2xx answers
// and unreadable files give ErrTemplateUnavailable; a body without a player
// list gives snapshot.ErrMalformedSnapshot.
func (f *Fetcher) Fetch(ctx context.Context) (snapshot.Document, error) {
	var (
		data []byte
		err  error
	)
	if isRemote(f.source) {
		data, err = f.fetchHTTP(ctx)
	} else {
		data, err = f.readFile()
	}
	if err != nil {
		return snapshot.Document{}, err
	}
	return snapshot.Decode(data)
}

func isRemote(source string) bool {
	s := strings.ToLower(source)
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func (f *Fetcher) fetchHTTP(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.source, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrTemplateUnavailable, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	// Always ask for a fresh copy.
	req.Header.Set("Cache-Control", "no-store")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status=%d", ErrTemplateUnavailable, resp.StatusCode)
	}
	return f.readLimited(resp.Body)
}

func (f *Fetcher) readFile() ([]byte, error) {
	file, err := os.Open(f.source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateUnavailable, err)
	}
	defer func() { _ = file.Close() }()
	return f.readLimited(file)
}

// readLimited reads r whole. A body over maxBytes is rejected, never
// truncated.
func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrTemplateUnavailable, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrTemplateUnavailable, f.maxBytes)
	}
	return data, nil
}
