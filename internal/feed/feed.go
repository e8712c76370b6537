// Package feed loads raw match documents from disk or over HTTP and parses
// them into XML trees.
package feed

import (
	"bytes"
	"compress/bzip2"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ErrHTTPStatus is returned when a document URL answers with a non-200 status.
var ErrHTTPStatus = errors.New("unexpected http status")

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	zstdMagic  = []byte{0x28, 0xb5, 0x2f, 0xfd}
	bzip2Magic = []byte("BZh")
)

// MatchURL returns the public feed location of a competition's match.
func MatchURL(competition, matchID string) string {
	return fmt.Sprintf("http://s3-irl-%s.squawka.com/dp/ingame/%s", competition, matchID)
}

// Loader fetches documents. The zero value uses http.DefaultClient.
type Loader struct {
	Client *http.Client
}

// NewLoader returns a Loader whose HTTP requests time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	return &Loader{Client: &http.Client{Timeout: timeout}}
}

// IsURL reports whether src should be fetched over HTTP.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch reads src (a file path or http(s) URL) and returns its bytes as
// stored, possibly compressed. Decompress unwraps them.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	if IsURL(src) {
		raw, err = l.get(ctx, src)
	} else {
		raw, err = os.ReadFile(src)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src, err)
	}
	return raw, nil
}

func (l *Loader) get(ctx context.Context, url string) ([]byte, error) {
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrHTTPStatus, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Decompress unwraps gzip, zstd or bzip2 payloads, recognised by their magic
// bytes. Anything else, plain XML included, is returned unchanged, so
// decompressed data passes through again safely.
func Decompress(data []byte) ([]byte, error) {
	var src io.Reader
	switch {
	case bytes.HasPrefix(data, bzip2Magic):
		src = bzip2.NewReader(bytes.NewReader(data))
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
	case bytes.HasPrefix(data, gzipMagic):
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	default:
		return data, nil
	}

	out, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	return out, nil
}

// Parse decompresses data if needed and builds an XML tree from it.
func Parse(data []byte) (*xmlquery.Node, error) {
	data, err := Decompress(data)
	if err != nil {
		return nil, err
	}
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse xml: %w", err)
	}
	return doc, nil
}

// Load fetches and parses src in one step.
func (l *Loader) Load(ctx context.Context, src string) (*xmlquery.Node, error) {
	data, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
