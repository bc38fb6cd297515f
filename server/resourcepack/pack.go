// Package resourcepack tracks the resource pack offered to players: where it
// is downloaded from and the SHA-1 hash clients use to validate it.
package resourcepack

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/sandertv/gophertunnel/minecraft/resource"
)

// chunkSize is the size of the buffer the pack is hashed with.
const chunkSize = 256

// ErrNotFound is returned when the pack could not be fetched. The cause is
// wrapped.
var ErrNotFound = errors.New("resource pack not found")

// Pack is a resource pack identified by its URL. It is safe for concurrent
// use.
type Pack struct {
	fetcher Fetcher

	mu          sync.RWMutex
	url         string
	hash        string
	fingerprint uint64
	size        int64
}

// New fetches the pack at url and computes its hash. A nil fetcher uses
// DefaultFetcher.
func New(ctx context.Context, url string, f Fetcher) (*Pack, error) {
	if f == nil {
		f = DefaultFetcher
	}
	p := &Pack{fetcher: f}
	if err := p.UpdateHash(ctx, url); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateHash refetches the pack from url and replaces the stored URL and
// hash. The previous values are kept if fetching fails.
func (p *Pack) UpdateHash(ctx context.Context, url string) error {
	sum, err := p.digest(ctx, url, io.Discard)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url, p.hash, p.fingerprint, p.size = url, sum.hash, sum.fingerprint, sum.size
	return nil
}

// URL returns the URL the pack was last fetched from.
func (p *Pack) URL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.url
}

// Hash returns the lowercase hex SHA-1 of the pack content.
func (p *Pack) Hash() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hash
}

// Fingerprint returns a fast non-cryptographic hash of the pack content. It
// changes whenever Hash does.
func (p *Pack) Fingerprint() uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.fingerprint
}

// Size returns the size in bytes of the pack content.
func (p *Pack) Size() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.size
}

// Download fetches the pack into dir, updates the stored hash and parses the
// archive so that it can be served to clients by the server.
func (p *Pack) Download(ctx context.Context, dir string) (*resource.Pack, error) {
	url := p.URL()
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, fmt.Errorf("create pack dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "pack-*.zip")
	if err != nil {
		return nil, fmt.Errorf("create pack file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	sum, err := p.digest(ctx, url, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close pack file: %w", cerr)
	}
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, sum.hash+".zip")
	if err := os.Rename(tmp, path); err != nil {
		return nil, fmt.Errorf("store pack: %w", err)
	}
	pack, err := resource.ReadPath(path)
	if err != nil {
		return nil, fmt.Errorf("read pack: %w", err)
	}

	p.mu.Lock()
	p.hash, p.fingerprint, p.size = sum.hash, sum.fingerprint, sum.size
	p.mu.Unlock()
	return pack, nil
}

type checksum struct {
	hash        string
	fingerprint uint64
	size        int64
}

// digest fetches url and hashes the content, copying it to w on the way.
func (p *Pack) digest(ctx context.Context, url string, w io.Writer) (checksum, error) {
	rc, err := p.fetcher.Fetch(ctx, url)
	if err != nil {
		return checksum{}, fmt.Errorf("%w: %v: %w", ErrNotFound, url, err)
	}
	defer rc.Close()

	sha, xx := sha1.New(), xxhash.New()
	n, err := copyChunks(io.MultiWriter(sha, xx, w), rc)
	var werr writeError
	if errors.As(err, &werr) {
		return checksum{}, fmt.Errorf("write pack: %w", werr.err)
	} else if err != nil {
		return checksum{}, fmt.Errorf("%w: %v: %w", ErrNotFound, url, err)
	}
	return checksum{hash: hexSum(sha), fingerprint: xx.Sum64(), size: n}, nil
}

// writeError is returned by copyChunks when dst fails, to tell it apart from
// failures reading the pack.
type writeError struct{ err error }

func (e writeError) Error() string { return e.err.Error() }
func (e writeError) Unwrap() error { return e.err }

func copyChunks(dst io.Writer, src io.Reader) (int64, error) {
	buf := make([]byte, chunkSize)
	var total int64
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return total, writeError{werr}
			}
			total += int64(n)
		}
		if errors.Is(err, io.EOF) {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}
