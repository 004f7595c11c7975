package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	shell "github.com/ipfs/go-ipfs-api"
)

// ErrBlobNotFound is returned by Open when the stored bytes are gone.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore persists image bytes. Put returns the location recorded in the
// image row; Open reads it back.
type BlobStore interface {
	Put(ctx context.Context, filename string, data []byte) (string, error)
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	// PublicPath is the path, relative to the API base URL, clients fetch the image from.
	PublicPath(filename, uri string) string
}

// DiskStore keeps blobs in a local directory served under /static/images.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (d *DiskStore) Put(_ context.Context, filename string, data []byte) (string, error) {
	path := filepath.Join(d.dir, filepath.Base(filename))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

func (d *DiskStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	f, err := os.Open(location)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	return f, err
}

func (d *DiskStore) PublicPath(filename, _ string) string {
	return "/static/images/" + filename
}

// ipfsShell is the part of the go-ipfs-api shell the store needs.
type ipfsShell interface {
	Add(r io.Reader, options ...shell.AddOpts) (string, error)
	Cat(path string) (io.ReadCloser, error)
}

const ipfsPrefix = "ipfs://"

// IPFSStore pins blobs to an IPFS node. Images are served back through the API.
type IPFSStore struct {
	sh ipfsShell
}

// NewIPFSStore connects to the node API at url, e.g. "localhost:5001".
func NewIPFSStore(url string) *IPFSStore {
	return &IPFSStore{sh: shell.NewShell(url)}
}

func (s *IPFSStore) Put(_ context.Context, _ string, data []byte) (string, error) {
	cid, err := s.sh.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	return ipfsPrefix + cid, nil
}

func (s *IPFSStore) Open(_ context.Context, location string) (io.ReadCloser, error) {
	cid, ok := strings.CutPrefix(location, ipfsPrefix)
	if !ok || cid == "" {
		return nil, ErrBlobNotFound
	}
	rc, err := s.sh.Cat(cid)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat %s: %w", cid, err)
	}
	return rc, nil
}

func (s *IPFSStore) PublicPath(_, uri string) string {
	return "/api/v1/images/" + uri
}
