package images

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"launchpad/internal/models"
	"launchpad/internal/services"
	"launchpad/internal/storage"
	"launchpad/internal/storage/memory"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, 8, 8), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func newDiskService(t *testing.T) (*Service, *memory.Store, string) {
	t.Helper()
	dir := t.TempDir()
	blobs, err := NewDiskStore(dir)
	require.NoError(t, err)
	store := memory.NewStore()
	return NewService(store, blobs, "http://api.test/", DefaultMaxFileSize), store, dir
}

func TestUploadStoresContentAddressedImage(t *testing.T) {
	svc, _, dir := newDiskService(t)
	ctx := context.Background()
	data := gifBytes(t)

	img, err := svc.Upload(ctx, Upload{Filename: "Logo.GIF", ContentType: "image/gif", Data: data})
	require.NoError(t, err)

	uri, hash := URI(data)
	assert.Equal(t, uri, img.URI)
	assert.True(t, strings.HasPrefix(img.URI, "img_"))
	assert.Equal(t, hash+".gif", img.Filename)
	assert.Equal(t, "Logo.GIF", img.OriginalFilename)
	assert.Equal(t, "image/gif", img.ContentType)
	assert.Equal(t, "http://api.test/static/images/"+hash+".gif", img.URL)
	assert.Equal(t, filepath.Join(dir, hash+".gif"), img.FilePath)
	assert.Equal(t, int64(len(data)), img.Size)

	got, rc, err := svc.Open(ctx, img.URI)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, img.URI, got.URI)
}

func TestUploadSameBytesReturnsExisting(t *testing.T) {
	svc, _, _ := newDiskService(t)
	ctx := context.Background()
	data := gifBytes(t)

	first, err := svc.Upload(ctx, Upload{Filename: "a.gif", ContentType: "image/gif", Data: data})
	require.NoError(t, err)
	second, err := svc.Upload(ctx, Upload{Filename: "b.gif", ContentType: "image/gif", Data: data})
	require.NoError(t, err)

	assert.Equal(t, first.URI, second.URI)
	assert.Equal(t, "a.gif", second.OriginalFilename)
}

func TestUploadDownscalesLargePNG(t *testing.T) {
	svc, _, _ := newDiskService(t)
	ctx := context.Background()

	img, err := svc.Upload(ctx, Upload{Filename: "wide.png", ContentType: "image/png", Data: pngBytes(t, 2048, 1024)})
	require.NoError(t, err)

	_, rc, err := svc.Open(ctx, img.URI)
	require.NoError(t, err)
	defer rc.Close()
	cfg, format, err := image.DecodeConfig(rc)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 512, cfg.Height)
}

func TestUploadKeepsSmallPNG(t *testing.T) {
	data := pngBytes(t, 300, 200)
	assert.Equal(t, data, downscale(data, "image/png"))
	assert.Equal(t, []byte("not an image"), downscale([]byte("not an image"), "image/png"))
}

func TestUploadValidation(t *testing.T) {
	svc, _, dir := newDiskService(t)
	blobs, err := NewDiskStore(dir)
	require.NoError(t, err)
	tiny := NewService(memory.NewStore(), blobs, "", 16)
	ctx := context.Background()

	tests := map[string]struct {
		svc *Service
		in  Upload
	}{
		"declared text":     {svc, Upload{Filename: "a.txt", ContentType: "text/plain", Data: []byte("hello")}},
		"content not image": {svc, Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("hello world")}},
		"empty":             {svc, Upload{Filename: "a.png", ContentType: "image/png"}},
		"too large":         {tiny, Upload{Filename: "a.gif", ContentType: "image/gif", Data: gifBytes(t)}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := tc.svc.Upload(ctx, tc.in)
			var verr *services.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, "file", verr.Field)
		})
	}
}

func TestOpenMissing(t *testing.T) {
	svc, store, _ := newDiskService(t)
	ctx := context.Background()

	_, _, err := svc.Open(ctx, "img_nope")
	var nf *services.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "image", nf.Entity)

	img, err := svc.Upload(ctx, Upload{Filename: "a.gif", ContentType: "image/gif", Data: gifBytes(t)})
	require.NoError(t, err)
	stored, err := store.GetImage(ctx, img.URI)
	require.NoError(t, err)
	require.NoError(t, os.Remove(stored.FilePath))

	_, _, err = svc.Open(ctx, img.URI)
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "image_file", nf.Entity)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "jpeg", extension("photo.JPEG", "image/jpeg"))
	assert.Equal(t, "png", extension("noext", "image/png"))
	assert.Equal(t, "webp", extension("weird.exe", "image/webp"))
}

type fakeShell struct {
	blobs map[string][]byte
	err   error
}

func (f *fakeShell) Add(r io.Reader, _ ...shell.AddOpts) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	data, _ := io.ReadAll(r)
	cid := "Qm" + strings.Repeat("x", 4) + string(rune('a'+len(f.blobs)))
	f.blobs[cid] = data
	return cid, nil
}

func (f *fakeShell) Cat(path string) (io.ReadCloser, error) {
	data, ok := f.blobs[path]
	if !ok {
		return nil, errors.New("merkledag: not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func TestIPFSBackedUpload(t *testing.T) {
	sh := &fakeShell{blobs: map[string][]byte{}}
	svc := NewService(memory.NewStore(), &IPFSStore{sh: sh}, "http://api.test", 0)
	ctx := context.Background()
	data := gifBytes(t)

	img, err := svc.Upload(ctx, Upload{Filename: "a.gif", ContentType: "image/gif", Data: data})
	require.NoError(t, err)
	assert.Equal(t, "ipfs://Qmxxxxa", img.FilePath)
	assert.Equal(t, "http://api.test/api/v1/images/"+img.URI, img.URL)

	_, rc, err := svc.Open(ctx, img.URI)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, data, body)

	sh.err = errors.New("node offline")
	_, err = svc.Upload(ctx, Upload{Filename: "b.png", ContentType: "image/png", Data: pngBytes(t, 10, 10)})
	var up *services.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, "blob", up.Service)
}

// racingStore reports a duplicate on insert, as when a concurrent upload of
// the same bytes commits first, and fails every read after the first.
type racingStore struct {
	reads int
}

func (r *racingStore) InsertImage(context.Context, *models.Image) error {
	return storage.ErrDuplicateKey
}

func (r *racingStore) GetImage(context.Context, string) (*models.Image, error) {
	r.reads++
	if r.reads > 1 {
		return nil, errors.New("connection reset")
	}
	return nil, storage.ErrNotFound
}

func TestUploadLostRaceStoreFailure(t *testing.T) {
	blobs, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	store := &racingStore{}
	svc := NewService(store, blobs, "http://api.test", DefaultMaxFileSize)

	_, err = svc.Upload(context.Background(), Upload{Filename: "a.gif", ContentType: "image/gif", Data: gifBytes(t)})
	var upstream *services.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "store", upstream.Service)
	assert.Equal(t, 2, store.reads)
}
