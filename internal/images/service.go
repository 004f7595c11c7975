package images

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"launchpad/internal/models"
	"launchpad/internal/services"
	"launchpad/internal/storage"
)

// DefaultMaxFileSize is 5 MiB.
const DefaultMaxFileSize = 5 * 1024 * 1024

// Upload is one received file.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Service stores content-addressed images: identical bytes always map to the
// same uri and are written once.
type Service struct {
	store   storage.ImageStore
	blobs   BlobStore
	baseURL string
	maxSize int64
	now     func() time.Time
}

func NewService(store storage.ImageStore, blobs BlobStore, baseURL string, maxSize int64) *Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}
	return &Service{
		store:   store,
		blobs:   blobs,
		baseURL: strings.TrimRight(baseURL, "/"),
		maxSize: maxSize,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// MaxSize is the largest accepted upload in bytes.
func (s *Service) MaxSize() int64 { return s.maxSize }

func allowedList() string {
	types := make([]string, 0, len(AllowedTypes))
	for t := range AllowedTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}

// URI returns the content address of data.
func URI(data []byte) (uri, hash string) {
	sum := md5.Sum(data)
	hash = hex.EncodeToString(sum[:])
	return "img_" + hash, hash
}

func (s *Service) Upload(ctx context.Context, in Upload) (*models.Image, error) {
	const op = "upload image"

	declared := strings.ToLower(strings.TrimSpace(strings.Split(in.ContentType, ";")[0]))
	if _, ok := AllowedTypes[declared]; !ok {
		return nil, &services.ValidationError{Op: op, Field: "file", Reason: "invalid file type, allowed types: " + allowedList()}
	}
	if len(in.Data) == 0 {
		return nil, &services.ValidationError{Op: op, Field: "file", Reason: "empty file"}
	}
	if int64(len(in.Data)) > s.maxSize {
		return nil, &services.ValidationError{Op: op, Field: "file", Reason: fmt.Sprintf("file too large, maximum size: %.1fMB", float64(s.maxSize)/1024/1024)}
	}
	actual := sniff(in.Data)
	if actual == "" {
		return nil, &services.ValidationError{Op: op, Field: "file", Reason: "content is not an allowed image type"}
	}

	uri, hash := URI(in.Data)
	existing, err := s.store.GetImage(ctx, uri)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, &services.UpstreamError{Service: "store", Op: op, Err: err}
	}

	filename := hash + "." + extension(in.Filename, actual)
	stored := downscale(in.Data, actual)
	location, err := s.blobs.Put(ctx, filename, stored)
	if err != nil {
		return nil, &services.UpstreamError{Service: "blob", Op: op, Err: err}
	}

	img := &models.Image{
		URI:              uri,
		Filename:         filename,
		OriginalFilename: in.Filename,
		Size:             int64(len(stored)),
		ContentType:      actual,
		URL:              s.baseURL + s.blobs.PublicPath(filename, uri),
		FilePath:         location,
		Hash:             hash,
		CreatedAt:        s.now(),
	}
	err = s.store.InsertImage(ctx, img)
	if errors.Is(err, storage.ErrDuplicateKey) {
		// A concurrent upload of the same bytes won.
		winner, getErr := s.store.GetImage(ctx, uri)
		if getErr != nil {
			return nil, &services.UpstreamError{Service: "store", Op: op, Err: getErr}
		}
		return winner, nil
	}
	if err != nil {
		return nil, &services.UpstreamError{Service: "store", Op: op, Err: err}
	}

	log.WithFields(log.Fields{"uri": uri, "size": img.Size, "content_type": actual}).Info("image stored")
	return img, nil
}

// Open returns the image row and a reader over its bytes. The caller closes it.
func (s *Service) Open(ctx context.Context, uri string) (*models.Image, io.ReadCloser, error) {
	const op = "get image"

	img, err := s.store.GetImage(ctx, uri)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, &services.NotFoundError{Entity: "image", ID: uri, Op: op, Err: err}
	}
	if err != nil {
		return nil, nil, &services.UpstreamError{Service: "store", Op: op, Err: err}
	}

	rc, err := s.blobs.Open(ctx, img.FilePath)
	if errors.Is(err, ErrBlobNotFound) {
		return nil, nil, &services.NotFoundError{Entity: "image_file", ID: uri, Op: op, Err: err}
	}
	if err != nil {
		return nil, nil, &services.UpstreamError{Service: "blob", Op: op, Err: err}
	}
	return img, rc, nil
}
