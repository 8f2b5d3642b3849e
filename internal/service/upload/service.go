package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/jwalitptl/clinic-api/pkg/errors"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

var errNotConfigured = errors.New("storage is not configured")

// Store is the object storage the relay forwards to.
type Store interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, key string) error
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
}

type Config struct {
	MaxFileSize  int64
	AllowedTypes []string
	PresignTTL   time.Duration
}

// File is one upload as received from the client.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Uploaded struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type Presigned struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	store   Store
	cfg     Config
	allowed map[string]struct{}
	metrics *metrics.Metrics
}

// NewService returns the upload relay. A nil store makes every storage
// operation fail with an upstream error.
func NewService(store Store, cfg Config, m *metrics.Metrics) *Service {
	allowed := make(map[string]struct{}, len(cfg.AllowedTypes))
	for _, t := range cfg.AllowedTypes {
		allowed[strings.ToLower(t)] = struct{}{}
	}
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	if m == nil {
		m = metrics.Noop()
	}
	return &Service{store: store, cfg: cfg, allowed: allowed, metrics: m}
}

// Upload checks the declared type and size, then forwards the bytes.
// Nothing reaches storage unless both checks pass.
func (s *Service) Upload(ctx context.Context, f File) (*Uploaded, error) {
	key, err := s.check(f.Name, f.ContentType)
	if err != nil {
		s.metrics.FileUploads.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if f.Size > s.cfg.MaxFileSize {
		s.metrics.FileUploads.WithLabelValues("rejected").Inc()
		return nil, apperrors.Validation("file is too large", []validator.FieldError{{
			Field:   "file",
			Message: fmt.Sprintf("must be at most %d bytes", s.cfg.MaxFileSize),
		}})
	}
	if s.store == nil {
		return nil, apperrors.Upstream("storage", errNotConfigured)
	}

	url, err := s.store.Put(ctx, key, f.ContentType, f.Body, f.Size)
	s.metrics.FileUploads.WithLabelValues(metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, apperrors.Upstream("storage", err)
	}

	log.Info().Str("key", key).Int64("size", f.Size).Msg("file uploaded")
	return &Uploaded{Key: key, URL: url}, nil
}

// Presign returns a time-limited PUT URL for a file the client uploads
// directly. The same type allow-list applies.
func (s *Service) Presign(ctx context.Context, name, contentType string) (*Presigned, error) {
	key, err := s.check(name, contentType)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, apperrors.Upstream("storage", errNotConfigured)
	}

	expiresAt := time.Now().Add(s.cfg.PresignTTL)
	url, err := s.store.PresignPut(ctx, key, contentType, s.cfg.PresignTTL)
	if err != nil {
		return nil, apperrors.Upstream("storage", err)
	}
	return &Presigned{Key: key, URL: url, ExpiresAt: expiresAt}, nil
}

func (s *Service) List(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return nil, apperrors.Upstream("storage", errNotConfigured)
	}
	keys, err := s.store.List(ctx)
	if err != nil {
		return nil, apperrors.Upstream("storage", err)
	}
	return keys, nil
}

// Delete removes the object stored under name, a key as returned by List.
// Deleting a file that is already gone succeeds.
func (s *Service) Delete(ctx context.Context, name string) error {
	key, err := storedKey(name)
	if err != nil {
		return err
	}
	if s.store == nil {
		return apperrors.Upstream("storage", errNotConfigured)
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return apperrors.Upstream("storage", err)
	}
	log.Info().Str("key", key).Msg("file deleted")
	return nil
}

func (s *Service) check(name, contentType string) (string, error) {
	key, err := uploadKey(name)
	if err != nil {
		return "", err
	}
	if _, ok := s.allowed[strings.ToLower(contentType)]; !ok {
		return "", apperrors.Validation("file type is not allowed", []validator.FieldError{{
			Field:   "file",
			Message: fmt.Sprintf("type %q is not one of %s", contentType, strings.Join(s.cfg.AllowedTypes, ", ")),
		}})
	}
	return key, nil
}

// uploadKey names a new object after the base name of the client's file.
func uploadKey(name string) (string, error) {
	if hasParentSegment(name) {
		return "", apperrors.BadRequest("invalid file name", nil)
	}
	key := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "" || key == "." || key == "/" {
		return "", apperrors.BadRequest("file name is required", nil)
	}
	return key, nil
}

// storedKey validates an existing key without rewriting it.
func storedKey(name string) (string, error) {
	if strings.Trim(name, "/") == "" {
		return "", apperrors.BadRequest("file name is required", nil)
	}
	if hasParentSegment(name) {
		return "", apperrors.BadRequest("invalid file name", nil)
	}
	return name, nil
}

func hasParentSegment(name string) bool {
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return true
		}
	}
	return false
}
