package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

const defaultMaxUploadBytes = 10 << 20

type uploader interface {
	Upload(ctx context.Context, filename, contentType string, data io.Reader) (*models.Media, error)
}

// UploadInput is one image from a multipart request.
type UploadInput struct {
	Kind     enums.MediaKind
	FileName string
	Body     io.Reader
}

// Service validates images and forwards them to the content backend's upload endpoint.
type Service interface {
	Upload(ctx context.Context, input UploadInput) (*models.Media, error)
	MaxBytes() int64
}

type service struct {
	uploader uploader
	maxBytes int64
	logg     *logger.Logger
}

// NewService constructs the media service. maxBytes <= 0 uses the default limit.
func NewService(up uploader, maxBytes int64, logg *logger.Logger) (Service, error) {
	if up == nil {
		return nil, fmt.Errorf("uploader required")
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{uploader: up, maxBytes: maxBytes, logg: logg}, nil
}

func (s *service) MaxBytes() int64 {
	return s.maxBytes
}

func (s *service) Upload(ctx context.Context, input UploadInput) (*models.Media, error) {
	kind := input.Kind
	if kind == "" {
		kind = enums.MediaKindDish
	}
	if !kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}
	if input.Body == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is required")
	}

	data, err := io.ReadAll(io.LimitReader(input.Body, s.maxBytes+1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload")
	}
	if int64(len(data)) > s.maxBytes {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "file must be at most %d bytes", s.maxBytes).
			WithDetails(map[string]any{"maxBytes": s.maxBytes})
	}

	detected, err := sniffMimeType(data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable file")
	}
	if !isAllowedMime(kind, detected) {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "only %s are accepted", allowedMimeDescription(kind)).
			WithDetails(map[string]any{"detectedType": detected.String()})
	}

	name := buildFileName(kind, input.FileName, detected.Extension())
	media, err := s.uploader.Upload(ctx, name, detected.String(), bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	ctx = s.logg.WithFields(ctx, map[string]any{"media_id": media.ID, "kind": kind.String(), "bytes": len(data)})
	s.logg.Info(ctx, "media.uploaded")
	return media, nil
}

// buildFileName prefixes the cleaned client name with the kind and a random id so uploads never collide.
func buildFileName(kind enums.MediaKind, fileName, ext string) string {
	id := uuid.NewString()
	clean := sanitizeFileName(strings.TrimSuffix(fileName, path.Ext(fileName)))
	if clean == "" {
		return fmt.Sprintf("%s-%s%s", kind, id, ext)
	}
	return fmt.Sprintf("%s-%s-%s%s", kind, id, clean, ext)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if clean == "" || clean == "." || clean == "/" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || r == '"' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
