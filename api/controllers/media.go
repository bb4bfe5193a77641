package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/angelmondragon/homeplate-backend/api/responses"
	"github.com/angelmondragon/homeplate-backend/internal/media"
	"github.com/angelmondragon/homeplate-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
	"github.com/angelmondragon/homeplate-backend/pkg/logger"
)

const (
	multipartOverheadBytes = 1 << 20
	multipartMemoryBytes   = 8 << 20
)

// MediaUpload accepts a multipart image in the "file" field and forwards it to the content backend.
// The optional "kind" field selects the image's purpose.
func MediaUpload(svc media.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "media service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, svc.MaxBytes()+multipartOverheadBytes)
		if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "file must be at most %d bytes", svc.MaxBytes()).
					WithDetails(map[string]any{"maxBytes": svc.MaxBytes()}))
				return
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file is required").
				WithDetails(map[string]any{"field": "file"}))
			return
		}
		defer file.Close()

		var kind enums.MediaKind
		if raw := strings.TrimSpace(r.FormValue("kind")); raw != "" {
			kind, err = enums.ParseMediaKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid kind").
					WithDetails(map[string]any{"field": "kind"}))
				return
			}
		}

		uploaded, err := svc.Upload(r.Context(), media.UploadInput{
			Kind:     kind,
			FileName: header.Filename,
			Body:     file,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, uploaded)
	}
}
