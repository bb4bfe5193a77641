package content

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/angelmondragon/homeplate-backend/pkg/content/models"
	pkgerrors "github.com/angelmondragon/homeplate-backend/pkg/errors"
)

// Upload stores a file through the content backend's upload endpoint.
func (c *Client) Upload(ctx context.Context, filename, contentType string, data io.Reader) (*models.Media, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}

	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="files"; filename="`+escapeQuotes(filename)+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build upload form")
	}
	if _, err := io.Copy(part, data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "copy upload body")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalize upload form")
	}

	var files []models.Media
	if _, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/upload",
		collection:  collectionUpload,
		body:        buf,
		contentType: writer.FormDataContentType(),
	}, &files); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "upload returned no files")
	}
	return &files[0], nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
