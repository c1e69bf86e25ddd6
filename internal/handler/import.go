package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"cambiacartas-api/internal/middleware"
	"cambiacartas-api/internal/service"
	"cambiacartas-api/pkg/apierror"
	"cambiacartas-api/pkg/response"
)

// maxImportSize caps decklist uploads at 5 MiB.
const maxImportSize = 5 << 20

// ImportHandler handles bulk decklist imports.
type ImportHandler struct {
	importer *service.ImporterService
}

// NewImportHandler creates a new import handler.
func NewImportHandler(importer *service.ImporterService) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Import handles POST /api/v1/import?target=inventory|wishlist&format=txt|csv|xlsx
// The body is either a multipart upload under the "file" field or the
// raw decklist itself.
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())

	target := r.URL.Query().Get("target")
	if target == "" {
		target = service.TargetInventory
	}
	format := r.URL.Query().Get("format")

	body, detectedFormat, err := importBody(r)
	if err != nil {
		response.Error(w, apierror.BadRequest(err.Error()))
		return
	}
	defer body.Close()

	if format == "" {
		format = detectedFormat
	}

	report, err := h.importer.Import(r.Context(), session.ProfileID, format, target, body)
	if err != nil {
		response.Error(w, serviceError(err))
		return
	}
	response.OK(w, report)
}

// importBody extracts the decklist reader from the request, preferring a
// multipart "file" field. The detected format comes from the uploaded
// file's extension when present.
func importBody(r *http.Request) (io.ReadCloser, string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxImportSize)

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
		return file, ext, nil
	}

	return r.Body, service.FormatText, nil
}
