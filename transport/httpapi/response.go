package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/qrgen/core/artifact"
	"github.com/dmitrymomot/qrgen/core/logger"
	"github.com/dmitrymomot/qrgen/core/qr"
)

type qrResponse struct {
	ID           string    `json:"id"`
	Data         string    `json:"data"`
	Format       string    `json:"format"`
	Size         int       `json:"size"`
	Border       int       `json:"border"`
	DownloadURL  string    `json:"download_url"`
	QRCodeBase64 string    `json:"qr_code_base64,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// newQRResponse builds the response body for one artifact. The format is
// echoed lowercase, matching the request convention. The inline base64
// preview is attached only when withPreview is set and the artifact is PNG,
// where clients can embed it in an img tag directly; batch-style responses
// omit it to keep their payloads bounded.
func (h *Handler) newQRResponse(a *artifact.Artifact, withPreview bool) qrResponse {
	resp := qrResponse{
		ID:          a.ID,
		Data:        a.Data,
		Format:      strings.ToLower(string(a.Format)),
		Size:        a.Size,
		Border:      a.Border,
		DownloadURL: "/qr/download/" + a.ID,
		CreatedAt:   a.CreatedAt,
	}
	if withPreview && a.Format == qr.FormatPNG {
		resp.QRCodeBase64 = h.svc.Preview(a)
	}
	return resp
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", logger.Error(err))
	}
}

// writeError maps domain errors to status codes. Validation failures are
// 400, payloads that exceed symbol capacity are 422, missing artifacts are
// 404, and everything else is an opaque 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	message := err.Error()

	switch {
	case errors.Is(err, qr.ErrContentTooLarge):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, artifact.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errInvalidBody),
		errors.Is(err, qr.ErrEmptyContent),
		errors.Is(err, qr.ErrInvalidLevel),
		errors.Is(err, qr.ErrUnsupportedFormat),
		errors.Is(err, qr.ErrUnsupportedShape),
		errors.Is(err, qr.ErrInvalidColor),
		errors.Is(err, qr.ErrInvalidScale),
		errors.Is(err, qr.ErrInvalidBorder):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		h.log.ErrorContext(r.Context(), "request failed",
			logger.Error(err),
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.RequestID(requestID(r)))
	}

	h.writeJSON(w, status, errorResponse{Error: message})
}
