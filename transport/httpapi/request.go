package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrymomot/qrgen/core/generate"
	"github.com/dmitrymomot/qrgen/core/qr"
)

// Validation bounds mirror what the renderer accepts plus sanity caps on
// user input.
const (
	maxContentLength = 4296 // version 40 alphanumeric capacity
	minScale         = 1
	maxScale         = 40
	minBorder        = 0
	maxBorder        = 20
)

var errInvalidBody = errors.New("invalid request body")

// renderRequest carries the presentation fields shared by every generation
// endpoint. Size and Border are pointers so zero values can be told apart
// from absent fields.
type renderRequest struct {
	Format          string `json:"format,omitempty"`
	Size            *int   `json:"size,omitempty"`
	Border          *int   `json:"border,omitempty"`
	FillColor       string `json:"fill_color,omitempty"`
	BackColor       string `json:"back_color,omitempty"`
	Style           string `json:"style,omitempty"`
	ErrorCorrection string `json:"error_correction,omitempty"`
}

type generateRequest struct {
	renderRequest
	Data string `json:"data"`
}

// batchRequest carries one shared set of render params applied to every
// item.
type batchRequest struct {
	renderRequest
	Items []string `json:"items"`
}

type wifiRequest struct {
	renderRequest
	SSID     string `json:"ssid"`
	Password string `json:"password,omitempty"`
	Security string `json:"security,omitempty"`
	Hidden   bool   `json:"hidden,omitempty"`
}

type vcardRequest struct {
	renderRequest
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Org   string `json:"org,omitempty"`
}

type urlRequest struct {
	renderRequest
	URL string `json:"url"`
}

// toParams validates the presentation fields and builds service params.
// The data payload is validated separately per endpoint.
func (r renderRequest) toParams() (generate.Params, error) {
	p := generate.Params{
		FillColor: r.FillColor,
		BackColor: r.BackColor,
		Size:      10,
		Border:    4,
	}

	if r.Format != "" {
		format, err := qr.ParseFormat(r.Format)
		if err != nil {
			return p, fmt.Errorf("%w: %q", qr.ErrUnsupportedFormat, r.Format)
		}
		p.Format = format
	}

	if r.ErrorCorrection != "" {
		level, err := qr.ParseLevel(r.ErrorCorrection)
		if err != nil {
			return p, fmt.Errorf("%w: %q", qr.ErrInvalidLevel, r.ErrorCorrection)
		}
		p.Level = level
	}

	if r.Style != "" {
		shape, err := qr.ParseShape(r.Style)
		if err != nil {
			return p, fmt.Errorf("%w: %q", qr.ErrUnsupportedShape, r.Style)
		}
		p.Style = shape
	}

	if r.Size != nil {
		if *r.Size < minScale || *r.Size > maxScale {
			return p, fmt.Errorf("%w: size must be between %d and %d", qr.ErrInvalidScale, minScale, maxScale)
		}
		p.Size = *r.Size
	}

	if r.Border != nil {
		if *r.Border < minBorder || *r.Border > maxBorder {
			return p, fmt.Errorf("%w: border must be between %d and %d", qr.ErrInvalidBorder, minBorder, maxBorder)
		}
		p.Border = *r.Border
	}

	if r.FillColor != "" {
		if _, err := qr.ParseColor(r.FillColor); err != nil {
			return p, fmt.Errorf("%w: %q", qr.ErrInvalidColor, r.FillColor)
		}
	}
	if r.BackColor != "" {
		if _, err := qr.ParseColor(r.BackColor); err != nil {
			return p, fmt.Errorf("%w: %q", qr.ErrInvalidColor, r.BackColor)
		}
	}

	return p, nil
}

func validateContent(data string) error {
	if data == "" {
		return qr.ErrEmptyContent
	}
	if len(data) > maxContentLength {
		return fmt.Errorf("%w: %d bytes exceeds limit of %d", qr.ErrContentTooLarge, len(data), maxContentLength)
	}
	return nil
}

// decodeJSON reads the request body into dst, enforcing the body size cap
// and rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", errInvalidBody, err)
	}
	return nil
}
