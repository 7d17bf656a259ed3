package qr

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// renderPDF rasterizes the matrix to PNG and places the image centered on a
// single A4 page.
func renderPDF(m Matrix, opts RenderOptions) ([]byte, error) {
	pngData, err := renderPNG(m, opts)
	if err != nil {
		return nil, err
	}

	imp, err := api.Import("form:A4, pos:c", types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("pdf import spec: %w", err)
	}

	var buf bytes.Buffer
	if err := api.ImportImages(nil, &buf, []io.Reader{bytes.NewReader(pngData)}, imp, model.NewDefaultConfiguration()); err != nil {
		return nil, fmt.Errorf("pdf page assembly: %w", err)
	}
	return buf.Bytes(), nil
}
