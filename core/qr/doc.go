// Package qr provides QR code encoding and multi-format rendering.
//
// Encoding turns a payload into a module matrix using the requested error
// correction level, auto-selecting the smallest symbol version (1-40) that
// fits. Rendering turns a matrix into PNG, SVG, or single-page PDF bytes
// with configurable module scale, quiet zone, colors, and module shape.
//
// Encoding and rendering are pure: no I/O, no shared state. Capacity
// overflows surface as ErrContentTooLarge; unknown formats are rejected
// with ErrUnsupportedFormat rather than silently falling back to PNG.
//
// Basic usage:
//
//	matrix, err := qr.Encode("https://example.com", qr.LevelM)
//	if err != nil {
//		return err
//	}
//
//	data, err := qr.Render(matrix, qr.RenderOptions{
//		Format:    qr.FormatPNG,
//		Scale:     10,
//		Border:    4,
//		FillColor: "black",
//		BackColor: "white",
//	})
package qr
