package qr

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
)

// RenderOptions controls how a module matrix is turned into bytes.
type RenderOptions struct {
	// Format selects the output encoding: PNG, SVG, or PDF.
	Format Format

	// Scale is the size of one module in device pixels (SVG user units).
	Scale int

	// Border is the quiet zone width in modules on each side.
	Border int

	// FillColor and BackColor are named colors or #hex values.
	FillColor string
	BackColor string

	// Shape selects the dark-module glyph. Zero value means square.
	Shape Shape
}

func (o *RenderOptions) normalize() error {
	if o.Scale <= 0 {
		return ErrInvalidScale
	}
	if o.Border < 0 {
		return ErrInvalidBorder
	}
	if o.Shape == "" {
		o.Shape = ShapeSquare
	}
	switch o.Shape {
	case ShapeSquare, ShapeRounded, ShapeCircle:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedShape, o.Shape)
	}
	if o.FillColor == "" {
		o.FillColor = "black"
	}
	if o.BackColor == "" {
		o.BackColor = "white"
	}
	return nil
}

// Render encodes the matrix into the requested output format. Unknown
// formats are an error, never a PNG fallback.
func Render(m Matrix, opts RenderOptions) ([]byte, error) {
	if m.Size() == 0 {
		return nil, ErrEmptyMatrix
	}
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	switch opts.Format {
	case FormatPNG:
		return renderPNG(m, opts)
	case FormatSVG:
		return renderSVG(m, opts)
	case FormatPDF:
		return renderPDF(m, opts)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
}

func renderPNG(m Matrix, opts RenderOptions) ([]byte, error) {
	fill, err := ParseColor(opts.FillColor)
	if err != nil {
		return nil, err
	}
	back, err := ParseColor(opts.BackColor)
	if err != nil {
		return nil, err
	}

	n := m.Size()
	side := (n + 2*opts.Border) * opts.Scale

	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), image.NewUniform(back), image.Point{}, draw.Src)

	for y, row := range m {
		for x, dark := range row {
			if !dark {
				continue
			}
			px := (x + opts.Border) * opts.Scale
			py := (y + opts.Border) * opts.Scale
			drawModule(img, px, py, opts.Scale, opts.Shape, fill)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawModule fills one module cell at (x0, y0) spanning s pixels per side.
func drawModule(img *image.RGBA, x0, y0, s int, shape Shape, c color.RGBA) {
	switch shape {
	case ShapeCircle:
		r := float64(s) / 2
		cx := float64(x0) + r
		cy := float64(y0) + r
		for y := y0; y < y0+s; y++ {
			for x := x0; x < x0+s; x++ {
				dx := float64(x) + 0.5 - cx
				dy := float64(y) + 0.5 - cy
				if dx*dx+dy*dy <= r*r {
					img.SetRGBA(x, y, c)
				}
			}
		}
	case ShapeRounded:
		// Square with quarter-circle corners.
		r := float64(s) / 4
		for y := y0; y < y0+s; y++ {
			for x := x0; x < x0+s; x++ {
				fx := float64(x-x0) + 0.5
				fy := float64(y-y0) + 0.5
				if roundedInside(fx, fy, float64(s), r) {
					img.SetRGBA(x, y, c)
				}
			}
		}
	default:
		for y := y0; y < y0+s; y++ {
			for x := x0; x < x0+s; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

// roundedInside reports whether the point (x, y) within an s-sized cell
// falls inside a rounded rectangle with corner radius r.
func roundedInside(x, y, s, r float64) bool {
	if x >= r && x <= s-r {
		return y >= 0 && y <= s
	}
	if y >= r && y <= s-r {
		return x >= 0 && x <= s
	}
	// Corner regions: inside the quarter circle around the nearest
	// corner-arc center.
	cx := r
	if x > s-r {
		cx = s - r
	}
	cy := r
	if y > s-r {
		cy = s - r
	}
	dx := x - cx
	dy := y - cy
	return dx*dx+dy*dy <= r*r
}
