package qr

import (
	"errors"
	"strings"
)

var (
	// ErrEmptyContent is returned when there is no payload to encode.
	ErrEmptyContent = errors.New("qr: content is empty")

	// ErrContentTooLarge is returned when the payload does not fit the
	// largest symbol version at the requested error correction level.
	ErrContentTooLarge = errors.New("qr: content exceeds symbol capacity")

	// ErrInvalidLevel is returned for an unknown error correction level.
	ErrInvalidLevel = errors.New("qr: invalid error correction level")

	// ErrUnsupportedFormat is returned for an unknown output format.
	ErrUnsupportedFormat = errors.New("qr: unsupported output format")

	// ErrUnsupportedShape is returned for an unknown module shape.
	ErrUnsupportedShape = errors.New("qr: unsupported module shape")

	// ErrInvalidColor is returned when a color cannot be parsed.
	ErrInvalidColor = errors.New("qr: invalid color")

	// ErrInvalidScale is returned when the module scale is not positive.
	ErrInvalidScale = errors.New("qr: scale must be positive")

	// ErrInvalidBorder is returned when the quiet zone width is negative.
	ErrInvalidBorder = errors.New("qr: border must not be negative")

	// ErrEmptyMatrix is returned when rendering a zero-size matrix.
	ErrEmptyMatrix = errors.New("qr: empty module matrix")
)

// Level is a QR error correction level. Higher levels trade data capacity
// for resilience: L ~7%, M ~15%, Q ~25%, H ~30% recoverable damage.
type Level string

const (
	LevelL Level = "L"
	LevelM Level = "M"
	LevelQ Level = "Q"
	LevelH Level = "H"
)

// ParseLevel parses a case-insensitive error correction level.
func ParseLevel(s string) (Level, error) {
	switch Level(strings.ToUpper(s)) {
	case LevelL:
		return LevelL, nil
	case LevelM:
		return LevelM, nil
	case LevelQ:
		return LevelQ, nil
	case LevelH:
		return LevelH, nil
	}
	return "", ErrInvalidLevel
}

// Valid reports whether the level is one of L, M, Q, H.
func (l Level) Valid() bool {
	switch l {
	case LevelL, LevelM, LevelQ, LevelH:
		return true
	}
	return false
}

// Format is a rendering output format.
type Format string

const (
	FormatPNG Format = "PNG"
	FormatSVG Format = "SVG"
	FormatPDF Format = "PDF"
)

// ParseFormat parses a case-insensitive output format.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToUpper(s)) {
	case FormatPNG:
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	case FormatPDF:
		return FormatPDF, nil
	}
	return "", ErrUnsupportedFormat
}

// Valid reports whether the format is one of PNG, SVG, PDF.
func (f Format) Valid() bool {
	switch f {
	case FormatPNG, FormatSVG, FormatPDF:
		return true
	}
	return false
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	default:
		return "image/png"
	}
}

// Ext returns the lowercase file extension for the format, without a dot.
func (f Format) Ext() string {
	return strings.ToLower(string(f))
}

// Shape selects the glyph used to draw a dark module. It affects rendering
// only; the encoded symbol is identical for all shapes.
type Shape string

const (
	ShapeSquare  Shape = "square"
	ShapeRounded Shape = "rounded"
	ShapeCircle  Shape = "circle"
)

// ParseShape parses a case-insensitive module shape. An empty string maps
// to the default square shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(s)) {
	case "", "none", ShapeSquare:
		return ShapeSquare, nil
	case ShapeRounded:
		return ShapeRounded, nil
	case ShapeCircle, "circular":
		return ShapeCircle, nil
	}
	return "", ErrUnsupportedShape
}

// Matrix is a square grid of QR modules without a quiet zone.
// True marks a dark module.
type Matrix [][]bool

// Size returns the number of modules per side.
func (m Matrix) Size() int {
	return len(m)
}
