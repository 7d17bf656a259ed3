package qr_test

import (
	"bytes"
	"image"
	"image/png"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrgen/core/qr"
)

func mustEncode(t *testing.T, data string) qr.Matrix {
	t.Helper()
	m, err := qr.Encode(data, qr.LevelM)
	require.NoError(t, err)
	return m
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestRenderPNG(t *testing.T) {
	t.Parallel()

	matrix := mustEncode(t, "https://example.com")

	t.Run("dimensions include quiet zone", func(t *testing.T) {
		t.Parallel()

		const scale, border = 4, 2
		data, err := qr.Render(matrix, qr.RenderOptions{
			Format: qr.FormatPNG,
			Scale:  scale,
			Border: border,
		})
		require.NoError(t, err)

		img := decodePNG(t, data)
		side := (matrix.Size() + 2*border) * scale
		assert.Equal(t, side, img.Bounds().Dx())
		assert.Equal(t, side, img.Bounds().Dy())
	})

	t.Run("module grid matches the matrix", func(t *testing.T) {
		t.Parallel()

		const scale, border = 5, 3
		data, err := qr.Render(matrix, qr.RenderOptions{
			Format: qr.FormatPNG,
			Scale:  scale,
			Border: border,
		})
		require.NoError(t, err)

		img := decodePNG(t, data)
		for y, row := range matrix {
			for x, dark := range row {
				// Sample the center pixel of every module.
				px := (x+border)*scale + scale/2
				py := (y+border)*scale + scale/2
				r, g, b, _ := img.At(px, py).RGBA()
				black := r == 0 && g == 0 && b == 0
				require.Equal(t, dark, black, "module (%d,%d)", x, y)
			}
		}
	})

	t.Run("quiet zone uses the background color", func(t *testing.T) {
		t.Parallel()

		data, err := qr.Render(matrix, qr.RenderOptions{
			Format:    qr.FormatPNG,
			Scale:     4,
			Border:    4,
			FillColor: "navy",
			BackColor: "#ffff00",
		})
		require.NoError(t, err)

		img := decodePNG(t, data)
		r, g, b, _ := img.At(0, 0).RGBA()
		assert.Equal(t, uint32(0xffff), r)
		assert.Equal(t, uint32(0xffff), g)
		assert.Equal(t, uint32(0), b)
	})

	t.Run("circle modules leave cell corners untouched", func(t *testing.T) {
		t.Parallel()

		const scale = 8
		data, err := qr.Render(matrix, qr.RenderOptions{
			Format: qr.FormatPNG,
			Scale:  scale,
			Border: 0,
			Shape:  qr.ShapeCircle,
		})
		require.NoError(t, err)

		img := decodePNG(t, data)
		// The top-left finder pattern guarantees a dark module at (0,0);
		// its cell corner lies outside the inscribed circle.
		require.True(t, matrix[0][0])
		r, g, b, _ := img.At(0, 0).RGBA()
		assert.True(t, r > 0 && g > 0 && b > 0, "corner pixel should be background")

		// Center of the same module stays dark.
		r, g, b, _ = img.At(scale/2, scale/2).RGBA()
		assert.True(t, r == 0 && g == 0 && b == 0)
	})

	t.Run("invalid options rejected", func(t *testing.T) {
		t.Parallel()

		_, err := qr.Render(matrix, qr.RenderOptions{Format: qr.FormatPNG, Scale: 0})
		assert.ErrorIs(t, err, qr.ErrInvalidScale)

		_, err = qr.Render(matrix, qr.RenderOptions{Format: qr.FormatPNG, Scale: 4, Border: -1})
		assert.ErrorIs(t, err, qr.ErrInvalidBorder)

		_, err = qr.Render(matrix, qr.RenderOptions{Format: qr.FormatPNG, Scale: 4, FillColor: "not-a-color"})
		assert.ErrorIs(t, err, qr.ErrInvalidColor)

		_, err = qr.Render(matrix, qr.RenderOptions{Format: "BMP", Scale: 4})
		assert.ErrorIs(t, err, qr.ErrUnsupportedFormat)

		_, err = qr.Render(nil, qr.RenderOptions{Format: qr.FormatPNG, Scale: 4})
		assert.ErrorIs(t, err, qr.ErrEmptyMatrix)
	})
}

func TestRenderSVG(t *testing.T) {
	t.Parallel()

	matrix := mustEncode(t, "svg test")

	t.Run("square modules emit a single path", func(t *testing.T) {
		t.Parallel()

		data, err := qr.Render(matrix, qr.RenderOptions{
			Format:    qr.FormatSVG,
			Scale:     10,
			Border:    4,
			FillColor: "black",
			BackColor: "white",
		})
		require.NoError(t, err)

		svg := string(data)
		assert.Contains(t, svg, `<svg xmlns="http://www.w3.org/2000/svg"`)
		assert.Contains(t, svg, `fill="#ffffff"`)
		assert.Equal(t, 1, strings.Count(svg, "<path"))
		assert.NotContains(t, svg, "<circle")
	})

	t.Run("dimensions include quiet zone", func(t *testing.T) {
		t.Parallel()

		data, err := qr.Render(matrix, qr.RenderOptions{
			Format: qr.FormatSVG,
			Scale:  2,
			Border: 1,
		})
		require.NoError(t, err)

		side := strconv.Itoa((matrix.Size() + 2) * 2)
		assert.Contains(t, string(data), `viewBox="0 0 `+side+` `+side+`"`)
	})

	t.Run("circle shape emits one circle per dark module", func(t *testing.T) {
		t.Parallel()

		data, err := qr.Render(matrix, qr.RenderOptions{
			Format: qr.FormatSVG,
			Scale:  4,
			Shape:  qr.ShapeCircle,
		})
		require.NoError(t, err)

		dark := 0
		for _, row := range matrix {
			for _, d := range row {
				if d {
					dark++
				}
			}
		}
		assert.Equal(t, dark, strings.Count(string(data), "<circle"))
	})

	t.Run("rounded shape emits rects with corner radius", func(t *testing.T) {
		t.Parallel()

		data, err := qr.Render(matrix, qr.RenderOptions{
			Format: qr.FormatSVG,
			Scale:  4,
			Shape:  qr.ShapeRounded,
		})
		require.NoError(t, err)
		assert.Contains(t, string(data), `rx="1"`)
	})
}

func TestRenderPDF(t *testing.T) {
	t.Parallel()

	matrix := mustEncode(t, "pdf test")

	data, err := qr.Render(matrix, qr.RenderOptions{
		Format: qr.FormatPDF,
		Scale:  8,
		Border: 4,
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "missing PDF header")
	assert.Contains(t, string(data), "%%EOF")
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	c, err := qr.ParseColor("black")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), c.R)

	c, err = qr.ParseColor("#FF8000")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xff), c.R)
	assert.Equal(t, uint8(0x80), c.G)
	assert.Equal(t, uint8(0x00), c.B)

	c, err = qr.ParseColor("#abc")
	require.NoError(t, err)
	assert.Equal(t, uint8(0xaa), c.R)
	assert.Equal(t, uint8(0xbb), c.G)
	assert.Equal(t, uint8(0xcc), c.B)

	for _, bad := range []string{"", "blurple", "#12", "#12345", "#zzzzzz"} {
		_, err := qr.ParseColor(bad)
		assert.ErrorIs(t, err, qr.ErrInvalidColor, bad)
	}
}
