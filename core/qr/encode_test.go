package qr_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrgen/core/qr"
)

func TestEncode(t *testing.T) {
	t.Parallel()

	t.Run("produces square matrix", func(t *testing.T) {
		t.Parallel()

		m, err := qr.Encode("https://example.com", qr.LevelM)
		require.NoError(t, err)
		require.NotZero(t, m.Size())

		for _, row := range m {
			assert.Len(t, row, m.Size())
		}
	})

	t.Run("version 1 symbol for short content", func(t *testing.T) {
		t.Parallel()

		m, err := qr.Encode("a", qr.LevelL)
		require.NoError(t, err)
		assert.Equal(t, 21, m.Size())
	})

	t.Run("auto-selects larger versions for longer content", func(t *testing.T) {
		t.Parallel()

		short, err := qr.Encode("hi", qr.LevelM)
		require.NoError(t, err)

		long, err := qr.Encode(strings.Repeat("payload-", 40), qr.LevelM)
		require.NoError(t, err)

		assert.Greater(t, long.Size(), short.Size())
	})

	t.Run("rejects empty content", func(t *testing.T) {
		t.Parallel()

		_, err := qr.Encode("", qr.LevelM)
		assert.ErrorIs(t, err, qr.ErrEmptyContent)
	})

	t.Run("rejects content over capacity", func(t *testing.T) {
		t.Parallel()

		// Version 40 at level H holds at most 1273 bytes.
		_, err := qr.Encode(strings.Repeat("x", 5000), qr.LevelH)
		assert.ErrorIs(t, err, qr.ErrContentTooLarge)
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		t.Parallel()

		_, err := qr.Encode("data", qr.Level("X"))
		assert.ErrorIs(t, err, qr.ErrInvalidLevel)
	})

	t.Run("higher level grows the symbol", func(t *testing.T) {
		t.Parallel()

		content := strings.Repeat("redundancy", 10)

		low, err := qr.Encode(content, qr.LevelL)
		require.NoError(t, err)

		high, err := qr.Encode(content, qr.LevelH)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, high.Size(), low.Size())
	})
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"L", "m", "Q", "h"} {
		lvl, err := qr.ParseLevel(s)
		require.NoError(t, err)
		assert.True(t, lvl.Valid())
	}

	_, err := qr.ParseLevel("Z")
	assert.ErrorIs(t, err, qr.ErrInvalidLevel)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := qr.ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, qr.FormatPNG, f)
	assert.Equal(t, "image/png", f.ContentType())
	assert.Equal(t, "png", f.Ext())

	f, err = qr.ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	f, err = qr.ParseFormat("Pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = qr.ParseFormat("GIF")
	assert.ErrorIs(t, err, qr.ErrUnsupportedFormat)
}

func TestParseShape(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]qr.Shape{
		"":         qr.ShapeSquare,
		"none":     qr.ShapeSquare,
		"square":   qr.ShapeSquare,
		"Rounded":  qr.ShapeRounded,
		"circle":   qr.ShapeCircle,
		"circular": qr.ShapeCircle,
	} {
		got, err := qr.ParseShape(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := qr.ParseShape("star")
	assert.ErrorIs(t, err, qr.ErrUnsupportedShape)
}
