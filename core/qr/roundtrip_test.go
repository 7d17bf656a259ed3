package qr_test

import (
	"bytes"
	"fmt"
	"image/png"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/qrgen/core/qr"
)

// decodeQR runs an independent QR reader over a rendered PNG and returns
// the recovered payload.
func decodeQR(t *testing.T, data []byte) string {
	t.Helper()

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)

	result, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return result.GetText()
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	payloads := []string{
		"https://example.com/path?q=1",
		"WIFI:T:WPA;S:guest;P:s3cret;H:false;;",
		"short",
	}

	for _, level := range []qr.Level{qr.LevelL, qr.LevelM, qr.LevelQ, qr.LevelH} {
		for _, payload := range payloads {
			t.Run(fmt.Sprintf("%s/%s", level, payload), func(t *testing.T) {
				t.Parallel()

				matrix, err := qr.Encode(payload, level)
				require.NoError(t, err)

				data, err := qr.Render(matrix, qr.RenderOptions{
					Format: qr.FormatPNG,
					Scale:  8,
					Border: 4,
				})
				require.NoError(t, err)

				assert.Equal(t, payload, decodeQR(t, data))
			})
		}
	}
}

func TestRoundTripShapes(t *testing.T) {
	t.Parallel()

	const payload = "shaped modules stay readable"
	matrix, err := qr.Encode(payload, qr.LevelM)
	require.NoError(t, err)

	for _, shape := range []qr.Shape{qr.ShapeSquare, qr.ShapeRounded, qr.ShapeCircle} {
		t.Run(string(shape), func(t *testing.T) {
			t.Parallel()

			data, err := qr.Render(matrix, qr.RenderOptions{
				Format: qr.FormatPNG,
				Scale:  10,
				Border: 4,
				Shape:  shape,
			})
			require.NoError(t, err)

			assert.Equal(t, payload, decodeQR(t, data))
		})
	}
}
