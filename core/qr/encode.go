package qr

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// Encode builds the module matrix for data at the given error correction
// level. The symbol version is auto-selected: the smallest version (1-40)
// whose capacity at the level fits the payload. The returned matrix has no
// quiet zone; the border is applied at render time.
func Encode(data string, level Level) (Matrix, error) {
	if data == "" {
		return nil, ErrEmptyContent
	}

	recovery, err := recoveryLevel(level)
	if err != nil {
		return nil, err
	}

	code, err := qrcode.New(data, recovery)
	if err != nil {
		// The only encode failure mode for non-empty input is exceeding
		// the version-40 capacity at the requested level.
		return nil, fmt.Errorf("%w: %v", ErrContentTooLarge, err)
	}
	code.DisableBorder = true

	return Matrix(code.Bitmap()), nil
}

func recoveryLevel(level Level) (qrcode.RecoveryLevel, error) {
	switch level {
	case LevelL:
		return qrcode.Low, nil
	case LevelM:
		return qrcode.Medium, nil
	case LevelQ:
		return qrcode.High, nil
	case LevelH:
		return qrcode.Highest, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, level)
}
