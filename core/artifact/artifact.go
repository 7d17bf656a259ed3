// Package artifact defines generated QR artifacts and the process-wide
// in-memory cache that holds them.
package artifact

import (
	"time"

	"github.com/dmitrymomot/qrgen/core/qr"
)

// Artifact is one successfully generated QR code. All fields are set at
// creation and never mutated afterwards; the cache hands out the same
// record to concurrent readers.
type Artifact struct {
	// ID is an opaque 128-bit random identifier. It is the cache key and
	// the stem of the storage object name.
	ID string

	// Data is the original encoded payload.
	Data string

	Format qr.Format
	Level  qr.Level

	// Size is the rendering scale in pixels per module, Border the quiet
	// zone width in modules.
	Size   int
	Border int

	// Bytes is the rendered output.
	Bytes []byte

	CreatedAt time.Time
}

// SizeBytes returns the rendered output size.
func (a *Artifact) SizeBytes() int {
	return len(a.Bytes)
}

// ContentType returns the MIME type of the rendered output.
func (a *Artifact) ContentType() string {
	return a.Format.ContentType()
}
