// Package formatters encodes QR images into on-disk image formats.
package formatters

import (
	"image"
	"io"
)

// Formatter encodes an image into a specific output format.
type Formatter interface {
	// Format writes img to w in the output format.
	Format(w io.Writer, img image.Image) error

	// Name returns the formatter name.
	Name() string

	// ContentType returns the MIME content type.
	ContentType() string

	// FileExtension returns the typical file extension.
	FileExtension() string
}
