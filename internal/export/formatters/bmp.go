package formatters

import (
	"image"
	"io"

	"golang.org/x/image/bmp"
)

// BMPFormatter writes Windows bitmaps, the format authenticator recovery
// tools have traditionally produced.
type BMPFormatter struct{}

// NewBMPFormatter creates a new BMP formatter.
func NewBMPFormatter() *BMPFormatter {
	return &BMPFormatter{}
}

// Format writes img as a BMP.
func (f *BMPFormatter) Format(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}

// Name returns the formatter name.
func (f *BMPFormatter) Name() string {
	return "bmp"
}

// ContentType returns the MIME content type.
func (f *BMPFormatter) ContentType() string {
	return "image/bmp"
}

// FileExtension returns the file extension.
func (f *BMPFormatter) FileExtension() string {
	return ".bmp"
}
