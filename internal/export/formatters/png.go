package formatters

import (
	"image"
	"image/png"
	"io"
)

// PNGFormatter writes compressed PNG images.
type PNGFormatter struct {
	encoder png.Encoder
}

// NewPNGFormatter creates a new PNG formatter.
func NewPNGFormatter() *PNGFormatter {
	return &PNGFormatter{encoder: png.Encoder{CompressionLevel: png.BestCompression}}
}

// Format writes img as a PNG.
func (f *PNGFormatter) Format(w io.Writer, img image.Image) error {
	return f.encoder.Encode(w, img)
}

// Name returns the formatter name.
func (f *PNGFormatter) Name() string {
	return "png"
}

// ContentType returns the MIME content type.
func (f *PNGFormatter) ContentType() string {
	return "image/png"
}

// FileExtension returns the file extension.
func (f *PNGFormatter) FileExtension() string {
	return ".png"
}
