// Package render encodes otpauth URIs as QR code images.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	// DefaultSize is the target image edge length in pixels.
	DefaultSize = 256

	// MinModulePixels is the smallest module edge the renderer will draw so
	// the symbol stays scannable.
	MinModulePixels = 2
)

var (
	// ErrRenderOverflow is returned when a URI exceeds QR symbol capacity.
	ErrRenderOverflow = errors.New("payload exceeds QR capacity")

	// ErrVerifyFailed is returned when a rendered image does not decode back
	// to its URI.
	ErrVerifyFailed = errors.New("rendered image failed verification")

	ErrInvalidRecoveryLevel = errors.New("invalid recovery level")
)

// ExportItem is one recovered account ready to be written out.
type ExportItem struct {
	Label string
	URI   string
	Image image.Image
}

type options struct {
	size   int
	level  qrcode.RecoveryLevel
	border bool
	verify bool
}

// Option configures a Renderer.
type Option func(*options)

// WithSize sets the target image size in pixels. The drawn image is the
// largest whole-pixel module scale that fits, and grows past size only when
// needed for MinModulePixels.
func WithSize(px int) Option {
	return func(o *options) {
		o.size = px
	}
}

// WithRecoveryLevel sets the QR error correction level.
func WithRecoveryLevel(level qrcode.RecoveryLevel) Option {
	return func(o *options) {
		o.level = level
	}
}

// WithBorder enables or disables the quiet zone around the symbol.
func WithBorder(enabled bool) Option {
	return func(o *options) {
		o.border = enabled
	}
}

// WithVerify enables decoding each image after rendering.
func WithVerify(enabled bool) Option {
	return func(o *options) {
		o.verify = enabled
	}
}

// Renderer turns URIs into ExportItems.
type Renderer struct {
	opts options
}

// New creates a Renderer. Defaults: 256 px, medium recovery, border on,
// verification on.
func New(opts ...Option) *Renderer {
	o := options{
		size:   DefaultSize,
		level:  qrcode.Medium,
		border: true,
		verify: true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{opts: o}
}

// Render encodes uri and pairs the image with label.
func (r *Renderer) Render(uri, label string) (ExportItem, error) {
	q, err := qrcode.New(uri, r.opts.level)
	if err != nil {
		return ExportItem{}, fmt.Errorf("%w: %d bytes; %w", ErrRenderOverflow, len(uri), err)
	}
	q.DisableBorder = !r.opts.border
	q.ForegroundColor = color.Black
	q.BackgroundColor = color.White

	modules := len(q.Bitmap())
	scale := max(r.opts.size/modules, MinModulePixels)
	img := q.Image(-scale)

	if r.opts.verify {
		got, err := Decode(img)
		if err != nil {
			return ExportItem{}, fmt.Errorf("%w; %w", ErrVerifyFailed, err)
		}
		if got != uri {
			return ExportItem{}, fmt.Errorf("%w: decoded %d bytes, want %d", ErrVerifyFailed, len(got), len(uri))
		}
	}

	return ExportItem{Label: label, URI: uri, Image: img}, nil
}

// ParseRecoveryLevel maps a level name (low, medium, high, highest) to the
// encoder's constant.
func ParseRecoveryLevel(s string) (qrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "l":
		return qrcode.Low, nil
	case "", "medium", "m":
		return qrcode.Medium, nil
	case "high", "q":
		return qrcode.High, nil
	case "highest", "h":
		return qrcode.Highest, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRecoveryLevel, s)
	}
}
