package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
)

// Decode reads the text of the QR symbol in img. A white quiet zone is added
// first so borderless images decode too.
func Decode(img image.Image) (string, error) {
	padded := withQuietZone(img)

	bmp, err := gozxing.NewBinaryBitmapFromImage(padded)
	if err != nil {
		return "", fmt.Errorf("failed to binarize image; %w", err)
	}

	reader := zxqrcode.NewQRCodeReader()

	pure := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_PURE_BARCODE: true,
	}
	if res, err := reader.Decode(bmp, pure); err == nil {
		return res.GetText(), nil
	}

	res, err := reader.Decode(bmp, nil)
	if err != nil {
		return "", fmt.Errorf("failed to decode QR symbol; %w", err)
	}
	return res.GetText(), nil
}

func withQuietZone(img image.Image) image.Image {
	b := img.Bounds()
	pad := max(b.Dx()/10, 16)

	out := image.NewGray(image.Rect(0, 0, b.Dx()+2*pad, b.Dy()+2*pad))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, image.Rect(pad, pad, pad+b.Dx(), pad+b.Dy()), img, b.Min, draw.Src)
	return out
}
