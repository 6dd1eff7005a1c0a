package attachment

import (
	"bytes"
	"fmt"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ImageTransform re-encodes an image payload before storage. It returns
// the transformed bytes and the media type they were encoded as. An
// injected capability so tests can substitute a pass-through.
type ImageTransform func(data []byte, mediaType string) ([]byte, string, error)

// Noop returns the payload untouched.
func Noop(data []byte, mediaType string) ([]byte, string, error) {
	return data, mediaType, nil
}

// Reencode bounds an image to maxDim pixels on its longest side and
// re-encodes it at a fixed quality factor. WebP stays WebP; everything
// else comes out as JPEG.
func Reencode(maxDim, quality int) ImageTransform {
	return func(data []byte, mediaType string) ([]byte, string, error) {
		img, err := decode(data, mediaType)
		if err != nil {
			return nil, "", fmt.Errorf("decode %s: %w", mediaType, err)
		}
		bounds := img.Bounds()
		if bounds.Dx() > maxDim || bounds.Dy() > maxDim {
			img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
		}

		var buf bytes.Buffer
		if mediaType == "image/webp" {
			if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
				return nil, "", fmt.Errorf("encode webp: %w", err)
			}
			return buf.Bytes(), "image/webp", nil
		}
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, "", fmt.Errorf("encode jpeg: %w", err)
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func decode(data []byte, mediaType string) (image.Image, error) {
	if mediaType == "image/webp" {
		return webp.Decode(bytes.NewReader(data))
	}
	return imaging.Decode(bytes.NewReader(data))
}
