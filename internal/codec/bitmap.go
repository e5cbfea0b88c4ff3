package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
)

// EncodeBitmap turns an in-memory image into {"data": base64 PNG}. PNG is
// lossless, so the host receives exactly the SDK's pixels. There is no
// decode path: bitmaps are display-only on the host.
func EncodeBitmap(img image.Image) (Object, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding bitmap: %w", err)
	}
	return Object{"data": base64.StdEncoding.EncodeToString(buf.Bytes())}, nil
}
