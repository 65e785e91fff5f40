package photo

import (
	"bytes"
	"fmt"
	"image"
	"strconv"
	"time"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureInfo is the best-effort EXIF bundle. Every field is optional;
// a photo with no embedded metadata yields the zero value.
type CaptureInfo struct {
	Timestamp   *time.Time
	Latitude    string
	Longitude   string
	CameraModel string
}

type ImageMetadata struct {
	Width   int
	Height  int
	Capture CaptureInfo
}

// ExtractMetadata reads image dimensions and the EXIF capture bundle
// from raw bytes. Unreadable dimensions fail the call; an unparseable
// or absent EXIF block degrades to an empty CaptureInfo.
func ExtractMetadata(data []byte) (ImageMetadata, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageMetadata{}, fmt.Errorf("failed to decode image: %w", err)
	}

	return ImageMetadata{
		Width:   cfg.Width,
		Height:  cfg.Height,
		Capture: extractCaptureInfo(data),
	}, nil
}

func extractCaptureInfo(data []byte) CaptureInfo {
	var info CaptureInfo

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return info
	}

	if ts, err := x.DateTime(); err == nil {
		info.Timestamp = &ts
	}
	if lat, long, err := x.LatLong(); err == nil {
		info.Latitude = strconv.FormatFloat(lat, 'f', -1, 64)
		info.Longitude = strconv.FormatFloat(long, 'f', -1, 64)
	}
	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil {
			info.CameraModel = model
		}
	}

	return info
}
