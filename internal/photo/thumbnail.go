package photo

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"regexp"

	"github.com/disintegration/imaging"
)

const thumbnailJPEGQuality = 80

type ThumbnailSize struct {
	Name   string
	Width  int
	Height int
}

// ThumbnailSizes are the renditions derived from every upload. Each is a
// centered cover crop encoded as JPEG.
var ThumbnailSizes = []ThumbnailSize{
	{Name: "thumb", Width: 200, Height: 200},
	{Name: "preview", Width: 400, Height: 400},
	{Name: "web", Width: 1200, Height: 1200},
}

var extensionRegex = regexp.MustCompile(`\.[^.]+$`)

// IsThumbnailSize reports whether name is one of the generated renditions.
func IsThumbnailSize(name string) bool {
	for _, s := range ThumbnailSizes {
		if s.Name == name {
			return true
		}
	}
	return false
}

// GenerateThumbnail produces one encoded rendition from the original bytes.
func GenerateThumbnail(data []byte, size ThumbnailSize) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	cropped := imaging.Fill(img, size.Width, size.Height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: thumbnailJPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}

// ThumbnailPath derives the storage path of a rendition from the
// original's path: the extension is replaced with _<size>.jpg.
func ThumbnailPath(filePath, sizeName string) string {
	suffix := "_" + sizeName + ".jpg"
	if extensionRegex.MatchString(filePath) {
		return extensionRegex.ReplaceAllString(filePath, suffix)
	}
	return filePath + suffix
}

// ThumbnailPaths returns the rendition paths for every named size.
func ThumbnailPaths(filePath string) []string {
	paths := make([]string, len(ThumbnailSizes))
	for i, s := range ThumbnailSizes {
		paths[i] = ThumbnailPath(filePath, s.Name)
	}
	return paths
}
