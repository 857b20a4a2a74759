// Package filemeta provides display helpers for file metadata shown in the
// drop zone UI.
package filemeta

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Category classifies a file for icon display.
type Category string

const (
	CategoryImage    Category = "image"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryDocument Category = "document"
	CategoryGeneric  Category = "generic"
)

// Icon maps a MIME type to its display category. Unrecognized input always
// falls through to generic.
func Icon(mimeType string) Category {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return CategoryImage
	case strings.HasPrefix(mimeType, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return CategoryAudio
	case strings.Contains(mimeType, "pdf"), strings.Contains(mimeType, "document"):
		return CategoryDocument
	default:
		return CategoryGeneric
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatSize renders a byte count as a human-readable magnitude string with
// up to two decimal places. Zero (and negative) counts format as "0 Bytes"
// without touching the log below. Units beyond GB are not supported; larger
// sizes render in GB.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	idx := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if idx >= len(sizeUnits) {
		idx = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(idx))
	label := strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64)
	return fmt.Sprintf("%s %s", label, sizeUnits[idx])
}
