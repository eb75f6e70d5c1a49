// Package source holds what the file sources share.
package source

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

// SniffLen is how many leading bytes ContentType looks at.
const SniffLen = 512

var imageTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

// ContentType guesses the MIME type of a selected file the way a browser
// fills File.type: image formats by name first, then the extension table,
// then the content itself.
func ContentType(name string, head []byte) string {
	if format, err := imaging.FormatFromFilename(name); err == nil {
		if ct, ok := imageTypes[format]; ok {
			return ct
		}
	}
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	return domain.DefaultContentType
}
