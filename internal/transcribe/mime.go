package transcribe

import (
	"path/filepath"
	"strings"

	"github.com/snarg/speech-relay/internal/apperr"
)

// mimeTypes maps accepted upload extensions to the MIME type sent upstream.
var mimeTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
}

// ClassifyMimeType derives the MIME type from the filename suffix.
// Unknown suffixes fail with an UnsupportedFileType error.
func ClassifyMimeType(filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if mt, ok := mimeTypes[ext]; ok {
		return mt, nil
	}
	return "", apperr.UnsupportedFile(filename)
}
