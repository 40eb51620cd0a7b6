package transcribe

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// Provider is the interface for speech-to-text backends.
type Provider interface {
	// Transcribe sends the audio upstream. targetLanguage is only used by
	// providers that translate in the same call.
	Transcribe(ctx context.Context, audio Audio, targetLanguage string) (*Response, error)
	Name() string  // "sarvam", "elevenlabs", "whisper"
	Model() string // model identifier for logs and health
}

// Audio is an uploaded file held in memory for the duration of one request.
type Audio struct {
	Filename string
	Data     []byte
	MimeType string
}

// Response is the common transcription result from any provider.
type Response struct {
	Transcript     string
	SourceLanguage string
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// writeAudioPart adds the "file" part with the classified MIME type rather
// than CreateFormFile's application/octet-stream.
func writeAudioPart(w *multipart.Writer, audio Audio) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(audio.Filename)))
	h.Set("Content-Type", audio.MimeType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return fmt.Errorf("copy audio data: %w", err)
	}
	return nil
}
