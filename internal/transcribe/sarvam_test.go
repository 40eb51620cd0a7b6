package transcribe

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/snarg/speech-relay/internal/apperr"
)

var testAudio = Audio{Filename: "sample.mp3", Data: []byte("ID3-fake-mp3"), MimeType: "audio/mpeg"}

// captured holds what the fake speech server saw.
type captured struct {
	path        string
	apiKey      string
	fields      map[string]string
	fileName    string
	fileType    string
	fileContent string
}

func newSpeechServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{fields: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.apiKey = r.Header.Get("api-subscription-key")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		for k, v := range r.MultipartForm.Value {
			got.fields[k] = v[0]
		}
		if f, hdr, err := r.FormFile("file"); err == nil {
			data, _ := io.ReadAll(f)
			f.Close()
			got.fileName = hdr.Filename
			got.fileType = hdr.Header.Get("Content-Type")
			got.fileContent = string(data)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestSarvamClient_TranslateMode(t *testing.T) {
	srv, got := newSpeechServer(t, http.StatusOK, `{"transcript":"Hello world","language_code":"en-IN"}`)
	sc := NewSarvamClient(SarvamOptions{BaseURL: srv.URL + "/", APIKey: "sk-test", Translate: true})

	resp, err := sc.Transcribe(context.Background(), testAudio, "hi-IN")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Transcript != "Hello world" || resp.SourceLanguage != "en-IN" {
		t.Errorf("resp = %+v", resp)
	}
	if got.path != "/speech-to-text-translate" {
		t.Errorf("path = %q", got.path)
	}
	if got.apiKey != "sk-test" {
		t.Errorf("api key header = %q", got.apiKey)
	}
	if got.fields["model"] != "saaras:v1" {
		t.Errorf("model = %q", got.fields["model"])
	}
	if got.fields["target_language_code"] != "hi-IN" {
		t.Errorf("target_language_code = %q", got.fields["target_language_code"])
	}
	if got.fileName != "sample.mp3" || got.fileType != "audio/mpeg" || got.fileContent != "ID3-fake-mp3" {
		t.Errorf("file = %q %q %q", got.fileName, got.fileType, got.fileContent)
	}
}

func TestSarvamClient_TranscribeMode(t *testing.T) {
	srv, got := newSpeechServer(t, http.StatusOK, `{"transcript":"नमस्ते","language_code":"hi-IN"}`)
	sc := NewSarvamClient(SarvamOptions{BaseURL: srv.URL, APIKey: "sk-test"})

	resp, err := sc.Transcribe(context.Background(), testAudio, "en-IN")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.SourceLanguage != "hi-IN" {
		t.Errorf("SourceLanguage = %q", resp.SourceLanguage)
	}
	if got.path != "/speech-to-text" {
		t.Errorf("path = %q", got.path)
	}
	if got.fields["model"] != "saarika:v2" {
		t.Errorf("model = %q", got.fields["model"])
	}
	if got.fields["language_code"] != "unknown" {
		t.Errorf("language_code = %q", got.fields["language_code"])
	}
	if _, ok := got.fields["target_language_code"]; ok {
		t.Error("target_language_code should not be sent in transcribe mode")
	}
	if sc.Model() != "saarika:v2" {
		t.Errorf("Model = %q", sc.Model())
	}
}

func TestSarvamClient_MissingFieldsUseDefaults(t *testing.T) {
	srv, _ := newSpeechServer(t, http.StatusOK, `{}`)
	sc := NewSarvamClient(SarvamOptions{BaseURL: srv.URL, Translate: true})

	resp, err := sc.Transcribe(context.Background(), testAudio, "hi-IN")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if resp.Transcript != "No transcription found" {
		t.Errorf("Transcript = %q", resp.Transcript)
	}
	if resp.SourceLanguage != "unknown" {
		t.Errorf("SourceLanguage = %q", resp.SourceLanguage)
	}
}

func TestSarvamClient_Errors(t *testing.T) {
	t.Run("non_2xx_passes_status", func(t *testing.T) {
		srv, _ := newSpeechServer(t, http.StatusForbidden, `{"error":"invalid key"}`)
		sc := NewSarvamClient(SarvamOptions{BaseURL: srv.URL, Translate: true})

		_, err := sc.Transcribe(context.Background(), testAudio, "hi-IN")
		if apperr.KindOf(err) != apperr.ProviderError {
			t.Fatalf("kind = %v, want ProviderError (err=%v)", apperr.KindOf(err), err)
		}
		if apperr.HTTPStatus(err) != http.StatusForbidden {
			t.Errorf("status = %d, want 403", apperr.HTTPStatus(err))
		}
	})

	t.Run("invalid_json", func(t *testing.T) {
		srv, _ := newSpeechServer(t, http.StatusOK, `not json`)
		sc := NewSarvamClient(SarvamOptions{BaseURL: srv.URL, Translate: true})

		_, err := sc.Transcribe(context.Background(), testAudio, "hi-IN")
		if apperr.KindOf(err) != apperr.ProviderError {
			t.Fatalf("kind = %v, want ProviderError", apperr.KindOf(err))
		}
		if apperr.HTTPStatus(err) != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", apperr.HTTPStatus(err))
		}
	})

	t.Run("connection_refused", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()
		sc := NewSarvamClient(SarvamOptions{BaseURL: url, Translate: true})

		_, err := sc.Transcribe(context.Background(), testAudio, "hi-IN")
		if apperr.KindOf(err) != apperr.NetworkError {
			t.Fatalf("kind = %v, want NetworkError (err=%v)", apperr.KindOf(err), err)
		}
	})
}
