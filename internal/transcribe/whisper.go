package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/snarg/speech-relay/internal/apperr"
	"github.com/snarg/speech-relay/internal/metrics"
)

// WhisperClient calls an OpenAI-compatible /v1/audio/transcriptions endpoint.
// Implements the Provider interface. Whisper reports languages by name
// ("english"); they are mapped to BCP-47 codes, "unknown" when unmapped.
type WhisperClient struct {
	url    string
	model  string
	apiKey string
	client Doer
}

// WhisperOptions configures a WhisperClient.
type WhisperOptions struct {
	URL        string
	Model      string
	APIKey     string // sent as a bearer token when set
	Timeout    time.Duration
	HTTPClient Doer
}

// whisperResponse is the parsed response from the Whisper API (verbose_json format).
type whisperResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// NewWhisperClient creates a new Whisper HTTP client.
func NewWhisperClient(opts WhisperOptions) *WhisperClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &WhisperClient{
		url:    opts.URL,
		model:  opts.Model,
		apiKey: opts.APIKey,
		client: client,
	}
}

// Name returns the provider name.
func (wc *WhisperClient) Name() string { return "whisper" }

// Model returns the configured model identifier.
func (wc *WhisperClient) Model() string { return wc.model }

// Transcribe sends the audio to the Whisper API with language detection left
// to the server. targetLanguage is ignored.
func (wc *WhisperClient) Transcribe(ctx context.Context, audio Audio, targetLanguage string) (resp *Response, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("whisper", start, err) }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeAudioPart(w, audio); err != nil {
		return nil, err
	}

	if wc.model != "" {
		w.WriteField("model", wc.model)
	}
	// verbose_json carries the detected language
	w.WriteField("response_format", "verbose_json")

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, wc.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if wc.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+wc.apiKey)
	}

	httpResp, err := wc.client.Do(req)
	if err != nil {
		return nil, apperr.Network("speech", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperr.Network("speech", fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, apperr.Provider(httpResp.StatusCode, "whisper API error: "+string(body))
	}

	var result whisperResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.Provider(0, "Invalid response from speech service")
	}

	return &Response{Transcript: result.Text, SourceLanguage: normalizeLanguage(result.Language)}, nil
}
