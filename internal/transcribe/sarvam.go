package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/snarg/speech-relay/internal/apperr"
	"github.com/snarg/speech-relay/internal/metrics"
)

const (
	sttTranslatePath = "/speech-to-text-translate"
	sttPath          = "/speech-to-text"

	translateModel  = "saaras:v1"
	transcribeModel = "saarika:v2"

	// Values reported when the provider omits a field.
	missingTranscript = "No transcription found"
	missingLanguage   = "unknown"
)

// SarvamClient calls the Sarvam speech API.
// Implements the Provider interface.
type SarvamClient struct {
	baseURL   string
	apiKey    string
	translate bool // speech-to-text-translate instead of plain speech-to-text
	client    Doer
}

// SarvamOptions configures a SarvamClient.
type SarvamOptions struct {
	BaseURL string
	APIKey  string
	// Translate selects the combined speech-to-text-translate endpoint.
	// Otherwise plain speech-to-text with language auto-detection is used.
	Translate bool
	Timeout   time.Duration
	// HTTPClient overrides the default *http.Client built from Timeout.
	HTTPClient Doer
}

// sarvamResponse is the JSON response from both speech endpoints.
// Pointers distinguish a missing field from an empty one.
type sarvamResponse struct {
	Transcript   *string `json:"transcript"`
	LanguageCode *string `json:"language_code"`
}

// NewSarvamClient creates a new Sarvam speech client.
func NewSarvamClient(opts SarvamOptions) *SarvamClient {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &SarvamClient{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		apiKey:    opts.APIKey,
		translate: opts.Translate,
		client:    client,
	}
}

// Name returns the provider name.
func (sc *SarvamClient) Name() string { return "sarvam" }

// Model returns the model identifier used for the configured endpoint.
func (sc *SarvamClient) Model() string {
	if sc.translate {
		return translateModel
	}
	return transcribeModel
}

// Transcribe uploads the audio as multipart/form-data and returns the
// transcript with the detected source language.
func (sc *SarvamClient) Transcribe(ctx context.Context, audio Audio, targetLanguage string) (resp *Response, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("sarvam_speech", start, err) }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeAudioPart(w, audio); err != nil {
		return nil, err
	}

	url := sc.baseURL + sttPath
	w.WriteField("model", sc.Model())
	if sc.translate {
		url = sc.baseURL + sttTranslatePath
		w.WriteField("prompt", "")
		w.WriteField("target_language_code", targetLanguage)
	} else {
		w.WriteField("language_code", "unknown")
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("api-subscription-key", sc.apiKey)

	httpResp, err := sc.client.Do(req)
	if err != nil {
		return nil, apperr.Network("speech", err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperr.Network("speech", fmt.Errorf("read response: %w", err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, apperr.Provider(httpResp.StatusCode, "API error: "+string(body))
	}

	var result sarvamResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.Provider(0, "Invalid response from speech service")
	}

	out := &Response{Transcript: missingTranscript, SourceLanguage: missingLanguage}
	if result.Transcript != nil {
		out.Transcript = *result.Transcript
	}
	if result.LanguageCode != nil && *result.LanguageCode != "" {
		out.SourceLanguage = *result.LanguageCode
	}
	return out, nil
}
