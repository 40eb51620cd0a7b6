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

const elevenLabsSTTEndpoint = "https://api.elevenlabs.io/v1/speech-to-text"

// ElevenLabsClient calls the ElevenLabs Speech-to-Text API.
// Implements the Provider interface. The language is always auto-detected and
// its ISO 639 code is mapped to BCP-47.
type ElevenLabsClient struct {
	url      string
	apiKey   string
	model    string // "scribe_v1" or "scribe_v2"
	keyterms string // comma-separated boost terms
	client   Doer
}

// ElevenLabsOptions configures an ElevenLabsClient.
type ElevenLabsOptions struct {
	URL        string // empty uses the public endpoint
	APIKey     string
	Model      string
	Keyterms   string
	Timeout    time.Duration
	HTTPClient Doer
}

// elevenlabsResponse is the JSON response from the ElevenLabs STT API.
type elevenlabsResponse struct {
	LanguageCode        string  `json:"language_code"`
	LanguageProbability float64 `json:"language_probability"`
	Text                string  `json:"text"`
}

// NewElevenLabsClient creates a new ElevenLabs STT client.
func NewElevenLabsClient(opts ElevenLabsOptions) *ElevenLabsClient {
	url := opts.URL
	if url == "" {
		url = elevenLabsSTTEndpoint
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &ElevenLabsClient{
		url:      url,
		apiKey:   opts.APIKey,
		model:    opts.Model,
		keyterms: opts.Keyterms,
		client:   client,
	}
}

// Name returns the provider name.
func (el *ElevenLabsClient) Name() string { return "elevenlabs" }

// Model returns the configured model identifier.
func (el *ElevenLabsClient) Model() string { return el.model }

// Transcribe sends the audio to the ElevenLabs STT API. targetLanguage is
// ignored; ElevenLabs only transcribes.
func (el *ElevenLabsClient) Transcribe(ctx context.Context, audio Audio, targetLanguage string) (resp *Response, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("elevenlabs", start, err) }()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeAudioPart(w, audio); err != nil {
		return nil, err
	}

	w.WriteField("model_id", el.model)

	// Keyterms: ElevenLabs accepts a JSON array of objects with {"text": "term"}.
	if keyterms := el.buildKeyterms(); keyterms != "" {
		w.WriteField("keyterms", keyterms)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, el.url, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("xi-api-key", el.apiKey)

	httpResp, err := el.client.Do(req)
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

	var result elevenlabsResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, apperr.Provider(0, "Invalid response from speech service")
	}

	return &Response{Transcript: result.Text, SourceLanguage: normalizeLanguage(result.LanguageCode)}, nil
}

// buildKeyterms turns the comma-separated config string into a JSON array
// of {"text": "term"} objects for the ElevenLabs API.
func (el *ElevenLabsClient) buildKeyterms() string {
	var terms []string
	for _, t := range strings.Split(el.keyterms, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			terms = append(terms, t)
		}
	}
	if len(terms) == 0 {
		return ""
	}

	type keyterm struct {
		Text string `json:"text"`
	}
	arr := make([]keyterm, len(terms))
	for i, t := range terms {
		arr[i] = keyterm{Text: t}
	}
	b, _ := json.Marshal(arr)
	return string(b)
}
