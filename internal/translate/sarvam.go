package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/snarg/speech-relay/internal/apperr"
	"github.com/snarg/speech-relay/internal/metrics"
)

const (
	translatePath = "/translate"

	// missingTranslation is used when a chunk response has no translated_text.
	missingTranslation = "No translation available"
)

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// SarvamTranslator calls the Sarvam text translation API.
type SarvamTranslator struct {
	baseURL string
	apiKey  string
	client  Doer
}

// SarvamOptions configures a SarvamTranslator.
type SarvamOptions struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient Doer // overrides the default *http.Client built from Timeout
}

type sarvamRequest struct {
	Input              string `json:"input"`
	SourceLanguageCode string `json:"source_language_code"`
	TargetLanguageCode string `json:"target_language_code"`
	Mode               string `json:"mode"`
}

type sarvamResponse struct {
	TranslatedText *string `json:"translated_text"`
}

// NewSarvamTranslator creates a new Sarvam translation client.
func NewSarvamTranslator(opts SarvamOptions) *SarvamTranslator {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	return &SarvamTranslator{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		client:  client,
	}
}

// TranslateChunks translates each chunk in order, one request at a time,
// and joins the results with single spaces. The first failing chunk aborts
// the whole translation.
func (st *SarvamTranslator) TranslateChunks(ctx context.Context, chunks []string, sourceLang, targetLang string) (string, error) {
	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := st.translateChunk(ctx, chunk, sourceLang, targetLang)
		if err != nil {
			return "", fmt.Errorf("translate chunk %d of %d: %w", i+1, len(chunks), err)
		}
		translated = append(translated, out)
	}
	return strings.Join(translated, " "), nil
}

func (st *SarvamTranslator) translateChunk(ctx context.Context, chunk, sourceLang, targetLang string) (text string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveProvider("sarvam_translate", start, err) }()
	metrics.TranslationChunksTotal.Inc()

	payload, err := json.Marshal(sarvamRequest{
		Input:              chunk,
		SourceLanguageCode: sourceCode(sourceLang),
		TargetLanguageCode: targetLang,
		Mode:               "formal",
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, st.baseURL+translatePath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-subscription-key", st.apiKey)

	resp, err := st.client.Do(req)
	if err != nil {
		return "", apperr.Network("translation", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Network("translation", fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperr.Provider(resp.StatusCode, "Translation API error: "+string(body))
	}

	var result sarvamResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", apperr.Provider(0, "Invalid response from translation service")
	}
	if result.TranslatedText == nil {
		return missingTranslation, nil
	}
	return *result.TranslatedText, nil
}

var bcp47Code = regexp.MustCompile(`^[a-z]{2,3}-[A-Z]{2}$`)

// sourceCode returns lang when it is a BCP-47 code such as "en-IN" and
// "auto" otherwise, letting the API detect the source.
func sourceCode(lang string) string {
	if bcp47Code.MatchString(lang) {
		return lang
	}
	return "auto"
}
