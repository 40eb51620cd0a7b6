// Package process runs one upload through transcription and translation.
package process

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/snarg/speech-relay/internal/apperr"
	"github.com/snarg/speech-relay/internal/transcribe"
	"github.com/snarg/speech-relay/internal/translate"
)

// ChunkTranslator translates pre-split text, preserving chunk order.
type ChunkTranslator interface {
	TranslateChunks(ctx context.Context, chunks []string, sourceLang, targetLang string) (string, error)
}

// TextTranslator translates a whole text in one call.
type TextTranslator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Request is one uploaded file and the language it should end up in.
type Request struct {
	Filename       string
	Data           []byte
	TargetLanguage string
}

// Result is the response payload of a processed upload.
type Result struct {
	Transcription  string `json:"transcription"`
	TranslatedText string `json:"translated_text"`
	// GeminiTranslation is nil when generative translation is not configured
	// and "" when it is configured but failed.
	GeminiTranslation *string `json:"gemini_translation,omitempty"`
	SourceLanguage    string  `json:"source_language"`
	TargetLanguage    string  `json:"target_language"`

	MimeType string `json:"-"`
	Chunks   int    `json:"-"`
}

// Options configures an Orchestrator.
type Options struct {
	Speech     transcribe.Provider
	Translator ChunkTranslator
	// Generative is optional; nil disables the supplementary translation.
	Generative TextTranslator
	ChunkSize  int
	Log        zerolog.Logger
}

// Orchestrator sequences the speech and translation providers for a request.
// It holds no per-request state and is safe for concurrent use.
type Orchestrator struct {
	speech     transcribe.Provider
	translator ChunkTranslator
	generative TextTranslator
	chunkSize  int
	log        zerolog.Logger
}

// New creates an Orchestrator.
func New(opts Options) *Orchestrator {
	chunkSize := opts.ChunkSize
	if chunkSize < 1 {
		chunkSize = translate.DefaultChunkSize
	}
	return &Orchestrator{
		speech:     opts.Speech,
		translator: opts.Translator,
		generative: opts.Generative,
		chunkSize:  chunkSize,
		log:        opts.Log,
	}
}

// Process classifies, transcribes and, when the detected language differs
// from the target, translates the upload. Every failure except the
// generative translation ends the request.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Result, error) {
	log := o.log.With().Str("filename", req.Filename).Str("target_language", req.TargetLanguage).Logger()

	mimeType, err := transcribe.ClassifyMimeType(req.Filename)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return nil, apperr.Invalid("target_language is required")
	}
	log.Info().Int("size_bytes", len(req.Data)).Str("mime_type", mimeType).Msg("processing upload")

	audio := transcribe.Audio{Filename: req.Filename, Data: req.Data, MimeType: mimeType}
	tr, err := o.speech.Transcribe(ctx, audio, req.TargetLanguage)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	log.Info().Str("source_language", tr.SourceLanguage).Str("model", o.speech.Model()).Msg("transcription obtained")
	log.Debug().Str("transcript", tr.Transcript).Msg("full transcription")

	result := &Result{
		Transcription:  tr.Transcript,
		SourceLanguage: tr.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		MimeType:       mimeType,
	}

	if tr.SourceLanguage == req.TargetLanguage {
		log.Info().Msg("source language matches target, skipping translation")
		result.TranslatedText = tr.Transcript
		return result, nil
	}

	chunks := translate.SplitText(tr.Transcript, o.chunkSize)
	result.Chunks = len(chunks)
	log.Info().Int("chunks", len(chunks)).Str("source_language", tr.SourceLanguage).Msg("translating")

	translated, err := o.translator.TranslateChunks(ctx, chunks, tr.SourceLanguage, req.TargetLanguage)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	result.TranslatedText = translated
	log.Debug().Str("translated_text", translated).Msg("full translation")

	if o.generative != nil {
		supplementary, err := o.generative.Translate(ctx, tr.Transcript, req.TargetLanguage)
		if err != nil {
			log.Warn().Err(err).Msg("generative translation failed, returning empty")
			supplementary = ""
		}
		result.GeminiTranslation = &supplementary
	}

	return result, nil
}
