package process

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/snarg/speech-relay/internal/apperr"
	"github.com/snarg/speech-relay/internal/transcribe"
)

type fakeSpeech struct {
	resp    *transcribe.Response
	err     error
	calls   int
	gotMIME string
}

func (f *fakeSpeech) Transcribe(ctx context.Context, audio transcribe.Audio, targetLanguage string) (*transcribe.Response, error) {
	f.calls++
	f.gotMIME = audio.MimeType
	return f.resp, f.err
}
func (f *fakeSpeech) Name() string  { return "fake" }
func (f *fakeSpeech) Model() string { return "fake-v1" }

type fakeChunks struct {
	calls  int
	chunks []string
	out    string
	err    error
}

func (f *fakeChunks) TranslateChunks(ctx context.Context, chunks []string, sourceLang, targetLang string) (string, error) {
	f.calls++
	f.chunks = chunks
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeGenerative struct {
	calls int
	out   string
	err   error
}

func (f *fakeGenerative) Translate(ctx context.Context, text, targetLang string) (string, error) {
	f.calls++
	return f.out, f.err
}

func newTestOrchestrator(speech *fakeSpeech, tr *fakeChunks, gen TextTranslator) *Orchestrator {
	return New(Options{
		Speech:     speech,
		Translator: tr,
		Generative: gen,
		ChunkSize:  450,
		Log:        zerolog.Nop(),
	})
}

func TestProcess_TranslatesWhenLanguagesDiffer(t *testing.T) {
	speech := &fakeSpeech{resp: &transcribe.Response{Transcript: "Hello world", SourceLanguage: "en-IN"}}
	tr := &fakeChunks{out: "नमस्ते दुनिया"}
	o := newTestOrchestrator(speech, tr, nil)

	res, err := o.Process(context.Background(), Request{Filename: "sample.mp3", Data: []byte("x"), TargetLanguage: "hi-IN"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Transcription != "Hello world" || res.TranslatedText != "नमस्ते दुनिया" {
		t.Errorf("result = %+v", res)
	}
	if res.SourceLanguage != "en-IN" || res.TargetLanguage != "hi-IN" {
		t.Errorf("languages = %q -> %q", res.SourceLanguage, res.TargetLanguage)
	}
	if res.GeminiTranslation != nil {
		t.Error("GeminiTranslation set without a generative translator")
	}
	if speech.gotMIME != "audio/mpeg" {
		t.Errorf("mime = %q", speech.gotMIME)
	}
	if len(tr.chunks) != 1 || tr.chunks[0] != "Hello world" {
		t.Errorf("chunks = %q", tr.chunks)
	}
}

func TestProcess_SameLanguageSkipsTranslation(t *testing.T) {
	speech := &fakeSpeech{resp: &transcribe.Response{Transcript: "नमस्ते", SourceLanguage: "hi-IN"}}
	tr := &fakeChunks{}
	gen := &fakeGenerative{out: "ignored"}
	o := newTestOrchestrator(speech, tr, gen)

	res, err := o.Process(context.Background(), Request{Filename: "a.wav", TargetLanguage: "hi-IN"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.TranslatedText != res.Transcription {
		t.Errorf("translated_text = %q, want transcription %q", res.TranslatedText, res.Transcription)
	}
	if tr.calls != 0 || gen.calls != 0 {
		t.Errorf("translation calls = %d/%d, want 0/0", tr.calls, gen.calls)
	}
}

func TestProcess_LongTranscriptIsChunked(t *testing.T) {
	speech := &fakeSpeech{resp: &transcribe.Response{Transcript: strings.Repeat("x", 1000), SourceLanguage: "en-IN"}}
	tr := &fakeChunks{out: "ok"}
	o := newTestOrchestrator(speech, tr, nil)

	res, err := o.Process(context.Background(), Request{Filename: "a.mp3", TargetLanguage: "ta-IN"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(tr.chunks) != 3 || res.Chunks != 3 {
		t.Errorf("chunks = %d (result %d), want 3", len(tr.chunks), res.Chunks)
	}
}

func TestProcess_UnsupportedFileFailsFast(t *testing.T) {
	speech := &fakeSpeech{}
	o := newTestOrchestrator(speech, &fakeChunks{}, nil)

	_, err := o.Process(context.Background(), Request{Filename: "a.ogg", TargetLanguage: "hi-IN"})
	if apperr.KindOf(err) != apperr.UnsupportedFileType {
		t.Fatalf("kind = %v, want UnsupportedFileType", apperr.KindOf(err))
	}
	if speech.calls != 0 {
		t.Error("speech provider called for unsupported file")
	}
}

func TestProcess_EmptyTargetRejected(t *testing.T) {
	o := newTestOrchestrator(&fakeSpeech{}, &fakeChunks{}, nil)

	_, err := o.Process(context.Background(), Request{Filename: "a.mp3", TargetLanguage: " "})
	if apperr.KindOf(err) != apperr.InvalidRequest {
		t.Fatalf("kind = %v, want InvalidRequest", apperr.KindOf(err))
	}
}

func TestProcess_FileTypeCheckedBeforeTarget(t *testing.T) {
	o := newTestOrchestrator(&fakeSpeech{}, &fakeChunks{}, nil)

	_, err := o.Process(context.Background(), Request{Filename: "a.ogg"})
	if apperr.KindOf(err) != apperr.UnsupportedFileType {
		t.Fatalf("kind = %v, want UnsupportedFileType", apperr.KindOf(err))
	}
}

func TestProcess_SpeechErrorPropagates(t *testing.T) {
	speech := &fakeSpeech{err: apperr.Provider(http.StatusUnauthorized, "API error: bad key")}
	tr := &fakeChunks{}
	o := newTestOrchestrator(speech, tr, nil)

	_, err := o.Process(context.Background(), Request{Filename: "a.mp3", TargetLanguage: "hi-IN"})
	if apperr.HTTPStatus(err) != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apperr.HTTPStatus(err))
	}
	if tr.calls != 0 {
		t.Error("translator called after speech failure")
	}
}

func TestProcess_TranslationErrorFailsRequest(t *testing.T) {
	speech := &fakeSpeech{resp: &transcribe.Response{Transcript: "Hello", SourceLanguage: "en-IN"}}
	tr := &fakeChunks{err: apperr.Provider(http.StatusBadGateway, "Translation API error")}
	gen := &fakeGenerative{out: "x"}
	o := newTestOrchestrator(speech, tr, gen)

	res, err := o.Process(context.Background(), Request{Filename: "a.mp3", TargetLanguage: "hi-IN"})
	if err == nil {
		t.Fatal("expected error")
	}
	if res != nil {
		t.Errorf("partial result returned: %+v", res)
	}
	if apperr.KindOf(err) != apperr.ProviderError {
		t.Errorf("kind = %v, want ProviderError", apperr.KindOf(err))
	}
}

func TestProcess_GenerativeFailureSwallowed(t *testing.T) {
	speech := &fakeSpeech{resp: &transcribe.Response{Transcript: "Hello", SourceLanguage: "en-IN"}}
	tr := &fakeChunks{out: "नमस्ते"}
	gen := &fakeGenerative{err: errors.New("gemini unavailable")}
	o := newTestOrchestrator(speech, tr, gen)

	res, err := o.Process(context.Background(), Request{Filename: "a.mp3", TargetLanguage: "hi-IN"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.GeminiTranslation == nil || *res.GeminiTranslation != "" {
		t.Errorf("GeminiTranslation = %v, want pointer to empty string", res.GeminiTranslation)
	}
	if res.TranslatedText != "नमस्ते" {
		t.Errorf("TranslatedText = %q", res.TranslatedText)
	}
}

func TestProcess_GenerativeSuccess(t *testing.T) {
	speech := &fakeSpeech{resp: &transcribe.Response{Transcript: "Hello", SourceLanguage: "en-IN"}}
	gen := &fakeGenerative{out: "हैलो"}
	o := newTestOrchestrator(speech, &fakeChunks{out: "नमस्ते"}, gen)

	res, err := o.Process(context.Background(), Request{Filename: "a.mp3", TargetLanguage: "hi-IN"})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.GeminiTranslation == nil || *res.GeminiTranslation != "हैलो" {
		t.Errorf("GeminiTranslation = %v", res.GeminiTranslation)
	}
}
