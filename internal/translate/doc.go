// Package translate turns transcripts into the requested target language.
//
// The Sarvam translator is authoritative: text is split into fixed-size
// chunks, each chunk is translated in order, and any failure aborts the
// whole translation. The Gemini translator produces a supplementary
// translation whose failures callers are expected to tolerate.
package translate
