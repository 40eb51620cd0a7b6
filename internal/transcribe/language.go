package transcribe

import "strings"

// languageCodes maps the language identifiers reported by ElevenLabs
// (ISO 639-1/639-3 codes) and Whisper (lower-case English names) to the
// BCP-47 codes the translation API accepts.
var languageCodes = map[string]string{
	"en": "en-IN", "eng": "en-IN", "english": "en-IN",
	"hi": "hi-IN", "hin": "hi-IN", "hindi": "hi-IN",
	"bn": "bn-IN", "ben": "bn-IN", "bengali": "bn-IN",
	"gu": "gu-IN", "guj": "gu-IN", "gujarati": "gu-IN",
	"kn": "kn-IN", "kan": "kn-IN", "kannada": "kn-IN",
	"ml": "ml-IN", "mal": "ml-IN", "malayalam": "ml-IN",
	"mr": "mr-IN", "mar": "mr-IN", "marathi": "mr-IN",
	"or": "od-IN", "ori": "od-IN", "ory": "od-IN", "odia": "od-IN", "oriya": "od-IN",
	"pa": "pa-IN", "pan": "pa-IN", "punjabi": "pa-IN", "panjabi": "pa-IN",
	"ta": "ta-IN", "tam": "ta-IN", "tamil": "ta-IN",
	"te": "te-IN", "tel": "te-IN", "telugu": "te-IN",
}

// normalizeLanguage returns the BCP-47 code for a detected language, or
// "unknown" when it has no equivalent.
func normalizeLanguage(lang string) string {
	if code, ok := languageCodes[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return code
	}
	return missingLanguage
}
