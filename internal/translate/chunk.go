package translate

// DefaultChunkSize is the largest chunk, in characters, sent in one
// translation request.
const DefaultChunkSize = 450

// SplitText splits text into consecutive chunks of at most maxLength
// characters (runes), cutting at fixed offsets. The last chunk may be
// shorter. Empty text yields no chunks; maxLength < 1 uses DefaultChunkSize.
func SplitText(text string, maxLength int) []string {
	if maxLength < 1 {
		maxLength = DefaultChunkSize
	}
	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+maxLength-1)/maxLength)
	for i := 0; i < len(runes); i += maxLength {
		end := min(i+maxLength, len(runes))
		chunks = append(chunks, string(runes[i:end]))
	}
	return chunks
}
