// Package chunk splits over-long paragraphs into pieces that fit a token budget.
package chunk

import (
	"strings"
	"unicode"

	"github.com/KaramelBytes/docproof-cli/internal/tokens"
)

// Chunk is one piece of a split paragraph. Joiner is the separator that goes
// between this chunk and the next one when the pieces are put back together.
type Chunk struct {
	Text   string
	Joiner string
}

// Split breaks text into chunks whose count is at most maxTokens. It cuts at
// sentence boundaries first, then at word boundaries, and only cuts inside a
// word as a last resort. Text already within budget comes back as one chunk
// equal to the input.
func Split(text string, maxTokens int, count func(string) int) []Chunk {
	if count == nil {
		count = tokens.Heuristic
	}
	if maxTokens <= 0 || count(text) <= maxTokens {
		return []Chunk{{Text: text}}
	}

	var chunks []Chunk
	var window []string
	flush := func() {
		if len(window) > 0 {
			chunks = append(chunks, Chunk{Text: strings.Join(window, " "), Joiner: " "})
			window = window[:0]
		}
	}
	for _, s := range splitSentences(text) {
		if count(s) > maxTokens {
			flush()
			chunks = append(chunks, splitWords(s, maxTokens, count)...)
			continue
		}
		if len(window) > 0 && count(strings.Join(append(window, s), " ")) > maxTokens {
			flush()
		}
		window = append(window, s)
	}
	flush()
	if len(chunks) > 0 {
		chunks[len(chunks)-1].Joiner = ""
	}
	return chunks
}

// Join puts per-chunk outputs back together using the chunks' joiners.
// parts must be in chunk order; if the lengths differ a space is used.
func Join(parts []string, chunks []Chunk) string {
	var sb strings.Builder
	for i, p := range parts {
		sb.WriteString(p)
		if i == len(parts)-1 {
			break
		}
		if len(parts) == len(chunks) {
			sb.WriteString(chunks[i].Joiner)
		} else {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

func splitWords(sentence string, maxTokens int, count func(string) int) []Chunk {
	var chunks []Chunk
	var window []string
	flush := func() {
		if len(window) > 0 {
			chunks = append(chunks, Chunk{Text: strings.Join(window, " "), Joiner: " "})
			window = window[:0]
		}
	}
	for _, w := range strings.Fields(sentence) {
		if count(w) > maxTokens {
			flush()
			chunks = append(chunks, hardCut(w, maxTokens, count)...)
			continue
		}
		if len(window) > 0 && count(strings.Join(append(window, w), " ")) > maxTokens {
			flush()
		}
		window = append(window, w)
	}
	flush()
	return chunks
}

// hardCut slices a single word into the longest prefixes that fit.
func hardCut(word string, maxTokens int, count func(string) int) []Chunk {
	var chunks []Chunk
	runes := []rune(word)
	for len(runes) > 0 {
		n := longestFit(runes, maxTokens, count)
		chunks = append(chunks, Chunk{Text: string(runes[:n])})
		runes = runes[n:]
	}
	chunks[len(chunks)-1].Joiner = " "
	return chunks
}

func longestFit(runes []rune, maxTokens int, count func(string) int) int {
	lo, hi := 1, len(runes)
	best := 1
	for lo <= hi {
		mid := (lo + hi) / 2
		if count(string(runes[:mid])) <= maxTokens {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return best
}

// splitSentences returns trimmed sentences. A sentence ends at terminal
// punctuation (plus any closing quotes or brackets) followed by whitespace.
func splitSentences(text string) []string {
	var out []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j < len(runes) && !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}
		if s := strings.TrimSpace(string(runes[start:j])); s != "" {
			out = append(out, s)
		}
		start = j
		i = j - 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', '…':
		return true
	}
	return false
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}
