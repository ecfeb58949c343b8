package extract

import (
	"strings"
	"unicode"
)

const (
	minLineLength  = 10
	wordsPerMinute = 200
	maxKeyPoints   = 5
	minKeyPointLen = 40
	maxKeyPointLen = 300
)

// cleanText collapses runs of whitespace and drops lines shorter than
// minLineLength, which are almost always leftover navigation fragments.
func cleanText(raw string) string {
	lines := strings.Split(raw, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) < minLineLength {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// truncateAtSentence cuts text to at most max characters, preferring the last
// sentence boundary within the final 30% of the allowed length over a
// mid-sentence cut.
func truncateAtSentence(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}

	cut := text[:max]
	floor := max - max*30/100
	best := -1
	for i := len(cut) - 1; i >= floor; i-- {
		if cut[i] == '.' || cut[i] == '!' || cut[i] == '?' {
			best = i
			break
		}
	}
	if best > 0 {
		return strings.TrimSpace(cut[:best+1])
	}
	return strings.TrimSpace(cut)
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func readingTime(wordCount int) int {
	mins := wordCount / wordsPerMinute
	if mins < 1 {
		mins = 1
	}
	return mins
}

// diacriticSets maps a language code to characters that are distinctive for
// it. This is a coarse guess, not real language identification; text without
// any of these marks is assumed to be English.
var diacriticSets = []struct {
	lang  string
	runes string
}{
	{"de", "äöüßÄÖÜ"},
	{"es", "ñ¿¡áíóú"},
	{"fr", "àâçèêëîïôùûœ"},
	{"pt", "ãõçá"},
	{"it", "àèéìòù"},
}

// guessLanguage returns a two-letter language code based on the presence of
// language-specific diacritics, defaulting to "en".
func guessLanguage(text string) string {
	if text == "" {
		return "en"
	}
	best := "en"
	bestCount := 0
	for _, set := range diacriticSets {
		count := 0
		for _, r := range set.runes {
			count += strings.Count(text, string(r))
		}
		if count > bestCount {
			best = set.lang
			bestCount = count
		}
	}
	// A couple of stray accents (loanwords, names) shouldn't flip the guess
	if bestCount < 3 {
		return "en"
	}
	return best
}

// splitSentences naively splits text into sentences using '.', '!' or '?' as
// delimiters while preserving the delimiter at the end of each sentence.
func splitSentences(text string) []string {
	if len(text) == 0 {
		return nil
	}

	// Estimate sentence count: roughly 1 sentence per 50 chars average
	estimated := len(text) / 50
	if estimated < 1 {
		estimated = 1
	}

	sentences := make([]string, 0, estimated)
	start := 0

	for i, r := range text {
		if r == '.' || r == '!' || r == '?' {
			// Include the delimiter
			end := i + 1
			// Include following whitespace
			for end < len(text) && unicode.IsSpace(rune(text[end])) {
				end++
			}
			sentences = append(sentences, strings.TrimSpace(text[start:end]))
			start = end
		}
	}

	// Capture any trailing text
	if start < len(text) {
		sentences = append(sentences, strings.TrimSpace(text[start:]))
	}

	return sentences
}

// keyPoints picks the leading sentence of each paragraph as a summary line,
// skipping fragments too short to stand alone.
func keyPoints(text string) []string {
	var points []string
	for _, para := range strings.Split(text, "\n") {
		sentences := splitSentences(para)
		if len(sentences) == 0 {
			continue
		}
		first := sentences[0]
		if len(first) < minKeyPointLen || len(first) > maxKeyPointLen {
			continue
		}
		points = append(points, first)
		if len(points) >= maxKeyPoints {
			break
		}
	}
	return points
}
