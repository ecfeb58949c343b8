package extract

import (
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	raw := "This is a perfectly reasonable paragraph line.\n\nok\n   Menu   \nAnother   line    with   extra  spaces inside."
	got := cleanText(raw)

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 surviving lines, got %d: %q", len(lines), got)
	}
	if lines[1] != "Another line with extra spaces inside." {
		t.Errorf("whitespace not collapsed: %q", lines[1])
	}
}

func TestTruncateAtSentence(t *testing.T) {
	text := "First sentence here. Second sentence follows after. Third one is the longest of them all."

	got := truncateAtSentence(text, 60)
	if len(got) > 60 {
		t.Fatalf("truncation exceeded limit: %d chars", len(got))
	}
	if !strings.HasSuffix(got, ".") {
		t.Errorf("expected cut at sentence boundary, got %q", got)
	}

	// Short text passes through untouched
	if got := truncateAtSentence("Short.", 100); got != "Short." {
		t.Errorf("expected passthrough, got %q", got)
	}

	// No boundary in the final 30% falls back to a hard cut
	noDots := strings.Repeat("x", 200)
	got = truncateAtSentence(noDots, 50)
	if len(got) != 50 {
		t.Errorf("expected hard cut at 50, got %d", len(got))
	}
}

func TestReadingTime(t *testing.T) {
	if got := readingTime(100); got != 1 {
		t.Errorf("expected minimum of 1 minute, got %d", got)
	}
	if got := readingTime(1000); got != 5 {
		t.Errorf("expected 5 minutes for 1000 words, got %d", got)
	}
}

func TestGuessLanguage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"The quick brown fox jumps over the lazy dog.", "en"},
		{"Die Übung über die Größe der Änderung ist schön.", "de"},
		{"¿Cómo estás? El niño pequeño añora la mañana.", "es"},
		{"", "en"},
		{"One naïve café reference.", "en"}, // too few accents to flip
	}
	for _, tt := range tests {
		if got := guessLanguage(tt.text); got != tt.want {
			t.Errorf("guessLanguage(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("First one. Second one! Third one? Trailing fragment")
	want := []string{"First one.", "Second one!", "Third one?", "Trailing fragment"}

	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence %d: got %q, want %q", i, got[i], want[i])
		}
	}

	if got := splitSentences(""); got != nil {
		t.Errorf("expected nil for empty input, got %v", got)
	}
}

func TestKeyPoints(t *testing.T) {
	para := func(s string) string { return s + " Some follow-up detail that is not the lead." }
	text := strings.Join([]string{
		para("The first paragraph opens with this reasonably long lead sentence."),
		"Too short.",
		para("The second paragraph also has a long enough opening sentence to keep."),
		para("Third paragraph leads with another sufficiently descriptive sentence."),
	}, "\n")

	points := keyPoints(text)
	if len(points) != 3 {
		t.Fatalf("expected 3 key points, got %d: %v", len(points), points)
	}
	if !strings.HasPrefix(points[0], "The first paragraph") {
		t.Errorf("unexpected first point: %q", points[0])
	}

	// Cap at five
	var many []string
	for i := 0; i < 10; i++ {
		many = append(many, para("Yet another paragraph with a perfectly serviceable lead sentence."))
	}
	if points := keyPoints(strings.Join(many, "\n")); len(points) != maxKeyPoints {
		t.Errorf("expected cap of %d, got %d", maxKeyPoints, len(points))
	}
}
