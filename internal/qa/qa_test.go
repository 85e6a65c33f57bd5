package qa

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const sample = "preamble\nQ&A:\nQ1: why?\nA1: because.\n"

func TestExtractPlain(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"marker stripped", sample, "Q1: why?\nA1: because."},
		{"marker case-insensitive", "intro q&a: Q: one\nA: two", "Q: one\nA: two"},
		{"first marker only", "x Q&A: Q1: a\nQ&A: again", "Q1: a\nQ&A: again"},
		{"no marker", "  just some text\n", "just some text"},
		{"empty", "", ""},
		{"marker only", "Q&A:   \n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlain(tt.in); got != tt.want {
				t.Errorf("ExtractPlain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractPlain_Idempotent(t *testing.T) {
	inputs := []string{sample, "no marker here", "  Q&A:\n\nQ2: x\nA2: y  ", ""}
	for _, in := range inputs {
		once := ExtractPlain(in)
		if twice := ExtractPlain(once); twice != once {
			t.Errorf("ExtractPlain not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestRenderColored(t *testing.T) {
	got := string(RenderColored(sample))
	want := `<span class="qa-q">Q1: why?</span><br><span class="qa-a">A1: because.</span>`
	if got != want {
		t.Fatalf("RenderColored = %q, want %q", got, want)
	}
}

func TestRenderColored_NoMarker(t *testing.T) {
	got := string(RenderColored("  plain answer text  "))
	if got != "plain answer text" {
		t.Fatalf("RenderColored = %q, want trimmed input", got)
	}
}

func TestRenderColored_EscapesAndIndentedPrefixes(t *testing.T) {
	got := string(RenderColored("Q&A:\n  Q3: is <b> safe?\nnote & more\nA3: yes"))
	want := `<span class="qa-q">  Q3: is &lt;b&gt; safe?</span><br>note &amp; more<br><span class="qa-a">A3: yes</span>`
	if got != want {
		t.Fatalf("RenderColored = %q, want %q", got, want)
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]LineKind{
		"Q1: a":      Question,
		"Q: a":       Question,
		"  Q12: a":   Question,
		"A1: b":      Answer,
		"A: b":       Answer,
		"Question 1": Other,
		"q1: lower":  Other,
		"QA: x":      Other,
		"":           Other,
	}
	for line, want := range tests {
		if got := Classify(line); got != want {
			t.Errorf("Classify(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestPairs(t *testing.T) {
	text := "Intro\nQ&A:\nQ1: First?\nA1: One.\ncontinued\nQ2: Second?\nA2: Two."
	want := []Pair{
		{Question: "First?", Answer: "One.\ncontinued"},
		{Question: "Second?", Answer: "Two."},
	}
	if diff := cmp.Diff(want, Pairs(text)); diff != "" {
		t.Fatalf("Pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestPairs_AnswerWithoutQuestion(t *testing.T) {
	want := []Pair{{Answer: "orphan"}}
	if diff := cmp.Diff(want, Pairs("A1: orphan")); diff != "" {
		t.Fatalf("Pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderTerminal_KeepsContent(t *testing.T) {
	out := RenderTerminal(sample, DefaultTerminalStyles())
	for _, want := range []string{"Q1: why?", "A1: because."} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderTerminal output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "preamble") {
		t.Errorf("RenderTerminal should drop the preamble: %q", out)
	}
}
