// Package qa extracts and formats the Q&A section of generated text.
package qa

import (
	"html"
	"html/template"
	"regexp"
	"strings"
)

// Marker separates any preamble from the Q&A section. Matched case-insensitively.
const Marker = "Q&A:"

// LineBreak joins rendered lines.
const LineBreak = "<br>"

// CSS classes applied to question and answer lines.
const (
	QuestionClass = "qa-q"
	AnswerClass   = "qa-a"
)

var (
	markerPattern   = regexp.MustCompile(`(?i)Q&A:`)
	questionPattern = regexp.MustCompile(`^Q\d*:`)
	answerPattern   = regexp.MustCompile(`^A\d*:`)
)

// LineKind classifies a line of the Q&A section.
type LineKind int

const (
	Other LineKind = iota
	Question
	Answer
)

// Classify reports whether line is a question, an answer or neither.
// Surrounding whitespace is ignored.
func Classify(line string) LineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case questionPattern.MatchString(trimmed):
		return Question
	case answerPattern.MatchString(trimmed):
		return Answer
	default:
		return Other
	}
}

// section drops everything up to and including the first marker, then trims.
// Without a marker the whole text is the section.
func section(text string) string {
	if loc := markerPattern.FindStringIndex(text); loc != nil {
		text = text[loc[1]:]
	}
	return strings.TrimSpace(text)
}

// ExtractPlain returns the Q&A section as plain text, suitable for export.
func ExtractPlain(text string) string {
	return section(text)
}

// Lines returns the Q&A section split into lines.
func Lines(text string) []string {
	s := section(text)
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// RenderColored returns the Q&A section as HTML. Question and answer lines
// are wrapped in spans; every line is escaped.
func RenderColored(text string) template.HTML {
	lines := Lines(text)
	out := make([]string, len(lines))
	for i, line := range lines {
		escaped := html.EscapeString(line)
		switch Classify(line) {
		case Question:
			out[i] = `<span class="` + QuestionClass + `">` + escaped + `</span>`
		case Answer:
			out[i] = `<span class="` + AnswerClass + `">` + escaped + `</span>`
		default:
			out[i] = escaped
		}
	}
	return template.HTML(strings.Join(out, LineBreak))
}

// Pair is one question with its answer.
type Pair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Pairs groups the section into question/answer pairs. Lines that are
// neither are appended to the preceding question or answer. An answer line
// after an already answered question starts a pair with an empty question.
// Pairs only feeds counts (run history, logs); display and export use the
// raw section.
func Pairs(text string) []Pair {
	var pairs []Pair
	cur := -1
	inAnswer := false
	for _, line := range Lines(text) {
		trimmed := strings.TrimSpace(line)
		switch Classify(line) {
		case Question:
			pairs = append(pairs, Pair{Question: stripPrefix(trimmed)})
			cur = len(pairs) - 1
			inAnswer = false
		case Answer:
			if cur < 0 || pairs[cur].Answer != "" {
				pairs = append(pairs, Pair{})
				cur = len(pairs) - 1
			}
			pairs[cur].Answer = stripPrefix(trimmed)
			inAnswer = true
		default:
			if cur < 0 || trimmed == "" {
				continue
			}
			if inAnswer {
				pairs[cur].Answer += "\n" + trimmed
			} else {
				pairs[cur].Question += "\n" + trimmed
			}
		}
	}
	return pairs
}

func stripPrefix(line string) string {
	if i := strings.Index(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}
