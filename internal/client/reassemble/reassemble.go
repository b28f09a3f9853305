package reassemble

import (
	"regexp"
	"strings"
)

// The model streams multiple-choice answers with the options inline. These
// rewrites progressively break them into one option per line as text
// accumulates. Each rule skips markers already at a line start, so the set
// can be re-applied to its own output without inserting duplicate breaks.
var (
	// option marker after sentence-ending punctuation: ". A)" -> ".\nA)"
	afterPunctuation = regexp.MustCompile(`([.?!])[ \t]*([A-D]\))`)

	// option marker abutting any non-newline, non-digit character
	afterText = regexp.MustCompile(`([^\n\d])([A-D]\))`)

	// a later option marker glued onto a digit on a line that already
	// carries an earlier marker: "A) room 1B) hall" -> break before B)
	afterSibling = regexp.MustCompile(`([A-D]\))([^\n]*?\d)([B-D]\))`)

	// new question number trailing a D) option: "D) Accra. 2." -> blank line
	questionBoundary = regexp.MustCompile(`(D\)[^\n]*?)[ \t]+(\d+\.)`)

	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
)

// Reformat normalizes streamed answer text into one option per line with a
// blank line between numbered questions. It is idempotent:
// Reformat(Reformat(s)) == Reformat(s).
func Reformat(text string) string {
	text = afterPunctuation.ReplaceAllString(text, "$1\n$2")
	text = afterText.ReplaceAllString(text, "$1\n$2")
	for {
		next := afterSibling.ReplaceAllString(text, "$1$2\n$3")
		if next == text {
			break
		}
		text = next
	}
	text = questionBoundary.ReplaceAllString(text, "$1\n\n$2")
	return trailingSpace.ReplaceAllString(text, "\n")
}

// Reassembler accumulates raw answer fragments and renders the reformatted
// view of everything received so far. Rendering always replaces the prior
// view wholesale; a later fragment may complete a pattern whose prefix
// arrived earlier, moving a break that was previously absent.
type Reassembler struct {
	raw     strings.Builder
	failure string
}

func New() *Reassembler {
	return &Reassembler{}
}

// Push appends one raw fragment and returns the full re-rendered text.
func (r *Reassembler) Push(fragment string) string {
	r.raw.WriteString(fragment)
	return r.Rendered()
}

// Fail records a terminal stream failure. Text received before the failure
// stays rendered; the notice makes the truncation visible.
func (r *Reassembler) Fail(message string) {
	r.failure = message
}

func (r *Reassembler) Rendered() string {
	rendered := Reformat(r.raw.String())
	if r.failure == "" {
		return rendered
	}
	if rendered == "" {
		return "[answer interrupted: " + r.failure + "]"
	}
	return rendered + "\n\n[answer interrupted: " + r.failure + "]"
}
