package reassemble

import (
	"strings"
	"testing"
)

func TestReformat_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "Options_After_Sentence_Punctuation",
			in:   "Which is correct? A) one B) two",
			want: "Which is correct?\nA) one\nB) two",
		},
		{
			name: "Options_Glued_To_Text",
			in:   "The answer isA) Lagos",
			want: "The answer is\nA) Lagos",
		},
		{
			name: "Inline_Options_Separated_By_Spaces",
			in:   "The answer is A) Lagos B) Abuja C) Kano D) Accra. 2. Next",
			want: "The answer is\nA) Lagos\nB) Abuja\nC) Kano\nD) Accra.\n\n2. Next",
		},
		{
			name: "Sibling_Marker_After_Digit",
			in:   "A) room 1B) hall 2",
			want: "A) room 1\nB) hall 2",
		},
		{
			name: "Question_Boundary_After_D_Option",
			in:   "D) all of the above. 15. What follows",
			want: "D) all of the above.\n\n15. What follows",
		},
		{
			name: "Already_Formatted_Text_Untouched",
			in:   "Intro\nA) one\nB) two\nC) three\nD) four.\n\n2. Next",
			want: "Intro\nA) one\nB) two\nC) three\nD) four.\n\n2. Next",
		},
		{
			name: "Plain_Prose_Untouched",
			in:   "Photosynthesis converts light energy into chemical energy.",
			want: "Photosynthesis converts light energy into chemical energy.",
		},
		{
			name: "Empty_Input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reformat(tt.in)
			if got != tt.want {
				t.Errorf("Reformat mismatch:\ngot  %q\nwant %q", got, tt.want)
			}
		})
	}
}

// Applying the rule set to already-formatted text must never insert another
// break, no matter how often it runs.
func TestReformat_Idempotent(t *testing.T) {
	inputs := []string{
		"The answer is A) Lagos B) Abuja C) Kano D) Accra. 2. Next",
		"Which is correct? A) one B) two C) three D) four.",
		"A) room 1B) hall 2C) yard",
		"plain text with no options at all",
		"D) done. 3. Another question A) x",
	}

	for _, in := range inputs {
		once := Reformat(in)
		twice := Reformat(once)
		if once != twice {
			t.Errorf("not idempotent for %q:\nonce  %q\ntwice %q", in, once, twice)
		}
		thrice := Reformat(twice)
		if twice != thrice {
			t.Errorf("third application changed output for %q", in)
		}
	}
}

// Streaming the text in arbitrary fragments must converge on the same final
// rendering as receiving it in one piece, even when a fragment boundary
// splits an option marker.
func TestReassembler_StreamedEqualsOneShot(t *testing.T) {
	full := "The answer is A) Lagos B) Abuja C) Kano D) Accra. 2. Next"

	fragmentations := [][]string{
		{full},
		{"The answer is A) Lagos B", ") Abuja C) Kano D) Accra. 2. Next"},
		{"The answer is ", "A) Lagos ", "B) Abuja ", "C) Kano ", "D) Accra.", " 2. Next"},
		strings.Split(full, ""),
	}

	want := New().Push(full)
	for i, fragments := range fragmentations {
		r := New()
		var rendered string
		for _, f := range fragments {
			rendered = r.Push(f)
		}
		if rendered != want {
			t.Errorf("fragmentation %d diverged:\ngot  %q\nwant %q", i, rendered, want)
		}
	}
}

func TestReassembler_RenderingReplacesNotAppends(t *testing.T) {
	r := New()
	first := r.Push("The answer is A) Lagos B")
	second := r.Push(") Abuja")

	if strings.Contains(second, first) && first != "" && !strings.HasPrefix(second, "The answer is") {
		t.Errorf("unexpected rendering: %q", second)
	}
	if !strings.Contains(second, "\nB) Abuja") {
		t.Errorf("completed marker should be on its own line, got %q", second)
	}
}

func TestReassembler_FailureKeepsPartialText(t *testing.T) {
	r := New()
	r.Push("The answer is A) Lagos")
	r.Fail("connection lost")

	rendered := r.Rendered()
	if !strings.Contains(rendered, "A) Lagos") {
		t.Errorf("partial text lost on failure: %q", rendered)
	}
	if !strings.Contains(rendered, "connection lost") {
		t.Errorf("failure not visible in rendering: %q", rendered)
	}
}

func TestReassembler_FailureWithNoText(t *testing.T) {
	r := New()
	r.Fail("model unavailable")
	if !strings.Contains(r.Rendered(), "model unavailable") {
		t.Errorf("failure not visible: %q", r.Rendered())
	}
}
