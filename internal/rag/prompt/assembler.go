package prompt

import (
	"fmt"
	"strings"

	"github.com/examassist/waecrag/internal/domain/ragModel"
)

const (
	header = "You are a helpful assistant for WAEC past questions.\n" +
		"You have access to the following relevant WAEC past questions:\n\n"

	noContext = "No specific relevant questions were found in the database.\n"

	footer = "\nBased on the above WAEC questions, answer the user's question.\n" +
		"If the provided questions do not contain enough information to answer, " +
		"state that you don't have enough information.\n\nQuestion: %s\nAnswer:"

	passageSeparator = "\n\n"
)

// Assemble merges the retrieved passages and the question into a single
// generation prompt. The budget bounds the merged passage section:
// passages are taken in the given score-descending order and any passage
// that would overflow the remaining budget is dropped whole, never
// truncated mid-sentence. With no surviving passages the prompt states
// that no context was found and still asks the question.
func Assemble(question string, results []ragModel.RetrievalResult, budget int) string {
	var context strings.Builder
	remaining := budget

	for _, res := range results {
		cost := len(res.Text)
		if context.Len() > 0 {
			cost += len(passageSeparator)
		}
		if cost > remaining {
			continue
		}
		if context.Len() > 0 {
			context.WriteString(passageSeparator)
		}
		context.WriteString(res.Text)
		remaining -= cost
	}

	var b strings.Builder
	b.WriteString(header)
	if context.Len() == 0 {
		b.WriteString(noContext)
	} else {
		b.WriteString(context.String())
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf(footer, question))
	return b.String()
}
