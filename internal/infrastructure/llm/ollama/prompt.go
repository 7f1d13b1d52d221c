package ollama

import (
	"fmt"
	"strings"

	"github.com/opencarelab/eidbi-assistant/internal/core/domain"
)

func buildAnswerPrompt(question string, sources []domain.RankedPassage) string {
	if len(sources) == 0 {
		return fmt.Sprintf(`You are a helpful assistant for the Minnesota EIDBI (Early Intensive Developmental and Behavioral Intervention) benefit.
No program documentation matched this question. Answer from general knowledge, say that you could not find this in the EIDBI documentation, and suggest contacting the Minnesota DHS for authoritative details.

Question:
%s
`, question)
	}

	var contextBuilder strings.Builder
	for idx, source := range sources {
		title := source.Title
		if title == "" {
			title = "untitled"
		}
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] title=%s score=%.3f\n%s\n\n",
			idx+1,
			title,
			source.Score,
			source.Content,
		))
	}

	return fmt.Sprintf(`You are a helpful assistant for the Minnesota EIDBI (Early Intensive Developmental and Behavioral Intervention) benefit.
Answer the question only from the context below. Be direct and concise.
If the context is insufficient, say so and suggest contacting the Minnesota DHS.

Question:
%s

Context:
%s
`, question, contextBuilder.String())
}
