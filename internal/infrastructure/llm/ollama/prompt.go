package ollama

import (
	"fmt"
	"strings"

	"github.com/kirillkom/docstream/internal/core/domain"
)

func buildAnswerPrompt(question string, chunks []domain.RetrievedChunk) string {
	var contextBuilder strings.Builder
	for idx, chunk := range chunks {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] file=%s score=%.3f\n%s\n\n",
			idx+1,
			chunk.Filename,
			chunk.Score,
			chunk.Text,
		))
	}

	return fmt.Sprintf(`Answer user question only from context below.
If context is insufficient, say it directly.

Question:
%s

Context:
%s
`, question, contextBuilder.String())
}

func buildContextQAPrompt(question, contextText string) string {
	return fmt.Sprintf(`Answer the question using only the document summary below.
If the summary does not contain the answer, say it directly.

Summary:
%s

Question:
%s
`, contextText, question)
}

func buildSummaryPrompt(text string) string {
	const maxInput = 24000
	snippet := text
	if len(snippet) > maxInput {
		snippet = snippet[:maxInput]
	}

	return `Summarize the document below in a few concise paragraphs.
Keep key facts, figures and conclusions. No preamble, no markdown headers.

Document:
` + snippet
}
