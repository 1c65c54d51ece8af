package answer

import (
	"fmt"
	"strings"
)

const (
	DefaultDomain = "Physical AI and Robotics"
	noContext     = "(no relevant context was found)"

	// InsufficientContextInstruction is always part of a grounded prompt.
	InsufficientContextInstruction = "If the context doesn't contain enough information, say so explicitly instead of guessing."
)

// BuildPrompt assembles the grounded prompt for one question.
func BuildPrompt(domain string, query string, excerpts string) string {
	if len(strings.TrimSpace(excerpts)) == 0 {
		excerpts = noContext
	}

	return fmt.Sprintf(`You are an expert AI assistant for a %s course.
Use the following context from the course materials to answer the question.

Context:
%s

Question: %s

Provide a clear, accurate answer based on the context. %s`, domain, excerpts, query, InsufficientContextInstruction)
}

func explainPrompt(selectedText string, question string) string {
	return fmt.Sprintf(`The user selected this text from the course:

"%s"

User question: %s

Explain this clearly based on the selected text.`, selectedText, question)
}

func latestPrompt(domain string, section string) string {
	return fmt.Sprintf(`Provide the latest research developments and breakthroughs in %s
for %s. Focus on recent papers. Format as markdown with bullet points.`, section, domain)
}
