package retrieve

import "strings"

const (
	DefaultLimit  = 3
	ExcerptLength = 500
	UnknownSource = "Unknown"
)

// Passage is one ranked hit. Text is already cut to ExcerptLength runes.
type Passage struct {
	Id     string
	Text   string
	Source string
	Score  float32
}

// JoinExcerpts builds the context block handed to generation.
func JoinExcerpts(passages []Passage) string {
	texts := make([]string, 0, len(passages))
	for _, p := range passages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n\n")
}

func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= ExcerptLength {
		return text
	}
	return string(runes[:ExcerptLength])
}
