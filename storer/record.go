package storer

type Record struct {
	Id      string
	Score   float32
	Payload map[string]string
}

// Payload keys written at ingestion. Other metadata keys are stored as given.
const (
	PayloadText   = "text"
	PayloadSource = "source"
	PayloadPath   = "path"
)
