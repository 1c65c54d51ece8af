package http

import "time"

type statusResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
}

type ingestRequest struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

type ingestResponse struct {
	Status string `json:"status"`
	Id     string `json:"id"`
	Error  string `json:"error,omitempty"`
}

type turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	History []turn `json:"history"`
}

type selectedRequest struct {
	SelectedText string `json:"selected_text"`
	UserQuery    string `json:"user_query"`
}

type textResponse struct {
	Response string `json:"response"`
}

type latestRequest struct {
	BookSection string `json:"book_section"`
}

type latestResponse struct {
	Response  string `json:"response"`
	Reasoning string `json:"reasoning"`
}

type documentResponse struct {
	Id         string    `json:"id"`
	Source     string    `json:"source"`
	Path       string    `json:"path"`
	IngestedAt time.Time `json:"ingested_at"`
}

type documentsResponse struct {
	Documents []documentResponse `json:"documents"`
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type errorResponse struct {
	Error string `json:"error"`
}
