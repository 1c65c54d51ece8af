package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/w-h-a/rag"
	"github.com/w-h-a/rag/docstore"
	"github.com/w-h-a/rag/generator"
	"github.com/w-h-a/rag/internal/errs"
	getsafe "github.com/w-h-a/rag/util/get_safe"
)

const defaultDocumentsLimit = 20

// Service is what the HTTP surface needs from the RAG facade.
type Service interface {
	Chat(ctx context.Context, history []generator.Message) (rag.Answer, error)
	Ingest(ctx context.Context, text string, metadata map[string]string) (string, error)
	Explain(ctx context.Context, selectedText string, question string) (string, error)
	LatestDevelopments(ctx context.Context, section string) (string, string, error)
	Documents(ctx context.Context, limit int) ([]docstore.Entry, error)
	Signup(ctx context.Context, email string, password string, name string) (rag.Session, error)
	Login(ctx context.Context, email string, password string) (rag.Session, error)
	Verify(token string) (*rag.Claims, error)
	Model() string
}

type Handler struct {
	svc Service
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status: "RAG backend running",
		Model:  h.svc.Model(),
	})
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.svc.Ingest(r.Context(), req.Text, getsafe.Strings(req.Metadata))
	if err != nil {
		if len(id) > 0 && errors.Is(err, errs.ErrStore) {
			logError(r, http.StatusInternalServerError, err)
			writeJSON(w, http.StatusInternalServerError, ingestResponse{
				Status: "partial",
				Id:     id,
				Error:  err.Error(),
			})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		Status: "success",
		Id:     id,
	})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	history := make([]generator.Message, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, generator.Message{
			Role:    generator.Role(turn.Role),
			Content: turn.Content,
		})
	}

	ans, err := h.svc.Chat(r.Context(), history)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ans)
}

func (h *Handler) Selected(w http.ResponseWriter, r *http.Request) {
	var req selectedRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rsp, err := h.svc.Explain(r.Context(), req.SelectedText, req.UserQuery)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, textResponse{Response: rsp})
}

func (h *Handler) LatestDevelopments(w http.ResponseWriter, r *http.Request) {
	var req latestRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rsp, reasoning, err := h.svc.LatestDevelopments(r.Context(), req.BookSection)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, latestResponse{
		Response:  rsp,
		Reasoning: reasoning,
	})
}

func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	limit := defaultDocumentsLimit

	if raw := r.URL.Query().Get("limit"); len(raw) > 0 {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, errs.Validation("limit must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := h.svc.Documents(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rsp := documentsResponse{Documents: make([]documentResponse, 0, len(entries))}
	for _, e := range entries {
		rsp.Documents = append(rsp.Documents, documentResponse{
			Id:         e.Id,
			Source:     e.Source,
			Path:       e.Path,
			IngestedAt: e.IngestedAt,
		})
	}

	writeJSON(w, http.StatusOK, rsp)
}

func (h *Handler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.svc.Signup(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// NewRouter mounts every route at the root and again under /api. With
// requireAuth the document and question routes need a bearer token.
func NewRouter(svc Service, requireAuth bool) http.Handler {
	h := &Handler{svc: svc}

	router := mux.NewRouter()

	router.HandleFunc("/", h.Root).Methods(http.MethodGet)
	router.HandleFunc("/api", h.Root).Methods(http.MethodGet)
	router.HandleFunc("/api/", h.Root).Methods(http.MethodGet)

	protect := func(next http.HandlerFunc) http.Handler {
		if !requireAuth {
			return next
		}
		return RequireAuth(svc)(next)
	}

	for _, prefix := range []string{"", "/api"} {
		sub := router
		if len(prefix) > 0 {
			sub = router.PathPrefix(prefix).Subrouter()
		}

		sub.HandleFunc("/auth/sign-up/email", h.SignUp).Methods(http.MethodPost)
		sub.HandleFunc("/auth/sign-in/email", h.SignIn).Methods(http.MethodPost)

		sub.Handle("/ingest", protect(h.Ingest)).Methods(http.MethodPost)
		sub.Handle("/chat", protect(h.Chat)).Methods(http.MethodPost)
		sub.Handle("/chat/selected", protect(h.Selected)).Methods(http.MethodPost)
		sub.Handle("/latest-developments", protect(h.LatestDevelopments)).Methods(http.MethodPost)
		sub.Handle("/documents", protect(h.Documents)).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	})

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
	})

	return router
}
