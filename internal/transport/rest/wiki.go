package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/binia1/hyobinwiki/internal/domain"
	"github.com/binia1/hyobinwiki/internal/service/wiki"
)

// wikiService defines the wiki operations needed by WikiHandler.
type wikiService interface {
	Article(title string) (domain.Article, bool)
	Titles() []string
	SaveArticle(ctx context.Context, input wiki.SaveInput) (domain.Article, error)
	History(title string) ([]domain.Revision, error)
	Discussion(title string) ([]domain.Discussion, error)
	PostDiscussion(ctx context.Context, input wiki.PostInput) (domain.Discussion, error)
	Search(term string) []wiki.SearchResult
	RecentChanges(n int) []domain.Article
	Random() (string, error)
}

// signInFailure reports the server's sign-in error message, if any.
type signInFailure interface {
	Failure() string
}

// WikiHandler serves the article REST endpoints.
type WikiHandler struct {
	svc    wikiService
	sync   syncStatus
	signIn signInFailure
	log    *slog.Logger
}

// NewWikiHandler creates a WikiHandler.
func NewWikiHandler(svc wikiService, sync syncStatus, signIn signInFailure, logger *slog.Logger) *WikiHandler {
	return &WikiHandler{svc: svc, sync: sync, signIn: signIn, log: logger.With("handler", "wiki")}
}

// Register mounts the wiki routes on mux.
func (h *WikiHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/status", h.Status)
	mux.HandleFunc("GET /api/articles", h.List)
	mux.HandleFunc("GET /api/articles/{title}", h.Get)
	mux.HandleFunc("PUT /api/articles/{title}", h.Save)
	mux.HandleFunc("GET /api/articles/{title}/history", h.History)
	mux.HandleFunc("GET /api/articles/{title}/discussion", h.Discussion)
	mux.HandleFunc("POST /api/articles/{title}/discussion", h.PostDiscussion)
	mux.HandleFunc("GET /api/search", h.Search)
	mux.HandleFunc("GET /api/recent", h.Recent)
	mux.HandleFunc("GET /api/random", h.Random)
}

type statusResponse struct {
	Loading     bool   `json:"loading"`
	Error       string `json:"error,omitempty"`
	SignInError string `json:"signInError,omitempty"`
}

type articleSummary struct {
	Title       string     `json:"title"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

type articleResponse struct {
	Title       string              `json:"title"`
	Exists      bool                `json:"exists"`
	Content     string              `json:"content"`
	History     []domain.Revision   `json:"history"`
	Discuss     []domain.Discussion `json:"discuss"`
	LastUpdated *time.Time          `json:"lastUpdated,omitempty"`
}

type saveRequest struct {
	Content string `json:"content"`
	Summary string `json:"summary"`
}

type postRequest struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

type searchResult struct {
	Title       string     `json:"title"`
	Snippet     string     `json:"snippet"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Status handles GET /api/status.
func (h *WikiHandler) Status(w http.ResponseWriter, r *http.Request) {
	st := h.sync.Status()
	writeJSON(w, http.StatusOK, statusResponse{
		Loading:     st.Loading,
		Error:       st.Error,
		SignInError: h.signIn.Failure(),
	})
}

// List handles GET /api/articles.
func (h *WikiHandler) List(w http.ResponseWriter, r *http.Request) {
	titles := h.svc.Titles()
	out := make([]articleSummary, 0, len(titles))
	for _, title := range titles {
		a, ok := h.svc.Article(title)
		if !ok {
			continue
		}
		out = append(out, articleSummary{Title: title, LastUpdated: a.LastUpdated})
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/articles/{title}. A missing article answers 404
// with exists=false so clients can offer to create it.
func (h *WikiHandler) Get(w http.ResponseWriter, r *http.Request) {
	title := r.PathValue("title")
	a, ok := h.svc.Article(title)
	if !ok {
		writeJSON(w, http.StatusNotFound, articleResponse{
			Title:   title,
			History: []domain.Revision{},
			Discuss: []domain.Discussion{},
		})
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(title, a))
}

// Save handles PUT /api/articles/{title}.
func (h *WikiHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	title := r.PathValue("title")
	a, err := h.svc.SaveArticle(r.Context(), wiki.SaveInput{
		Title:   title,
		Content: req.Content,
		Summary: req.Summary,
	})
	if err != nil {
		handleWriteError(h.log, w, r, err, wiki.SaveFailedMessage)
		return
	}
	writeJSON(w, http.StatusOK, toArticleResponse(title, a))
}

// History handles GET /api/articles/{title}/history.
func (h *WikiHandler) History(w http.ResponseWriter, r *http.Request) {
	revs, err := h.svc.History(r.PathValue("title"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(revs))
}

// Discussion handles GET /api/articles/{title}/discussion.
func (h *WikiHandler) Discussion(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.Discussion(r.PathValue("title"))
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(msgs))
}

// PostDiscussion handles POST /api/articles/{title}/discussion.
func (h *WikiHandler) PostDiscussion(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.PostDiscussion(r.Context(), wiki.PostInput{
		Title:   r.PathValue("title"),
		Topic:   req.Topic,
		Message: req.Content,
	})
	if err != nil {
		handleWriteError(h.log, w, r, err, wiki.DiscussFailedMessage)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Search handles GET /api/search?q=.
func (h *WikiHandler) Search(w http.ResponseWriter, r *http.Request) {
	results := h.svc.Search(r.URL.Query().Get("q"))
	out := make([]searchResult, 0, len(results))
	for _, res := range results {
		out = append(out, searchResult{Title: res.Title, Snippet: res.Snippet, LastUpdated: res.LastUpdated})
	}
	writeJSON(w, http.StatusOK, out)
}

// Recent handles GET /api/recent?limit=.
func (h *WikiHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	list := h.svc.RecentChanges(limit)
	out := make([]articleSummary, 0, len(list))
	for _, a := range list {
		out = append(out, articleSummary{Title: a.Title, LastUpdated: a.LastUpdated})
	}
	writeJSON(w, http.StatusOK, out)
}

// Random handles GET /api/random.
func (h *WikiHandler) Random(w http.ResponseWriter, r *http.Request) {
	title, err := h.svc.Random()
	if err != nil {
		handleError(h.log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articleSummary{Title: title})
}

func toArticleResponse(title string, a domain.Article) articleResponse {
	return articleResponse{
		Title:       title,
		Exists:      true,
		Content:     a.Content,
		History:     nonNil(a.History),
		Discuss:     nonNil(a.Discuss),
		LastUpdated: a.LastUpdated,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
