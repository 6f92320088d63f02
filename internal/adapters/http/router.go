package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
	"github.com/kpetrov/docflow/internal/observability/metrics"
)

// Options carries the router tunables that are not services.
type Options struct {
	RateLimitRPS   int
	RateLimitBurst int
}

type Router struct {
	auth       ports.AuthService
	uploader   ports.DocumentUploader
	searcher   ports.DocumentSearcher
	statusSvc  ports.StatusReader
	downloader ports.DownloadService
	tokens     ports.TokenManager
	metrics    *metrics.HTTPServerMetrics
	logger     *slog.Logger
	opts       Options
}

func NewRouter(
	auth ports.AuthService,
	uploader ports.DocumentUploader,
	searcher ports.DocumentSearcher,
	statusSvc ports.StatusReader,
	downloader ports.DownloadService,
	tokens ports.TokenManager,
	serverMetrics *metrics.HTTPServerMetrics,
	logger *slog.Logger,
	opts Options,
) *Router {
	return &Router{
		auth:       auth,
		uploader:   uploader,
		searcher:   searcher,
		statusSvc:  statusSvc,
		downloader: downloader,
		tokens:     tokens,
		metrics:    serverMetrics,
		logger:     logger,
		opts:       opts,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/auth/register", rt.register)
	mux.HandleFunc("/auth/login", rt.login)
	mux.HandleFunc("/documents", rt.uploadDocument)
	mux.HandleFunc("/search", rt.search)
	mux.HandleFunc("/status/", rt.statusHistory)
	mux.HandleFunc("/download", rt.download)
	mux.Handle("/metrics", rt.metrics.Handler())

	var handler http.Handler = mux
	handler = rt.metrics.Middleware("api", handler)
	handler = rateLimitMiddleware(handler, rt.opts.RateLimitRPS, rt.opts.RateLimitBurst)
	handler = corsMiddleware(handler)
	handler = accessLogMiddleware(rt.logger, handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.auth.Register(r.Context(), req.Username, req.Password, req.Email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	result, err := rt.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	claims, ok := rt.authenticate(w, r)
	if !ok {
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	doc, err := rt.uploader.Upload(r.Context(), claims, fileHeader.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"documentId": doc.DocumentID,
		"status":     "queued",
	})
}

func (rt *Router) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be an integer"})
			return
		}
		limit = parsed
	}

	docs, err := rt.searcher.Search(r.Context(), q.Get("q"), domain.SearchFilter{
		Category: q.Get("category"),
		FileType: q.Get("fileType"),
		Status:   q.Get("status"),
	}, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": docs,
		"count":   len(docs),
	})
}

func (rt *Router) statusHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	claims, ok := rt.authenticate(w, r)
	if !ok {
		return
	}

	documentID := strings.TrimPrefix(r.URL.Path, "/status/")
	if documentID == "" || strings.Contains(documentID, "/") {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "document id is required"})
		return
	}

	events, err := rt.statusSvc.History(r.Context(), claims, documentID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"documentId": documentID,
		"history":    events,
	})
}

func (rt *Router) download(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	claims, ok := rt.authenticate(w, r)
	if !ok {
		return
	}

	documentID := r.URL.Query().Get("documentId")
	if documentID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "documentId query parameter is required"})
		return
	}

	grant, err := rt.downloader.Download(r.Context(), claims, documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, grant)
}

// authenticate verifies the bearer token of the request. The signature is
// checked on every call; there is no trusted fast path.
func (rt *Router) authenticate(w http.ResponseWriter, r *http.Request) (domain.TokenClaims, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authorization header is required"})
		return domain.TokenClaims{}, false
	}

	claims, err := rt.tokens.Verify(header)
	if err != nil {
		writeError(w, err)
		return domain.TokenClaims{}, false
	}
	return claims, true
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("write json response", "error", err)
	}
}
