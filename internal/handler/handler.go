package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"linkkit/internal/export"
	"linkkit/internal/model"
	"linkkit/internal/qr"
	"linkkit/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	Service     *service.Service
	AdminToken  string
	DevHTTP     bool
	RateLimiter *SimpleRateLimiter
	// Exports receives /api/qr/export uploads; nil disables the route.
	Exports     export.Sink
	NewRenderer func() qr.Renderer
	Log         logrus.FieldLogger
}

type shortenRequest struct {
	URL string `json:"url"`
}

type shortenResponse struct {
	ShortURL    string `json:"short_url"`
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
}

func NewHandler(s *service.Service, log logrus.FieldLogger) *Handler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handler{
		Service:     s,
		RateLimiter: NewSimpleRateLimiter(1, 10),
		NewRenderer: func() qr.Renderer { return qr.NewStyledRenderer() },
		Log:         log.WithField("component", "http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")
	r.HandleFunc("/", h.Index).Methods("GET")
	r.HandleFunc("/api/shorten", h.RateLimitMiddleware(h.CreateShort)).Methods("POST")
	r.HandleFunc("/api/resolve/{code}", h.ResolveShort).Methods("GET")
	r.HandleFunc("/api/utm", h.BuildUTM).Methods("POST")
	r.HandleFunc("/api/qr", h.RateLimitMiddleware(h.RenderQR)).Methods("POST")
	r.HandleFunc("/api/qr/export", h.RateLimitMiddleware(h.ExportQR)).Methods("POST")
	r.HandleFunc("/admin/urls", h.AdminAuth(h.ListURLs)).Methods("GET")
	r.HandleFunc("/{code}", h.RateLimitMiddleware(h.Land)).Methods("GET")

	r.Use(h.requestID, h.logRequests)
	return r
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// baseURL is the page short links point at: the configured one, or this
// server's root.
func (h *Handler) baseURL(r *http.Request) string {
	if h.Service.BaseURL != "" {
		return h.Service.BaseURL
	}
	scheme := "https"
	if r.TLS == nil && h.DevHTTP {
		scheme = "http"
	}
	return scheme + "://" + r.Host + "/"
}

func (h *Handler) CreateShort(w http.ResponseWriter, r *http.Request) {
	var req shortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	m, err := h.Service.Shorten(r.Context(), req.URL)
	if errors.Is(err, service.ErrInvalidURL) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger(r).WithError(err).Error("shorten failed")
		http.Error(w, "could not save short link", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, &shortenResponse{
		ShortURL:    service.LinkAt(h.baseURL(r), m.ShortCode),
		ShortCode:   m.ShortCode,
		OriginalURL: m.OriginalURL,
	})
}

func (h *Handler) ResolveShort(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	original, err := h.Service.Resolve(r.Context(), code)
	if errors.Is(err, service.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger(r).WithError(err).Error("resolve failed")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, &model.ShortLink{
		ShortCode:   code,
		OriginalURL: original,
		ShortURL:    service.LinkAt(h.baseURL(r), code),
	})
}

// Land serves a short link opened as a path rather than a fragment.
func (h *Handler) Land(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	base := h.baseURL(r)
	l, err := h.Service.Land(r.Context(), service.LinkAt(base, code))
	if err != nil {
		h.logger(r).WithError(err).Error("landing failed")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	switch l.Kind {
	case model.LandingRedirect:
		http.Redirect(w, r, l.Target, http.StatusFound)
	case model.LandingNotFound:
		h.renderPage(w, r, http.StatusNotFound, notFoundPage, l)
	default:
		http.Redirect(w, r, base, http.StatusFound)
	}
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, http.StatusOK, indexPage, &model.Landing{Home: h.baseURL(r)})
}

func (h *Handler) ListURLs(w http.ResponseWriter, r *http.Request) {
	page, limit := 1, 20
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	list, err := h.Service.List(r.Context())
	if err != nil {
		h.logger(r).WithError(err).Error("list failed")
		http.Error(w, "error listing", http.StatusInternalServerError)
		return
	}

	start := (page - 1) * limit
	if start > len(list) {
		start = len(list)
	}
	end := min(start+limit, len(list))
	out := list[start:end]
	base := h.baseURL(r)
	for i := range out {
		out[i].ShortURL = service.LinkAt(base, out[i].ShortCode)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) AdminAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" || token != h.AdminToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (h *Handler) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, wait := h.RateLimiter.Allow(clientIP(r))
		if !ok {
			secs := int(wait.Seconds() + 0.999)
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	}
}

type ctxKey int

const requestIDKey ctxKey = iota

// RequestID returns the id assigned to the request, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		h.logger(r).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func (h *Handler) logger(r *http.Request) logrus.FieldLogger {
	if id := RequestID(r.Context()); id != "" {
		return h.Log.WithField("request_id", id)
	}
	return h.Log
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
