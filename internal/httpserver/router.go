package httpserver

import (
	"compress/gzip"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"telegram-alerts-go/alert"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ticket-admin-service/api/dto"
	"ticket-admin-service/internal/resolver"
	"ticket-admin-service/internal/store"
)

const (
	baseAPIPath           = "/api/tickets"
	batchResolvePath      = baseAPIPath + "/batch/resolve" // POST: resolve display names for a batch of ticket ids
	contentTypeJSON       = "application/json"
	headerContentEncoding = "Content-Encoding"
	encodingGzip          = "gzip"
	gzipLevel             = 5
)

// NewRouter returns the API http.Handler: batch name resolution plus
// single-record ticket CRUD for ops and seeding.
func NewRouter(st store.Store, res *resolver.BatchResolver, maxBodyBytes int64) http.Handler {
	r := chi.NewRouter()

	r.Use(limitBody(maxBodyBytes))
	r.Use(decompressGzip)
	r.Use(middleware.Compress(gzipLevel, contentTypeJSON))
	r.Use(MetricsMiddleware)

	r.Post(batchResolvePath, func(w http.ResponseWriter, r *http.Request) {
		handleBatchResolve(w, r, st, res)
	})

	r.Route(baseAPIPath+"/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			handleGet(w, r, st)
		})
		r.Put("/", func(w http.ResponseWriter, r *http.Request) {
			handlePut(w, r, st)
		})
		r.Delete("/", func(w http.ResponseWriter, r *http.Request) {
			handleDelete(w, r, st)
		})
	})

	return r
}

// NewMetricRouter serves prometheus metrics and liveness on its own port.
func NewMetricRouter() http.Handler {
	r := chi.NewRouter()
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	return r
}

type batchResolveRequest struct {
	IDs []string `json:"ids"`
}

type batchResolveResponse struct {
	Results map[string]*dto.ResolutionResult `json:"results"`
}

func handleBatchResolve(w http.ResponseWriter, r *http.Request, st store.Store, res *resolver.BatchResolver) {
	defer r.Body.Close()
	if !strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	var req batchResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(req.IDs) == 0 {
		http.Error(w, "empty ids", http.StatusBadRequest)
		return
	}

	// The resolver rejects duplicate ids; dedupe here so sloppy callers
	// still get one entry per id.
	ids := dedupe(req.IDs)

	records, err := st.GetAll(r.Context(), ids)
	if err != nil {
		zap.S().Errorw(alert.Prefix("load ticket batch failed"), "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	results := res.ResolveBatch(r.Context(), records)

	// Ids with no stored record still get an explicit unresolved entry so
	// the UI can render its placeholder instead of dropping the row.
	for _, id := range ids {
		if _, ok := results[id]; !ok {
			results[id] = &dto.ResolutionResult{Found: false}
		}
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	if err := json.NewEncoder(w).Encode(batchResolveResponse{Results: results}); err != nil {
		zap.S().Errorw(alert.Prefix("encode error"), "error", err)
	}
}

func handleGet(w http.ResponseWriter, r *http.Request, st store.Store) {
	id := chi.URLParam(r, "id")

	rec, err := st.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		zap.S().Errorw(alert.Prefix("load ticket failed"), "id", id, "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		zap.S().Errorw(alert.Prefix("encode error"), "error", err)
	}
}

func handlePut(w http.ResponseWriter, r *http.Request, st store.Store) {
	defer r.Body.Close()
	if !strings.HasPrefix(r.Header.Get("Content-Type"), contentTypeJSON) {
		http.Error(w, "unsupported content type", http.StatusUnsupportedMediaType)
		return
	}

	var rec dto.TicketRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := chi.URLParam(r, "id")
	if rec.ID != "" && rec.ID != id {
		http.Error(w, "body id does not match path", http.StatusBadRequest)
		return
	}
	rec.ID = id

	if err := st.Save(r.Context(), &rec); err != nil {
		zap.S().Errorw(alert.Prefix("save ticket failed"), "id", id, "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func handleDelete(w http.ResponseWriter, r *http.Request, st store.Store) {
	id := chi.URLParam(r, "id")
	if err := st.Delete(r.Context(), id); err != nil {
		zap.S().Errorw(alert.Prefix("delete ticket failed"), "id", id, "error", err)
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// ---- middleware ----

func limitBody(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}

func decompressGzip(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(headerContentEncoding) == encodingGzip {
			gz, err := gzip.NewReader(r.Body)
			if err != nil {
				http.Error(w, "invalid gzip body", http.StatusBadRequest)
				return
			}
			defer gz.Close()
			r.Body = struct{ io.ReadCloser }{gz}
		}
		next.ServeHTTP(w, r)
	})
}
