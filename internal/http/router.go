package http

import (
	"context"
	"net/http"
	"time"

	"hello-firestore/backend/internal/config"
	"hello-firestore/backend/internal/domain/user"
	"hello-firestore/backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RecordReader is the read side of user.Repo.
type RecordReader interface {
	Get(ctx context.Context, k user.Key) (*user.Record, error)
}

type RouterDeps struct {
	Cfg    config.Config
	Logger *zap.Logger
	Users  RecordReader
	// Page serves "/". Optional.
	Page http.Handler
}

func NewRouter(d RouterDeps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(d.Cfg.AllowedOrigins, logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = WriteJSON(w, 200, map[string]any{"ok": true, "ts": time.Now().UTC().Format(time.RFC3339)})
	})

	key := user.Key{Collection: d.Cfg.UserCollection, ID: d.Cfg.UserID}
	r.Get("/api/user", userHandler(d.Users, key, logger))

	if d.Page != nil {
		r.Method(http.MethodGet, "/", d.Page)
	}

	return r
}

func userHandler(users RecordReader, key user.Key, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := users.Get(r.Context(), key)
		if err != nil {
			status, msg := mapUserError(err)
			if status == http.StatusNotFound {
				_ = WriteJSON(w, status, emptyObject)
				return
			}
			logger.Error("user lookup failed", zap.Stringer("key", key), zap.Error(err))
			Fail(w, status, msg)
			return
		}
		if err := WriteJSON(w, 200, rec); err != nil {
			logger.Error("user encode failed", zap.Stringer("key", key), zap.Error(err))
		}
	}
}

func mapUserError(err error) (int, string) {
	switch {
	case user.IsErrNotFound(err):
		return 404, "not found"
	case user.IsErrBadKey(err):
		return 500, "misconfigured record key"
	default:
		return 500, "internal error"
	}
}
