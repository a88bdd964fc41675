package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// CORS lets the browser front end read the read-only API.
func CORS(allowedOrigins []string, logger *zap.Logger) func(http.Handler) http.Handler {
	// 空の場合はすべて許可（開発用）
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	logger.Info("cors configured", zap.Strings("allowedOrigins", allowedOrigins))

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "HEAD", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	})
}
