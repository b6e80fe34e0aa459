package controller

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"mailguard/pkg/logger"
)

// WithRecover returns a middleware that turns a panic in next into a call to
// onPanic. The panic value and stack are logged. http.ErrAbortHandler is
// re-panicked so the server can abort the connection.
func WithRecover(onPanic func(w http.ResponseWriter, r *http.Request)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler { //nolint: errorlint
					panic(v)
				}

				logger.Error(r.Context(), "recovered from panic",
					zap.String("panic", fmt.Sprint(v)),
					zap.ByteString("stack", debug.Stack()))
				onPanic(w, r)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
