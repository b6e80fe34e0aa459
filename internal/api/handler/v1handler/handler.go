// Package v1handler serves the realm scoped disposable-email endpoints: the
// admin refresh and status endpoints and the registration form hook.
package v1handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/go-faster/jx"
	"go.uber.org/zap"

	"mailguard/internal/authz"
	"mailguard/internal/config"
	"mailguard/internal/disposable"
	"mailguard/internal/refresher"
	"mailguard/internal/validation"
	"mailguard/pkg/controller"
	"mailguard/pkg/domain"
	"mailguard/pkg/logger"
	"mailguard/pkg/serrors"
)

// DefaultRecentEvents is how many refresh events the status endpoint returns.
const DefaultRecentEvents = 10

// Authorizer decides whether a request may use the admin endpoints.
type Authorizer interface {
	Evaluate(ctx context.Context, req authz.Request) domain.AuthorizationDecision
}

// Validator checks a submitted registration or profile form.
type Validator interface {
	ValidateForm(ctx context.Context, form url.Values) validation.FormResult
}

// Deps are the collaborators of Handler.
type Deps struct {
	Cache         *disposable.Cache
	Refresher     refresher.Refresher
	Gate          Authorizer
	Authenticator Authenticator
	Validator     Validator
}

// Options configure Handler.
type Options struct {
	// Realm is the only realm served; other realms answer 404.
	Realm string
	// RecentEvents caps the events returned by the status endpoint.
	RecentEvents uint
}

// NewOptions constructs Options from the application config.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Realm:        cfg.Auth.Realm,
		RecentEvents: DefaultRecentEvents,
	}
}

type Handler struct {
	deps    Deps
	options Options
}

func New(deps Deps, options Options) *Handler {
	if options.RecentEvents == 0 {
		options.RecentEvents = DefaultRecentEvents
	}

	return &Handler{deps: deps, options: options}
}

// Register adds the v1 routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	refresh := controller.WithRecover(h.refreshPanicked)(http.HandlerFunc(h.RefreshDomainList))
	mux.Handle("POST /realms/{realm}/disposable-email/refresh-domain-list", refresh)
	mux.HandleFunc("GET /realms/{realm}/disposable-email/status", h.Status)
	mux.HandleFunc("POST /realms/{realm}/disposable-email/validate", h.ValidateEmail)
}

// realmServed reports whether the realm path value names the configured realm
// and answers 404 otherwise.
func (h *Handler) realmServed(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("realm") == h.options.Realm {
		return true
	}
	h.NewError(r.Context(), serrors.With(serrors.ErrNotFound, "realm not found")).Write(w)

	return false
}

// ErrorBody is the JSON body of generic error responses.
type ErrorBody struct {
	Code    string
	Message string
}

// ErrorResponse is a resolved error ready to be written.
type ErrorResponse struct {
	StatusCode int
	Response   ErrorBody
}

// Write encodes the error as {"code": ..., "message": ...}.
func (e *ErrorResponse) Write(w http.ResponseWriter) {
	writeJSON(w, e.StatusCode, func(enc *jx.Encoder) {
		enc.ObjStart()
		enc.FieldStart("code")
		enc.Str(e.Response.Code)
		enc.FieldStart("message")
		enc.Str(e.Response.Message)
		enc.ObjEnd()
	})
}

type kindStatus struct {
	status  int
	message string
}

var kindStatuses = map[serrors.Kind]kindStatus{ //nolint: gochecknoglobals
	serrors.ErrNotFound:     {http.StatusNotFound, "resource not found"},
	serrors.ErrUnauthorized: {http.StatusUnauthorized, "unauthorized"},
	serrors.ErrForbidden:    {http.StatusForbidden, "forbidden"},
	serrors.ErrBadRequest:   {http.StatusBadRequest, "bad request"},
	serrors.ErrConflict:     {http.StatusConflict, "conflict"},
	serrors.ErrTimeout:      {http.StatusGatewayTimeout, "timeout"},
	serrors.ErrUnavailable:  {http.StatusServiceUnavailable, "service unavailable"},
	serrors.ErrRateLimited:  {http.StatusTooManyRequests, "rate limited"},
}

// NewError maps err onto a status code using its serrors kind. Errors without
// a known kind, and ErrInternal, become a 500 without details.
func (h *Handler) NewError(ctx context.Context, err error) *ErrorResponse {
	kind := serrors.KindOf(err)
	ks, ok := kindStatuses[kind]
	if !ok {
		logger.Error(ctx, "internal error", zap.Error(err))

		return &ErrorResponse{
			StatusCode: http.StatusInternalServerError,
			Response:   ErrorBody{Code: serrors.ErrInternal.Error(), Message: "internal error"},
		}
	}

	msg := serrors.MessageOf(err)
	if msg == "" {
		msg = ks.message
	}
	logger.Debug(ctx, "request failed", zap.Error(err))

	return &ErrorResponse{
		StatusCode: ks.status,
		Response:   ErrorBody{Code: kind.Error(), Message: msg},
	}
}

func writeJSON(w http.ResponseWriter, status int, encode func(enc *jx.Encoder)) {
	var enc jx.Encoder
	encode(&enc)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(enc.Bytes())
}
