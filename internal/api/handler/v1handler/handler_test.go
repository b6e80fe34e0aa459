package v1handler_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"mailguard/internal/api/handler/v1handler"
	"mailguard/internal/authz"
	"mailguard/internal/disposable"
	mockrefresher "mailguard/internal/refresher/mock"
	"mailguard/internal/validation"
	"mailguard/pkg/logger"
	"mailguard/pkg/serrors"
	"mailguard/pkg/token"
)

const (
	testRealm   = "shop"
	testCookie  = "MAILGUARD_SESSION"
	serviceBot  = "ops-bot"
	refreshPath = "/realms/shop/disposable-email/refresh-domain-list"
)

func TestMain(m *testing.M) {
	// Initialize logger to avoid nil pointer deref during tests
	logger.Setup(logger.DevelopmentEnvironment, "")
	m.Run()
}

func genRSAKeys(tb testing.TB) (*rsa.PrivateKey, string) {
	tb.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(tb, err)
	pubASN1, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	require.NoError(tb, err)

	return priv, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubASN1}))
}

type fixture struct {
	mux       *http.ServeMux
	cache     *disposable.Cache
	refresher *mockrefresher.MockRefresher
	issuer    *token.Issuer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	priv, pubPEM := genRSAKeys(t)
	verifier, err := token.NewVerifier(token.VerifierOptions{PublicKey: pubPEM})
	require.NoError(t, err)

	cache := disposable.New()
	r := mockrefresher.NewMockRefresher(gomock.NewController(t))
	h := v1handler.New(v1handler.Deps{
		Cache:         cache,
		Refresher:     r,
		Gate:          authz.New(verifier, authz.NewStaticClients(serviceBot), authz.Options{}),
		Authenticator: v1handler.NewSecHandler(verifier, testCookie),
		Validator:     validation.New(cache, validation.Options{}),
	}, v1handler.Options{Realm: testRealm})

	mux := http.NewServeMux()
	h.Register(mux)

	return &fixture{mux: mux, cache: cache, refresher: r, issuer: token.NewIssuerFromKey(priv, "")}
}

func (f *fixture) sign(t *testing.T, clientID string, roles ...string) string {
	t.Helper()
	tok, err := f.issuer.Sign(token.Grant{
		Subject:  "service-account-" + clientID,
		ClientID: clientID,
		Roles:    map[string][]string{authz.DefaultAdminClient: roles},
		TTL:      time.Minute,
	})
	require.NoError(t, err)

	return tok
}

func (f *fixture) do(req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)

	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)

	return rec, body
}

func refreshRequest(authorization ...string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, refreshPath, nil)
	for _, a := range authorization {
		req.Header.Add("Authorization", a)
	}

	return req
}

func TestNewError_InternalOnPlainError(t *testing.T) {
	h := v1handler.New(v1handler.Deps{}, v1handler.Options{})

	res := h.NewError(context.Background(), errors.New("boom"))
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, serrors.ErrInternal.Error(), res.Response.Code)
	require.Equal(t, "internal error", res.Response.Message)
}

func TestNewError_KindSentinelDirect_NotFound(t *testing.T) {
	h := v1handler.New(v1handler.Deps{}, v1handler.Options{})

	res := h.NewError(context.Background(), serrors.ErrNotFound)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
	require.Equal(t, serrors.ErrNotFound.Error(), res.Response.Code)
	require.Equal(t, "resource not found", res.Response.Message)
}

func TestNewError_SemanticWrap_BadRequest(t *testing.T) {
	h := v1handler.New(v1handler.Deps{}, v1handler.Options{})

	err := serrors.Wrap(serrors.ErrBadRequest, errors.New("unexpected EOF"), "could not read form")
	res := h.NewError(context.Background(), err)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
	require.Equal(t, serrors.ErrBadRequest.Error(), res.Response.Code)
	require.Equal(t, "could not read form", res.Response.Message)
}

func TestNewError_InternalKind_GeneratesInternal(t *testing.T) {
	h := v1handler.New(v1handler.Deps{}, v1handler.Options{})

	res := h.NewError(context.Background(), serrors.With(serrors.ErrInternal, "db exploded"))
	require.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.Equal(t, "internal error", res.Response.Message)
}
