package v1handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"mailguard/internal/validation"
	"mailguard/pkg/domain"
)

const validatePath = "/realms/shop/disposable-email/validate"

func validateRequest(form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, validatePath, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return req
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		email   string
		status  int
		message string
	}{
		{name: "accepted", email: "alice@example.com", status: http.StatusOK},
		{name: "disposable", email: "bob@Mailinator.com", status: http.StatusUnprocessableEntity, message: validation.MessageInvalidDomain},
		{name: "empty", email: "", status: http.StatusUnprocessableEntity, message: validation.MessageEmailRequired},
		{name: "no domain", email: "carol@", status: http.StatusUnprocessableEntity, message: validation.MessageEmailRequired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.cache.Replace(domain.NewDomainSet("mailinator.com"))

			rec, body := f.do(validateRequest(url.Values{"email": {tc.email}}))
			require.Equal(t, tc.status, rec.Code)
			if tc.message == "" {
				require.Equal(t, true, body["valid"])
				require.NotContains(t, body, "errors")

				return
			}
			require.Equal(t, false, body["valid"])
			errs := body["errors"].([]any)
			require.Len(t, errs, 1)
			fe := errs[0].(map[string]any)
			require.Equal(t, validation.EmailField, fe["field"])
			require.Equal(t, tc.message, fe["message"])
		})
	}
}

func TestValidate_UnknownRealm(t *testing.T) {
	f := newFixture(t)

	req := validateRequest(url.Values{"email": {"alice@example.com"}})
	req.URL.Path = "/realms/other/disposable-email/validate"
	rec, _ := f.do(req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
