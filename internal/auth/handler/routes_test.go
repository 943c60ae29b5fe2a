package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegisterRoutes verifies every route is mounted. Handlers will answer
// with 400/401 for the empty requests, which is fine for an existence check;
// only a 404 means the route is missing.
func TestRegisterRoutes(t *testing.T) {
	app, _, _ := newTestApp(t)

	testCases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/register"},
		{http.MethodPost, "/api/v1/verify-email"},
		{http.MethodPost, "/api/v1/resend-verification"},
		{http.MethodPost, "/api/v1/login"},
		{http.MethodPost, "/api/v1/oauth/login"},
		{http.MethodPost, "/api/v1/refresh"},
		{http.MethodPost, "/api/v1/forgot-password"},
		{http.MethodPost, "/api/v1/reset-password"},
		{http.MethodDelete, "/api/v1/session"},
		{http.MethodGet, "/api/v1/sessions"},
		{http.MethodDelete, "/api/v1/sessions/some-id"},
		{http.MethodPost, "/api/v1/change-password"},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_%s_exists", tc.method, tc.path), func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.NotEqual(t, http.StatusNotFound, resp.StatusCode)
		})
	}
}
