package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func newGuarded(token string) *echo.Echo {
	e := echo.New()
	guard := NewAuthMiddleware(token)
	e.POST("/notes", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, guard.RequireToken)
	return e
}

func TestRequireToken(t *testing.T) {
	e := newGuarded("secret")

	cases := []struct {
		header string
		code   int
	}{
		{"", http.StatusUnauthorized},
		{"secret", http.StatusUnauthorized},
		{"Basic secret", http.StatusUnauthorized},
		{"Bearer wrong", http.StatusUnauthorized},
		{"Bearer secret", http.StatusCreated},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/notes", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		res := httptest.NewRecorder()
		e.ServeHTTP(res, req)
		if res.Code != tc.code {
			t.Errorf("header %q: expected %d got %d", tc.header, tc.code, res.Code)
		}
	}
}

func TestRequireTokenDisabled(t *testing.T) {
	e := newGuarded("")

	req := httptest.NewRequest(http.MethodPost, "/notes", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", res.Code)
	}
}
