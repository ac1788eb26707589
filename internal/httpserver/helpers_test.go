package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

func TestGetID(t *testing.T) {
	e := echo.New()
	tests := []struct {
		name  string
		value any
		want  uint
		ok    bool
	}{
		{name: "numeric subject", value: "42", want: 42, ok: true},
		{name: "missing", value: nil},
		{name: "not a number", value: "abc"},
		{name: "zero", value: "0"},
		{name: "wrong type", value: 42},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tt.value != nil {
				c.Set(middleware.CtxUserID, tt.value)
			}
			id, err := GetID(c)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestItemsParam(t *testing.T) {
	e := echo.New()
	tests := []struct {
		name        string
		method      string
		target      string
		contentType string
		body        string
		want        string
	}{
		{name: "json array", contentType: echo.MIMEApplicationJSON, body: `{"items":[{"id":1}]}`, want: `[{"id":1}]`},
		{name: "json string", contentType: echo.MIMEApplicationJSON, body: `{"items":"1,2"}`, want: `1,2`},
		{name: "json null", contentType: echo.MIMEApplicationJSON, body: `{"items":null}`, want: ``},
		{name: "empty json body", contentType: echo.MIMEApplicationJSON, body: ``, want: ``},
		{name: "form", contentType: echo.MIMEApplicationForm, body: `items=3%2C4`, want: `3,4`},
		{name: "form missing", contentType: echo.MIMEApplicationForm, body: ``, want: ``},
		{name: "delete form", method: http.MethodDelete, contentType: echo.MIMEApplicationForm, body: `items=abc%2C12`, want: `abc,12`},
		{name: "delete query", method: http.MethodDelete, target: "/?items=5", want: `5`},
		{name: "delete form over query", method: http.MethodDelete, target: "/?items=5", contentType: echo.MIMEApplicationForm, body: `items=6`, want: `6`},
		{name: "delete json", method: http.MethodDelete, contentType: echo.MIMEApplicationJSON, body: `{"items":"7"}`, want: `7`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method, target := tt.method, tt.target
			if method == "" {
				method = http.MethodPost
			}
			if target == "" {
				target = "/"
			}
			req := httptest.NewRequest(method, target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set(echo.HeaderContentType, tt.contentType)
			}
			c := e.NewContext(req, httptest.NewRecorder())

			raw, err := itemsParam(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(raw))
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"items":`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	_, err := itemsParam(e.NewContext(req, httptest.NewRecorder()))
	assert.Error(t, err)
}
