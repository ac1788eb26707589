package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

const (
	msgUnauthorized = "Требуется авторизация"
	msgInternal     = "внутренняя ошибка"

	labelUpdated = "Обновлено объектов"
	labelDeleted = "Удалено объектов"
)

var errUnauthorized = errors.New("unauthorized")

// GetID reads the caller id the auth middleware put into the context.
func GetID(c echo.Context) (uint, error) {
	s, ok := c.Get(middleware.CtxUserID).(string)
	if !ok || s == "" {
		return 0, errUnauthorized
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errUnauthorized
	}
	return uint(id), nil
}

func unauthorized(c echo.Context, l *zap.Logger, event string, err error) error {
	l.Warn(event, zap.Int("status", http.StatusUnauthorized), zap.Error(err))
	return c.JSON(http.StatusUnauthorized, transport.FailError(msgUnauthorized))
}

// fail answers business errors with 200 and Status:false; anything else is a 500.
func fail(c echo.Context, l *zap.Logger, event string, err error) error {
	return failWith(c, l, event, err, transport.Fail)
}

func failWith(c echo.Context, l *zap.Logger, event string, err error, body func(string) transport.Response) error {
	var se *service.Error
	if errors.As(err, &se) {
		l.Warn(event, zap.Int("status", http.StatusOK), zap.String("reason", se.Msg), zap.Error(err))
		return c.JSON(http.StatusOK, body(se.Msg))
	}
	l.Error(event, zap.Int("status", http.StatusInternalServerError), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, transport.Fail(msgInternal))
}

func badRequest(c echo.Context, l *zap.Logger, event, msg string, err error) error {
	l.Warn(event, zap.Int("status", http.StatusOK), zap.String("reason", msg), zap.Error(err))
	return c.JSON(http.StatusOK, transport.Fail(msg))
}

// itemsParam reads `items` from a JSON body or from a form or query field.
// An absent value yields nil.
func itemsParam(c echo.Context) (json.RawMessage, error) {
	req := c.Request()
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var body transport.ItemsRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		raw := transport.ItemsPayload(body.Items)
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil, nil
		}
		return raw, nil
	}
	v, err := formItems(c)
	if err != nil {
		return nil, err
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	return json.RawMessage(v), nil
}

// formItems reads the items field. net/http parses a urlencoded body only for
// POST, PUT and PATCH, so DELETE bodies are decoded here.
func formItems(c echo.Context) (string, error) {
	req := c.Request()
	if req.Method != http.MethodDelete {
		return c.FormValue("items"), nil
	}
	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return "", err
		}
		vals, err := url.ParseQuery(string(raw))
		if err != nil {
			return "", err
		}
		if v := vals.Get("items"); v != "" {
			return v, nil
		}
	}
	return c.QueryParam("items"), nil
}

// optionalID parses an optional numeric query parameter.
func optionalID(c echo.Context, name string) (*uint, bool) {
	v := c.QueryParam(name)
	if v == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	u := uint(id)
	return &u, true
}
