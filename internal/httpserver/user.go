package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	"github.com/Skotchmaster/shop_orders/internal/util"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type UserHTTP struct {
	Users    *service.UserService
	Contacts *service.ContactService
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "user.me"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "me_error", err)
	}

	u, err := h.Users.Me(ctx, userID)
	if err != nil {
		return fail(c, l, "me_error", err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) ListContacts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "contact.list"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "list_contacts_error", err)
	}

	list, err := h.Contacts.List(ctx, userID)
	if err != nil {
		return fail(c, l, "list_contacts_error", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UserHTTP) GetContact(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "contact.get"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "get_contact_error", err)
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(c, l, "get_contact_error", service.MsgBadArgs, nil)
	}

	contact, err := h.Contacts.Get(ctx, userID, id)
	if err != nil {
		return fail(c, l, "get_contact_error", err)
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *UserHTTP) CreateContact(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "contact.create"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "create_contact_error", err)
	}

	var req transport.ContactInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "create_contact_error", service.MsgBadFormat, err)
	}

	contact, err := h.Contacts.Create(ctx, userID, req)
	if err != nil {
		return fail(c, l, "create_contact_error", err)
	}

	l.Info("create_contact_success", zap.Uint("contact_id", contact.ID))
	return c.JSON(http.StatusOK, contact)
}

func (h *UserHTTP) UpdateContact(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "contact.update"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "update_contact_error", err)
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(c, l, "update_contact_error", service.MsgBadArgs, nil)
	}

	var req transport.ContactPatch
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "update_contact_error", service.MsgBadFormat, err)
	}

	contact, err := h.Contacts.Update(ctx, userID, id, req)
	if err != nil {
		return fail(c, l, "update_contact_error", err)
	}
	return c.JSON(http.StatusOK, contact)
}

func (h *UserHTTP) DeleteContact(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "contact.delete"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "delete_contact_error", err)
	}
	id, ok := util.ParseID(c.Param("id"))
	if !ok {
		return badRequest(c, l, "delete_contact_error", service.MsgBadArgs, nil)
	}

	if err := h.Contacts.Delete(ctx, userID, id); err != nil {
		return fail(c, l, "delete_contact_error", err)
	}
	return c.JSON(http.StatusOK, transport.OK())
}
