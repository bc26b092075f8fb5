package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/notification"
	"github.com/trezcool/shule/core/user"
)

type notificationApi struct {
	auth *authenticator
	svc  *notification.Service
}

func registerNotificationAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := notificationApi{auth: auth, svc: deps.NotificationSvc}
	writers := auth.requireRoles(user.RoleAdmin, user.RoleStaff)

	ng := g.Group("/notifications", auth.jwt)
	ng.POST("", api.create, writers)
	ng.GET("", api.query, auth.requireRoles())
	ng.GET("/:id", api.retrieve, auth.requireRoles())
	ng.POST("/:id/read", api.markRead, auth.requireRoles())
	ng.DELETE("/:id", api.destroy, writers)
}

func (api *notificationApi) create(ctx echo.Context) error {
	var data notification.NewNotification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNotification")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	n, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating notification")
	}
	return ok(ctx, http.StatusCreated, "notification sent", n)
}

// query lists the caller's notifications: those sent to their role or to them.
func (api *notificationApi) query(ctx echo.Context) error {
	filter := new(notification.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []notification.Notification{})
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	notifications, err := api.svc.ForUser(ctx.Request().Context(), usr, filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	return ok(ctx, http.StatusOK, "", nonNil(notifications))
}

func (api *notificationApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	n, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding notification")
	}
	if !usr.IsAdmin() && !n.IsFor(usr.ID, usr.Role) {
		return errHttpNotFound
	}
	return ok(ctx, http.StatusOK, "", n)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	n, err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id"), usr)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	return ok(ctx, http.StatusOK, "", n)
}

func (api *notificationApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	return ctx.NoContent(http.StatusNoContent)
}
