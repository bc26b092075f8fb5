package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/event"
	"github.com/trezcool/shule/core/user"
)

type eventApi struct {
	auth *authenticator
	svc  *event.Service
}

func registerEventAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := eventApi{auth: auth, svc: deps.EventSvc}
	admin := auth.requireRoles(user.RoleAdmin)

	eg := g.Group("/events", auth.jwt)
	eg.POST("", api.create, admin)
	eg.GET("", api.query, auth.requireRoles())
	eg.GET("/:id", api.retrieve, auth.requireRoles())
	eg.PUT("/:id", api.update, admin)
	eg.DELETE("/:id", api.destroy, admin)
}

func (api *eventApi) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	e, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ok(ctx, http.StatusCreated, "event created", e)
}

// query lists the events whose audience includes the caller's role. Admins see them all.
func (api *eventApi) query(ctx echo.Context) error {
	filter := new(event.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []event.Event{})
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !usr.IsAdmin() {
		filter.Role = usr.Role
	}

	events, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	return ok(ctx, http.StatusOK, "", nonNil(events))
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	e, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding event")
	}
	if !usr.IsAdmin() && !e.VisibleTo(usr.Role) {
		return errHttpNotFound
	}
	return ok(ctx, http.StatusOK, "", e)
}

func (api *eventApi) update(ctx echo.Context) error {
	var data event.UpdateEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	e, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ok(ctx, http.StatusOK, "event updated", e)
}

func (api *eventApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting event")
	}
	return ctx.NoContent(http.StatusNoContent)
}
