package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/timetable"
	"github.com/trezcool/shule/core/user"
)

type timetableApi struct {
	svc *timetable.Service
}

func registerTimetableAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := timetableApi{svc: deps.TimetableSvc}
	admin := auth.requireRoles(user.RoleAdmin)

	tg := g.Group("/timetables", auth.jwt)
	tg.POST("", api.create, admin)
	tg.GET("", api.query, auth.requireRoles())
	tg.GET("/:id", api.retrieve, auth.requireRoles())
	tg.PUT("/:id", api.update, admin)
	tg.DELETE("/:id", api.destroy, admin)
}

func (api *timetableApi) create(ctx echo.Context) error {
	var data timetable.NewTimetable
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTimetable")
	}
	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating timetable")
	}
	return ok(ctx, http.StatusCreated, "timetable created", t)
}

func (api *timetableApi) query(ctx echo.Context) error {
	filter := new(timetable.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []timetable.Timetable{})
	}
	timetables, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying timetables")
	}
	return ok(ctx, http.StatusOK, "", nonNil(timetables))
}

func (api *timetableApi) retrieve(ctx echo.Context) error {
	t, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding timetable")
	}
	return ok(ctx, http.StatusOK, "", t)
}

func (api *timetableApi) update(ctx echo.Context) error {
	var data timetable.UpdateTimetable
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTimetable")
	}
	t, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating timetable")
	}
	return ok(ctx, http.StatusOK, "timetable updated", t)
}

func (api *timetableApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting timetable")
	}
	return ctx.NoContent(http.StatusNoContent)
}
