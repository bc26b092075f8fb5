package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/staff"
	"github.com/trezcool/shule/core/user"
)

type staffApi struct {
	svc *staff.Service
}

func registerStaffAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := staffApi{svc: deps.StaffSvc}
	admin := auth.requireRoles(user.RoleAdmin)
	readers := auth.requireRoles(user.RoleAdmin, user.RoleStaff)

	sg := g.Group("/staff", auth.jwt)
	sg.POST("", api.create, admin)
	sg.GET("", api.query, readers)
	sg.GET("/:id", api.retrieve, readers)
	sg.PUT("/:id", api.update, admin)
	sg.DELETE("/:id", api.destroy, admin)
}

func (api *staffApi) create(ctx echo.Context) error {
	var data staff.NewStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStaff")
	}
	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating staff")
	}
	return ok(ctx, http.StatusCreated, "staff created", s)
}

func (api *staffApi) query(ctx echo.Context) error {
	filter := new(staff.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []staff.Staff{})
	}

	members, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	return ok(ctx, http.StatusOK, "", nonNil(members))
}

func (api *staffApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding staff")
	}
	return ok(ctx, http.StatusOK, "", s)
}

func (api *staffApi) update(ctx echo.Context) error {
	var data staff.UpdateStaff
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStaff")
	}
	s, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating staff")
	}
	return ok(ctx, http.StatusOK, "staff updated", s)
}

func (api *staffApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting staff")
	}
	return ctx.NoContent(http.StatusNoContent)
}
