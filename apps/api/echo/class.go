package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/class"
	"github.com/trezcool/shule/core/user"
)

type classApi struct {
	svc *class.Service
}

func registerClassAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := classApi{svc: deps.ClassSvc}
	admin := auth.requireRoles(user.RoleAdmin)

	cg := g.Group("/classes", auth.jwt)
	cg.POST("", api.create, admin)
	cg.GET("", api.query, auth.requireRoles())
	cg.GET("/:id", api.retrieve, auth.requireRoles())
	cg.PUT("/:id", api.update, admin)
	cg.DELETE("/:id", api.destroy, admin)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	c, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ok(ctx, http.StatusCreated, "class created", c)
}

func (api *classApi) query(ctx echo.Context) error {
	filter := new(class.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []class.Class{})
	}
	classes, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ok(ctx, http.StatusOK, "", nonNil(classes))
}

func (api *classApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding class")
	}
	return ok(ctx, http.StatusOK, "", c)
}

func (api *classApi) update(ctx echo.Context) error {
	var data class.UpdateClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ok(ctx, http.StatusOK, "class updated", c)
}

func (api *classApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}
