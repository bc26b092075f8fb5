package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/lms"
	"github.com/trezcool/shule/core/user"
)

type contentApi struct {
	auth *authenticator
	svc  *lms.Service
}

func registerContentAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := contentApi{auth: auth, svc: deps.ContentSvc}
	writers := auth.requireRoles(user.RoleAdmin, user.RoleStaff)

	lg := g.Group("/lms", auth.jwt)
	lg.POST("", api.create, writers)
	lg.GET("", api.query, auth.requireRoles())
	lg.GET("/:id", api.retrieve, auth.requireRoles())
	lg.PUT("/:id", api.update, writers)
	lg.DELETE("/:id", api.destroy, writers)
}

func (api *contentApi) create(ctx echo.Context) error {
	var data lms.NewContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewContent")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	c, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating content")
	}
	return ok(ctx, http.StatusCreated, "content created", c)
}

func (api *contentApi) query(ctx echo.Context) error {
	filter := new(lms.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []lms.Content{})
	}
	contents, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying contents")
	}
	return ok(ctx, http.StatusOK, "", nonNil(contents))
}

func (api *contentApi) retrieve(ctx echo.Context) error {
	c, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding content")
	}
	return ok(ctx, http.StatusOK, "", c)
}

func (api *contentApi) update(ctx echo.Context) error {
	var data lms.UpdateContent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateContent")
	}
	c, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating content")
	}
	return ok(ctx, http.StatusOK, "content updated", c)
}

func (api *contentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting content")
	}
	return ctx.NoContent(http.StatusNoContent)
}
