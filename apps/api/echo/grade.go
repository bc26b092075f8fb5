package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/grade"
	"github.com/trezcool/shule/core/user"
)

type gradeApi struct {
	auth   *authenticator
	svc    *grade.Service
	scoper scoper
}

func registerGradeAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := gradeApi{auth: auth, svc: deps.GradeSvc, scoper: newScoper(deps)}
	writers := auth.requireRoles(user.RoleAdmin, user.RoleStaff)

	gg := g.Group("/grades", auth.jwt)
	gg.POST("", api.create, writers)
	gg.GET("", api.query, auth.requireRoles())
	gg.GET("/:id", api.retrieve, auth.requireRoles())
	gg.PUT("/:id", api.update, writers)
	gg.DELETE("/:id", api.destroy, writers)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	gr, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ok(ctx, http.StatusCreated, "grade created", gr)
}

func (api *gradeApi) query(ctx echo.Context) error {
	filter := new(grade.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []grade.Grade{})
	}

	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()
	allowed, all, err := api.scoper.studentIDs(rctx, usr)
	if err != nil {
		return err
	}
	if !all {
		if filter.StudentIDs = restrict(filter.StudentIDs, allowed); len(filter.StudentIDs) == 0 {
			return ok(ctx, http.StatusOK, "", []grade.Grade{})
		}
	}

	grades, err := api.svc.Query(rctx, filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ok(ctx, http.StatusOK, "", nonNil(grades))
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()
	gr, err := api.svc.Get(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding grade")
	}
	if visible, err := api.scoper.canSee(rctx, usr, gr.StudentID); err != nil {
		return err
	} else if !visible {
		return errHttpNotFound
	}
	return ok(ctx, http.StatusOK, "", gr)
}

func (api *gradeApi) update(ctx echo.Context) error {
	var data grade.UpdateGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateGrade")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	gr, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ok(ctx, http.StatusOK, "grade updated", gr)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return ctx.NoContent(http.StatusNoContent)
}
