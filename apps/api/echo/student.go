package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

type studentApi struct {
	auth   *authenticator
	svc    *student.Service
	scoper scoper
}

func registerStudentAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := studentApi{auth: auth, svc: deps.StudentSvc, scoper: newScoper(deps)}
	admin := auth.requireRoles(user.RoleAdmin)

	sg := g.Group("/students", auth.jwt)
	sg.POST("", api.create, admin)
	sg.GET("", api.query, auth.requireRoles())
	sg.GET("/:id", api.retrieve, auth.requireRoles())
	sg.PUT("/:id", api.update, admin)
	sg.DELETE("/:id", api.destroy, admin)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	s, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ok(ctx, http.StatusCreated, "student created", s)
}

// query lists every student to staff and admins, their children to parents and themselves to students.
func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []student.Student{})
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
		if filter.IDs = restrict(filter.IDs, allowed); len(filter.IDs) == 0 {
			return ok(ctx, http.StatusOK, "", []student.Student{})
		}
	}

	students, err := api.svc.Query(rctx, filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ok(ctx, http.StatusOK, "", nonNil(students))
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()
	id := ctx.Param("id")
	if visible, err := api.scoper.canSee(rctx, usr, id); err != nil {
		return err
	} else if !visible {
		return errHttpNotFound
	}

	s, err := api.svc.Get(rctx, id)
	if err != nil {
		return errors.Wrap(err, "finding student")
	}
	return ok(ctx, http.StatusOK, "", s)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	s, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ok(ctx, http.StatusOK, "student updated", s)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}
