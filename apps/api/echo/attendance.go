package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/attendance"
	"github.com/trezcool/shule/core/user"
)

type attendanceApi struct {
	auth   *authenticator
	svc    *attendance.Service
	scoper scoper
}

func registerAttendanceAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := attendanceApi{auth: auth, svc: deps.AttendanceSvc, scoper: newScoper(deps)}
	writers := auth.requireRoles(user.RoleAdmin, user.RoleStaff)

	ag := g.Group("/attendance", auth.jwt)
	ag.POST("", api.create, writers)
	ag.GET("", api.query, writers)
	ag.GET("/summary/:student_id", api.summary, auth.requireRoles())
	ag.GET("/:id", api.retrieve, writers)
	ag.PUT("/:id", api.update, writers)
	ag.DELETE("/:id", api.destroy, writers)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Create(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "taking attendance")
	}
	return ok(ctx, http.StatusCreated, "attendance taken", a)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []attendance.Attendance{})
	}
	records, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ok(ctx, http.StatusOK, "", nonNil(records))
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding attendance")
	}
	return ok(ctx, http.StatusOK, "", a)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	a, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	return ok(ctx, http.StatusOK, "attendance updated", a)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// summary answers staff and admins for any student, parents for their children and students for themselves.
func (api *attendanceApi) summary(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()
	studentID := ctx.Param("student_id")
	if visible, err := api.scoper.canSee(rctx, usr, studentID); err != nil {
		return err
	} else if !visible {
		return errHttpNotFound
	}

	s, err := api.svc.Summary(rctx, studentID)
	if err != nil {
		return errors.Wrap(err, "summarizing attendance")
	}
	return ok(ctx, http.StatusOK, "", s)
}
