package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/parent"
	"github.com/trezcool/shule/core/student"
	"github.com/trezcool/shule/core/user"
)

type parentApi struct {
	auth       *authenticator
	svc        *parent.Service
	studentSvc *student.Service
}

func registerParentAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := parentApi{auth: auth, svc: deps.ParentSvc, studentSvc: deps.StudentSvc}
	admin := auth.requireRoles(user.RoleAdmin)
	readers := auth.requireRoles(user.RoleAdmin, user.RoleStaff, user.RoleParent)

	pg := g.Group("/parents", auth.jwt)
	pg.POST("", api.create, admin)
	pg.GET("", api.query, readers)
	pg.GET("/:id", api.retrieve, readers)
	pg.GET("/:id/children", api.children, readers)
	pg.PUT("/:id", api.update, admin)
	pg.DELETE("/:id", api.destroy, admin)
}

// self returns the parent profile of a parent user. isParent is false for other roles.
func (api *parentApi) self(ctx echo.Context) (p parent.Parent, isParent bool, err error) {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return parent.Parent{}, false, errors.Wrap(err, "getting context user")
	}
	if !usr.IsParent() {
		return parent.Parent{}, false, nil
	}
	p, err = api.svc.GetByUser(ctx.Request().Context(), usr.ID)
	if err != nil && !core.IsNotFound(err) {
		return parent.Parent{}, true, errors.Wrap(err, "finding parent profile")
	}
	return p, true, nil
}

func (api *parentApi) create(ctx echo.Context) error {
	var data parent.NewParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewParent")
	}
	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating parent")
	}
	return ok(ctx, http.StatusCreated, "parent created", p)
}

// query lists every parent to staff and admins, and their own profile to parents.
func (api *parentApi) query(ctx echo.Context) error {
	filter := new(parent.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []parent.Parent{})
	}

	self, isParent, err := api.self(ctx)
	if err != nil {
		return err
	}
	if isParent {
		if filter.IDs = restrict(filter.IDs, []string{self.ID}); self.ID == "" || len(filter.IDs) == 0 {
			return ok(ctx, http.StatusOK, "", []parent.Parent{})
		}
	}

	parents, err := api.svc.Query(ctx.Request().Context(), filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying parents")
	}
	return ok(ctx, http.StatusOK, "", nonNil(parents))
}

func (api *parentApi) find(ctx echo.Context) (parent.Parent, error) {
	self, isParent, err := api.self(ctx)
	if err != nil {
		return parent.Parent{}, err
	}
	id := ctx.Param("id")
	if isParent && id != self.ID {
		return parent.Parent{}, errHttpNotFound
	}
	p, err := api.svc.Get(ctx.Request().Context(), id)
	return p, errors.Wrap(err, "finding parent")
}

func (api *parentApi) retrieve(ctx echo.Context) error {
	p, err := api.find(ctx)
	if err != nil {
		return err
	}
	return ok(ctx, http.StatusOK, "", p)
}

func (api *parentApi) children(ctx echo.Context) error {
	p, err := api.find(ctx)
	if err != nil {
		return err
	}
	children, err := api.studentSvc.Children(ctx.Request().Context(), p.ID)
	if err != nil {
		return errors.Wrap(err, "querying children")
	}
	return ok(ctx, http.StatusOK, "", nonNil(children))
}

func (api *parentApi) update(ctx echo.Context) error {
	var data parent.UpdateParent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateParent")
	}
	p, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating parent")
	}
	return ok(ctx, http.StatusOK, "parent updated", p)
}

func (api *parentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting parent")
	}
	return ctx.NoContent(http.StatusNoContent)
}
