package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/fee"
	"github.com/trezcool/shule/core/user"
)

type feeApi struct {
	auth   *authenticator
	svc    *fee.Service
	scoper scoper
}

func registerFeeAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	api := feeApi{auth: auth, svc: deps.FeeSvc, scoper: newScoper(deps)}
	admin := auth.requireRoles(user.RoleAdmin)
	readers := auth.requireRoles(user.RoleAdmin, user.RoleParent, user.RoleStudent)

	fg := g.Group("/fees", auth.jwt)
	fg.POST("", api.create, admin)
	fg.GET("", api.query, readers)
	fg.GET("/:id", api.retrieve, readers)
	fg.PUT("/:id", api.update, admin)
	fg.DELETE("/:id", api.destroy, admin)
	fg.POST("/:id/payments", api.recordPayment, admin)
}

func (api *feeApi) create(ctx echo.Context) error {
	var data fee.NewFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFee")
	}
	f, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating fee")
	}
	return ok(ctx, http.StatusCreated, "fee created", f)
}

// query lists every fee to admins, and the fees of their children (or their own) to parents and students.
func (api *feeApi) query(ctx echo.Context) error {
	filter := new(fee.QueryFilter)
	if !bindQuery(ctx, filter) {
		return ok(ctx, http.StatusOK, "", []fee.Fee{})
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
			return ok(ctx, http.StatusOK, "", []fee.Fee{})
		}
	}

	fees, err := api.svc.Query(rctx, filter, bindOrdering(ctx))
	if err != nil {
		return errors.Wrap(err, "querying fees")
	}
	return ok(ctx, http.StatusOK, "", nonNil(fees))
}

func (api *feeApi) retrieve(ctx echo.Context) error {
	usr, err := api.auth.contextUser(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	rctx := ctx.Request().Context()
	f, err := api.svc.Get(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding fee")
	}
	if visible, err := api.scoper.canSee(rctx, usr, f.StudentID); err != nil {
		return err
	} else if !visible {
		return errHttpNotFound
	}
	return ok(ctx, http.StatusOK, "", f)
}

func (api *feeApi) update(ctx echo.Context) error {
	var data fee.UpdateFee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateFee")
	}
	f, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating fee")
	}
	return ok(ctx, http.StatusOK, "fee updated", f)
}

func (api *feeApi) recordPayment(ctx echo.Context) error {
	var data fee.Payment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Payment")
	}
	f, err := api.svc.RecordPayment(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "recording payment")
	}
	return ok(ctx, http.StatusOK, "payment recorded", f)
}

func (api *feeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting fee")
	}
	return ctx.NoContent(http.StatusNoContent)
}
