package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/user"
)

func registerDashboardAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	svc := deps.DashboardSvc
	g.GET("/dashboard", func(ctx echo.Context) error {
		usr, err := auth.contextUser(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context user")
		}
		d, err := svc.For(ctx.Request().Context(), usr)
		if err != nil {
			return errors.Wrap(err, "building dashboard")
		}
		return ok(ctx, http.StatusOK, "", d)
	}, auth.jwt, auth.requireRoles())
}

func registerMetaAPI(g *echo.Group, auth *authenticator, deps ServerDeps) {
	policy := deps.UniquePolicy

	mg := g.Group("/meta", auth.jwt, auth.requireRoles(user.RoleAdmin))
	mg.GET("/uniqueness", func(ctx echo.Context) error {
		return ok(ctx, http.StatusOK, "", policy.Rules())
	})
}
