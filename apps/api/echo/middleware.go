package echoapi

import (
	"github.com/labstack/echo/v4"
)

// requireRoles only lets active users holding one of roles through. No roles means any role.
func (a *authenticator) requireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := a.contextUser(ctx)
			if err != nil {
				return err
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			if !usr.HasAnyRole(roles...) {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// ctxUserOrAdmin lets admins through, and users acting on their own account (`:id`).
func (a *authenticator) ctxUserOrAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		usr, err := a.contextUser(ctx)
		if err != nil {
			return err
		}
		if !usr.IsActive {
			return errAccountDeactivated
		}
		if usr.IsAdmin() || ctx.Param("id") == usr.ID {
			return next(ctx)
		}
		return errHttpNotFound
	}
}
