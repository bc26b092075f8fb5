package main

import (
	"context"
	"fmt"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// addUser creates the user, or re-activates the existing one with role and the new password.
func (cli *commandLine) addUser(ctx context.Context, svc services, name, email, role, pwd string) error {
	usr, err := svc.users.GetByEmail(ctx, email)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		usr, err = svc.users.Create(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			Role:            role,
			Password:        pwd,
			PasswordConfirm: pwd,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "created %s %s\n", usr.Role, usr.Email)
		return nil
	}

	active := true
	if usr, err = svc.users.Update(ctx, usr.ID, user.UpdateUser{Name: name, Role: role, IsActive: &active}); err != nil {
		return err
	}
	if _, err = svc.users.SetPassword(ctx, usr, pwd); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "updated %s %s\n", usr.Role, usr.Email)
	return nil
}
