package main

import "context"

func (cli *commandLine) resetPassword(ctx context.Context, svc services, email, pwd string) error {
	usr, err := svc.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	_, err = svc.users.SetPassword(ctx, usr, pwd)
	return err
}
