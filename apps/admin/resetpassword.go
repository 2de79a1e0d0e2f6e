package main

import (
	"context"

	"github.com/trezcool/cpel/core/user"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetByUsername(ctx, uname)
	if err != nil {
		return err
	}
	_, err = cli.usrSvc.UpdatePassword(ctx, usr.ID.Hex(), user.UpdatePassword{Password: pwd})
	return err
}
