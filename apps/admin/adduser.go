package main

import (
	"context"

	"github.com/trezcool/cpel/core/user"
)

// addUser signs up the account of an already registered professor or student.
func (cli *commandLine) addUser(uname, typ, pwd string) error {
	usr, err := cli.usrSvc.SignUp(context.Background(), user.NewUser{
		Username: uname,
		Password: pwd,
		Type:     typ,
	})
	if err != nil {
		return err
	}
	logger.Printf("user %s (%s) created\n", usr.Username, usr.ID.Hex())
	return nil
}
