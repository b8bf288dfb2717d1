package main

import (
	"context"
	"fmt"

	echoapi "github.com/lilypad-dao/lilypad/apps/api/echo"
)

// token prints a session token for the user, for manual API calls.
func (cli *commandLine) token(uname string) error {
	usr, err := cli.usrSvc.GetByUsername(context.Background(), uname)
	if err != nil {
		return err
	}
	ss, err := echoapi.GenerateToken(echoapi.GetUserClaims(usr, cli.conf), cli.conf)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, ss)
	return nil
}
