package main

import (
	"context"
	"fmt"

	"github.com/lilypad-dao/lilypad/core/user"
)

// addUser creates a user.User
func (cli *commandLine) addUser(address, uname, name string) error {
	nu := user.NewUser{Address: address, Username: uname, Name: name}
	if err := nu.Validate(cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Create(context.Background(), nu)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "created user %d: %s (%s)\n", usr.ID, usr.Username, usr.Address)
	return nil
}
