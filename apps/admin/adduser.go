package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aulaviva/aulaviva/core"
	"github.com/aulaviva/aulaviva/core/user"
)

// addUser creates an active user in the given escola.
func (cli *commandLine) addUser(escolaID, name, uname, email, pwd string, isAdmin bool) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrRepo.CheckUsernameUniqueness(ctx, uname, email); err != nil {
		return err
	}

	now := time.Now().UTC()
	usr := user.User{
		EscolaID:  core.CleanString(escolaID),
		Name:      core.CleanString(name),
		Username:  uname,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if isAdmin {
		usr.Roles = user.AllRoles
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}

	usr, err := cli.usrRepo.CreateUser(ctx, usr)
	if err != nil {
		return err
	}
	fmt.Printf("user %q created: %s\n", usr.Email, usr.ID)
	return nil
}
