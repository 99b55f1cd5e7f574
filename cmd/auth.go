package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type registerCmd struct {
	app      *App
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a user account" }
func (*registerCmd) Usage() string {
	return `vth register -username <name> -password <password>

  Creates a user account. The password must be at least 8 characters long.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "name of the new user")
	f.StringVar(&c.password, "password", "", "password of the new user")
}

func (c *registerCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	u, err := c.app.Auth.Register(c.username, c.password)
	if err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintf(stdout, "User %s registered.\n", u.Username)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	app      *App
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in as a registered user" }
func (*loginCmd) Usage() string {
	return `vth login -username <name> -password <password>

  Logs in. Trading and portfolio commands act on the logged in user until logout.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "user name")
	f.StringVar(&c.password, "password", "", "user password")
}

func (c *loginCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	u, err := c.app.Auth.Login(c.username, c.password)
	if err != nil {
		return fail(ctx, err)
	}
	if err := c.app.Session.SetUser(u.Username); err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintf(stdout, "Logged in as %s.\n", u.Username)
	return subcommands.ExitSuccess
}

type logoutCmd struct {
	app *App
}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "log the current user out" }
func (*logoutCmd) Usage() string {
	return `vth logout

  Forgets the logged in user.
`
}

func (c *logoutCmd) SetFlags(f *flag.FlagSet) {}

func (c *logoutCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.Session.User()
	if err != nil {
		return fail(ctx, err)
	}
	if user == "" {
		fmt.Fprintln(stdout, "Nobody is logged in.")
		return subcommands.ExitSuccess
	}
	if err := c.app.Session.Clear(); err != nil {
		return fail(ctx, err)
	}
	fmt.Fprintf(stdout, "Logged out %s.\n", user)
	return subcommands.ExitSuccess
}
