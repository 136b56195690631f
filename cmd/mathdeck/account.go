package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/baraclan/mathdeck/cmd/mathdeck/shared"
	"github.com/baraclan/mathdeck/internal/auth"
)

// accountFlags are shared by the account commands. With --server set the
// command talks to a remote identity service; otherwise it uses the local
// account database.
type accountFlags struct {
	Server string `kong:"default='',help='Identity service base URL (empty means the local account database)'"`
	Debug  bool   `kong:"help='Enable debug logging'"`
}

func (f *accountFlags) service() (auth.Service, func(), error) {
	if f.Server != "" {
		return auth.NewHTTPService(f.Server), func() {}, nil
	}

	secret := os.Getenv("MATHDECK_JWT_SECRET")
	if secret == "" {
		secret = "mathdeck-local-dev"
	}
	svc, err := auth.OpenSQLite(
		filepath.Join(shared.DataDir(), "users.db"),
		[]byte(secret),
		shared.SetupLogger(f.Debug),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, func() { svc.Close() }, nil
}

// SignupCmd creates an account
type SignupCmd struct {
	accountFlags
	Username string `kong:"arg,help='Account username'"`
	Email    string `kong:"arg,help='Account email'"`
	Password string `kong:"required,help='Account password'"`
}

func (c *SignupCmd) Run() error {
	svc, cleanup, err := c.service()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := svc.SignUp(context.Background(), c.Username, c.Email, c.Password)
	if err != nil {
		return err
	}
	fmt.Printf("Account created for %s <%s>.\n", id.Username, id.Email)
	return nil
}

// LoginCmd logs in and prints the session token
type LoginCmd struct {
	accountFlags
	Email    string `kong:"arg,help='Account email'"`
	Password string `kong:"required,help='Account password'"`
}

func (c *LoginCmd) Run() error {
	svc, cleanup, err := c.service()
	if err != nil {
		return err
	}
	defer cleanup()

	id, err := svc.Login(context.Background(), c.Email, c.Password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s.\n", id.Username)
	fmt.Println(id.Token)
	return nil
}

// ResetPasswordCmd requests a password reset for an email
type ResetPasswordCmd struct {
	accountFlags
	Email string `kong:"arg,help='Account email'"`
}

func (c *ResetPasswordCmd) Run() error {
	svc, cleanup, err := c.service()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.RequestReset(context.Background(), c.Email); err != nil {
		return err
	}
	fmt.Println("If the email is registered, a reset has been issued.")
	return nil
}
