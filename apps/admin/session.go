package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/services/authapi"
)

var errEmptyPassword = errors.New("password must not be empty")

func (cli *commandLine) loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in against the auth API and keep the session on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email = core.CleanString(email, true /* lower */)
			if email == "" {
				return errors.New("--email is required")
			}

			_, _ = fmt.Fprint(cmd.ErrOrStderr(), "Enter password:")
			pwd, err := readPasswordFunc(int(os.Stdin.Fd()))
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if len(pwd) == 0 {
				return errEmptyPassword
			}

			ctx := cmd.Context()
			res, err := cli.auth.Login(ctx, email, string(pwd))
			if err != nil {
				cli.logger.Warn("admin login failed", err)
				return errors.New(authapi.Message(err))
			}
			h, err := cli.holder(ctx)
			if err != nil {
				return err
			}
			if err = h.Login(ctx, res.User, res.Token); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s <%s> (%s), home %s\n",
				res.User.Name, res.User.Email, res.User.Role, route.HomeFor(res.User.Role))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email; the password is prompted next")
	return cmd
}

func (cli *commandLine) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session kept on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := cli.holder(cmd.Context())
			if err != nil {
				return err
			}
			h.Logout(cmd.Context())
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (cli *commandLine) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the session kept on disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h, err := cli.holder(cmd.Context())
			if err != nil {
				return err
			}
			sess := h.Session()
			if !sess.IsAuthenticated() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", sess.User.Name, sess.User.Email, sess.User.Role)
			return nil
		},
	}
}
