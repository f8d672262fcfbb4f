package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/serene-minds/dashboard/core/chrome"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/core/user"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

func access(d route.Descriptor) string {
	switch {
	case d.Home:
		return "home"
	case d.AuthOnly:
		return "auth-only"
	case d.RequiresAuth:
		return "auth"
	default:
		return "public"
	}
}

func (cli *commandLine) routesCmd() *cobra.Command {
	var scope string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the route table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g, err := cli.guard()
			if err != nil {
				return err
			}
			var filter *route.Scope
			if scope != "" {
				s, err := route.ParseScope(scope)
				if err != nil {
					return err
				}
				filter = &s
			}

			t := newTable("PATH", "TITLE", "SCOPE", "ACCESS")
			for _, d := range g.Table().Routes() {
				if filter != nil && d.Scope != *filter {
					continue
				}
				t.Row(d.Path, d.Title, d.Scope.String(), access(d))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&scope, "scope", "", "only list routes of scope: admin|school|student")
	return cmd
}

func (cli *commandLine) resolveCmd() *cobra.Command {
	var (
		role    string
		loading bool
	)

	cmd := &cobra.Command{
		Use:   "resolve PATH",
		Short: "Show what the guard decides for PATH and the chrome it renders in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := cli.guard()
			if err != nil {
				return err
			}
			sess := session.Session{Loading: loading}
			if role != "" {
				r, ok := user.ParseRole(role)
				if !ok {
					return errors.Errorf("invalid role %q", role)
				}
				sess.User = &user.User{ID: "cli", Name: "cli", Email: "cli@localhost", Role: r}
				sess.Token = "cli"
			}

			target := args[0]
			dec := g.Decide(target, sess)
			path, _, _ := strings.Cut(target, "?")

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "outcome: %s\n", dec.Outcome)
			if dec.Outcome == route.Render || dec.Outcome == route.Redirect {
				_, _ = fmt.Fprintf(out, "route:   %s\n", dec.Route.Path)
			}
			if dec.Outcome == route.Redirect {
				_, _ = fmt.Fprintf(out, "target:  %s\n", dec.RedirectURL())
			}
			_, _ = fmt.Fprintf(out, "chrome:  %s\n", chrome.Select(path, g.Mode()))
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "resolve for a user of this role (unauthenticated if empty)")
	cmd.Flags().BoolVar(&loading, "loading", false, "resolve while the session is still loading")
	return cmd
}
