package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/core/user"
	"github.com/serene-minds/dashboard/services/authapi"
	"github.com/serene-minds/dashboard/storage/database"
	"github.com/serene-minds/dashboard/storage/database/sqlstore"
	testutil "github.com/serene-minds/dashboard/tests"
)

type fakeAuth struct {
	usr user.User
}

func (a fakeAuth) Login(_ context.Context, email, password string) (authapi.Result, error) {
	if email != a.usr.Email || password != "s3cret-pwd" {
		return authapi.Result{}, &authapi.APIError{Status: http.StatusUnauthorized, Message: "Invalid email or password."}
	}
	return authapi.Result{User: a.usr, Token: "tok-" + a.usr.ID}, nil
}

func setup(t *testing.T) *commandLine {
	conf := testutil.NewConfig(t)
	conf.Session.Dir = t.TempDir()
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Path = filepath.Join(t.TempDir(), "admin.db")

	cli := &commandLine{
		conf:   conf,
		logger: testutil.NewLogger(),
		auth:   fakeAuth{usr: testutil.NewUser(t, "amani", user.RoleSchool)},
		openDB: database.Open,
	}
	t.Cleanup(func() { _ = cli.close() })
	return cli
}

func execute(cli *commandLine, args ...string) (string, error) {
	var out bytes.Buffer
	root := cli.rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	want       []string
	notWant    []string
}

func (tt cliTest) run(t *testing.T, cli *commandLine) {
	t.Helper()
	out, err := execute(cli, tt.args...)
	switch {
	case tt.wantErr != nil:
		assert.ErrorIs(t, err, tt.wantErr)
	case tt.wantErrStr != "":
		assert.EqualError(t, err, tt.wantErrStr)
	default:
		require.NoError(t, err)
	}
	for _, s := range tt.want {
		assert.Contains(t, out, s)
	}
	for _, s := range tt.notWant {
		assert.NotContains(t, out, s)
	}
}

func Test_commandLine_routes(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "all", args: []string{"routes"}, want: []string{"PATH", "/login", "/school/dashboard", "/student/login", "auth-only", "home"}},
		{name: "student scope", args: []string{"routes", "--scope", "student"}, want: []string{"/student/dashboard"}, notWant: []string{"/school/dashboard"}},
		{name: "school scope", args: []string{"routes", "--scope", "school"}, want: []string{"/school/dashboard"}, notWant: []string{"/student/dashboard"}},
		{name: "unknown scope", args: []string{"routes", "--scope", "lol"}, wantErrStr: `unknown scope "lol"`},
		{name: "extra args", args: []string{"routes", "lol"}, wantErrStr: `unknown command "lol" for "admin routes"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.run(t, cli) })
	}
}

func Test_commandLine_resolve(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no path", args: []string{"resolve"}, wantErrStr: "accepts 1 arg(s), received 0"},
		{name: "invalid role", args: []string{"resolve", "/dashboard", "--role", "janitor"}, wantErrStr: `invalid role "janitor"`},
		{
			name: "loading",
			args: []string{"resolve", "/school/dashboard", "--loading"},
			want: []string{"outcome: loading", "chrome:  school"},
		},
		{
			name: "unauthenticated protected",
			args: []string{"resolve", "/school/dashboard"},
			want: []string{"outcome: redirect", "target:  /login?next=%2Fschool%2Fdashboard", "chrome:  school"},
		},
		{
			name: "unauthenticated student",
			args: []string{"resolve", "/student/dashboard"},
			want: []string{"outcome: redirect", "target:  /student/login?next=%2Fstudent%2Fdashboard", "chrome:  student"},
		},
		{
			name: "authenticated render",
			args: []string{"resolve", "/school/dashboard", "--role", "school"},
			want: []string{"outcome: render", "route:   /school/dashboard", "chrome:  school"},
		},
		{
			name: "home redirects to role home",
			args: []string{"resolve", "/", "--role", "student"},
			want: []string{"outcome: redirect", "target:  /student/dashboard"},
		},
		{
			name: "unknown path",
			args: []string{"resolve", "/nowhere", "--role", "admin"},
			want: []string{"outcome: not-found", "chrome:  admin"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.run(t, cli) })
	}
}

func Test_commandLine_login(t *testing.T) {
	cli := setup(t)

	t.Run("not logged in", func(t *testing.T) {
		cliTest{args: []string{"whoami"}, want: []string{"not logged in"}}.run(t, cli)
	})

	tests := []struct {
		cliTest
		pwd string
	}{
		{cliTest: cliTest{name: "no email", args: []string{"login"}, wantErrStr: "--email is required"}},
		{cliTest: cliTest{name: "no password", args: []string{"login", "--email", "amani@serene.test"}, wantErr: errEmptyPassword}},
		{
			cliTest: cliTest{name: "wrong password", args: []string{"login", "--email", "amani@serene.test"}, wantErrStr: "Invalid email or password."},
			pwd:     "lol",
		},
		{
			cliTest: cliTest{
				name: "success",
				args: []string{"login", "--email", " Amani@Serene.test "},
				want: []string{"logged in as amani <amani@serene.test> (school), home /school/dashboard"},
			},
			pwd: "s3cret-pwd",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPassword(t, tt.pwd)
			tt.cliTest.run(t, cli)
		})
	}

	// the session survives the process: a fresh holder reads it from disk
	t.Run("whoami", func(t *testing.T) {
		cliTest{args: []string{"whoami"}, want: []string{"amani <amani@serene.test> (school)"}}.run(t, cli)
	})
	t.Run("logout", func(t *testing.T) {
		cliTest{args: []string{"logout"}, want: []string{"logged out"}}.run(t, cli)
		cliTest{args: []string{"whoami"}, want: []string{"not logged in"}}.run(t, cli)
	})
	t.Run("logout twice", func(t *testing.T) {
		cliTest{args: []string{"logout"}, want: []string{"logged out"}}.run(t, cli)
	})
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	orig := gooseRunFunc
	t.Cleanup(func() { gooseRunFunc = orig })
	gooseRunFunc = func(_ context.Context, command string, db *sql.DB, dir string, args ...string) error {
		if db == nil || dir != database.MigrationsDir {
			return fmt.Errorf("bad goose setup: db=%v dir=%q", db, dir)
		}
		switch command {
		case "up", "up-by-one", "down", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErrStr: "requires at least 1 arg(s), only received 0"},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "0"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix is not offered", args: []string{"migrate", "fix"}, wantErr: errMigrationsEmbedded},
		{name: "help", args: []string{"migrate", "--help"}, want: []string{"up-by-one", "down-to VERSION"}, notWant: []string{"  fix "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.run(t, cli) })
	}
}

func Test_commandLine_sessions(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	db, err := cli.database()
	require.NoError(t, err)
	require.NoError(t, database.Migrate(ctx, db))

	store := sqlstore.New(db, session.NewCodec(cli.conf.SecretKey))
	usr := testutil.NewUser(t, "baraka", user.RoleStudent)
	require.NoError(t, store.Save(ctx, "sid-baraka", session.Record{User: usr, Token: "tok"}))

	tests := []cliTest{
		{name: "list", args: []string{"sessions", "list"}, want: []string{"sid-baraka", "baraka@serene.test", "student"}},
		{name: "purge: non positive", args: []string{"sessions", "purge", "--older-than", "0s"}, wantErrStr: "--older-than must be positive"},
		{name: "purge: nothing old enough", args: []string{"sessions", "purge"}, want: []string{"purged 0 session(s)"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) { tt.run(t, cli) })
	}

	time.Sleep(10 * time.Millisecond)
	cliTest{args: []string{"sessions", "purge", "--older-than", "1ms"}, want: []string{"purged 1 session(s)"}}.run(t, cli)
	cliTest{args: []string{"sessions", "list"}, notWant: []string{"sid-baraka"}}.run(t, cli)
}
