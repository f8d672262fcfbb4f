// Package logsvc implements core.Logger on top of the standard logger and Rollbar.
package logsvc

import (
	"fmt"
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/user"
)

// RollbarLogger prints through std and reports to Rollbar when a token is configured.
// Debug entries are only emitted in debug mode.
type RollbarLogger struct {
	std   *log.Logger
	debug bool
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug)
	return &RollbarLogger{std: std, debug: conf.Debug}
}

// entry is one logging call, with the acting user split from the extras.
type entry struct {
	level  string
	msg    string
	user   *user.User
	extras []interface{}
}

// newEntry accepts args of the form: error, map[string]interface{}, user.User | *user.User.
// Only the first user is kept; nil users are dropped.
func newEntry(level, msg string, args []interface{}) entry {
	e := entry{level: level, msg: msg}
	for _, arg := range args {
		switch v := arg.(type) {
		case *user.User:
			if v != nil && e.user == nil {
				e.user = v
			}
		case user.User:
			if e.user == nil {
				e.user = &v
			}
		default:
			e.extras = append(e.extras, arg)
		}
	}
	return e
}

// headline is the first printed line: level, message and who triggered it.
func (e entry) headline() string {
	var b strings.Builder
	b.WriteString(strings.ToUpper(e.level))
	b.WriteString(": ")
	b.WriteString(e.msg)
	if e.user != nil {
		fmt.Fprintf(&b, " (user %s <%s>)", e.user.Name, e.user.Email)
	}
	return b.String()
}

func (l *RollbarLogger) log(e entry, report func(...interface{})) {
	if e.user != nil {
		rollbar.SetPerson(e.user.ID, e.user.Name, e.user.Email)
	} else {
		rollbar.ClearPerson()
	}
	report(append([]interface{}{e.msg}, e.extras...)...)

	l.std.Println(e.headline())
	for _, extra := range e.extras {
		l.std.Printf("\t%+v\n", extra)
	}
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.log(newEntry("debug", msg, args), rollbar.Debug)
}

func (l *RollbarLogger) Info(msg string, args ...interface{}) {
	l.log(newEntry("info", msg, args), rollbar.Info)
}

func (l *RollbarLogger) Warn(msg string, args ...interface{}) {
	l.log(newEntry("warn", msg, args), rollbar.Warning)
}

func (l *RollbarLogger) Error(msg string, args ...interface{}) {
	l.log(newEntry("error", msg, args), rollbar.Error)
}

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(newEntry("fatal", msg, args), rollbar.Critical)
	rollbar.Close()
	l.std.Fatal(msg)
}
