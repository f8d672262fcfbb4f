package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/user"
)

// Entry is a message recorded by Logger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger is a core.Logger recording entries in memory.
type Logger struct {
	mutex   sync.Mutex
	Entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	l.Entries = append(l.Entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) {
	l.log("fatal", msg, args)
	panic(fmt.Sprintf("fatal: %s", msg))
}

// Count returns the number of entries logged at level.
func (l *Logger) Count(level string) int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	var n int
	for _, e := range l.Entries {
		if e.Level == level {
			n++
		}
	}
	return n
}

// NewUser returns a valid user record.
func NewUser(t *testing.T, name string, role user.Role) user.User {
	t.Helper()
	usr := user.User{
		ID:    name + "-id",
		Name:  name,
		Email: name + "@serene.test",
		Role:  role,
	}
	if !usr.Valid() {
		t.Fatalf("NewUser() invalid user: %+v", usr)
	}
	return usr
}

// NewConfig returns a TEST configuration.
func NewConfig(t *testing.T) *core.Config {
	t.Helper()
	t.Setenv("ENV", "TEST")
	conf, err := core.NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() failed: %v", err)
	}
	conf.Server.CSRF = false
	conf.Server.DisableReqLogs = true
	conf.Session.InitWait = 2 * time.Second
	return conf
}
