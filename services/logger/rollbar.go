package logsvc

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/cpel/core"
	"github.com/trezcool/cpel/core/user"
)

// stack frames between the rollbar call and the caller of a log method
const stackSkip = 3

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// entry is one log call, split the way rollbar reports it.
type entry struct {
	ctx    context.Context
	msg    string
	err    error
	req    *http.Request
	extras map[string]interface{} // rollbar custom data
}

// prepare sorts args out. Expected: error, map[string]interface{}, user.User, *http.Request.
// Maps are merged into the custom data; any other value is kept under "args".
func (l RollbarLogger) prepare(msg string, args []interface{}) entry {
	e := entry{ctx: context.Background(), msg: msg, extras: make(map[string]interface{})}
	var rest []interface{}
	var usrSet bool
	for _, arg := range args {
		switch val := arg.(type) {
		case error:
			if e.err == nil {
				e.err = val
			} else {
				rest = append(rest, val.Error())
			}
		case map[string]interface{}:
			for k, v := range val {
				e.extras[k] = v
			}
		case user.User:
			if !usrSet && !val.ID.IsZero() { // only one User
				e.ctx = rollbar.NewPersonContext(e.ctx, &rollbar.Person{Id: val.ID.Hex(), Username: val.Username})
				usrSet = true
			}
		case *http.Request:
			e.req = val
		default:
			rest = append(rest, val)
		}
	}
	if len(rest) > 0 {
		e.extras["args"] = rest
	}
	if e.err != nil {
		e.extras["message"] = msg // rollbar titles error items with the error itself
	}
	return e
}

func (l RollbarLogger) report(level string, e entry) {
	switch {
	case e.err != nil && e.req != nil:
		rollbar.RequestErrorWithStackSkipWithExtrasAndContext(e.ctx, level, e.req, e.err, stackSkip, e.extras)
	case e.err != nil:
		rollbar.ErrorWithStackSkipWithExtrasAndContext(e.ctx, level, e.err, stackSkip, e.extras)
	case e.req != nil:
		rollbar.RequestMessageWithExtrasAndContext(e.ctx, level, e.req, e.msg, e.extras)
	default:
		rollbar.MessageWithExtrasAndContext(e.ctx, level, e.msg, e.extras)
	}
}

// print writes the message, then the error, then the custom data as sorted key=value pairs.
func (l RollbarLogger) print(e entry) {
	l.std.Println(e.msg)
	if e.err != nil {
		l.std.Printf("%+v\n", e.err)
	}

	keys := make([]string, 0, len(e.extras))
	for k := range e.extras {
		if k != "message" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return
	}
	sort.Strings(keys)
	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s=%v", k, e.extras[k])
	}
	l.std.Println(strings.Join(pairs, " "))
}

func (l RollbarLogger) emit(level, msg string, args []interface{}) {
	e := l.prepare(msg, args)
	l.report(level, e)
	l.print(e)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.emit(rollbar.DEBUG, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.emit(rollbar.INFO, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.emit(rollbar.WARN, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.emit(rollbar.ERR, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.emit(rollbar.CRIT, msg, args)
	rollbar.Close()
	l.std.Fatal(msg)
}
