package util

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// logger is configured once: plain text, no timestamp field, matching
// the teacher's terse one-line-per-event style but routed through a
// real structured-logging library rather than the stdlib "log"
// package. Named logger, not log, since cmd/util/flags.go imports the
// stdlib "log" package for its own Usage printer.
var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		DisableColors:    true,
	})
	l.SetOutput(os.Stderr)
	return l
}

// FlagVerbose controls whether Verbosef emits anything. The lastdb
// driver ties this to -v/-verbose.
var FlagVerbose = false

func Verbosef(format string, v ...interface{}) {
	if !FlagVerbose {
		return
	}
	fmt.Fprintf(os.Stderr, format, v...)
}

func Warnf(format string, v ...interface{}) {
	logger.Printf(format, v...)
}

func Warning(err error, v ...interface{}) bool {
	if err != nil {
		if len(v) == 0 {
			Warnf("WARNING: %s.", err)
		} else {
			format := v[0].(string)
			v = v[1:]
			Warnf("%s: %s.", fmt.Sprintf(format, v...), err)
		}
		return true
	}
	return false
}

func Fatalf(format string, v ...interface{}) {
	logger.Fatalf(format, v...)
}

// Assert logs a fatal message through the package logger and exits with
// a non-zero status when err is non-nil. The lastdb driver's error kinds
// are not reported here: cmd/lastdb prints those itself.
func Assert(err error, v ...interface{}) {
	if err != nil {
		if len(v) == 0 {
			Fatalf("ERROR: %s.", err)
		} else {
			format := v[0].(string)
			v = v[1:]
			Fatalf("%s: %s.", fmt.Sprintf(format, v...), err)
		}
	}
}

func AssertLeastNArg(n int) {
	if flag.NArg() < n {
		flag.Usage()
	}
}

func AssertIsDir(path string) {
	info, err := os.Stat(path)
	Assert(err, "Directory '%s' is not accessible", path)
	if !info.IsDir() {
		Fatalf("'%s' is not a directory.", path)
	}
}
