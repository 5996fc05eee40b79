package log

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type severity int

const (
	DEBUG severity = iota
	INFO
	WARNING
	ERROR
)

var names = []string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
}

var level = flag.String("log_level", "info", "log level: debug, info, warning, or error")
var dir = flag.String("log_dir", "", "write log files in this directory instead of stderr")

type logger struct {
	level   severity
	loggers []*log.Logger
}

var std = newLogger(os.Stderr, INFO)

func newLogger(w io.Writer, s severity) *logger {
	l := &logger{level: s}
	for _, name := range names {
		l.loggers = append(l.loggers, log.New(w, "["+name+"] ", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile))
	}
	return l
}

func parseLevel(s string) severity {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warning", "warn":
		return WARNING
	case "error":
		return ERROR
	}
	fmt.Fprintf(os.Stderr, "unknown log level %q, using info\n", s)
	return INFO
}

// Setup initializes the logger from the log_level and log_dir flags.
// Call after flag.Parse.
func Setup() {
	w := io.Writer(os.Stderr)
	if *dir != "" {
		if err := os.MkdirAll(*dir, 0755); err != nil {
			log.Fatal(err)
		}
		name := fmt.Sprintf("%s.%s.%d.log", filepath.Base(os.Args[0]), time.Now().Format("2006-01-02_15-04-05"), os.Getpid())
		f, err := os.Create(filepath.Join(*dir, name))
		if err != nil {
			log.Fatal(err)
		}
		w = f
	}
	std = newLogger(w, parseLevel(*level))
}

func (l *logger) output(s severity, v string) {
	if s < l.level {
		return
	}
	_ = l.loggers[s].Output(3, v)
}

func Debug(v ...interface{}) {
	std.output(DEBUG, fmt.Sprint(v...))
}

func Debugf(format string, v ...interface{}) {
	std.output(DEBUG, fmt.Sprintf(format, v...))
}

func Info(v ...interface{}) {
	std.output(INFO, fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	std.output(INFO, fmt.Sprintf(format, v...))
}

func Warning(v ...interface{}) {
	std.output(WARNING, fmt.Sprint(v...))
}

func Warningf(format string, v ...interface{}) {
	std.output(WARNING, fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	std.output(ERROR, fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	std.output(ERROR, fmt.Sprintf(format, v...))
}

func Fatal(v ...interface{}) {
	std.output(ERROR, fmt.Sprint(v...))
	os.Exit(1)
}

func Fatalf(format string, v ...interface{}) {
	std.output(ERROR, fmt.Sprintf(format, v...))
	os.Exit(1)
}
