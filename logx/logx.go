// Package logx is a small leveled key=value logger for command-line
// use. Level tags are ANSI-colored when enabled, so warnings and
// errors stand out on a terminal without polluting redirected output.
package logx

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

type Logger struct {
	mu    sync.Mutex
	lvl   Level
	color bool
	lg    *log.Logger
}

// New builds a stderr logger. The ROOTRDAP_LOG environment variable
// overrides the given level.
func New(lvl Level, color bool) *Logger {
	if env, ok := os.LookupEnv("ROOTRDAP_LOG"); ok {
		lvl = ParseLevel(env)
	}
	return &Logger{
		lvl:   lvl,
		color: color,
		lg:    log.New(os.Stderr, "", 0),
	}
}

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "err", "error":
		return LevelError
	default:
		return LevelInfo
	}
}

func (l *Logger) Debug(msg string, kv ...interface{}) { l.emit(LevelDebug, "DBG", nil, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.emit(LevelInfo, "INF", nil, msg, kv) }

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.emit(LevelWarn, "WRN", []uint8{1, 93}, msg, kv)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.emit(LevelError, "ERR", []uint8{1, 91}, msg, kv)
}

func (l *Logger) emit(lvl Level, tag string, sCsi []uint8, msg string, kv []interface{}) {

	if lvl < l.lvl {
		return
	}

	if l.color && len(sCsi) > 0 {
		sCodes := make([]string, len(sCsi))
		for ix := range sCsi {
			sCodes[ix] = strconv.Itoa(int(sCsi[ix]))
		}
		tag = "\x1b[" + strings.Join(sCodes, ";") + "m" + tag + "\x1b[0m"
	}

	line := tag + " " + msg
	if fields := kvPairs(kv); len(fields) > 0 {
		line += " " + strings.Join(fields, " ")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.lg.Println(line)
}

func kvPairs(kv []interface{}) []string {
	out := make([]string, 0, len(kv)/2)
	for ix := 0; ix < len(kv); ix += 2 {
		var v interface{} = "(missing)"
		if ix+1 < len(kv) {
			v = kv[ix+1]
		}
		out = append(out, fmt.Sprintf("%v=%v", kv[ix], v))
	}
	return out
}
