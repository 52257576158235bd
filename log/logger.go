package log

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

type Level logging.Level

// The levels that can be passed to the SetLevel function.
const (
	Debug Level = iota
	Info
	Notice
	Warning
	Error
)

var levelNames = map[Level]string{
	Debug:   "debug",
	Info:    "info",
	Notice:  "notice",
	Warning: "warning",
	Error:   "error",
}

// ErrUnknownLevel is returned by ParseLevel for unsupported names
var ErrUnknownLevel = errors.New("log: unknown level")

var (
	colorFormat = logging.MustStringFormatter(
		`%{color}[%{time:15:04:05.000}] [%{module}] [%{level}]%{color:reset} %{message}`,
	)
	plainFormat = logging.MustStringFormatter(
		`[%{time:15:04:05.000}] [%{module}] [%{level}] %{message}`,
	)
)

var (
	leveledBackend logging.LeveledBackend
	currentLevel   = Notice
)

// The logger interface
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})

	Error(v ...interface{})
	Errorf(format string, v ...interface{})
}

// New returns the logger of the named module
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLevel maps the names returned by Level.String back to a Level
func ParseLevel(name string) (Level, error) {
	for level, n := range levelNames {
		if strings.EqualFold(n, name) {
			return level, nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownLevel, "%q", name)
}

// SetSink redirects every logger to sink, keeping the current level.
// Colors are only emitted when sink is a terminal.
func SetSink(sink io.Writer) {
	format := plainFormat
	if isTerminal(sink) {
		format = colorFormat
	}

	backend := logging.NewLogBackend(sink, "", 0)
	leveledBackend = logging.AddModuleLevel(logging.NewBackendFormatter(backend, format))
	logging.SetBackend(leveledBackend)
	SetLevel(currentLevel)
}

// SetLevel drops the messages below level
func SetLevel(level Level) {
	var loggerLevel logging.Level

	switch level {
	case Debug:
		loggerLevel = logging.DEBUG
	case Info:
		loggerLevel = logging.INFO
	case Notice:
		loggerLevel = logging.NOTICE
	case Warning:
		loggerLevel = logging.WARNING
	case Error:
		loggerLevel = logging.ERROR
	default:
		return
	}

	currentLevel = level
	leveledBackend.SetLevel(loggerLevel, "")
}

// CurrentLevel returns the level of the last successful SetLevel call
func CurrentLevel() Level {
	return currentLevel
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func init() {
	// Hit reports go to stdout, keep it clean
	SetSink(os.Stderr)
}
