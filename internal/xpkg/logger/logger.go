package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

var levelNames = map[level]string{
	levelDebug: "DEBUG",
	levelInfo:  "INFO",
	levelWarn:  "WARN",
	levelError: "ERROR",
}

type entry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Service   string         `json:"service,omitempty"`
	Action    string         `json:"action,omitempty"`
	Message   string         `json:"message"`
	Hostname  string         `json:"hostname"`
	Fields    map[string]any `json:"fields,omitempty"`
	Error     *errorEntry    `json:"error,omitempty"`
}

type errorEntry struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Logger emits one JSON line per event. It is a value type: With, WithGroup
// and Action return copies, so a derived logger never mutates its parent.
type Logger struct {
	out      io.Writer
	minLevel level
	service  string
	hostname string
	action   string
	group    string
	fields   map[string]any
}

func New(minLevel string) (Logger, error) {
	lvl, err := parseLevel(minLevel)
	if err != nil {
		return Logger{}, err
	}
	hostname, _ := os.Hostname()
	return Logger{
		out:      os.Stdout,
		minLevel: lvl,
		hostname: hostname,
	}, nil
}

func parseLevel(s string) (level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG", "":
		return levelDebug, nil
	case "INFO":
		return levelInfo, nil
	case "WARN":
		return levelWarn, nil
	case "ERROR":
		return levelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// SetOutput redirects log output, mainly for tests.
func (l Logger) SetOutput(w io.Writer) Logger {
	l.out = w
	return l
}

func (l Logger) Action(action string) Logger {
	l.action = action
	return l
}

// Service names the emitting service in every entry.
func (l Logger) Service(name string) Logger {
	l.service = name
	return l
}

func (l Logger) WithGroup(name string) Logger {
	if l.group == "" {
		l.group = name
	} else {
		l.group = l.group + "." + name
	}
	return l
}

func (l Logger) With(kv ...any) Logger {
	fields := make(map[string]any, len(l.fields)+len(kv)/2)
	for k, v := range l.fields {
		fields[k] = v
	}
	addPairs(fields, l.group, kv)
	l.fields = fields
	return l
}

func (l Logger) Debug(message string, kv ...any) { l.emit(levelDebug, message, nil, kv) }
func (l Logger) Info(message string, kv ...any)  { l.emit(levelInfo, message, nil, kv) }
func (l Logger) Warn(message string, kv ...any)  { l.emit(levelWarn, message, nil, kv) }

func (l Logger) Error(message string, err error, kv ...any) {
	l.emit(levelError, message, err, kv)
}

func (l Logger) emit(lvl level, message string, err error, kv []any) {
	if lvl < l.minLevel {
		return
	}

	var fields map[string]any
	if len(l.fields) > 0 || len(kv) > 0 {
		fields = make(map[string]any, len(l.fields)+len(kv)/2)
		for k, v := range l.fields {
			fields[k] = v
		}
		addPairs(fields, l.group, kv)
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     levelNames[lvl],
		Service:   l.service,
		Action:    l.action,
		Message:   message,
		Hostname:  l.hostname,
		Fields:    fields,
	}
	if err != nil {
		buf := make([]byte, 1024)
		n := runtime.Stack(buf, false)
		e.Error = &errorEntry{Msg: err.Error(), Stack: string(buf[:n])}
	}

	out := l.out
	if out == nil {
		out = os.Stdout
	}
	data, _ := json.Marshal(e)
	fmt.Fprintln(out, string(data))
}

func addPairs(fields map[string]any, group string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			key = fmt.Sprint(kv[i])
		}
		if group != "" {
			key = group + "." + key
		}
		fields[key] = kv[i+1]
	}
}
