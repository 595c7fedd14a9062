package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
)

type Fields map[string]interface{}

type LogLevel int32

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
	CRITICAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	case CRITICAL:
		return "CRITICAL"
	default:
		return "LEVEL(" + strconv.Itoa(int(l)) + ")"
	}
}

// Logger writes one line per record:
//
//	<RFC3339 UTC> [LEVEL] [service] file:line message trace_id=... key=value ...
type Logger struct {
	level   atomic.Int32
	service string

	mu  sync.Mutex
	out io.Writer
}

// New builds a logger writing to stdout. When logDir is set, output is also
// written to a rotating app.log inside it.
func New(logDir, serviceName, level string) (*Logger, error) {
	return NewWithWriter(os.Stdout, logDir, serviceName, level)
}

func NewWithWriter(w io.Writer, logDir, serviceName, level string) (*Logger, error) {
	out := w
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		out = io.MultiWriter(w, &lumberjack.Logger{
			Filename:   filepath.Join(logDir, "app.log"),
			MaxSize:    constants.LoggerMaxSize,
			MaxBackups: constants.LoggerMaxBackups,
			MaxAge:     constants.LoggerMaxAge,
			Compress:   true,
		})
	}

	l := &Logger{service: serviceName, out: out}
	l.level.Store(int32(parseLevel(level)))
	return l, nil
}

func (l *Logger) SetLevel(level string) {
	l.level.Store(int32(parseLevel(level)))
}

func (l *Logger) ShouldLog(level LogLevel) bool {
	return int32(level) >= l.level.Load()
}

func (l *Logger) log(level LogLevel, msg string) {
	l.emit(3, level, nil, msg, nil)
}

func (l *Logger) logWithFields(level LogLevel, ctx context.Context, msg string, fields Fields) {
	l.emit(3, level, ctx, msg, fields)
}

// emit resolves the caller `depth` frames up, so every public entry point
// must reach it through exactly one intermediate call.
func (l *Logger) emit(depth int, level LogLevel, ctx context.Context, msg string, fields Fields) {
	if !l.ShouldLog(level) {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().UTC().Format(time.RFC3339))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteByte(']')
	if l.service != "" {
		b.WriteString(" [")
		b.WriteString(l.service)
		b.WriteByte(']')
	}

	b.WriteByte(' ')
	if _, file, line, ok := runtime.Caller(depth); ok {
		b.WriteString(filepath.Base(file))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(line))
	} else {
		b.WriteString("unknown:0")
	}

	b.WriteByte(' ')
	b.WriteString(msg)

	if ctx != nil {
		if traceID, ok := ctx.Value(constants.TraceIDKey).(string); ok && traceID != "" {
			b.WriteString(" trace_id=")
			b.WriteString(traceID)
		}
	}
	writeFields(&b, fields)
	b.WriteByte('\n')

	l.mu.Lock()
	_, _ = io.WriteString(l.out, b.String())
	l.mu.Unlock()
}

func writeFields(b *strings.Builder, fields Fields) {
	if len(fields) == 0 {
		return
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		b.WriteByte(' ')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
}

func formatValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func (l *Logger) Debug(msg string)    { l.log(DEBUG, msg) }
func (l *Logger) Info(msg string)     { l.log(INFO, msg) }
func (l *Logger) Warn(msg string)     { l.log(WARNING, msg) }
func (l *Logger) Error(msg string)    { l.log(ERROR, msg) }
func (l *Logger) Critical(msg string) { l.log(CRITICAL, msg) }

func (l *Logger) Debugf(format string, args ...any)    { l.log(DEBUG, fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)     { l.log(INFO, fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)     { l.log(WARNING, fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any)    { l.log(ERROR, fmt.Sprintf(format, args...)) }
func (l *Logger) Criticalf(format string, args ...any) { l.log(CRITICAL, fmt.Sprintf(format, args...)) }

// WithFields binds ctx (for its trace id) and fields to the returned entry.
func (l *Logger) WithFields(ctx context.Context, fields Fields) *Entry {
	return &Entry{logger: l, ctx: ctx, fields: fields}
}

type Entry struct {
	logger *Logger
	ctx    context.Context
	fields Fields
}

// With returns a copy of e carrying extra fields; later keys win.
func (e *Entry) With(fields Fields) *Entry {
	merged := make(Fields, len(e.fields)+len(fields))
	for k, v := range e.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Entry{logger: e.logger, ctx: e.ctx, fields: merged}
}

func (e *Entry) Debug(msg string)    { e.logger.logWithFields(DEBUG, e.ctx, msg, e.fields) }
func (e *Entry) Info(msg string)     { e.logger.logWithFields(INFO, e.ctx, msg, e.fields) }
func (e *Entry) Warn(msg string)     { e.logger.logWithFields(WARNING, e.ctx, msg, e.fields) }
func (e *Entry) Error(msg string)    { e.logger.logWithFields(ERROR, e.ctx, msg, e.fields) }
func (e *Entry) Critical(msg string) { e.logger.logWithFields(CRITICAL, e.ctx, msg, e.fields) }

func (e *Entry) Debugf(format string, args ...any) {
	e.logger.logWithFields(DEBUG, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Infof(format string, args ...any) {
	e.logger.logWithFields(INFO, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Warnf(format string, args ...any) {
	e.logger.logWithFields(WARNING, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Errorf(format string, args ...any) {
	e.logger.logWithFields(ERROR, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func (e *Entry) Criticalf(format string, args ...any) {
	e.logger.logWithFields(CRITICAL, e.ctx, fmt.Sprintf(format, args...), e.fields)
}

func parseLevel(value string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return DEBUG
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	case "CRITICAL":
		return CRITICAL
	default:
		return INFO
	}
}
