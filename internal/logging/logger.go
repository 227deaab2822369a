// Package logging provides config-driven, categorized structured logging for cosmos.
// Every category is backed by the same process-wide zap.Logger; category filtering
// and debug-mode gating happen above zap, the way the rest of the stack layers a
// domain-specific API over a general-purpose library.
package logging

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category identifies which subsystem emitted a log line.
type Category string

const (
	CategoryBoot     Category = "boot"     // CLI bootstrap, config load
	CategoryCache    Category = "cache"    // C1 cache store
	CategoryProvider Category = "provider" // C2 provider gateway
	CategoryAgent    Category = "agent"    // C3 agentic loop
	CategorySuggest  Category = "suggest"  // C4 suggestion pipeline
	CategoryWorkflow Category = "workflow" // C5 workflow state machine
	CategoryVCS      Category = "vcs"      // version control integration
)

// Config mirrors the subset of the application config this package needs,
// kept here to avoid an import cycle with internal/config.
type Config struct {
	DebugMode  bool
	Categories map[string]bool
	JSONFormat bool
}

var (
	mu          sync.RWMutex
	base        *zap.Logger
	cfg         Config
	initialized bool
)

// Initialize sets the process-wide zap logger. verbose forces debug level and
// enables every category regardless of cfg.Categories.
func Initialize(verbose bool, c Config) error {
	mu.Lock()
	defer mu.Unlock()

	zcfg := zap.NewProductionConfig()
	if verbose || c.DebugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	if !c.JSONFormat {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("logging: build zap logger: %w", err)
	}

	base = l
	cfg = c
	if verbose {
		cfg.DebugMode = true
		cfg.Categories = nil
	}
	initialized = true
	return nil
}

// Sync flushes buffered log entries. Call once at shutdown; sync errors on
// stderr/stdout (common on Linux ttys) are expected and not worth surfacing.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if base == nil {
		return nil
	}
	var errs error
	if err := base.Sync(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

func enabled(c Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if !initialized {
		return false
	}
	if !cfg.DebugMode {
		return false
	}
	if cfg.Categories == nil {
		return true
	}
	v, ok := cfg.Categories[string(c)]
	if !ok {
		return true
	}
	return v
}

func logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Logger is a category-scoped, leveled logger.
type Logger struct {
	category Category
}

// Get returns the logger for a category. Safe to call before Initialize;
// logging is a no-op until then.
func Get(category Category) *Logger {
	return &Logger{category: category}
}

func (l *Logger) fields(extra ...zap.Field) []zap.Field {
	return append([]zap.Field{zap.String("category", string(l.category))}, extra...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	if !enabled(l.category) {
		return
	}
	if z := logger(); z != nil {
		z.Debug(fmt.Sprintf(format, args...), l.fields()...)
	}
}

func (l *Logger) Info(format string, args ...interface{}) {
	if !enabled(l.category) {
		return
	}
	if z := logger(); z != nil {
		z.Info(fmt.Sprintf(format, args...), l.fields()...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if z := logger(); z != nil {
		z.Warn(fmt.Sprintf(format, args...), l.fields()...)
	}
}

// Error always logs, even outside debug mode, matching the teacher's policy
// that errors are never silently dropped.
func (l *Logger) Error(format string, args ...interface{}) {
	if z := logger(); z != nil {
		z.Error(fmt.Sprintf(format, args...), l.fields()...)
	}
}

// WithFields returns a structured logger carrying additional key/value pairs
// (run id, suggestion id, provider slug, ...) on every subsequent line.
func (l *Logger) WithFields(kv map[string]interface{}) *FieldLogger {
	return &FieldLogger{logger: l, fields: kv}
}

// FieldLogger is a Logger bound to a fixed set of structured fields.
type FieldLogger struct {
	logger *Logger
	fields map[string]interface{}
}

func (f *FieldLogger) zapFields() []zap.Field {
	fs := make([]zap.Field, 0, len(f.fields))
	for k, v := range f.fields {
		fs = append(fs, zap.Any(k, v))
	}
	return fs
}

func (f *FieldLogger) Debug(format string, args ...interface{}) {
	if !enabled(f.logger.category) {
		return
	}
	if z := logger(); z != nil {
		z.Debug(fmt.Sprintf(format, args...), f.logger.fields(f.zapFields()...)...)
	}
}

func (f *FieldLogger) Info(format string, args ...interface{}) {
	if !enabled(f.logger.category) {
		return
	}
	if z := logger(); z != nil {
		z.Info(fmt.Sprintf(format, args...), f.logger.fields(f.zapFields()...)...)
	}
}

func (f *FieldLogger) Error(format string, args ...interface{}) {
	if z := logger(); z != nil {
		z.Error(fmt.Sprintf(format, args...), f.logger.fields(f.zapFields()...)...)
	}
}

// Convenience per-category package functions, matching the teacher's
// Boot/BootDebug style so callers don't have to hold a *Logger.

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

func Cache(format string, args ...interface{})    { Get(CategoryCache).Info(format, args...) }
func CacheDebug(format string, args ...interface{}) { Get(CategoryCache).Debug(format, args...) }
func CacheError(format string, args ...interface{}) { Get(CategoryCache).Error(format, args...) }

func Provider(format string, args ...interface{})    { Get(CategoryProvider).Info(format, args...) }
func ProviderDebug(format string, args ...interface{}) { Get(CategoryProvider).Debug(format, args...) }
func ProviderError(format string, args ...interface{}) { Get(CategoryProvider).Error(format, args...) }

func Agent(format string, args ...interface{})    { Get(CategoryAgent).Info(format, args...) }
func AgentDebug(format string, args ...interface{}) { Get(CategoryAgent).Debug(format, args...) }
func AgentError(format string, args ...interface{}) { Get(CategoryAgent).Error(format, args...) }

func Suggest(format string, args ...interface{})    { Get(CategorySuggest).Info(format, args...) }
func SuggestDebug(format string, args ...interface{}) { Get(CategorySuggest).Debug(format, args...) }

func Workflow(format string, args ...interface{})    { Get(CategoryWorkflow).Info(format, args...) }
func WorkflowDebug(format string, args ...interface{}) { Get(CategoryWorkflow).Debug(format, args...) }

func VCS(format string, args ...interface{})    { Get(CategoryVCS).Info(format, args...) }
func VCSDebug(format string, args ...interface{}) { Get(CategoryVCS).Debug(format, args...) }

// Timer measures and logs operation duration, mirroring the teacher's timing helper.
type Timer struct {
	category Category
	op       string
	start    time.Time
}

func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}
