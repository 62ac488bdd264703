package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// A Level is a logging priority. Higher levels are more important.
type Level int8

// Logging levels (matching zap core internals).
const (
	// DebugLevel logs are typically voluminous, and are usually disabled in
	// production.
	DebugLevel Level = -1
	// InfoLevel is the default logging priority.
	InfoLevel Level = 0
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel Level = 1
	// ErrorLevel logs are high-priority. If an application is running smoothly,
	// it shouldn't generate any error-level logs.
	ErrorLevel Level = 2
	// PanicLevel logs a message, then panics.
	PanicLevel Level = 4
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel Level = 5
)

func (l Level) ZapLevel() zapcore.Level {
	return zapcore.Level(l)
}

func (l Level) String() string {
	return l.ZapLevel().String()
}

// ParseLevel parses a level string as used in config files.
func ParseLevel(level string) (Level, error) {
	var zl zapcore.Level
	if err := zl.UnmarshalText([]byte(level)); err != nil {
		return InfoLevel, fmt.Errorf("couldn't parse log level %q: %w", level, err)
	}
	return Level(zl), nil
}

type Logger struct {
	*zap.Logger
	config *zap.Config
	name   string
}

func New(core zapcore.Core, cfg *zap.Config) *Logger {
	return &Logger{
		Logger: zap.New(core),
		config: cfg,
	}
}

func (log *Logger) Clone() *Logger {
	newConfig := cloneConfig(log.config)
	newLogger, err := newConfig.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{
		Logger: newLogger,
		config: newConfig,
		name:   log.name,
	}
}

func (log *Logger) GetLevel() Level {
	return Level(log.config.Level.Level())
}

func (log *Logger) GetLevelString() string {
	return log.config.Level.String()
}

func (log *Logger) GetName() string {
	return log.name
}

// Named returns a copy of the logger with the given name appended to the
// current name, dot separated.
func (log *Logger) Named(name string) *Logger {
	c := log.Clone()
	newName := name
	if log.name != "" {
		newName = fmt.Sprintf("%s.%s", log.name, name)
	}
	return &Logger{
		Logger: c.Logger.Named(newName),
		config: c.config,
		name:   newName,
	}
}

func (log *Logger) SetLevel(level Level) {
	lvl := zapcore.Level(level)
	if log.config.Level.Level() == lvl {
		return
	}
	log.config.Level.SetLevel(lvl)
}

func (log *Logger) With(fields ...zap.Field) *Logger {
	c := log.Clone()
	return &Logger{
		Logger: c.Logger.With(fields...),
		config: c.config,
		name:   log.name,
	}
}

// IsDebug returns true if the logger level is at or below debug, used to
// guard expensive log statements.
func (log *Logger) IsDebug() bool {
	return log.GetLevel() <= DebugLevel
}

// AtExit flushes the logs before exiting the process. Useful when an
// app shuts down so we store all logging possible. This is meant to be used
// with defer when initializing your logger.
func (log *Logger) AtExit() {
	if log.Logger != nil {
		log.Logger.Sync()
	}
}

func cloneConfig(cfg *zap.Config) *zap.Config {
	c := zap.Config{
		Level:             zap.NewAtomicLevelAt(cfg.Level.Level()),
		Development:       cfg.Development,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: cfg.DisableStacktrace,
		Sampling:          nil,
		Encoding:          cfg.Encoding,
		EncoderConfig:     cfg.EncoderConfig,
		OutputPaths:       cfg.OutputPaths,
		ErrorOutputPaths:  cfg.ErrorOutputPaths,
		InitialFields:     make(map[string]interface{}),
	}
	for k, v := range cfg.InitialFields {
		c.InitialFields[k] = v
	}
	if cfg.Sampling != nil {
		c.Sampling = &zap.SamplingConfig{
			Initial:    cfg.Sampling.Initial,
			Thereafter: cfg.Sampling.Thereafter,
		}
	}
	return &c
}

// NewLoggerFromConfig builds a logger for the given environment, "dev" gets
// a human readable console encoder at debug level, anything else structured
// json at the configured level.
func NewLoggerFromConfig(cfg Config) *Logger {
	if cfg.Environment == "dev" {
		return NewDevLogger()
	}
	return NewProdLogger(cfg.Level.ZapLevel())
}

// NewDevLogger creates a console logger at debug level, to be used in
// development environments and tests.
func NewDevLogger() *Logger {
	encoderConfig := zapcore.EncoderConfig{
		CallerKey:      "C",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "L",
		LineEnding:     "\n",
		MessageKey:     "M",
		NameKey:        "N",
		TimeKey:        "T",
	}
	config := &zap.Config{
		Level:            zap.NewAtomicLevelAt(zapcore.DebugLevel),
		Development:      true,
		Encoding:         "console",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{
		Logger: logger,
		config: config,
	}
}

// NewProdLogger creates a structured json logger at the given level.
func NewProdLogger(level zapcore.Level) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeName:     zapcore.FullNameEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		LevelKey:       "level",
		LineEnding:     "\n",
		MessageKey:     "message",
		NameKey:        "logger",
		StacktraceKey:  "stacktrace",
		TimeKey:        "@timestamp",
	}
	config := &zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	logger, err := config.Build()
	if err != nil {
		panic(err)
	}
	return &Logger{
		Logger: logger,
		config: config,
	}
}

// NewTestLogger creates a console logger for use in tests, at warn level so
// test output stays readable.
func NewTestLogger() *Logger {
	log := NewDevLogger()
	log.SetLevel(WarnLevel)
	return log
}
