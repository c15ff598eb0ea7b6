package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/lancer-kit/noble"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	Disabled zerolog.Logger

	DefaultLevel   = zerolog.InfoLevel
	DefaultAppName = "hybrid"
	DefaultLogFile = "hybrid.log"
)

func init() {
	Disabled = zerolog.Nop()
}

// Configuration for logging
type Config struct {
	// AppName is attached to every record as the `app` field.
	AppName string `json:"app_name" yaml:"app_name"`
	// Level is a string representation of the `zerolog.Level`.
	Level noble.Secret `json:"level" yaml:"level"`
	// Disable console logging
	DisableConsoleLog bool `yaml:"disable_console_log"`
	// LogsAsJson writes console records as plain JSON instead of the pretty format
	LogsAsJson bool `yaml:"logs_as_json"`
	// FileLoggingEnabled makes the framework log to a file
	// the fields below can be skipped if this value is false!
	FileLoggingEnabled bool `yaml:"file_logging_enabled"`
	// Directory to log to to when filelogging is enabled
	Directory string `yaml:"directory"`
	// Filename is the name of the logfile which will be placed inside the directory
	Filename string `yaml:"filename"`
	// MaxSize the max size in MB of the logfile before it's rolled
	MaxSize int `yaml:"max_size"`
	// MaxBackups the max number of rolled files to keep
	MaxBackups int `yaml:"max_backups"`
	// MaxAge the max age in days to keep a logfile
	MaxAge int `yaml:"max_age"`
}

func (Config) Default() Config {
	return Config{
		AppName:            DefaultAppName,
		DisableConsoleLog:  false,
		LogsAsJson:         false,
		FileLoggingEnabled: false,
		Directory:          "",
		Filename:           DefaultLogFile,
		MaxSize:            150,
		MaxBackups:         3,
		MaxAge:             28,
	}
}

func (cfg Config) Validate() error {
	if !cfg.FileLoggingEnabled {
		return nil
	}
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Filename, validation.Required),
		validation.Field(&cfg.MaxSize, validation.Min(1)),
	)
}

// New builds the logger described by config. With both outputs disabled the
// records are discarded.
func New(config Config) zerolog.Logger {
	logLevel, err := zerolog.ParseLevel(config.Level.Get())
	if err != nil || config.Level.Get() == "" {
		logLevel = DefaultLevel
	}

	appName := config.AppName
	if appName == "" {
		appName = DefaultAppName
	}

	var writers []io.Writer
	if !config.DisableConsoleLog {
		writers = append(writers, consoleWriter(config))
	}
	if config.FileLoggingEnabled {
		if file := newRollingFile(config); file != nil {
			writers = append(writers, file)
		}
	}
	if len(writers) == 0 {
		return Disabled
	}

	mw := io.MultiWriter(writers...)
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := zerolog.New(mw).
		Level(logLevel).
		With().
		Str("app", appName).
		Timestamp().
		Logger()

	logger.Trace().
		Bool("fileLogging", config.FileLoggingEnabled).
		Bool("jsonLogOutput", config.LogsAsJson).
		Str("logDirectory", config.Directory).
		Str("fileName", config.Filename).
		Int("maxSizeMB", config.MaxSize).
		Int("maxBackups", config.MaxBackups).
		Int("maxAgeInDays", config.MaxAge).
		Msg("logging configured")

	return logger
}

func consoleWriter(config Config) io.Writer {
	if config.LogsAsJson {
		return os.Stderr
	}

	out := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: false}
	out.TimeFormat = time.RFC3339
	out.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	out.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%-6s  |>", i)
	}
	return out
}

func newRollingFile(config Config) io.Writer {
	if config.Directory != "" {
		if err := os.MkdirAll(config.Directory, 0744); err != nil {
			log.Error().Err(err).Str("path", config.Directory).Msg("can't create log directory")
			return nil
		}
	}

	return &lumberjack.Logger{
		Filename:   path.Join(config.Directory, config.Filename),
		MaxBackups: config.MaxBackups, // files
		MaxSize:    config.MaxSize,    // megabytes
		MaxAge:     config.MaxAge,     // days
	}
}
