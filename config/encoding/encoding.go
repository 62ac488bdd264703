package encoding

import (
	"fmt"
	"time"

	"github.com/dynastyops/valuekeeper/logging"
)

// Duration is a wrapper over an actual duration so we can represent
// them as string in the toml configuration.
type Duration struct {
	time.Duration
}

// Get returns the stored duration.
func (d *Duration) Get() time.Duration {
	return d.Duration
}

// UnmarshalText unmarshals a duration from bytes.
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// UnmarshalFlag unmarshals a duration from a flag value.
func (d *Duration) UnmarshalFlag(s string) error {
	return d.UnmarshalText([]byte(s))
}

// MarshalText marshals a duration into bytes.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LogLevel is a wrapper over the actual log level so they can be specified
// as strings in the toml configuration.
type LogLevel struct {
	logging.Level
}

// Get returns the stored value.
func (l *LogLevel) Get() logging.Level {
	return l.Level
}

// UnmarshalText unmarshals a log level from bytes.
func (l *LogLevel) UnmarshalText(text []byte) error {
	var err error
	l.Level, err = logging.ParseLevel(string(text))
	return err
}

// UnmarshalFlag unmarshals a log level from a flag value.
func (l *LogLevel) UnmarshalFlag(s string) error {
	return l.UnmarshalText([]byte(s))
}

// MarshalText marshals a log level into bytes.
func (l LogLevel) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Bool is a wrapper over bool so flags can carry explicit true/false choices.
type Bool bool

// UnmarshalFlag unmarshals a bool from a flag value.
func (b *Bool) UnmarshalFlag(s string) error {
	switch s {
	case "true":
		*b = true
	case "false":
		*b = false
	default:
		return fmt.Errorf("invalid bool value %q, expected true or false", s)
	}
	return nil
}
