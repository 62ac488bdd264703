package logging

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// String constructs a field with the given key and value.
func String(key, val string) zap.Field {
	return zap.String(key, val)
}

// Strings constructs a field with the given key and value.
func Strings(key string, val []string) zap.Field {
	return zap.Strings(key, val)
}

// Int constructs a field with the given key and value.
func Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Int64 constructs a field with the given key and value.
func Int64(key string, val int64) zap.Field {
	return zap.Int64(key, val)
}

// Bool constructs a field with the given key and value.
func Bool(key string, val bool) zap.Field {
	return zap.Bool(key, val)
}

// Float64 constructs a field with the given key and value.
func Float64(key string, val float64) zap.Field {
	return zap.Float64(key, val)
}

// Decimal constructs a field holding the canonical string form of a decimal.
func Decimal(key string, val decimal.Decimal) zap.Field {
	return zap.String(key, val.String())
}

// Duration constructs a field with the given key and value.
func Duration(key string, val time.Duration) zap.Field {
	return zap.Duration(key, val)
}

// Time constructs a field with the given key and value.
func Time(key string, val time.Time) zap.Field {
	return zap.Time(key, val)
}

// Error constructs a field that carries an error.
func Error(err error) zap.Field {
	return zap.Error(err)
}
