package verify

import (
	"github.com/dynastyops/valuekeeper/config/encoding"
	"github.com/dynastyops/valuekeeper/logging"
)

// Config contains the configurable items for this package.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"Log level for the verifier"`

	VolatilityWindow int `long:"volatility-window" description:"Default number of epochs a volatility report covers"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:            encoding.LogLevel{Level: logging.InfoLevel},
		VolatilityWindow: 30,
	}
}
