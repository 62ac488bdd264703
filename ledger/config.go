package ledger

import (
	"github.com/dynastyops/valuekeeper/config/encoding"
	"github.com/dynastyops/valuekeeper/logging"
)

// Config contains the configurable items for this package.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"Log level for the ledger engine"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}
