package metrics

import "github.com/dynastyops/valuekeeper/config/encoding"

// Config contains the configurable items for this package.
type Config struct {
	Enabled encoding.Bool `long:"enabled" choice:"true" choice:"false" description:"Expose prometheus metrics"`
	Port    int           `long:"port" description:"Port the metrics endpoint listens on"`
	Path    string        `long:"path" description:"Path the metrics are served on"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Enabled: false,
		Port:    2112,
		Path:    "/metrics",
	}
}
