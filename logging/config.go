package logging

// Config contains the configurable items for this package.
type Config struct {
	Environment string `long:"environment" description:"Logging environment, dev gets console output, anything else structured json"`
	Level       Level  `long:"level" description:"Default log level"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Environment: "dev",
		Level:       InfoLevel,
	}
}

// UnmarshalText allows levels to be specified as strings in the toml
// configuration.
func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

// MarshalText marshals a level into bytes.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
