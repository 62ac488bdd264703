package config

import (
	"os"
	"path/filepath"
)

// Empty is the placeholder the top level flag parser is built around, the
// real options live on the subcommands.
type Empty struct{}

// HomeFlag is embedded by every subcommand that needs the configuration
// directory.
type HomeFlag struct {
	Home string `long:"home" description:"Path to the configuration directory" env:"VALUEKEEPER_HOME"`
}

// RootPath resolves the configuration directory, defaulting to
// ~/.valuekeeper.
func (f HomeFlag) RootPath() string {
	if f.Home != "" {
		return f.Home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".valuekeeper"
	}
	return filepath.Join(home, ".valuekeeper")
}
