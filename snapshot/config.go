package snapshot

import (
	"time"

	"github.com/dynastyops/valuekeeper/config/encoding"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/types"
)

// Config contains the configurable items for this package. Full snapshots
// are kept the longest, they are the recovery path of last resort.
type Config struct {
	Level encoding.LogLevel `long:"log-level" description:"Log level for the snapshot engine"`

	RetentionValues  encoding.Duration `long:"retention-values" description:"How long value snapshots are kept"`
	RetentionFull    encoding.Duration `long:"retention-full" description:"How long full snapshots are kept"`
	RetentionDefault encoding.Duration `long:"retention-default" description:"How long any other snapshot type is kept"`

	KeepFull    int `long:"keep-full" description:"Maximum number of full snapshots kept, newest first"`
	KeepDefault int `long:"keep-default" description:"Maximum number of snapshots kept per other type, newest first"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:            encoding.LogLevel{Level: logging.InfoLevel},
		RetentionValues:  encoding.Duration{Duration: 30 * 24 * time.Hour},
		RetentionFull:    encoding.Duration{Duration: 90 * 24 * time.Hour},
		RetentionDefault: encoding.Duration{Duration: 60 * 24 * time.Hour},
		KeepFull:         30,
		KeepDefault:      60,
	}
}

func (c Config) retentionFor(t types.SnapshotType) time.Duration {
	switch t {
	case types.SnapshotTypeValues:
		return c.RetentionValues.Get()
	case types.SnapshotTypeFull:
		return c.RetentionFull.Get()
	}
	return c.RetentionDefault.Get()
}

func (c Config) keepFor(t types.SnapshotType) int {
	if t == types.SnapshotTypeFull {
		return c.KeepFull
	}
	return c.KeepDefault
}
