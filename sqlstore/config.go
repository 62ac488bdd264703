package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/dynastyops/valuekeeper/config/encoding"
	"github.com/dynastyops/valuekeeper/logging"

	"github.com/jackc/pgtype"
	shopspring "github.com/jackc/pgtype/ext/shopspring-numeric"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ConnectionConfig describes how to reach the postgres server.
type ConnectionConfig struct {
	Host            string            `long:"host" description:"Database host"`
	Port            int               `long:"port" description:"Database port"`
	Username        string            `long:"username" description:"Database user"`
	Password        string            `long:"password" description:"Database password"`
	Database        string            `long:"database" description:"Database name"`
	MaxConnPoolSize int               `long:"max-conn-pool-size" description:"Maximum size of the connection pool"`
	MaxConnLifetime encoding.Duration `long:"max-conn-lifetime" description:"Maximum lifetime of a pooled connection"`
}

// Config contains the configurable items for this package.
type Config struct {
	Level            encoding.LogLevel `long:"log-level" description:"Log level for the sql store"`
	ConnectionConfig ConnectionConfig  `group:"ConnectionConfig" namespace:"ConnectionConfig"`

	ConnectRetryMaxElapsed encoding.Duration `long:"connect-retry-max-elapsed" description:"How long to keep retrying the initial database connection"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
		ConnectionConfig: ConnectionConfig{
			Host:            "localhost",
			Port:            5432,
			Username:        "valuekeeper",
			Password:        "valuekeeper",
			Database:        "valuekeeper",
			MaxConnPoolSize: 8,
			MaxConnLifetime: encoding.Duration{Duration: 30 * time.Minute},
		},
		ConnectRetryMaxElapsed: encoding.Duration{Duration: time.Minute},
	}
}

func (conf ConnectionConfig) GetConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s",
		conf.Username,
		conf.Password,
		conf.Host,
		conf.Port,
		conf.Database)
}

func (conf ConnectionConfig) GetPoolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(conf.GetConnectionString())
	if err != nil {
		return nil, err
	}
	cfg.ConnConfig.RuntimeParams["application_name"] = "valuekeeper"
	if conf.MaxConnPoolSize > 0 {
		cfg.MaxConns = int32(conf.MaxConnPoolSize)
	}
	if conf.MaxConnLifetime.Get() > 0 {
		cfg.MaxConnLifetime = conf.MaxConnLifetime.Get()
	}

	// load postgres numerics as shopspring decimals and vice versa
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		conn.ConnInfo().RegisterDataType(pgtype.DataType{
			Value: &shopspring.Numeric{},
			Name:  "numeric",
			OID:   pgtype.NumericOID,
		})
		return nil
	}
	return cfg, nil
}
