package db

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/envutil"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/logger"
	"github.com/ganesh-omneky/data-health-dashboard/internal/platform/sshtunnel"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	// DSN overrides the parts above when set. For sqlite it is the file path.
	DSN string

	// LocalToProd routes MySQL through an SSH bastion.
	LocalToProd bool
	SSH         sshtunnel.Config

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// ConfigFromEnv reads DB_* and SSH_* variables. secret resolves credentials
// that may live in the secret bundle rather than the environment.
func ConfigFromEnv(log *logger.Logger, secret func(key, def string) string) Config {
	if secret == nil {
		secret = func(key, def string) string { return envutil.GetEnv(key, def, log) }
	}
	driver := strings.ToLower(envutil.GetEnv("DB_DRIVER", DriverMySQL, log))
	defPort := "3306"
	if driver == DriverPostgres {
		defPort = "5432"
	}
	return Config{
		Driver:      driver,
		Host:        secret("DB_HOST", "localhost"),
		Port:        envutil.GetEnv("DB_PORT", defPort, log),
		User:        secret("DB_USER", "root"),
		Password:    secret("DB_PASSWORD", ""),
		Name:        secret("DB_NAME", "omneky"),
		DSN:         envutil.GetEnv("DB_DSN", "", log),
		LocalToProd: envutil.GetEnvAsBool("LOCAL_TO_PROD", false, log),
		SSH: sshtunnel.Config{
			Host:           secret("SSH_HOST", ""),
			User:           secret("SSH_USER", ""),
			PrivateKey:     secret("SSH_PKEY", ""),
			PrivateKeyPath: envutil.GetEnv("SSH_PKEY_PATH", "", log),
			KnownHostsPath: envutil.GetEnv("SSH_KNOWN_HOSTS", "", log),
		},
		MaxOpenConns:    envutil.GetEnvAsInt("DB_MAX_OPEN_CONNS", 32, log),
		MaxIdleConns:    envutil.GetEnvAsInt("DB_MAX_IDLE_CONNS", 8, log),
		ConnMaxLifetime: envutil.GetEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute, log),
		AutoMigrate:     envutil.GetEnvAsBool("DB_AUTO_MIGRATE", driver == DriverSQLite, log),
	}
}

type Service struct {
	db     *gorm.DB
	log    *logger.Logger
	tunnel *sshtunnel.Tunnel
}

func Open(ctx context.Context, cfg Config, baseLog *logger.Logger) (*Service, error) {
	serviceLog := baseLog.With("service", "DBService", "driver", cfg.Driver)

	s := &Service{log: serviceLog}
	if cfg.LocalToProd && cfg.Driver == DriverMySQL && cfg.DSN == "" {
		ssh := cfg.SSH
		ssh.RemoteAddr = net.JoinHostPort(cfg.Host, cfg.Port)
		t, err := sshtunnel.Start(ctx, ssh, baseLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open ssh tunnel: %w", err)
		}
		s.tunnel = t
		host, port, _ := net.SplitHostPort(t.LocalAddr())
		cfg.Host, cfg.Port = host, port
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		s.closeTunnel()
		return nil, err
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		s.closeTunnel()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		s.closeTunnel()
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// sqlite serialises writers; one connection avoids "database is locked".
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		if cfg.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		s.closeTunnel()
		return nil, fmt.Errorf("failed to ping %s: %w", cfg.Driver, err)
	}

	if cfg.AutoMigrate {
		if err := AutoMigrateAll(gdb); err != nil {
			_ = sqlDB.Close()
			s.closeTunnel()
			return nil, err
		}
	}

	s.db = gdb
	serviceLog.Info("Database connected", "host", cfg.Host, "name", cfg.Name, "tunnel", s.tunnel != nil)
	return s, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

// Close releases the pool and, when used, the tunnel.
func (s *Service) Close() error {
	var err error
	if s.db != nil {
		if sqlDB, dbErr := s.db.DB(); dbErr == nil {
			err = sqlDB.Close()
		}
	}
	s.closeTunnel()
	return err
}

func (s *Service) closeTunnel() {
	if s.tunnel == nil {
		return
	}
	if err := s.tunnel.Close(); err != nil {
		s.log.Warn("Failed to close ssh tunnel", "error", err)
	}
	s.tunnel = nil
}

func dialectorFor(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverMySQL:
		return mysql.Open(mysqlDSN(cfg)), nil
	case DriverPostgres:
		return postgres.Open(postgresDSN(cfg)), nil
	case DriverSQLite:
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "file:dashboard.db?_foreign_keys=on"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
}

func mysqlDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cfg.User,
		cfg.Password,
		net.JoinHostPort(cfg.Host, cfg.Port),
		cfg.Name,
	)
}

func postgresDSN(cfg Config) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=disable",
		url.QueryEscape(cfg.User),
		url.QueryEscape(cfg.Password),
		net.JoinHostPort(cfg.Host, cfg.Port),
		cfg.Name,
	)
}
