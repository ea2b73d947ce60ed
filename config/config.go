package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverBadger   = "badger"
	DriverPostgres = "postgres"
)

type Config struct {
	Env      string
	Server   ServerConfig
	Auth     AuthConfig
	Store    StoreConfig
	Database DatabaseConfig
}

type ServerConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type AuthConfig struct {
	SecretKey    string
	SessionTTL   time.Duration
	CookieSecure bool
	BcryptCost   int
}

type StoreConfig struct {
	Driver         string
	BadgerPath     string
	BadgerInMemory bool
	BackupDir      string
}

type DatabaseConfig struct {
	URI      string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

// Load reads configuration from a .env file (if present), the environment
// and an optional config.yaml in the working directory or ./config.
// Environment variables win over the file.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	setDefaults(v)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server_addr", ":8080")
	v.SetDefault("read_timeout", 10*time.Second)
	v.SetDefault("write_timeout", 15*time.Second)
	v.SetDefault("idle_timeout", 60*time.Second)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetDefault("secret_key", "")
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("bcrypt_cost", 10)

	v.SetDefault("store_driver", DriverBadger)
	v.SetDefault("badger_path", "data/blog.db")
	v.SetDefault("badger_in_memory", false)
	v.SetDefault("backup_dir", "backups")

	v.SetDefault("db_uri", "")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", 5432)
	v.SetDefault("db_user", "inkpost")
	v.SetDefault("db_password", "password")
	v.SetDefault("db_name", "inkpost")
	v.SetDefault("db_ssl", false)
}

func fromViper(v *viper.Viper) Config {
	return Config{
		Env: v.GetString("env"),
		Server: ServerConfig{
			Addr:            v.GetString("server_addr"),
			ReadTimeout:     v.GetDuration("read_timeout"),
			WriteTimeout:    v.GetDuration("write_timeout"),
			IdleTimeout:     v.GetDuration("idle_timeout"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Auth: AuthConfig{
			SecretKey:    v.GetString("secret_key"),
			SessionTTL:   v.GetDuration("session_ttl"),
			CookieSecure: v.GetBool("cookie_secure"),
			BcryptCost:   v.GetInt("bcrypt_cost"),
		},
		Store: StoreConfig{
			Driver:         v.GetString("store_driver"),
			BadgerPath:     v.GetString("badger_path"),
			BadgerInMemory: v.GetBool("badger_in_memory"),
			BackupDir:      v.GetString("backup_dir"),
		},
		Database: DatabaseConfig{
			URI:      v.GetString("db_uri"),
			Host:     v.GetString("db_host"),
			Port:     v.GetInt("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			UseSSL:   v.GetBool("db_ssl"),
		},
	}
}

// Validate checks the settings the web server cannot start without.
func (c Config) Validate() error {
	if c.Auth.SecretKey == "" {
		return errors.New("SECRET_KEY must be set")
	}
	switch c.Store.Driver {
	case DriverBadger, DriverPostgres:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.Store.Driver)
	}
	return nil
}

// DSN returns DB_URI when set, otherwise a URL built from the parts.
func (d DatabaseConfig) DSN() string {
	if d.URI != "" {
		return d.URI
	}

	sslmode := "disable"
	if d.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		User:   url.UserPassword(d.User, d.Password),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}
