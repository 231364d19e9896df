package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevJWTSecret signs tokens when no secret is configured outside production.
const DevJWTSecret = "expenseflow-development-secret-do-not-use"

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	Port         int           `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Path            string        `mapstructure:"path"`
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type SecurityConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type CORSConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// FirebaseConfig enables verification of Firebase ID tokens next to the
// locally issued ones. Any one credential source is enough.
type FirebaseConfig struct {
	ProjectID         string `mapstructure:"project_id"`
	CredentialsJSON   string `mapstructure:"credentials_json"`
	CredentialsBase64 string `mapstructure:"credentials_base64"`
	CredentialsFile   string `mapstructure:"credentials_file"`
}

func (f FirebaseConfig) Enabled() bool {
	return f.CredentialsJSON != "" || f.CredentialsBase64 != "" || f.CredentialsFile != ""
}

// AMQPConfig enables publishing ledger events. Empty URL disables it.
type AMQPConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Security SecurityConfig `mapstructure:"security"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Log      LogConfig      `mapstructure:"log"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	AMQP     AMQPConfig     `mapstructure:"amqp"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "./data/expenseflow.db")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 5)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "expenseflow")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("security.bcrypt_cost", 10)

	v.SetDefault("cors.allowed_origin", "http://localhost:3000")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("firebase.project_id", "")
	v.SetDefault("firebase.credentials_json", "")
	v.SetDefault("firebase.credentials_base64", "")
	v.SetDefault("firebase.credentials_file", "")

	v.SetDefault("amqp.url", "")
	v.SetDefault("amqp.exchange", "expenseflow")
}

// Load reads configuration from an optional YAML file and the environment.
// With an empty path it looks for ./config.yaml and tolerates its absence.
// Environment variables use the EXPENSEFLOW_ prefix, e.g.
// EXPENSEFLOW_SERVER_PORT=9000. PORT and DATABASE_URL are honoured too.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EXPENSEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("server.port", "EXPENSEFLOW_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}
	if err := v.BindEnv("database.url", "EXPENSEFLOW_DATABASE_URL", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	} else {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if c.JWT.Secret == "" && !c.IsProduction() {
		c.JWT.Secret = DevJWTSecret
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Env)
	return env == "production" || env == "prod"
}

// Addr is the listen address for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", c.Server.Port))
	}

	switch c.Database.Driver {
	case "sqlite3":
		if c.Database.Path == "" {
			problems = append(problems, "database path cannot be empty when using sqlite3")
		}
	case "postgres":
		if c.Database.URL == "" {
			problems = append(problems, "database url is required when using postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid database driver %q: must be sqlite3 or postgres", c.Database.Driver))
	}

	if c.JWT.Secret == "" {
		problems = append(problems, "jwt secret is required in production")
	}
	if c.JWT.TTL <= 0 {
		problems = append(problems, "jwt ttl must be positive")
	}

	// bcrypt.MinCost and bcrypt.MaxCost
	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		problems = append(problems, fmt.Sprintf("invalid bcrypt cost %d: must be between 4 and 31", c.Security.BcryptCost))
	}

	if c.CORS.AllowedOrigin == "" {
		problems = append(problems, "cors allowed origin cannot be empty")
	} else if u, err := url.Parse(c.CORS.AllowedOrigin); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid cors allowed origin %q", c.CORS.AllowedOrigin))
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("invalid log format %q: must be text or json", c.Log.Format))
	}

	if c.AMQP.URL != "" {
		if u, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme %q: must be amqp or amqps", u.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange cannot be empty when AMQP URL is provided")
		}
	}

	if c.Firebase.CredentialsFile != "" {
		if _, err := os.Stat(c.Firebase.CredentialsFile); err != nil {
			problems = append(problems, fmt.Sprintf("firebase credentials file: %v", err))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
