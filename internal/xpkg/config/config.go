package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  *Server   `yaml:"server"`
	Storage *Storage  `yaml:"storage"`
	RMQ     *RabbitMQ `yaml:"rabbitmq"`
	Auth    *Auth     `yaml:"auth"`
	Log     *Log      `yaml:"log"`
}

type Server struct {
	Port int `yaml:"port"`
}

// Storage selects the record store backend. Driver "file" keeps every
// collection in a JSON file under DataDir; driver "postgres" stores records
// in a single jsonb table.
type Storage struct {
	Driver  string    `yaml:"driver"`
	DataDir string    `yaml:"data_dir"`
	DB      *Postgres `yaml:"postgres"`
}

type Postgres struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type RabbitMQ struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	VHost    string `yaml:"vhost"`
}

type Auth struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type Log struct {
	Level string `yaml:"level"`
}

func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, cfg.validate()
}

// LoadEnv builds a config from environment variables, used when no yaml file
// is provided.
func LoadEnv() *Config {
	cfg := &Config{
		Server: &Server{Port: 8080},
		Storage: &Storage{
			Driver:  getEnv("STORAGE_DRIVER", "file"),
			DataDir: getEnv("STORAGE_DATA_DIR", "data"),
			DB: &Postgres{
				Host:     getEnv("POSTGRES_HOST", "localhost"),
				Port:     getEnv("POSTGRES_PORT", "5432"),
				User:     getEnv("POSTGRES_USER", "postgres"),
				Password: getEnv("POSTGRES_PASSWORD", "postgres"),
				Database: getEnv("POSTGRES_DBNAME", "canteen"),
			},
		},
		Auth: &Auth{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
	}
	if host := os.Getenv("RABBITMQ_HOST"); host != "" {
		cfg.RMQ = &RabbitMQ{
			Host:     host,
			Port:     getEnv("RABBITMQ_PORT", "5672"),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", "/"),
		}
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &Server{}
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage == nil {
		c.Storage = &Storage{}
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "data"
	}
	if c.Auth == nil {
		c.Auth = &Auth{}
	}
	if c.Auth.JWTSecret == "" {
		c.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 7 * 24 * time.Hour
	}
	if c.Log == nil {
		c.Log = &Log{Level: "INFO"}
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "file":
	case "postgres":
		if c.Storage.DB == nil {
			return fmt.Errorf("storage driver %q requires a postgres block", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
