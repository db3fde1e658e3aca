package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Domenick1991/farmstay/internal/domain"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Session   SessionConfig   `yaml:"session"`
	Booking   BookingConfig   `yaml:"booking"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Email     EmailConfig     `yaml:"email"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Address         string    `yaml:"address"`
	SwaggerFile     string    `yaml:"swagger_file"`
	CORSOrigins     []string  `yaml:"cors_origins"`
	RateLimit       RateLimit `yaml:"rate_limit"`
	ShutdownSeconds int       `yaml:"shutdown_seconds"`
}

type RateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	EventsTopic        string   `yaml:"events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type SessionConfig struct {
	Store          string `yaml:"store"`
	TTLMinutes     int    `yaml:"ttl_minutes"`
	LockTTLSeconds int    `yaml:"lock_ttl_seconds"`
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

func (s SessionConfig) LockTTL() time.Duration {
	return time.Duration(s.LockTTLSeconds) * time.Second
}

// BookingConfig overrides selected catalog values. Zero fields keep the defaults.
type BookingConfig struct {
	RoomSearchDays       int    `yaml:"room_search_days"`
	TableSuggestionLimit int    `yaml:"table_suggestion_limit"`
	TableLookaheadDays   int    `yaml:"table_lookahead_days"`
	ContactPhone         string `yaml:"contact_phone"`
}

func (b BookingConfig) Catalog() *domain.Catalog {
	cat := domain.DefaultCatalog()
	if b.RoomSearchDays > 0 {
		cat.RoomSearchDays = b.RoomSearchDays
	}
	if b.TableSuggestionLimit > 0 {
		cat.TableSuggestionLimit = b.TableSuggestionLimit
	}
	if b.TableLookaheadDays > 0 {
		cat.TableLookaheadDays = b.TableLookaheadDays
	}
	if b.ContactPhone != "" {
		cat.ContactPhone = b.ContactPhone
	}
	return cat
}

type KnowledgeConfig struct {
	File string `yaml:"file"`
}

type EmailConfig struct {
	AdminAddress string `yaml:"admin_address"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

// LoadConfig reads the yaml file at path. ${VAR} references are expanded from the
// environment, which is first populated from a .env file next to the binary if present.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.HTTP.ShutdownSeconds == 0 {
		c.HTTP.ShutdownSeconds = 10
	}
	if c.Session.Store == "" {
		c.Session.Store = "memory"
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 24 * 60
	}
	if c.Session.LockTTLSeconds == 0 {
		c.Session.LockTTLSeconds = 30
	}
	if c.Knowledge.File == "" {
		c.Knowledge.File = "data/knowledge.yaml"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
