package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Email    EmailConfig    `mapstructure:"email"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"min=0"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	RateLimit      float64       `mapstructure:"rate_limit" validate:"min=0"`
	RateBurst      int           `mapstructure:"rate_burst" validate:"min=0"`
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host" validate:"required"`
	Port         int    `mapstructure:"port" validate:"required"`
	User         string `mapstructure:"user" validate:"required"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name" validate:"required"`
	SSLMode      string `mapstructure:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN returns the lib/pq connection string.
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	Issuer          string        `mapstructure:"issuer" validate:"required"`
	SessionTTL      time.Duration `mapstructure:"session_ttl" validate:"required"`
	SessionCacheTTL time.Duration `mapstructure:"session_cache_ttl"`
	CookieName      string        `mapstructure:"cookie_name" validate:"required"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	BcryptCost      int           `mapstructure:"bcrypt_cost" validate:"min=4,max=31"`
}

// RedisConfig backs the active clinic store. An empty Addr selects the
// in-process store.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// EmailConfig configures the SMTP provider. An empty Host leaves the
// provider unconfigured.
type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from" validate:"omitempty,email"`
	FromName string `mapstructure:"from_name"`

	// consecutive send failures before sends fail fast for BreakerTimeout
	BreakerFailures int           `mapstructure:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// StorageConfig configures the S3 bucket. An empty Bucket leaves file
// storage unconfigured.
type StorageConfig struct {
	Bucket          string        `mapstructure:"bucket"`
	Region          string        `mapstructure:"region" validate:"required_with=Bucket"`
	Endpoint        string        `mapstructure:"endpoint" validate:"omitempty,url"`
	UsePathStyle    bool          `mapstructure:"use_path_style"`
	AccessKeyID     string        `mapstructure:"access_key_id"`
	SecretAccessKey string        `mapstructure:"secret_access_key"`
	PublicBaseURL   string        `mapstructure:"public_base_url" validate:"omitempty,url"`
	MaxFileSize     int64         `mapstructure:"max_file_size" validate:"min=1"`
	AllowedTypes    []string      `mapstructure:"allowed_types" validate:"min=1"`
	PresignTTL      time.Duration `mapstructure:"presign_ttl"`
}

type ReminderConfig struct {
	Timezone          string `mapstructure:"timezone" validate:"required"`
	DefaultHoursAhead int    `mapstructure:"default_hours_ahead" validate:"min=1,max=24"`
	Concurrency       int    `mapstructure:"concurrency" validate:"min=1"`
	TriggerSecret     string `mapstructure:"trigger_secret"`
	TomorrowSchedule  string `mapstructure:"tomorrow_schedule"`
	SameDaySchedule   string `mapstructure:"same_day_schedule"`
	CleanupSchedule   string `mapstructure:"cleanup_schedule"`

	Location *time.Location `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" validate:"required"`
}

// secrets are read from plain environment variables and override whatever
// the config file holds.
type secrets struct {
	DBPassword     string `envconfig:"DB_PASSWORD"`
	JWTSecret      string `envconfig:"JWT_SECRET"`
	SMTPPassword   string `envconfig:"SMTP_PASSWORD"`
	AWSAccessKeyID string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey   string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	ReminderSecret string `envconfig:"REMINDER_SECRET"`
	RedisPassword  string `envconfig:"REDIS_PASSWORD"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.request_timeout", 20*time.Second)
	v.SetDefault("server.max_body_bytes", 6<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("server.rate_burst", 40)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("auth.issuer", "clinic-api")
	v.SetDefault("auth.session_ttl", 7*24*time.Hour)
	v.SetDefault("auth.session_cache_ttl", time.Minute)
	v.SetDefault("auth.cookie_name", "clinic_session")
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("redis.ttl", 30*24*time.Hour)

	v.SetDefault("email.port", 587)
	v.SetDefault("email.from_name", "Clinic")
	v.SetDefault("email.breaker_failures", 5)
	v.SetDefault("email.breaker_timeout", 30*time.Second)

	v.SetDefault("storage.max_file_size", 5<<20)
	v.SetDefault("storage.allowed_types", []string{
		"image/jpeg", "image/png", "image/gif", "image/webp", "application/pdf",
	})
	v.SetDefault("storage.presign_ttl", 15*time.Minute)

	v.SetDefault("reminder.timezone", "Local")
	v.SetDefault("reminder.default_hours_ahead", 2)
	v.SetDefault("reminder.concurrency", 8)
	v.SetDefault("reminder.tomorrow_schedule", "0 18 * * *")
	v.SetDefault("reminder.same_day_schedule", "0 */2 * * *")
	v.SetDefault("reminder.cleanup_schedule", "@daily")

	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.namespace", "clinic_api")
}

// LoadConfig reads config.yaml (or CONFIG_FILE), overlays environment
// variables and validates the result. A missing config file is not an
// error; defaults and the environment still apply.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app")
		v.AddConfigPath("/app/config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var s secrets
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to read secrets: %w", err)
	}
	cfg.applySecrets(s)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applySecrets(s secrets) {
	override := func(dst *string, val string) {
		if val != "" {
			*dst = val
		}
	}
	override(&c.Database.Password, s.DBPassword)
	override(&c.Auth.JWTSecret, s.JWTSecret)
	override(&c.Email.Password, s.SMTPPassword)
	override(&c.Storage.AccessKeyID, s.AWSAccessKeyID)
	override(&c.Storage.SecretAccessKey, s.AWSSecretKey)
	override(&c.Reminder.TriggerSecret, s.ReminderSecret)
	override(&c.Redis.Password, s.RedisPassword)
}

// Validate checks struct rules and resolves the reminder timezone.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	loc, err := time.LoadLocation(c.Reminder.Timezone)
	if err != nil {
		return fmt.Errorf("invalid reminder timezone %q: %w", c.Reminder.Timezone, err)
	}
	c.Reminder.Location = loc

	if err := c.Reminder.validateSameDaySchedule(); err != nil {
		return err
	}
	return nil
}

// validateSameDaySchedule rejects a same-day schedule that runs more often
// than the window it sweeps; overlapping windows remind twice.
func (r ReminderConfig) validateSameDaySchedule() error {
	if r.SameDaySchedule == "" {
		return nil
	}
	sched, err := cron.ParseStandard(r.SameDaySchedule)
	if err != nil {
		return fmt.Errorf("invalid reminder same_day_schedule %q: %w", r.SameDaySchedule, err)
	}

	window := time.Duration(r.DefaultHoursAhead) * time.Hour
	if gap := minInterval(sched, r.Location); gap < window {
		return fmt.Errorf("reminder same_day_schedule %q runs every %s, shorter than the %s same-day window",
			r.SameDaySchedule, gap, window)
	}
	return nil
}

// minInterval is the shortest gap between runs of sched over one week.
func minInterval(sched cron.Schedule, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.Local
	}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 7)

	prev := sched.Next(start)
	shortest := end.Sub(start)
	for i := 0; i < 20000 && !prev.IsZero() && prev.Before(end); i++ {
		next := sched.Next(prev)
		if next.IsZero() {
			break
		}
		if gap := next.Sub(prev); gap < shortest {
			shortest = gap
		}
		prev = next
	}
	return shortest
}

// EmailEnabled reports whether an SMTP host is configured.
func (c *Config) EmailEnabled() bool {
	return c.Email.Host != ""
}

// StorageEnabled reports whether a bucket is configured.
func (c *Config) StorageEnabled() bool {
	return c.Storage.Bucket != ""
}
