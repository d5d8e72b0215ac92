package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urbantrend/cart-recall/internal/model"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Reminder ReminderConfig
	Webhook  WebhookConfig
}

type ServerConfig struct {
	Address string
}

type DatabaseConfig struct {
	PostgresURL string
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

type ReminderConfig struct {
	// Threshold is the eligibility window: minimum idle time before a
	// cart counts as abandoned.
	Threshold time.Duration

	// Interval is the sweep period.
	Interval time.Duration

	Policy model.ReminderPolicy

	// Cooldown applies under the counter policy only: minimum time
	// between two reminders to the same user.
	Cooldown time.Duration

	// Concurrency bounds per-user dispatch fan-out within one cycle.
	Concurrency int
}

type WebhookConfig struct {
	URL string
}

func LoadAll() (*Config, error) {
	var errs []error

	postgresURL, err := requireEnv("POSTGRES_URL")
	if err != nil {
		errs = append(errs, err)
	}

	webhookURL, err := requireEnv("WEBHOOK_URL")
	if err != nil {
		errs = append(errs, err)
	}

	thresholdDays, err := getEnvInt("REMINDER_THRESHOLD_DAYS", 5)
	if err != nil {
		errs = append(errs, err)
	}

	intervalSeconds, err := getEnvInt("SCHED_INTERVAL_SECONDS", 30)
	if err != nil {
		errs = append(errs, err)
	}

	cooldownHours, err := getEnvInt("REMINDER_COOLDOWN_HOURS", 24)
	if err != nil {
		errs = append(errs, err)
	}

	concurrency, err := getEnvInt("DISPATCH_CONCURRENCY", 4)
	if err != nil {
		errs = append(errs, err)
	}

	redisCfg, err := loadRedisConfig()
	if err != nil {
		errs = append(errs, err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Address: getEnv("SERVER_ADDRESS", ":8080"),
		},
		Database: DatabaseConfig{
			PostgresURL: postgresURL,
		},
		Webhook: WebhookConfig{
			URL: webhookURL,
		},
		Reminder: ReminderConfig{
			Threshold:   time.Duration(thresholdDays) * 24 * time.Hour,
			Interval:    time.Duration(intervalSeconds) * time.Second,
			Policy:      model.ReminderPolicy(getEnv("REMINDER_POLICY", string(model.PolicyFlag))),
			Cooldown:    time.Duration(cooldownHours) * time.Hour,
			Concurrency: concurrency,
		},
		Redis: redisCfg,
	}

	errs = append(errs, validate(cfg)...)

	if err := joinErrors(errs); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadRedisConfig() (RedisConfig, error) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return RedisConfig{Enabled: false}, nil
	}

	db, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return RedisConfig{}, err
	}
	ttlSeconds, err := getEnvInt("REDIS_TTL_SECONDS", 86400)
	if err != nil {
		return RedisConfig{}, err
	}

	return RedisConfig{
		Enabled:  true,
		Address:  addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		TTL:      time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func validate(cfg *Config) []error {
	var errs []error

	if cfg.Reminder.Threshold <= 0 {
		errs = append(errs, errors.New("REMINDER_THRESHOLD_DAYS must be > 0"))
	}
	if cfg.Reminder.Interval <= 0 {
		errs = append(errs, errors.New("SCHED_INTERVAL_SECONDS must be > 0"))
	}
	if cfg.Reminder.Cooldown <= 0 {
		errs = append(errs, errors.New("REMINDER_COOLDOWN_HOURS must be > 0"))
	}
	if cfg.Reminder.Concurrency <= 0 {
		errs = append(errs, errors.New("DISPATCH_CONCURRENCY must be > 0"))
	}

	switch cfg.Reminder.Policy {
	case model.PolicyFlag, model.PolicyCounter:
	default:
		errs = append(errs, fmt.Errorf("REMINDER_POLICY must be %q or %q, got %q",
			model.PolicyFlag, model.PolicyCounter, cfg.Reminder.Policy))
	}

	return errs
}

func requireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("missing required env var: %s", key)
	}
	return val, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for env %s: %s", key, v)
	}
	return i, nil
}

func joinErrors(errs []error) error {
	return errors.Join(errs...)
}
