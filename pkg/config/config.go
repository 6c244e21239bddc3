package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "KADOO_APP_ENV"
	EnvPort   = "KADOO_APP_PORT"
	EnvDBDSN  = "KADOO_DB_DSN"
	EnvDBHost = "KADOO_DB_HOST"
	EnvDBUser = "KADOO_DB_USER"
	EnvDBName = "KADOO_DB_NAME"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	PayDunya     PayDunyaConfig
	Rewards      RewardsConfig
	Scheduler    SchedulerConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"KADOO_APP_ENV" required:"true"`
	Port         string `envconfig:"KADOO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KADOO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KADOO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"KADOO_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"KADOO_DB_DSN"`
	Driver string `envconfig:"KADOO_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"KADOO_DB_HOST"`
	Port     int    `envconfig:"KADOO_DB_PORT" default:"5432"`
	User     string `envconfig:"KADOO_DB_USER"`
	Password string `envconfig:"KADOO_DB_PASSWORD"`
	Name     string `envconfig:"KADOO_DB_NAME"`
	SSLMode  string `envconfig:"KADOO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KADOO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KADOO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KADOO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KADOO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file::memory:?cache=shared"
		return nil
	}

	var missing []string
	for env, value := range map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("database config incomplete: set %s or %s", EnvDBDSN, strings.Join(missing, ", "))
	}

	db.DSN = fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.User, db.Password, db.Name, db.SSLMode,
	)
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"KADOO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KADOO_REDIS_ADDR"`
	Password     string        `envconfig:"KADOO_REDIS_PASSWORD"`
	DB           int           `envconfig:"KADOO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KADOO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KADOO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KADOO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KADOO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KADOO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// PayDunyaConfig holds the payment provider credentials. The webhook secret
// signs inbound notifications; the keys authenticate outbound API calls.
type PayDunyaConfig struct {
	BaseURL       string        `envconfig:"KADOO_PAYDUNYA_BASE_URL" default:"https://app.paydunya.com/api/v1"`
	MasterKey     string        `envconfig:"KADOO_PAYDUNYA_MASTER_KEY"`
	PrivateKey    string        `envconfig:"KADOO_PAYDUNYA_PRIVATE_KEY"`
	Token         string        `envconfig:"KADOO_PAYDUNYA_TOKEN"`
	WebhookSecret string        `envconfig:"KADOO_PAYDUNYA_WEBHOOK_SECRET"`
	Mode          string        `envconfig:"KADOO_PAYDUNYA_MODE" default:"test"`
	Timeout       time.Duration `envconfig:"KADOO_PAYDUNYA_TIMEOUT" default:"10s"`
	CallbackURL   string        `envconfig:"KADOO_PAYDUNYA_CALLBACK_URL"`
}

// RewardsConfig models the point rules as typed configuration with safe
// defaults: conversion rate, fixed bonuses, growth thresholds, and level
// boundaries.
type RewardsConfig struct {
	ConversionPoints   int         `envconfig:"KADOO_REWARDS_CONVERSION_POINTS" default:"10"`
	ConversionCFA      int64       `envconfig:"KADOO_REWARDS_CONVERSION_CFA" default:"1000"`
	FirstDonationBonus int         `envconfig:"KADOO_REWARDS_FIRST_DONATION_BONUS" default:"5"`
	PotOpenedBonus     int         `envconfig:"KADOO_REWARDS_POT_OPENED_BONUS" default:"10"`
	GrowthRules        GrowthRules `envconfig:"KADOO_REWARDS_GROWTH_RULES" default:"25000:10,50000:25,100000:50"`
	LevelSilverMin     int         `envconfig:"KADOO_REWARDS_LEVEL_SILVER_MIN" default:"200"`
	LevelGoldMin       int         `envconfig:"KADOO_REWARDS_LEVEL_GOLD_MIN" default:"500"`
	LevelPlatinumMin   int         `envconfig:"KADOO_REWARDS_LEVEL_PLATINUM_MIN" default:"1000"`
	CreditCapPercent   int         `envconfig:"KADOO_REWARDS_CREDIT_CAP_PERCENT" default:"30"`
}

// GrowthRule awards Points once when a pot's total first reaches Threshold.
type GrowthRule struct {
	Threshold int64
	Points    int
}

// GrowthRules parses "threshold:points" pairs from the environment and keeps
// them sorted by ascending threshold.
type GrowthRules []GrowthRule

// Decode implements envconfig.Decoder.
func (g *GrowthRules) Decode(value string) error {
	var rules []GrowthRule
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid growth rule %q (want threshold:points)", pair)
		}
		threshold, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
		if err != nil || threshold <= 0 {
			return fmt.Errorf("invalid growth rule threshold %q", parts[0])
		}
		points, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || points <= 0 {
			return fmt.Errorf("invalid growth rule points %q", parts[1])
		}
		rules = append(rules, GrowthRule{Threshold: threshold, Points: points})
	}
	if len(rules) == 0 {
		return fmt.Errorf("at least one growth rule is required")
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].Threshold < rules[j].Threshold })
	*g = rules
	return nil
}

type SchedulerConfig struct {
	Interval         time.Duration `envconfig:"KADOO_SCHEDULER_INTERVAL" default:"24h"`
	OpenOffsetDays   int           `envconfig:"KADOO_SCHEDULER_OPEN_OFFSET_DAYS" default:"30"`
	ReminderOffsets  []int         `envconfig:"KADOO_SCHEDULER_REMINDER_OFFSETS" default:"7,3,1"`
	PendingGrace     time.Duration `envconfig:"KADOO_SCHEDULER_PENDING_GRACE" default:"30m"`
	AdultAge         int           `envconfig:"KADOO_SCHEDULER_ADULT_AGE" default:"18"`
	DefaultPotTarget int64         `envconfig:"KADOO_SCHEDULER_DEFAULT_POT_TARGET" default:"50000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"KADOO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"KADOO_AUTO_MIGRATE" default:"false"`
}
