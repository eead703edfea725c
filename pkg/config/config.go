package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Cache     CacheConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs the Redis-backed exam listing cache.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SchedulerConfig tunes the exam timetable generator.
type SchedulerConfig struct {
	PeriodStart      string
	PeriodEnd        string
	PeriodEndHour    int
	DailyStartHour   int
	DailyEndHour     int
	BlackoutWeekday  time.Weekday
	MinGapDays       int
	SlotStep         time.Duration
	DefaultDuration  time.Duration
	Location         *time.Location
	PreloadValidated bool
	ScopeLock        bool
	LockTTL          time.Duration
}

// DateLayout is the calendar-day format of scheduler period bounds.
const DateLayout = "2006-01-02"

// NoBlackout disables the weekly blackout day when used as BlackoutWeekday.
const NoBlackout time.Weekday = -1

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	scheduler, err := loadScheduler(v)
	if err != nil {
		return nil, err
	}
	cfg.Scheduler = scheduler

	return cfg, nil
}

func loadScheduler(v *viper.Viper) (SchedulerConfig, error) {
	loc, err := time.LoadLocation(v.GetString("SCHEDULER_TIMEZONE"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("load scheduler timezone: %w", err)
	}
	blackout, err := ParseWeekday(v.GetString("SCHEDULER_BLACKOUT_WEEKDAY"))
	if err != nil {
		return SchedulerConfig{}, err
	}

	cfg := SchedulerConfig{
		PeriodStart:      v.GetString("SCHEDULER_PERIOD_START"),
		PeriodEnd:        v.GetString("SCHEDULER_PERIOD_END"),
		PeriodEndHour:    v.GetInt("SCHEDULER_PERIOD_END_HOUR"),
		DailyStartHour:   v.GetInt("SCHEDULER_DAILY_START_HOUR"),
		DailyEndHour:     v.GetInt("SCHEDULER_DAILY_END_HOUR"),
		BlackoutWeekday:  blackout,
		MinGapDays:       v.GetInt("SCHEDULER_MIN_GAP_DAYS"),
		SlotStep:         parseDuration(v.GetString("SCHEDULER_SLOT_STEP"), 30*time.Minute),
		DefaultDuration:  parseDuration(v.GetString("SCHEDULER_DEFAULT_DURATION"), 90*time.Minute),
		Location:         loc,
		PreloadValidated: v.GetBool("SCHEDULER_PRELOAD_VALIDATED"),
		ScopeLock:        v.GetBool("SCHEDULER_SCOPE_LOCK"),
		LockTTL:          parseDuration(v.GetString("SCHEDULER_LOCK_TTL"), 5*time.Minute),
	}
	if cfg.DailyStartHour < 0 || cfg.DailyEndHour > 24 || cfg.DailyStartHour >= cfg.DailyEndHour {
		return SchedulerConfig{}, fmt.Errorf("invalid scheduler working hours %d-%d", cfg.DailyStartHour, cfg.DailyEndHour)
	}
	if cfg.SlotStep <= 0 {
		cfg.SlotStep = 30 * time.Minute
	}
	if cfg.PeriodEndHour < 0 || cfg.PeriodEndHour > 24 {
		return SchedulerConfig{}, fmt.Errorf("invalid scheduler period end hour %d", cfg.PeriodEndHour)
	}
	for _, raw := range []string{cfg.PeriodStart, cfg.PeriodEnd} {
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return SchedulerConfig{}, fmt.Errorf("invalid scheduler period date %q: %w", raw, err)
		}
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "unischedule")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "unischedule-api")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("SCHEDULER_PERIOD_START", "2025-06-01")
	v.SetDefault("SCHEDULER_PERIOD_END", "2025-06-20")
	v.SetDefault("SCHEDULER_PERIOD_END_HOUR", 18)
	v.SetDefault("SCHEDULER_DAILY_START_HOUR", 8)
	v.SetDefault("SCHEDULER_DAILY_END_HOUR", 17)
	v.SetDefault("SCHEDULER_BLACKOUT_WEEKDAY", "friday")
	v.SetDefault("SCHEDULER_MIN_GAP_DAYS", 1)
	v.SetDefault("SCHEDULER_SLOT_STEP", "30m")
	v.SetDefault("SCHEDULER_DEFAULT_DURATION", "90m")
	v.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	v.SetDefault("SCHEDULER_PRELOAD_VALIDATED", false)
	v.SetDefault("SCHEDULER_SCOPE_LOCK", true)
	v.SetDefault("SCHEDULER_LOCK_TTL", "5m")
}

// ParseWeekday maps an English weekday name to time.Weekday. "none" or an
// empty value disables the blackout day.
func ParseWeekday(raw string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	switch name {
	case "", "none":
		return NoBlackout, nil
	}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.ToLower(day.String()) == name {
			return day, nil
		}
	}
	return NoBlackout, fmt.Errorf("unknown weekday %q", raw)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
