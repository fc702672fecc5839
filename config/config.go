package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"bookline/models"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort         string `mapstructure:"APP_PORT"`
	DatabaseURL     string `mapstructure:"DATABASE_URL"`
	Env             string `mapstructure:"ENV"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	MaxMessageChars int    `mapstructure:"MAX_MESSAGE_CHARS"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Session TTLs, minutes.
	SessionTTLMinutes     int `mapstructure:"SESSION_TTL_MINUTES"`
	SessionIdleTTLMinutes int `mapstructure:"SESSION_IDLE_TTL_MINUTES"`

	// Calendar policy.
	Timezone           string `mapstructure:"TIMEZONE"`
	BufferMinutes      int    `mapstructure:"BUFFER_MINUTES"`
	AdvanceBookingDays int    `mapstructure:"ADVANCE_BOOKING_DAYS"`
	MaxBookingDays     int    `mapstructure:"MAX_BOOKING_DAYS"`

	// Per-weekday business hours, "09:00-18:00" or empty for closed.
	HoursMon string `mapstructure:"BUSINESS_HOURS_MON"`
	HoursTue string `mapstructure:"BUSINESS_HOURS_TUE"`
	HoursWed string `mapstructure:"BUSINESS_HOURS_WED"`
	HoursThu string `mapstructure:"BUSINESS_HOURS_THU"`
	HoursFri string `mapstructure:"BUSINESS_HOURS_FRI"`
	HoursSat string `mapstructure:"BUSINESS_HOURS_SAT"`
	HoursSun string `mapstructure:"BUSINESS_HOURS_SUN"`

	// Gemini API key; when empty the keyword classifier is used.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_MESSAGE_CHARS", 2000)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("SESSION_TTL_MINUTES", 120)
	viper.SetDefault("SESSION_IDLE_TTL_MINUTES", 30)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("BUFFER_MINUTES", 0)
	viper.SetDefault("ADVANCE_BOOKING_DAYS", 0)
	viper.SetDefault("MAX_BOOKING_DAYS", 30)
	viper.SetDefault("BUSINESS_HOURS_MON", "09:00-18:00")
	viper.SetDefault("BUSINESS_HOURS_TUE", "09:00-18:00")
	viper.SetDefault("BUSINESS_HOURS_WED", "09:00-18:00")
	viper.SetDefault("BUSINESS_HOURS_THU", "09:00-18:00")
	viper.SetDefault("BUSINESS_HOURS_FRI", "09:00-18:00")
	viper.SetDefault("BUSINESS_HOURS_SAT", "")
	viper.SetDefault("BUSINESS_HOURS_SUN", "")
	viper.SetDefault("GEMINI_API_KEY", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

// CalendarConfig assembles the booking policy from the loaded configuration.
func CalendarConfig() (models.CalendarConfig, error) {
	hours := models.BusinessHours{}
	specs := map[time.Weekday]string{
		time.Monday:    AppConfig.HoursMon,
		time.Tuesday:   AppConfig.HoursTue,
		time.Wednesday: AppConfig.HoursWed,
		time.Thursday:  AppConfig.HoursThu,
		time.Friday:    AppConfig.HoursFri,
		time.Saturday:  AppConfig.HoursSat,
		time.Sunday:    AppConfig.HoursSun,
	}
	for day, spec := range specs {
		dh, err := parseDayHours(spec)
		if err != nil {
			return models.CalendarConfig{}, fmt.Errorf("business hours for %s: %w", day, err)
		}
		if dh != nil {
			hours[day] = dh
		}
	}
	return models.CalendarConfig{
		Hours:              hours,
		Timezone:           AppConfig.Timezone,
		BufferMinutes:      AppConfig.BufferMinutes,
		AdvanceBookingDays: AppConfig.AdvanceBookingDays,
		MaxBookingDays:     AppConfig.MaxBookingDays,
	}, nil
}

// parseDayHours reads "09:00-18:00" into a DayHours. Empty means closed.
func parseDayHours(spec string) (*models.DayHours, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, nil
	}
	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("expected open-close, got %q", spec)
	}
	open, err := parseClock(parts[0])
	if err != nil {
		return nil, err
	}
	closeAt, err := parseClock(parts[1])
	if err != nil {
		return nil, err
	}
	if open >= closeAt {
		return nil, fmt.Errorf("open %q must precede close %q", parts[0], parts[1])
	}
	return &models.DayHours{Open: open, Close: closeAt}, nil
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
