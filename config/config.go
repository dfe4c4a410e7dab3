package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Booking   BookingConfig   `yaml:"booking"`
	Worker    WorkerConfig    `yaml:"worker"`
	Analytics AnalyticsConfig `yaml:"analytics"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
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
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	CatalogCacheTTL  int `yaml:"catalog_cache_ttl_seconds"`
	CreateLockTTL    int `yaml:"create_lock_ttl_seconds"`
	CheckInGraceMins int `yaml:"check_in_grace_minutes"`
}

type WorkerConfig struct {
	ReminderSweepMinutes int `yaml:"reminder_sweep_minutes"`
	ReminderHorizonHours int `yaml:"reminder_horizon_hours"`
}

// AnalyticsConfig carries the engagement-score weights. The weights are
// business tuning, not a contract, so they live here rather than in code.
type AnalyticsConfig struct {
	MemberPointsPer   float64 `yaml:"member_points_per"`
	MemberPointsCap   float64 `yaml:"member_points_cap"`
	EventPointsPer    float64 `yaml:"event_points_per"`
	EventPointsCap    float64 `yaml:"event_points_cap"`
	FillRateDivisor   float64 `yaml:"fill_rate_divisor"`
	FillRatePointsCap float64 `yaml:"fill_rate_points_cap"`
	RatingMultiplier  float64 `yaml:"rating_multiplier"`
	RatingPointsCap   float64 `yaml:"rating_points_cap"`
	ScoreCap          float64 `yaml:"score_cap"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Booking.CheckInGraceMins == 0 {
		c.Booking.CheckInGraceMins = 30
	}
	if c.Booking.CreateLockTTL == 0 {
		c.Booking.CreateLockTTL = 30
	}
	if c.Worker.ReminderSweepMinutes == 0 {
		c.Worker.ReminderSweepMinutes = 5
	}
	if c.Worker.ReminderHorizonHours == 0 {
		c.Worker.ReminderHorizonHours = 24
	}
	a := &c.Analytics
	if a.MemberPointsPer == 0 {
		a.MemberPointsPer = 0.1
	}
	if a.MemberPointsCap == 0 {
		a.MemberPointsCap = 30
	}
	if a.EventPointsPer == 0 {
		a.EventPointsPer = 3
	}
	if a.EventPointsCap == 0 {
		a.EventPointsCap = 30
	}
	if a.FillRateDivisor == 0 {
		a.FillRateDivisor = 5
	}
	if a.FillRatePointsCap == 0 {
		a.FillRatePointsCap = 20
	}
	if a.RatingMultiplier == 0 {
		a.RatingMultiplier = 4
	}
	if a.RatingPointsCap == 0 {
		a.RatingPointsCap = 20
	}
	if a.ScoreCap == 0 {
		a.ScoreCap = 100
	}
}
