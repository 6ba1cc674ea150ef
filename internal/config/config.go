package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "RASID_CONFIG"
	databasePathEnv = "RASID_DATABASE_PATH"
	smtpUsernameEnv = "RASID_SMTP_USERNAME"
	smtpPasswordEnv = "RASID_SMTP_PASSWORD"
	sourceURLEnv    = "RASID_SOURCE_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database     DatabaseConfig     `yaml:"database"`
	Scheduler    SchedulerConfig    `yaml:"scheduler"`
	Source       SourceConfig       `yaml:"source"`
	Report       ReportConfig       `yaml:"report"`
	Mail         MailConfig         `yaml:"mail"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig locates the SQLite subscriber directory.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SchedulerConfig defines when the batch tick fires.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// SourceConfig describes the remote tender listing.
type SourceConfig struct {
	BaseURL            string `yaml:"baseUrl"`
	PublishDateID      int    `yaml:"publishDateId"`
	MaxPages           int    `yaml:"maxPages"`
	PageTimeoutSeconds int    `yaml:"pageTimeoutSeconds"`
	Strategy           string `yaml:"strategy"` // "http" or "browser"
}

// PageTimeout returns the per-page fetch timeout.
func (s SourceConfig) PageTimeout() time.Duration {
	if s.PageTimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(s.PageTimeoutSeconds) * time.Second
}

// ReportConfig controls where temporary report artifacts are spooled.
type ReportConfig struct {
	Dir string `yaml:"dir"`
}

// MailConfig wires the SMTP relay used for delivery.
type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// OrchestratorConfig bounds batch parallelism.
type OrchestratorConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}

	if v := os.Getenv(smtpUsernameEnv); v != "" {
		c.Mail.Username = v
	}

	if v := os.Getenv(smtpPasswordEnv); v != "" {
		c.Mail.Password = v
	}

	if v := os.Getenv(sourceURLEnv); v != "" {
		c.Source.BaseURL = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database = override.Database
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}

	if override.Source.BaseURL != "" {
		base.Source.BaseURL = override.Source.BaseURL
	}
	if override.Source.PublishDateID != 0 {
		base.Source.PublishDateID = override.Source.PublishDateID
	}
	if override.Source.MaxPages != 0 {
		base.Source.MaxPages = override.Source.MaxPages
	}
	if override.Source.PageTimeoutSeconds != 0 {
		base.Source.PageTimeoutSeconds = override.Source.PageTimeoutSeconds
	}
	if override.Source.Strategy != "" {
		base.Source.Strategy = override.Source.Strategy
	}

	if override.Report.Dir != "" {
		base.Report = override.Report
	}

	if override.Mail.Host != "" {
		base.Mail.Host = override.Mail.Host
	}
	if override.Mail.Port != 0 {
		base.Mail.Port = override.Mail.Port
	}
	if override.Mail.Username != "" {
		base.Mail.Username = override.Mail.Username
	}
	if override.Mail.Password != "" {
		base.Mail.Password = override.Mail.Password
	}
	if override.Mail.From != "" {
		base.Mail.From = override.Mail.From
	}

	if override.Orchestrator.Workers != 0 {
		base.Orchestrator = override.Orchestrator
	}

	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Database:  DatabaseConfig{Path: "data/rasid.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 * * * *", Timezone: defaultTimezone, location: tz},
		Source: SourceConfig{
			BaseURL:            "https://tenders.etimad.sa",
			PublishDateID:      5,
			MaxPages:           3,
			PageTimeoutSeconds: 20,
			Strategy:           "http",
		},
		Report: ReportConfig{Dir: "reports"},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Orchestrator: OrchestratorConfig{Workers: 4},
		Logging:      LoggingConfig{Level: "info"},
	}
}
