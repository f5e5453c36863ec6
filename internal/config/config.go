package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/judge"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "RUNRAISER_CONFIG"
	logLevelEnv     = "RUNRAISER_LOG_LEVEL"
	memoryBackEnv   = "MEMORY_BACKEND"
	memoryDSNEnv    = "MEMORY_DSN"
	redisAddrEnv    = "REDIS_ADDR"
	publisherEnv    = "PUBLISHER_MODE"
	telegramToken   = "TELEGRAM_BOT_TOKEN"
	telegramChatID  = "TELEGRAM_CHAT_ID"
	metricsAddrEnv  = "METRICS_ADDR"
	maxRetriesEnv   = "RETRY_MAX_RETRIES"
)

var envFiles = []string{".env", ".env.local"}

// Memory backends.
const (
	MemoryInProcess = "memory"
	MemorySQLite    = "sqlite"
	MemoryPostgres  = "postgres"
	MemoryRedis     = "redis"
)

// Publisher modes.
const (
	PublisherSimulated = "simulated"
	PublisherTelegram  = "telegram"
)

// Fundraising sources.
const (
	SourceSimulated = "simulated"
	SourceSnapshot  = "snapshot"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging     LoggingConfig      `yaml:"logging"`
	Request     domain.PostRequest `yaml:"request"`
	Campaign    CampaignConfig     `yaml:"campaign"`
	Judge       JudgeConfig        `yaml:"judge"`
	Publisher   PublisherConfig    `yaml:"publisher"`
	Memory      MemoryConfig       `yaml:"memory"`
	Fundraising FundraisingConfig  `yaml:"fundraising"`
	Retry       RetryConfig        `yaml:"retry"`
	Scheduler   SchedulerConfig    `yaml:"scheduler"`
	Metrics     MetricsConfig      `yaml:"metrics"`
}

// LoggingConfig selects slog level and handler format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// CampaignConfig names the charity the posts are written for.
type CampaignConfig struct {
	ID             string `yaml:"id"`
	CharityName    string `yaml:"charityName"`
	CurrencySymbol string `yaml:"currencySymbol"`
}

// JudgeConfig holds the scoring rubric and the safety gate phrase list.
type JudgeConfig struct {
	Rubric        judge.Rubric `yaml:"rubric"`
	BannedPhrases []string     `yaml:"bannedPhrases"`
}

// PublisherConfig selects where approved posts go.
type PublisherConfig struct {
	Mode          string         `yaml:"mode"`
	PreviewLength int            `yaml:"previewLength"`
	Telegram      TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	APIBase  string `yaml:"apiBase"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// MemoryConfig describes the memory store backend.
type MemoryConfig struct {
	Backend      string `yaml:"backend"`
	DSN          string `yaml:"dsn"`
	RedisAddr    string `yaml:"redisAddr"`
	RedisKey     string `yaml:"redisKey"`
	HistoryLimit int    `yaml:"historyLimit"`
}

// FundraisingConfig selects the fundraising data source.
type FundraisingConfig struct {
	Source       string `yaml:"source"`
	SnapshotPath string `yaml:"snapshotPath"`
	MaxDonations int    `yaml:"maxDonations"`
}

// RetryConfig applies to every collaborator call.
type RetryConfig struct {
	MaxRetries int           `yaml:"maxRetries"`
	BaseDelay  time.Duration `yaml:"baseDelay"`
	MaxDelay   time.Duration `yaml:"maxDelay"`
}

// SchedulerConfig defines how often scheduled runs happen.
type SchedulerConfig struct {
	Interval time.Duration  `yaml:"interval"`
	Timezone string         `yaml:"timezone"`
	location *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// MetricsConfig sets the listen address of the metrics endpoint; empty disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads .env files, YAML configuration (if present) and applies environment overrides.
func Load() Config {
	loadEnvFiles()
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			fileCfg, err := decodeOver(cfg, raw)
			if err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = fileCfg
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func loadEnvFiles() {
	for _, file := range envFiles {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			log.Printf("config: cannot load %s: %v", file, err)
		}
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(memoryBackEnv); v != "" {
		c.Memory.Backend = v
	}

	if v := os.Getenv(memoryDSNEnv); v != "" {
		c.Memory.DSN = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Memory.RedisAddr = v
	}

	if v := os.Getenv(publisherEnv); v != "" {
		c.Publisher.Mode = v
	}

	if v := os.Getenv(telegramToken); v != "" {
		c.Publisher.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatID); v != "" {
		c.Publisher.Telegram.ChatID = v
	}

	if v := os.Getenv(metricsAddrEnv); v != "" {
		c.Metrics.Addr = v
	}

	if v := os.Getenv(maxRetriesEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retry.MaxRetries = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", maxRetriesEnv, v, err)
		}
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

// decodeOver applies the YAML document on top of base. Keys present in the
// document win, including explicit zero values; absent keys keep base.
func decodeOver(base Config, raw []byte) (Config, error) {
	if err := yaml.Unmarshal(raw, &base); err != nil {
		return Config{}, err
	}
	return base, nil
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Request: domain.PostRequest{
			TargetPlatform:   domain.PlatformLinkedIn,
			Tone:             domain.ToneProfessional,
			Objective:        "Celebrate hitting the £500+ fundraising milestone and encourage further support.",
			Audience:         "Corporate partners and professional network",
			CallToActionHint: "Invite colleagues and partners to donate or share the campaign.",
		},
		Campaign: CampaignConfig{
			ID:             "rmhc-run-raiser",
			CharityName:    "Ronald McDonald House Charities",
			CurrencySymbol: "£",
		},
		Judge: JudgeConfig{
			Rubric:        judge.DefaultRubric(),
			BannedPhrases: []string{"guaranteed", "miracle cure"},
		},
		Publisher: PublisherConfig{
			Mode:          PublisherSimulated,
			PreviewLength: 120,
			Telegram:      TelegramConfig{APIBase: "https://api.telegram.org"},
		},
		Memory: MemoryConfig{
			Backend:      MemoryInProcess,
			DSN:          "runraiser.db",
			RedisAddr:    "localhost:6379",
			RedisKey:     "runraiser:memory",
			HistoryLimit: 50,
		},
		Fundraising: FundraisingConfig{Source: SourceSimulated},
		Retry:       RetryConfig{MaxRetries: 0, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second},
		Scheduler:   SchedulerConfig{Interval: 24 * time.Hour, Timezone: defaultTimezone, location: tz},
		Metrics:     MetricsConfig{Addr: ""},
	}
}
