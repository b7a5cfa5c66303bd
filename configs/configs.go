package configs

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Configs struct {
	DBDriver        string        `mapstructure:"DB_DRIVER"`
	DBHost          string        `mapstructure:"DB_HOST"`
	DBName          string        `mapstructure:"DB_NAME"`
	DBPort          string        `mapstructure:"DB_PORT"`
	DBUser          string        `mapstructure:"DB_USER"`
	DBPassword      string        `mapstructure:"DB_PASSWORD"`
	DatabaseURL     string        `mapstructure:"DATABASE_URL"` // Takes precedence over DB_* when set
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS"`
	DBMaxConnLife   time.Duration `mapstructure:"DB_MAX_CONN_LIFETIME"`
	DBMaxConnIdle   time.Duration `mapstructure:"DB_MAX_CONN_IDLE_TIME"`
	WebServerPort   string        `mapstructure:"WEB_SERVER_PORT"`
	AllowedOrigins  []string      `mapstructure:"ALLOWED_ORIGINS"`
	RedisHost       string        `mapstructure:"REDIS_HOST"`
	RedisPort       string        `mapstructure:"REDIS_PORT"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	RedisURL        string        `mapstructure:"REDIS_URL"` // Takes precedence over REDIS_* when set
	EmailProvider   string        `mapstructure:"EMAIL_PROVIDER"` // "smtp" or "mailjet"
	EmailFrom       string        `mapstructure:"EMAIL_FROM"`
	EmailFromName   string        `mapstructure:"EMAIL_FROM_NAME"`
	MailjetAPIKey   string        `mapstructure:"MAILJET_API_KEY"`
	MailjetSecret   string        `mapstructure:"MAILJET_API_SECRET"`
	SMTPHost        string        `mapstructure:"SMTP_HOST"`
	SMTPPort        int           `mapstructure:"SMTP_PORT"`
	SMTPUser        string        `mapstructure:"SMTP_USER"`
	SMTPPass        string        `mapstructure:"SMTP_PASS"`
	CronExpression  string        `mapstructure:"CRON_EXPRESSION"`  // Maintenance job schedule (6 fields with seconds)
	LogPath         string        `mapstructure:"LOG_PATH"`         // Path to log file (e.g., "/var/log/supplier-sync.log")
	AlertRecipients []string      `mapstructure:"ALERT_RECIPIENTS"` // Email recipients for failure alerts
	SubmitChunkSize int           `mapstructure:"SUBMIT_CHUNK_SIZE"`
	SubmitWorkers   int           `mapstructure:"SUBMIT_ITEM_CONCURRENCY"`
	SessionTTL      time.Duration `mapstructure:"SESSION_TTL"`
	ConstantsTTL    time.Duration `mapstructure:"CONSTANTS_CACHE_TTL"`
	ItemIDMin       int           `mapstructure:"ITEM_ID_MIN"`
	ItemIDMax       int           `mapstructure:"ITEM_ID_MAX"`
	IDMaxAttempts   int           `mapstructure:"ID_MAX_ATTEMPTS"`
	IDCapacityAlert float64       `mapstructure:"ID_CAPACITY_ALERT"` // Share of the item id range that triggers an alert
}

func LoadConfig(path string) (*Configs, error) {
	var cfg *Configs
	viper.SetConfigName("app_config")
	viper.SetConfigType("env")
	viper.SetConfigFile(filepath.Join(path, ".env"))
	viper.AutomaticEnv()

	// Keys without a default are only picked up from the environment when
	// bound explicitly
	for _, key := range []string{
		"DB_HOST", "DB_NAME", "DB_PORT", "DB_USER", "DB_PASSWORD", "DATABASE_URL", "REDIS_URL",
		"EMAIL_FROM", "MAILJET_API_KEY", "MAILJET_API_SECRET", "SMTP_HOST", "SMTP_USER", "SMTP_PASS",
	} {
		_ = viper.BindEnv(key)
	}

	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("WEB_SERVER_PORT", ":8080")
	viper.SetDefault("ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	// Pool defaults, zero keeps the pgx default
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_MIN_CONNS", 0)
	viper.SetDefault("DB_MAX_CONN_LIFETIME", time.Hour)
	viper.SetDefault("DB_MAX_CONN_IDLE_TIME", 30*time.Minute)

	// Set defaults for Redis
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("EMAIL_PROVIDER", "smtp")
	viper.SetDefault("EMAIL_FROM_NAME", "Supplier Sync")
	viper.SetDefault("SMTP_PORT", 587)

	// Maintenance job runs every ten minutes
	viper.SetDefault("CRON_EXPRESSION", "0 */10 * * * *")

	// Set default for log path (empty means stdout only)
	viper.SetDefault("LOG_PATH", "")

	// Set default for alert recipients (empty means no alerts)
	viper.SetDefault("ALERT_RECIPIENTS", []string{})

	viper.SetDefault("SUBMIT_CHUNK_SIZE", 100)
	viper.SetDefault("SUBMIT_ITEM_CONCURRENCY", 8)
	viper.SetDefault("SESSION_TTL", 24*time.Hour)
	viper.SetDefault("CONSTANTS_CACHE_TTL", 10*time.Minute)
	viper.SetDefault("ITEM_ID_MIN", 1)
	viper.SetDefault("ITEM_ID_MAX", 9999)
	viper.SetDefault("ID_MAX_ATTEMPTS", 10000)
	viper.SetDefault("ID_CAPACITY_ALERT", 0.9)

	if err := viper.ReadInConfig(); err != nil {
		// Running with environment variables only is fine
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
