package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	RedisURL            string        `mapstructure:"REDIS_URL"`
	SessionSigningKey   string        `mapstructure:"SESSION_SIGNING_KEY"`
	SessionTTL          time.Duration `mapstructure:"SESSION_TTL"`
	BcryptCost          int           `mapstructure:"BCRYPT_COST"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	SeedData            bool          `mapstructure:"SEED_DATA"`
	DefaultHospitalName string        `mapstructure:"DEFAULT_HOSPITAL_NAME"`
	LoginPerMinute      int           `mapstructure:"LOGIN_PER_MINUTE"`
	LoginBurst          int           `mapstructure:"LOGIN_BURST"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

var keys = []string{
	"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "REDIS_URL",
	"SESSION_SIGNING_KEY", "SESSION_TTL", "BCRYPT_COST", "CORS_ORIGINS",
	"SEED_DATA", "DEFAULT_HOSPITAL_NAME", "LOGIN_PER_MINUTE", "LOGIN_BURST",
	"REQUEST_TIMEOUT",
}

// Load reads .env (if present) and the environment. Neither DATABASE_URL nor
// REDIS_URL is required: without them the server keeps everything in memory.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("SEED_DATA", true)
	v.SetDefault("DEFAULT_HOSPITAL_NAME", "Central City Hospital")
	v.SetDefault("LOGIN_PER_MINUTE", 10)
	v.SetDefault("LOGIN_BURST", 5)
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	origins := v.GetString("CORS_ORIGINS")
	if origins != "" {
		cfg.CORSOrigins = nil
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Outside development
// SESSION_SIGNING_KEY is required and must decode to at least 32 bytes.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if !c.IsDev() && c.SessionSigningKey == "" {
		return fmt.Errorf("SESSION_SIGNING_KEY is required when ENV=%q", c.Env)
	}
	if c.SessionSigningKey != "" {
		key, err := hex.DecodeString(c.SessionSigningKey)
		if err != nil {
			return fmt.Errorf("SESSION_SIGNING_KEY is not valid hex: %w", err)
		}
		if len(key) < 32 {
			return fmt.Errorf("SESSION_SIGNING_KEY must be at least 32 bytes (64 hex chars), got %d bytes", len(key))
		}
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if strings.TrimSpace(c.DefaultHospitalName) == "" {
		return fmt.Errorf("DEFAULT_HOSPITAL_NAME must not be empty")
	}
	return nil
}

// SigningKey returns the decoded SESSION_SIGNING_KEY, or a random 32-byte key
// when none is configured. The second return value is true when the key was
// generated, in which case sessions do not survive a restart.
func (c *Config) SigningKey() ([]byte, bool, error) {
	if c.SessionSigningKey != "" {
		key, err := hex.DecodeString(c.SessionSigningKey)
		if err != nil {
			return nil, false, fmt.Errorf("invalid SESSION_SIGNING_KEY hex value: %w", err)
		}
		return key, false, nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, false, fmt.Errorf("generate session signing key: %w", err)
	}
	return key, true, nil
}
