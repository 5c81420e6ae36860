package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/samber/oops"
)

// Provider exposes read-only access to the application configuration.
type Provider interface {
	GetServerAddr() string
	GetAppBaseURL() string
	GetFrontendURL() string
	GetCORSOrigins() []string

	GetDBURL() string
	GetDBUser() string
	GetDBPass() string
	GetDBNs() string
	GetDBDb() string
	GetDBQueryTimeout() time.Duration
	GetDBExecuteTimeout() time.Duration

	GetJWTSecret() string
	GetSessionTTL() time.Duration
	GetResetTokenSingleUse() bool

	GetEmailProvider() string
	GetEmailSender() string
	GetEmailAPIKey() string
	GetSupportEmail() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUser() string
	GetSMTPPass() string

	GetStorageBackend() string
	GetStorageDir() string
	GetMaxUploadSize() int64
	GetS3Bucket() string
	GetS3Region() string
	GetS3Endpoint() string
	GetS3AccessKey() string
	GetS3SecretKey() string
	GetS3PublicURL() string

	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRateLimit() int
}

// Config holds all configuration for the application. It is populated once by
// Load and never mutated afterwards.
type Config struct {
	serverAddr  string
	appBaseURL  string
	frontendURL string
	corsOrigins []string

	dbURL            string
	dbUser           string
	dbPass           string
	dbNs             string
	dbDb             string
	dbQueryTimeout   time.Duration
	dbExecuteTimeout time.Duration

	jwtSecret           string
	sessionTTL          time.Duration
	resetTokenSingleUse bool

	emailProvider string
	emailSender   string
	emailAPIKey   string
	supportEmail  string
	smtpHost      string
	smtpPort      int
	smtpUser      string
	smtpPass      string

	storageBackend string
	storageDir     string
	maxUploadSize  int64
	s3Bucket       string
	s3Region       string
	s3Endpoint     string
	s3AccessKey    string
	s3SecretKey    string
	s3PublicURL    string

	redisAddr     string
	redisPassword string
	redisDB       int
	rateLimit     int
}

var _ Provider = (*Config)(nil)

const (
	defaultServerAddr  = ":5000"
	defaultCORSOrigins = "http://localhost:3000,https://sparxinventory.vercel.app"
)

// Load reads a .env file if present, then builds and validates a Config from
// the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() (*Config, error) {
	errb := oops.In("config").Code("CONFIG_INVALID")

	cfg := &Config{
		serverAddr:  getEnv("SERVER_ADDR", defaultServerAddr),
		appBaseURL:  strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5000"), "/"),
		frontendURL: strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		corsOrigins: splitList(getEnv("CORS_ORIGINS", defaultCORSOrigins)),

		dbURL:  os.Getenv("SURREAL_URL"),
		dbUser: os.Getenv("SURREAL_USER"),
		dbPass: os.Getenv("SURREAL_PASS"),
		dbNs:   os.Getenv("SURREAL_NS"),
		dbDb:   os.Getenv("SURREAL_DB"),

		jwtSecret: os.Getenv("JWT_SECRET"),

		emailProvider: getEnv("EMAIL_PROVIDER", "log"),
		emailSender:   getEnv("EMAIL_SENDER", os.Getenv("EMAIL_USER")),
		emailAPIKey:   os.Getenv("EMAIL_API_KEY"),
		smtpHost:      os.Getenv("EMAIL_HOST"),
		smtpUser:      os.Getenv("EMAIL_USER"),
		smtpPass:      os.Getenv("EMAIL_PASS"),

		storageBackend: getEnv("STORAGE_BACKEND", "local"),
		storageDir:     getEnv("STORAGE_DIR", "uploads"),
		s3Bucket:       os.Getenv("S3_BUCKET"),
		s3Region:       getEnv("S3_REGION", "us-east-1"),
		s3Endpoint:     os.Getenv("S3_ENDPOINT"),
		s3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
		s3SecretKey:    os.Getenv("S3_SECRET_KEY"),
		s3PublicURL:    strings.TrimRight(os.Getenv("S3_PUBLIC_URL"), "/"),

		redisAddr:     os.Getenv("REDIS_ADDR"),
		redisPassword: os.Getenv("REDIS_PASSWORD"),
	}
	cfg.supportEmail = getEnv("SUPPORT_EMAIL", cfg.emailSender)

	var err error
	if cfg.dbQueryTimeout, err = getDuration("DB_QUERY_TIMEOUT", 5*time.Second); err != nil {
		return nil, errb.Wrap(err)
	}
	if cfg.dbExecuteTimeout, err = getDuration("DB_EXECUTE_TIMEOUT", 10*time.Second); err != nil {
		return nil, errb.Wrap(err)
	}
	if cfg.sessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, errb.Wrap(err)
	}
	if cfg.resetTokenSingleUse, err = getBool("RESET_TOKEN_SINGLE_USE", false); err != nil {
		return nil, errb.Wrap(err)
	}
	if cfg.smtpPort, err = getInt("EMAIL_PORT", 587); err != nil {
		return nil, errb.Wrap(err)
	}
	if cfg.redisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, errb.Wrap(err)
	}
	if cfg.rateLimit, err = getInt("RATE_LIMIT", 10); err != nil {
		return nil, errb.Wrap(err)
	}
	maxUpload, err := getInt("MAX_UPLOAD_SIZE", 5*1024*1024)
	if err != nil {
		return nil, errb.Wrap(err)
	}
	cfg.maxUploadSize = int64(maxUpload)

	if err := cfg.validate(); err != nil {
		return nil, errb.Wrap(err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.dbURL == "" || c.dbNs == "" || c.dbDb == "" {
		return oops.Errorf("required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set")
	}
	if c.jwtSecret == "" {
		return oops.Errorf("JWT_SECRET is not set")
	}
	if c.dbQueryTimeout <= 0 || c.dbExecuteTimeout <= 0 {
		return oops.Errorf("DB_QUERY_TIMEOUT and DB_EXECUTE_TIMEOUT must be positive durations")
	}
	if c.sessionTTL <= 0 {
		return oops.Errorf("SESSION_TTL must be a positive duration")
	}

	switch c.emailProvider {
	case "log":
	case "resend":
		if c.emailAPIKey == "" {
			return oops.Errorf("email provider is 'resend' but EMAIL_API_KEY is not set")
		}
	case "smtp":
		if c.smtpHost == "" {
			return oops.Errorf("email provider is 'smtp' but EMAIL_HOST is not set")
		}
	default:
		return oops.With("provider", c.emailProvider).Errorf("unknown email provider: %s", c.emailProvider)
	}

	switch c.storageBackend {
	case "local":
	case "s3":
		if c.s3Bucket == "" {
			return oops.Errorf("storage backend is 's3' but S3_BUCKET is not set")
		}
	default:
		return oops.With("backend", c.storageBackend).Errorf("unknown storage backend: %s", c.storageBackend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, oops.With("key", key).Wrapf(err, "invalid duration for %s", key)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, oops.With("key", key).Wrapf(err, "invalid integer for %s", key)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, oops.With("key", key).Wrapf(err, "invalid boolean for %s", key)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) GetServerAddr() string { return c.serverAddr }
func (c *Config) GetAppBaseURL() string { return c.appBaseURL }
func (c *Config) GetFrontendURL() string { return c.frontendURL }

// GetCORSOrigins returns a copy so callers cannot mutate the config.
func (c *Config) GetCORSOrigins() []string {
	return append([]string(nil), c.corsOrigins...)
}

func (c *Config) GetDBURL() string { return c.dbURL }
func (c *Config) GetDBUser() string { return c.dbUser }
func (c *Config) GetDBPass() string { return c.dbPass }
func (c *Config) GetDBNs() string { return c.dbNs }
func (c *Config) GetDBDb() string { return c.dbDb }
func (c *Config) GetDBQueryTimeout() time.Duration { return c.dbQueryTimeout }
func (c *Config) GetDBExecuteTimeout() time.Duration { return c.dbExecuteTimeout }

func (c *Config) GetJWTSecret() string { return c.jwtSecret }
func (c *Config) GetSessionTTL() time.Duration { return c.sessionTTL }
func (c *Config) GetResetTokenSingleUse() bool { return c.resetTokenSingleUse }

func (c *Config) GetEmailProvider() string { return c.emailProvider }
func (c *Config) GetEmailSender() string { return c.emailSender }
func (c *Config) GetEmailAPIKey() string { return c.emailAPIKey }
func (c *Config) GetSupportEmail() string { return c.supportEmail }
func (c *Config) GetSMTPHost() string { return c.smtpHost }
func (c *Config) GetSMTPPort() int { return c.smtpPort }
func (c *Config) GetSMTPUser() string { return c.smtpUser }
func (c *Config) GetSMTPPass() string { return c.smtpPass }

func (c *Config) GetStorageBackend() string { return c.storageBackend }
func (c *Config) GetStorageDir() string { return c.storageDir }
func (c *Config) GetMaxUploadSize() int64 { return c.maxUploadSize }
func (c *Config) GetS3Bucket() string { return c.s3Bucket }
func (c *Config) GetS3Region() string { return c.s3Region }
func (c *Config) GetS3Endpoint() string { return c.s3Endpoint }
func (c *Config) GetS3AccessKey() string { return c.s3AccessKey }
func (c *Config) GetS3SecretKey() string { return c.s3SecretKey }
func (c *Config) GetS3PublicURL() string { return c.s3PublicURL }

func (c *Config) GetRedisAddr() string { return c.redisAddr }
func (c *Config) GetRedisPassword() string { return c.redisPassword }
func (c *Config) GetRedisDB() int { return c.redisDB }
func (c *Config) GetRateLimit() int { return c.rateLimit }
