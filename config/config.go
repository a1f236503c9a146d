package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	SMTP         SMTPConfig
	S3           S3Config
	Testimonials TestimonialsConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	BaseURL         string // CloudFront or S3 direct URL
}

// TestimonialsConfig holds the moderation, validation and caching policy knobs.
type TestimonialsConfig struct {
	MaxRating              int
	MinContentLength       int
	MaxContentLength       int
	RequireApproval        bool
	AllowAnonymous         bool
	ModerationRoles        []string
	MediaEnabled           bool
	UploadPrefix           string
	NotificationEmail      string
	SendEmailNotifications bool
	SendAdminNotifications bool
	PaginationSize         int
	CacheEnabled           bool
	CacheTTLVolatile       time.Duration
	CacheTTLStats          time.Duration
	CacheTTLStable         time.Duration
	MaxFileSize            int64
	AllowedExtensions      []string
	ForbiddenWords         []string
	SearchMinLength        int
	RetentionDays          int
	AsyncWorkers           int
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "testimonials"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		JWT: JWTConfig{
			Secret:             getEnv("JWT_SECRET", "your-secret-key"),
			AccessTokenExpiry:  parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "15m"), 15*time.Minute),
			RefreshTokenExpiry: parseDuration(getEnv("JWT_REFRESH_TOKEN_EXPIRY", "168h"), 168*time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@testimonials.local"),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-2"),
			Bucket:          getEnv("AWS_S3_BUCKET", "testimonials-uploads"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			BaseURL:         getEnv("AWS_S3_BASE_URL", ""),
		},
		Testimonials: TestimonialsConfig{
			MaxRating:              parseInt(getEnv("TESTIMONIALS_MAX_RATING", "5"), 5),
			MinContentLength:       parseInt(getEnv("TESTIMONIALS_MIN_CONTENT_LENGTH", "10"), 10),
			MaxContentLength:       parseInt(getEnv("TESTIMONIALS_MAX_CONTENT_LENGTH", "5000"), 5000),
			RequireApproval:        parseBool(getEnv("TESTIMONIALS_REQUIRE_APPROVAL", "true"), true),
			AllowAnonymous:         parseBool(getEnv("TESTIMONIALS_ALLOW_ANONYMOUS", "true"), true),
			ModerationRoles:        parseSlice(getEnv("TESTIMONIALS_MODERATION_ROLES", "moderator,admin")),
			MediaEnabled:           parseBool(getEnv("TESTIMONIALS_MEDIA_ENABLED", "true"), true),
			UploadPrefix:           getEnv("TESTIMONIALS_UPLOAD_PREFIX", "testimonials"),
			NotificationEmail:      getEnv("TESTIMONIALS_NOTIFICATION_EMAIL", ""),
			SendEmailNotifications: parseBool(getEnv("TESTIMONIALS_SEND_EMAIL_NOTIFICATIONS", "true"), true),
			SendAdminNotifications: parseBool(getEnv("TESTIMONIALS_SEND_ADMIN_NOTIFICATIONS", "true"), true),
			PaginationSize:         parseInt(getEnv("TESTIMONIALS_PAGINATION_SIZE", "10"), 10),
			CacheEnabled:           parseBool(getEnv("TESTIMONIALS_CACHE_ENABLED", "true"), true),
			CacheTTLVolatile:       parseDuration(getEnv("TESTIMONIALS_CACHE_TTL_VOLATILE", "5m"), 5*time.Minute),
			CacheTTLStats:          parseDuration(getEnv("TESTIMONIALS_CACHE_TTL_STATS", "30m"), 30*time.Minute),
			CacheTTLStable:         parseDuration(getEnv("TESTIMONIALS_CACHE_TTL_STABLE", "1h"), time.Hour),
			MaxFileSize:            int64(parseInt(getEnv("TESTIMONIALS_MAX_FILE_SIZE", "10485760"), 10*1024*1024)),
			AllowedExtensions:      parseSlice(getEnv("TESTIMONIALS_ALLOWED_EXTENSIONS", ".jpg,.jpeg,.png,.gif,.webp,.mp4,.webm,.mp3,.wav,.pdf")),
			ForbiddenWords:         parseSlice(getEnv("TESTIMONIALS_FORBIDDEN_WORDS", "")),
			SearchMinLength:        parseInt(getEnv("TESTIMONIALS_SEARCH_MIN_LENGTH", "3"), 3),
			RetentionDays:          parseInt(getEnv("TESTIMONIALS_RETENTION_DAYS", "90"), 90),
			AsyncWorkers:           parseInt(getEnv("TESTIMONIALS_ASYNC_WORKERS", "4"), 4),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseBool(s string, fallback bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		log.Printf("Invalid boolean %s, using default %t", s, fallback)
		return fallback
	}
	return b
}

func parseSlice(s string) []string {
	if s == "" {
		return []string{}
	}
	var result []string
	for i := 0; i < len(s); {
		end := i
		for end < len(s) && s[end] != ',' {
			end++
		}
		result = append(result, s[i:end])
		i = end + 1
	}
	return result
}
