package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port  string
	DBUrl string
	// AI analysis worker
	AIServerURL     string
	PollInterval    time.Duration // wait between result polls
	PollMaxAttempts int           // polls before the job is considered timed out
	// File storage
	StorageBackend    string // "local" or "s3"
	MediaDir          string
	MediaPublicPrefix string
	S3Bucket          string
	S3Region          string
	S3AccessKeyID     string
	S3SecretAccessKey string
	// Reverse geocoding (Kakao Local API)
	KakaoRestAPIKey  string
	Coord2AddressURL string
	// Point economy
	StartingBalance    int
	PointsPerExtraPick int
	PointsPerContact   int
	// Recommendation tuning
	DailyRecommendationLimit int
	RecommendationRadiusKm   float64
	CandidatePoolSize        int
	// Redis (rate limiting)
	RedisURL      string
	RedisPassword string
	// Rate Limiting
	RateLimitWindowSeconds     int
	RateLimitGlobalThreshold   int
	RateLimitPurchaseThreshold int
	// Upload limits
	MaxVideoUploadBytes int64
}

func LoadConfig() (*Config, error) {
	// Only effective locally; ignored in production when the file is absent
	_ = godotenv.Load()

	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		DBUrl: getEnv("DATABASE_URL", ""),

		AIServerURL:     strings.TrimRight(getEnv("AI_SERVER_URL", "http://localhost:8000"), "/"),
		PollInterval:    time.Duration(getEnvInt("AI_POLL_INTERVAL_SECONDS", 5)) * time.Second,
		PollMaxAttempts: getEnvInt("AI_POLL_MAX_ATTEMPTS", 60), // 60 * 5s = 5 minute budget

		StorageBackend:    getEnv("STORAGE_BACKEND", "local"),
		MediaDir:          getEnv("MEDIA_DIR", "media"),
		MediaPublicPrefix: getEnv("MEDIA_PUBLIC_PREFIX", "/media"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Region:          getEnv("S3_REGION", "ap-northeast-2"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),

		KakaoRestAPIKey:  getEnv("KAKAO_REST_API_KEY", ""),
		Coord2AddressURL: getEnv("KAKAO_COORD2ADDRESS_URL", "https://dapi.kakao.com/v2/local/geo/coord2address.json"),

		StartingBalance:    getEnvInt("ONBOARDING_STARTING_BALANCE", 100),
		PointsPerExtraPick: getEnvInt("POINTS_PER_EXTRA_RECOMMENDATION", 20),
		PointsPerContact:   getEnvInt("POINTS_PER_CONTACT", 5),

		DailyRecommendationLimit: getEnvInt("DAILY_RECOMMENDATION_LIMIT", 3),
		RecommendationRadiusKm:   getEnvFloat("RECOMMENDATION_RADIUS_KM", 50),
		CandidatePoolSize:        getEnvInt("RECOMMENDATION_POOL_SIZE", 20),

		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold:   getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitPurchaseThreshold: getEnvInt("RATE_LIMIT_PURCHASE_THRESHOLD", 20),

		MaxVideoUploadBytes: int64(getEnvInt("MAX_VIDEO_UPLOAD_MB", 100)) * 1024 * 1024,
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}
	if cfg.StorageBackend == "s3" && cfg.S3Bucket == "" {
		log.Println("WARNING: STORAGE_BACKEND=s3 but S3_BUCKET is empty. Falling back to local storage.")
		cfg.StorageBackend = "local"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvFloat returns a float environment variable or fallback if not set/invalid
func getEnvFloat(key string, fallback float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return fallback
}
