package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config 구조체 - 모든 환경변수를 담음
type Config struct {
	// Redis
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisUseTLS   bool

	// Supabase
	SupabaseURL            string
	SupabaseServiceKey     string
	SupabaseStorageBaseURL string

	// Gemini API (script generation)
	GeminiAPIKeys []string
	GeminiModel   string

	// Speech API (narration voiceover)
	SpeechAPIKey      string
	SpeechAPIEndpoint string

	// Image API (slide generation)
	ImageAPIKey      string
	ImageAPIEndpoint string

	// Server
	Port string
}

var globalConfig *Config

// LoadConfig - 환경변수 로드
func LoadConfig() (*Config, error) {
	// .env 파일 로드 (있으면)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env file not found, using environment variables")
	}

	// Redis UseTLS 파싱
	useTLS := true // 기본값
	if tlsStr := os.Getenv("REDIS_USE_TLS"); tlsStr != "" {
		if parsed, err := strconv.ParseBool(tlsStr); err == nil {
			useTLS = parsed
		}
	}

	// Gemini API 키 파싱 (쉼표로 구분된 다중 키 지원)
	var geminiKeys []string
	for _, key := range strings.Split(os.Getenv("GEMINI_API_KEYS"), ",") {
		if key = strings.TrimSpace(key); key != "" {
			geminiKeys = append(geminiKeys, key)
		}
	}
	if len(geminiKeys) == 0 {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			geminiKeys = []string{key}
		}
	}

	globalConfig = &Config{
		// Redis
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisUsername: getEnv("REDIS_USERNAME", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisUseTLS:   useTLS,

		// Supabase
		SupabaseURL:            getEnv("SUPABASE_URL", ""),
		SupabaseServiceKey:     getEnv("SUPABASE_SERVICE_KEY", ""),
		SupabaseStorageBaseURL: getEnv("SUPABASE_STORAGE_BASE_URL", ""),

		// Gemini API
		GeminiAPIKeys: geminiKeys,
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),

		// Speech API
		SpeechAPIKey:      getEnv("SPEECH_API_KEY", ""),
		SpeechAPIEndpoint: getEnv("SPEECH_API_ENDPOINT", "https://api.openai.com/v1/audio/speech"),

		// Image API
		ImageAPIKey:      getEnv("IMAGE_API_KEY", ""),
		ImageAPIEndpoint: getEnv("IMAGE_API_ENDPOINT", "https://api.openai.com/v1/images/generations"),

		// Server
		Port: getEnv("PORT", "8080"),
	}

	// 필수 환경변수 검증
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}

	log.Println("✅ Configuration loaded successfully")
	log.Printf("   Redis: %s:%s (TLS: %v)", globalConfig.RedisHost, globalConfig.RedisPort, globalConfig.RedisUseTLS)
	log.Printf("   Supabase: %s", globalConfig.SupabaseURL)
	log.Printf("   Gemini: %s (%d key(s))", globalConfig.GeminiModel, len(globalConfig.GeminiAPIKeys))
	log.Printf("   Speech endpoint: %s", globalConfig.SpeechAPIEndpoint)
	log.Printf("   Image endpoint: %s", globalConfig.ImageAPIEndpoint)

	return globalConfig, nil
}

// GetConfig - 로드된 설정 가져오기
func GetConfig() *Config {
	if globalConfig == nil {
		log.Fatal("❌ Config not loaded. Call LoadConfig() first.")
	}
	return globalConfig
}

// validate - 필수 환경변수 검증
func (c *Config) validate() error {
	if c.RedisHost == "" {
		return fmt.Errorf("REDIS_HOST is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabaseServiceKey == "" {
		return fmt.Errorf("SUPABASE_SERVICE_KEY is required")
	}
	if len(c.GeminiAPIKeys) == 0 {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.SpeechAPIKey == "" {
		return fmt.Errorf("SPEECH_API_KEY is required")
	}
	if c.ImageAPIKey == "" {
		return fmt.Errorf("IMAGE_API_KEY is required")
	}
	return nil
}

// getEnv - 환경변수 가져오기 (기본값 지원)
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetRedisAddr - Redis 연결 문자열 생성
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}
