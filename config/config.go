package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	DBPath    string
	UploadDir string
	LibraryDir string

	FFmpegPath           string
	FFprobePath          string
	YtDlpPath            string
	FeatureExtractorPath string

	DownloadTimeout time.Duration
	TranscodeTimeout time.Duration
	FeatureTimeout   time.Duration

	WorkerPollInterval    time.Duration
	WorkerBackoffInterval time.Duration
	WorkerShutdownTimeout time.Duration

	MaxPendingPerSubmitter int
	MaxUploadBytes         int64

	StreamEngineControlAddr string
	StreamEngineTimeout     time.Duration

	AdminUsername string
	AdminPassword string
	JWTSecret     string

	StationName string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		DBPath:     getEnv("DB_PATH", "./data/waveradio.db"),
		UploadDir:  getEnv("UPLOAD_DIR", "./data/incoming"),
		LibraryDir: getEnv("LIBRARY_DIR", "./data/library"),

		FFmpegPath:           getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:          getEnv("FFPROBE_PATH", "ffprobe"),
		YtDlpPath:            getEnv("YTDLP_PATH", "yt-dlp"),
		FeatureExtractorPath: getEnv("FEATURE_EXTRACTOR_PATH", "feature-extractor"),

		DownloadTimeout:  getEnvAsDuration("DOWNLOAD_TIMEOUT", 300*time.Second),
		TranscodeTimeout: getEnvAsDuration("TRANSCODE_TIMEOUT", 300*time.Second),
		FeatureTimeout:   getEnvAsDuration("FEATURE_TIMEOUT", 300*time.Second),

		WorkerPollInterval:    getEnvAsDuration("WORKER_POLL_INTERVAL", 5*time.Second),
		WorkerBackoffInterval: getEnvAsDuration("WORKER_BACKOFF_INTERVAL", 10*time.Second),
		WorkerShutdownTimeout: getEnvAsDuration("WORKER_SHUTDOWN_TIMEOUT", 30*time.Second),

		MaxPendingPerSubmitter: getEnvAsInt("MAX_PENDING_PER_SUBMITTER", 5),
		MaxUploadBytes:         int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) * 1024 * 1024,

		StreamEngineControlAddr: getEnv("STREAM_ENGINE_CONTROL_ADDR", "127.0.0.1:1234"),
		StreamEngineTimeout:     getEnvAsDuration("STREAM_ENGINE_TIMEOUT", 5*time.Second),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "change-me"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me-in-production-please"),

		StationName: getEnv("STATION_NAME", "Wave Radio"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(name); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
	}
	return defaultVal
}
