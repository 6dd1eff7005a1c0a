package config

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// AppConfig holds global application configuration
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName string
	Port    string
	Env     string
	Debug   bool

	// AutoSaveInterval drives the silent background save timer.
	AutoSaveInterval time.Duration

	// Attachment pipeline limits.
	AttachmentMaxBytes int64
	ImageMaxDimension  int
	ImageQuality       int
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() {
	once.Do(func() {
		AppConfig = &Config{
			AppName:            os.Getenv("APP_NAME"),
			Port:               os.Getenv("PORT"),
			Env:                os.Getenv("APP_ENV"),
			Debug:              os.Getenv("DEBUG") == "true",
			AutoSaveInterval:   envDuration("AUTOSAVE_INTERVAL_SECONDS", 30*time.Second),
			AttachmentMaxBytes: envInt64("ATTACHMENT_MAX_BYTES", 10<<20),
			ImageMaxDimension:  envInt("IMAGE_MAX_DIMENSION", 1600),
			ImageQuality:       envInt("IMAGE_QUALITY", 80),
		}
	})
}

func envDuration(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func envInt64(name string, def int64) int64 {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return n
		}
	}
	return def
}
