package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/api"
	"gram-rakshak/backend/internal/ocr"
	"gram-rakshak/backend/internal/registry"
)

func main() {
	baseDir, err := os.Getwd()
	if err != nil {
		logrus.Fatalf("determine working directory: %v", err)
	}

	dataDir := filepath.Join(baseDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		logrus.Fatalf("create data directory: %v", err)
	}

	ocrCfg := ocr.Config{
		APIKey:  os.Getenv("OCR_API_KEY"),
		BaseURL: os.Getenv("OCR_BASE_URL"),
	}
	if timeout := os.Getenv("OCR_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			ocrCfg.Timeout = d
		}
	}

	registryCfg := registry.Config{
		APIKey:  os.Getenv("REGISTRY_API_KEY"),
		BaseURL: os.Getenv("REGISTRY_BASE_URL"),
	}
	if timeout := os.Getenv("REGISTRY_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil {
			registryCfg.Timeout = d
		}
	}
	if ttl := os.Getenv("REGISTRY_CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			registryCfg.CacheTTL = d
		}
	}

	extractorTimeout := time.Duration(0)
	if v := strings.TrimSpace(os.Getenv("EXTRACTOR_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			extractorTimeout = d
		}
	}
	fakeThreshold := 0
	if v := strings.TrimSpace(os.Getenv("FAKE_THRESHOLD")); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			fakeThreshold = val
		}
	}

	var allowedOrigins []string
	if v := strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")); v != "" {
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := api.Config{
		DBPath:           filepath.Join(dataDir, "gram-rakshak.db"),
		RedFlagsPath:     filepath.Join(baseDir, "internal", "signal", "red_flags.json"),
		ReputationPath:   filepath.Join(baseDir, "internal", "signal", "domain_reputation.json"),
		SchemesPath:      filepath.Join(baseDir, "internal", "schemes", "schemes_seed.json"),
		AllowedOrigins:   allowedOrigins,
		OCRConfig:        ocrCfg,
		RegistryConfig:   registryCfg,
		RedisURL:         os.Getenv("REDIS_URL"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		ExtractorTimeout: extractorTimeout,
		FakeThreshold:    fakeThreshold,
		OfficialLink:     os.Getenv("OFFICIAL_LINK"),
	}

	if override := strings.TrimSpace(os.Getenv("GRAM_RAKSHAK_DB_PATH")); override != "" {
		cfg.DBPath = override
	}

	server, err := api.NewServer(cfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	router, err := server.Router()
	if err != nil {
		logrus.Fatalf("configure router: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "2000"
	}

	logrus.Infof("starting gram-rakshak backend on :%s", port)
	if err := router.Run(":" + port); err != nil {
		logrus.Fatalf("server exited: %v", err)
	}
}
