package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"gram-rakshak/backend/internal/cache"
	"gram-rakshak/backend/internal/certs"
	"gram-rakshak/backend/internal/middleware"
	"gram-rakshak/backend/internal/ocr"
	"gram-rakshak/backend/internal/registry"
	"gram-rakshak/backend/internal/schemes"
	"gram-rakshak/backend/internal/signal"
	"gram-rakshak/backend/internal/store"
	"gram-rakshak/backend/internal/verdict"
)

// Config defines server dependencies.
type Config struct {
	DBPath           string
	RedFlagsPath     string
	ReputationPath   string
	SchemesPath      string
	AllowedOrigins   []string
	SilentDB         bool
	OCRConfig        ocr.Config
	RegistryConfig   registry.Config
	RedisURL         string
	JWTSecret        string
	ExtractorTimeout time.Duration
	FakeThreshold    int
	OfficialLink     string
}

// Server wires HTTP handlers with the verdict pipeline and persistence.
type Server struct {
	db             *store.Database
	rdb            *redis.Client
	verdicts       *verdict.Service
	catalog        *schemes.Catalog
	notifier       *EventNotifier
	allowedOrigins []string
	jwtSecret      []byte
	redFlagsPath   string
	reputationPath string
	schemesPath    string
	ocrEnabled     bool
	registryOn     bool
}

// NewServer constructs the API server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DBPath == "" {
		return nil, errors.New("db path required")
	}
	db, err := store.Open(cfg.DBPath, cfg.SilentDB)
	if err != nil {
		return nil, err
	}

	keywordEx, redFlagsPath, err := buildKeywordExtractor(cfg.RedFlagsPath)
	if err != nil {
		return nil, fmt.Errorf("red-flag phrases: %w", err)
	}
	linkEx, reputationPath, err := buildLinkExtractor(cfg.ReputationPath)
	if err != nil {
		return nil, fmt.Errorf("domain reputation: %w", err)
	}

	schemesPath := strings.TrimSpace(cfg.SchemesPath)
	if schemesPath == "" {
		schemesPath = filepath.Join("internal", "schemes", "schemes_seed.json")
	}
	catalog, err := schemes.NewCatalog(schemesPath)
	if err != nil {
		return nil, fmt.Errorf("scheme catalog: %w", err)
	}

	var ocrClient *ocr.Client
	if client, err := ocr.NewClient(cfg.OCRConfig); err == nil {
		ocrClient = client
		logrus.WithField("base_url", cfg.OCRConfig.BaseURL).Info("document OCR enabled")
	} else if errors.Is(err, ocr.ErrDisabled) {
		logrus.Info("document OCR disabled - no API key configured")
	} else {
		return nil, fmt.Errorf("ocr client: %w", err)
	}

	var registryClient *registry.Client
	if client, err := registry.NewClient(cfg.RegistryConfig); err == nil {
		registryClient = client
		logrus.WithFields(logrus.Fields{
			"ttl":     cfg.RegistryConfig.CacheTTL,
			"timeout": cfg.RegistryConfig.Timeout,
		}).Info("registry cross-reference enabled")
	} else if errors.Is(err, registry.ErrMissingCredentials) {
		logrus.Info("registry cross-reference disabled - no API key configured")
	} else {
		return nil, fmt.Errorf("registry client: %w", err)
	}

	var rdb *redis.Client
	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		if client, err := cache.Open(url); err != nil {
			logrus.WithError(err).Warn("redis unavailable - caching disabled")
		} else {
			rdb = client
			logrus.Info("redis cache enabled")
		}
	}

	msgExtractors := []signal.Extractor{
		keywordEx,
		linkEx,
		signal.NewSchemeNameExtractor(catalog),
	}
	var docExtractors []signal.Extractor
	if ocrClient != nil {
		docExtractors = append(docExtractors, signal.NewTamperExtractor(ocrClient))
	}
	if registryClient != nil {
		docExtractors = append(docExtractors, signal.NewCrossReferenceExtractor(registryClient))
	}

	var ocrExtractor ocr.Extractor
	if ocrClient != nil {
		ocrExtractor = ocrClient
	}
	issuer := certs.NewIssuer(db, rdb)
	verdicts := verdict.NewService(verdict.Config{
		ExtractorTimeout: cfg.ExtractorTimeout,
		FakeThreshold:    cfg.FakeThreshold,
		OfficialLink:     cfg.OfficialLink,
	}, ocrExtractor, docExtractors, msgExtractors, issuer, catalog)

	return &Server{
		db:             db,
		rdb:            rdb,
		verdicts:       verdicts,
		catalog:        catalog,
		notifier:       NewEventNotifier(),
		allowedOrigins: cfg.AllowedOrigins,
		jwtSecret:      []byte(cfg.JWTSecret),
		redFlagsPath:   redFlagsPath,
		reputationPath: reputationPath,
		schemesPath:    schemesPath,
		ocrEnabled:     ocrClient != nil,
		registryOn:     registryClient != nil,
	}, nil
}

func buildKeywordExtractor(path string) (*signal.KeywordExtractor, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return signal.KeywordExtractorFromMap(signal.DefaultRedFlags()), "", nil
	}
	ex, err := signal.NewKeywordExtractor(path)
	return ex, path, err
}

func buildLinkExtractor(path string) (*signal.LinkReputationExtractor, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return signal.LinkReputationExtractorFromList(signal.DefaultReputation()), "", nil
	}
	ex, err := signal.NewLinkReputationExtractor(path)
	return ex, path, err
}

// Router configures gin routes.
func (s *Server) Router() (*gin.Engine, error) {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowCredentials = true
	if len(s.allowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.allowedOrigins
	}
	corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsCfg))

	r.GET("/api/healthz", s.handleHealth)
	r.GET("/api/config", s.handleConfig)
	r.GET("/api/languages", s.handleLanguages)

	api := r.Group("/api")
	{
		api.POST("/verify-document", s.handleVerifyDocument)
		api.POST("/check-message", s.handleCheckMessage)
		api.POST("/sms/verify", s.handleSMSVerify)
		api.GET("/risk-map/:district", s.handleRiskMap)
		api.POST("/reports", s.handleCreateReport)
		api.GET("/schemes", s.handleListSchemes)
		api.POST("/applications", s.handleCreateApplication)
		api.GET("/certificates/:userId", s.handleListCertificates)
		api.GET("/verifications", s.handleListVerifications)
	}

	admin := r.Group("/api/admin")
	if len(s.jwtSecret) > 0 {
		admin.Use(middleware.JWT(s.jwtSecret))
	}
	{
		admin.GET("/fraud-stats", s.handleFraudStats)
		admin.GET("/stream", s.handleStream)
	}

	return r, nil
}

func (s *Server) respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	c.JSON(status, Envelope{
		Success:   false,
		Error:     err.Error(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	s.respond(c, http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleConfig(c *gin.Context) {
	s.respond(c, http.StatusOK, gin.H{
		"red_flags_path":   s.redFlagsPath,
		"reputation_path":  s.reputationPath,
		"schemes_path":     s.schemesPath,
		"schemes":          len(s.catalog.List("")),
		"ocr_enabled":      s.ocrEnabled,
		"registry_enabled": s.registryOn,
		"cache_enabled":    s.rdb != nil,
	})
}

func (s *Server) handleLanguages(c *gin.Context) {
	s.respond(c, http.StatusOK, []LanguageDTO{
		{Code: "hi", Name: "Hindi", Native: "हिन्दी"},
		{Code: "en", Name: "English", Native: "English"},
		{Code: "bn", Name: "Bengali", Native: "বাংলা"},
		{Code: "te", Name: "Telugu", Native: "తెలుగు"},
		{Code: "mr", Name: "Marathi", Native: "मराठी"},
		{Code: "ta", Name: "Tamil", Native: "தமிழ்"},
	})
}
