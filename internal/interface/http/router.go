package httpapi

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	"trade-journal/internal/application/analytics"
	"trade-journal/internal/application/auth"
	"trade-journal/internal/application/importer"
	"trade-journal/internal/application/presets"
	authDomain "trade-journal/internal/domain/auth"
	"trade-journal/internal/domain/journal"
	"trade-journal/internal/infra/memory"
	authinfra "trade-journal/internal/infrastructure/auth"
	"trade-journal/internal/infrastructure/config"
	"trade-journal/internal/infrastructure/notify"
	"trade-journal/internal/infrastructure/persistence/postgres"

	"github.com/gin-gonic/gin"
)

const (
	errCodeBadRequest         = "BAD_REQUEST"
	errCodeInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	errCodeOTPRequired        = "AUTH_OTP_REQUIRED"
	errCodeOTPInvalid         = "AUTH_OTP_INVALID"
	errCodeUnauthorized       = "AUTH_UNAUTHORIZED"
	errCodeForbidden          = "AUTH_FORBIDDEN"
	errCodeNotFound           = "NOT_FOUND"
	errCodeInternal           = "INTERNAL_ERROR"
	refreshCookieName         = "refresh_token"
)

const seedTimeout = 5 * time.Second

// TradeRepository 交易紀錄的完整存取介面,由 Postgres 與記憶體儲存實作。
type TradeRepository interface {
	analytics.TradeReader
	importer.TradeWriter
	Insert(ctx context.Context, userID string, rec journal.TradeRecord) (int64, error)
	Delete(ctx context.Context, userID string, id int64) error
}

// Server 封裝 HTTP 路由與依賴。
type Server struct {
	engine    *gin.Engine
	store     *memory.Store
	db        *sql.DB
	trades    TradeRepository
	loginUC   *auth.LoginUseCase
	refreshUC *auth.RefreshUseCase
	logoutUC  *auth.LogoutUseCase
	authz     *auth.Authorizer
	tokenSvc  *authinfra.JWTIssuer
	queryUC   *analytics.QueryUseCase
	presetUC  *presets.UseCase
	importUC  *importer.UseCase
}

// NewServer 建立 API 伺服器。db 為 nil 時改用記憶體儲存,供本地開發與測試。
func NewServer(cfg config.Config, db *sql.DB) *Server {
	store := memory.NewStore()

	var (
		trades      TradeRepository
		users       auth.UserRepository
		sessions    authDomain.SessionStore
		otps        authDomain.OTPStore
		presetStore presets.DocumentStore
	)
	if db != nil {
		authRepo := postgres.NewAuthRepo(db)
		users, sessions, otps = authRepo, authRepo, authRepo
		trades = postgres.NewTradeRepo(db)
		presetStore = postgres.NewFilterPresetStore(db)

		ctx, cancel := context.WithTimeout(context.Background(), seedTimeout)
		defer cancel()
		if err := authRepo.SeedDefaults(ctx); err != nil {
			log.Printf("[Server] seed auth failed: %v", err)
		}
	} else {
		store.SeedUsers()
		users, sessions, otps = store, store, store
		trades = store
		presetStore = store
	}

	tokenTTL := cfg.Auth.TokenTTL
	if tokenTTL == 0 {
		tokenTTL = 30 * time.Minute
	}
	refreshTTL := cfg.Auth.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	tokenSvc := authinfra.NewJWTIssuer(cfg.Auth.Secret, tokenTTL, refreshTTL, sessions, users)

	var sender auth.CodeSender = notify.NopSender{}
	if cfg.Notifier.Telegram.Enabled && cfg.Notifier.Telegram.Token != "" && cfg.Notifier.Telegram.ChatID != 0 {
		sender = notify.NewTelegramClient(cfg.Notifier.Telegram.Token, cfg.Notifier.Telegram.ChatID, "journal")
	}

	loginUC := auth.NewLoginUseCase(users, authinfra.BcryptHasher{}, tokenSvc, otps, authinfra.OTPGenerator{}, sender, cfg.Auth.OTPTTL)

	s := &Server{
		store:     store,
		db:        db,
		trades:    trades,
		loginUC:   loginUC,
		refreshUC: auth.NewRefreshUseCase(tokenSvc),
		logoutUC:  auth.NewLogoutUseCase(tokenSvc),
		authz:     auth.NewAuthorizer(users),
		tokenSvc:  tokenSvc,
		queryUC:   analytics.NewQueryUseCase(trades, cfg.Journal.SnapshotLimit, cfg.Journal.Location()),
		presetUC:  presets.NewUseCase(presetStore),
		importUC:  importer.NewUseCase(trades),
	}
	s.engine = s.buildEngine()
	return s
}

// Handler 回傳路由處理器,供 HTTP server 掛載。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store 主要用於測試注入初始資料。
func (s *Server) Store() *memory.Store {
	return s.store
}

func (s *Server) buildEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	e := gin.New()
	e.Use(s.ginLogger(), gin.Recovery(), corsMiddleware())

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)

	api.POST("/auth/login", s.handleLogin)
	api.POST("/auth/otp/verify", s.handleVerifyOTP)
	api.POST("/auth/otp/resend", s.handleResendOTP)
	api.POST("/auth/refresh", s.handleRefresh)
	api.POST("/auth/logout", s.handleLogout)

	api.GET("/trades", s.requireAuth(auth.PermTradesRead), s.handleListTrades)
	api.POST("/trades", s.requireAuth(auth.PermTradesWrite), s.handleCreateTrade)
	api.DELETE("/trades/:id", s.requireAuth(auth.PermTradesWrite), s.handleDeleteTrade)
	api.POST("/trades/import", s.requireAuth(auth.PermTradesImport), s.handleImportTrades)
	api.GET("/trades/export", s.requireAuth(auth.PermTradesRead), s.handleExportCSV)

	stats := api.Group("/stats", s.requireAuth(auth.PermStatsQuery))
	stats.GET("/summary", s.handleSummary)
	stats.GET("/ea", s.handleStatsEA)
	stats.GET("/symbol", s.handleStatsSymbol)
	stats.GET("/timeframe", s.handleStatsTimeframe)
	stats.GET("/close-reason", s.handleStatsCloseReason)
	stats.GET("/day-of-week", s.handleStatsDayOfWeek)
	stats.GET("/hour-of-day", s.handleStatsHourOfDay)
	stats.GET("/confluences", s.handleStatsConfluences)
	stats.GET("/sniper", s.handleStatsSniper)
	stats.GET("/heatmap", s.handleStatsHeatmap)

	api.GET("/presets", s.requireAuth(auth.PermStatsQuery), s.handleListPresets)
	api.PUT("/presets", s.requireAuth(auth.PermPresetsWrite), s.handleSavePreset)
	api.DELETE("/presets/:name", s.requireAuth(auth.PermPresetsWrite), s.handleDeletePreset)

	// 前端操作介面
	e.NoRoute(gin.WrapH(http.FileServer(http.Dir("web"))))
	return e
}

func (s *Server) handleHealth(c *gin.Context) {
	dbOK := true
	if s.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		dbOK = s.db.PingContext(ctx) == nil
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "db": dbOK, "time": time.Now().Format(time.RFC3339)})
}
