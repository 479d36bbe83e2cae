// Package server assembles the HTTP API from the services.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	apperrors "subtracker/internal/errors"
	"subtracker/internal/handlers"
	"subtracker/internal/middleware"
	"subtracker/internal/services"

	_ "subtracker/internal/docs" // Import swagger docs
)

// Services bundles the persistence services the API depends on.
type Services struct {
	Users        services.UserServicer
	Tokens       services.AuthTokenServicer
	Accounts     services.BankAccountServicer
	Categories   services.CategoryServicer
	Transactions services.TransactionServicer
	Ledger       services.LedgerServicer
	Analytics    services.AnalyticsServicer
}

// NewServices builds every service on db.
func NewServices(db *gorm.DB, bcryptCost int) Services {
	return Services{
		Users:        services.NewUserService(db, bcryptCost),
		Tokens:       services.NewAuthTokenService(db),
		Accounts:     services.NewBankAccountService(db),
		Categories:   services.NewCategoryService(db),
		Transactions: services.NewTransactionService(db),
		Ledger:       services.NewLedgerService(db),
		Analytics:    services.NewAnalyticsService(db),
	}
}

// Options configures NewRouter.
type Options struct {
	JWTSecret   string
	AdminAPIKey string
	// Ping reports database health for /api/health. Nil always reports ok.
	Ping func() error
}

// NewRouter registers every route on a new gin engine.
func NewRouter(svc Services, opts Options) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Accounts, svc.Tokens)
	accountHandler := handlers.NewAccountHandler(svc.Accounts, svc.Transactions)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions)
	ledgerHandler := handlers.NewLedgerHandler(svc.Ledger)
	analyticsHandler := handlers.NewAnalyticsHandler(svc.Analytics)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		if opts.Ping != nil {
			if err := opts.Ping(); err != nil {
				_ = c.Error(apperrors.Wrap(apperrors.ErrServiceUnavailable, err))
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(apperrors.ErrNotFound)
	})

	v1 := router.Group("/api/v1")

	// The category list is shared by every user
	categories := v1.Group("/categories")
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/counts", categoryHandler.GetCategoryCounts)
	categories.GET("/:id", categoryHandler.GetCategory)

	admin := v1.Group("/categories", middleware.AdminKeyMiddleware(opts.AdminAPIKey))
	admin.POST("", categoryHandler.CreateCategory)
	admin.POST("/setup", categoryHandler.SetupDefaultCategories)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(opts.JWTSecret, svc.Tokens))

	protected.POST("/auth/logout", authHandler.Logout)
	protected.GET("/profile", authHandler.GetProfile)
	protected.PUT("/profile", authHandler.UpdateProfile)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetAccounts)
	accounts.GET("/primary", accountHandler.GetPrimaryAccount)
	accounts.GET("/:id", accountHandler.GetAccount)
	accounts.PUT("/:id", accountHandler.UpdateAccount)
	accounts.DELETE("/:id", accountHandler.DeleteAccount)
	accounts.GET("/:id/transactions", accountHandler.GetAccountTransactions)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.GET("/summary", transactionHandler.GetCategorySummary)
	transactions.GET("/duplicates", transactionHandler.CheckDuplicate)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	ledger := protected.Group("/ledger")
	ledger.POST("/verify", ledgerHandler.VerifyLedger)
	ledger.POST("/upload", ledgerHandler.UploadLedger)
	ledger.GET("/export", ledgerHandler.ExportLedger)

	analytics := protected.Group("/analytics")
	analytics.GET("/top-spending", analyticsHandler.GetTopSpending)
	analytics.GET("/monthly-trend", analyticsHandler.GetMonthlyTrend)
	analytics.GET("/weekly-spending", analyticsHandler.GetWeeklySpending)
	analytics.GET("/income-expense", analyticsHandler.GetIncomeExpense)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key, "+middleware.RequestIDHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
