package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"auction-house/internal/auth"
	"auction-house/internal/blockchain"
	"auction-house/internal/config"
	"auction-house/internal/database"
	"auction-house/internal/handlers"
	"auction-house/internal/jobs"
	"auction-house/internal/repository"
	"auction-house/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize Solana client and the auction program reader
	solanaClient := blockchain.NewSolanaClient(
		cfg.Solana.Network,
		cfg.Solana.AuctionProgramID,
		cfg.Solana.ServerWalletPrivateKey,
	)
	auctionLedger, err := blockchain.NewAuctionLedger(solanaClient)
	if err != nil {
		log.Fatalf("Failed to initialize auction ledger: %v", err)
	}

	// Initialize services
	locks := services.NewAuctionLocks()
	priceService := services.NewPriceService(cfg.Oracle.BaseURL, cfg.Oracle.StablecoinAddress)
	notificationService := services.NewNotificationService(cfg.Push.Endpoint, cfg.Push.APIKey)
	xpService := services.NewXPService(repo)
	rewardsService := services.NewRewardsService(repo, notificationService)
	authService := services.NewAuthService(repo)
	userService := services.NewUserService(repo, xpService)
	auctionService := services.NewAuctionService(repo, xpService)
	bidService := services.NewBidService(repo, priceService, rewardsService, xpService, notificationService, locks)
	settlementService := services.NewSettlementService(repo, priceService, xpService, notificationService, auctionLedger, locks)
	deliveryService := services.NewDeliveryService(repo, xpService, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	auctionHandler := handlers.NewAuctionHandler(auctionService, bidService, settlementService, auctionLedger)
	rewardsHandler := handlers.NewRewardsHandler(rewardsService, xpService)
	deliveryHandler := handlers.NewDeliveryHandler(deliveryService)

	// Start the auction closer job (settles expired auctions every minute)
	closerJob := jobs.NewAuctionCloser(settlementService, repo, auctionLedger, time.Minute)
	go closerJob.Start()

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.App.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.App.FrontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
	}

	// Authenticated /auth/me route
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
	}

	// Public auction routes
	router.GET("/api/auctions", auctionHandler.ListAuctions)
	router.GET("/api/auctions/chain/:chainId", auctionHandler.GetAuctionByChainID)
	router.GET("/api/auctions/:id", auctionHandler.GetAuction)
	router.GET("/api/leaderboard/weekly", rewardsHandler.WeeklyLeaderboard)
	router.GET("/api/leaderboard/xp", rewardsHandler.XPLeaderboard)

	// API routes (protected)
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		// User endpoints
		userRoutes := api.Group("/user")
		{
			userRoutes.GET("/profile", userHandler.GetProfile)
		}

		// Auction endpoints (protected)
		api.POST("/auctions", auctionHandler.CreateAuction)
		api.POST("/auctions/:id/bids", auctionHandler.PlaceBid)
		api.POST("/auctions/:id/settle", auctionHandler.Settle)

		// Delivery and review endpoints (protected)
		api.POST("/auctions/:id/delivered", deliveryHandler.MarkDelivered)
		api.POST("/auctions/:id/review", deliveryHandler.SubmitReview)

		// Weekly rewards endpoints (protected)
		api.GET("/rewards/entries", rewardsHandler.GetMyEntries)
		api.POST("/rewards/entries/:id/claim", rewardsHandler.Claim)
	}

	// Worker routes (shared-token auth, no user identity)
	worker := router.Group("/worker")
	worker.Use(auth.WorkerMiddleware(cfg.App.WorkerToken))
	{
		worker.POST("/auctions/:id/settle", auctionHandler.SettleAsWorker)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)
		log.Printf("Wallet auth: POST http://localhost:%s/auth/wallet", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	closerJob.Stop()

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
