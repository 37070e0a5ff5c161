package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/MikeMC777/checkout-ecom/internal/checkout"
	"github.com/MikeMC777/checkout-ecom/internal/config"
	"github.com/MikeMC777/checkout-ecom/internal/httpx"
	"github.com/MikeMC777/checkout-ecom/internal/notify"
	"github.com/MikeMC777/checkout-ecom/internal/order"
	"github.com/MikeMC777/checkout-ecom/internal/payment"
	"github.com/MikeMC777/checkout-ecom/internal/shipping"
)

//	@title			Checkout Service API
//	@version		1.0
//	@description	Payment verification, order fulfillment and cancellation.

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	pool, err := pgxpool.New(context.Background(), cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	repo := order.NewPGRepo(pool)
	verifier := payment.NewVerifier(cfg.RazorpayKeySecret)
	payments := payment.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, logger)
	gateway := shipping.NewClient(cfg.ShiprocketBaseURL, cfg.ShiprocketEmail, cfg.ShiprocketPassword, shipping.NewTokenCache(), logger)
	mailer := notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.OwnerEmail, logger)
	svc := checkout.NewService(verifier, repo, gateway, mailer, logger)

	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger(logger))
	registerRoutes(r, svc, payments, repo)

	logger.Info("checkout-service listening", zap.String("addr", cfg.Addr))
	if err := r.Run(cfg.Addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func registerRoutes(r *gin.Engine, svc *checkout.Service, payments intentCreator, repo order.Repository) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.POST("/payments/intent", createPaymentIntentHandler(payments))
	r.POST("/checkout", checkoutHandler(svc))
	r.POST("/orders/cancel", cancelOrderHandler(svc))
	r.GET("/orders/user/:userId", listUserOrdersHandler(repo))
	r.GET("/orders/:id", getOrderHandler(repo))
	r.PATCH("/orders/:id/status", updateOrderStatusHandler(repo))
}
