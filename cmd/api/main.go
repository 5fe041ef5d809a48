package main

import (
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/JamalC77/chaosstickers-backend/internal/config"
	"github.com/JamalC77/chaosstickers-backend/internal/domain/model"
	"github.com/JamalC77/chaosstickers-backend/internal/fulfillment"
	"github.com/JamalC77/chaosstickers-backend/internal/handler"
	"github.com/JamalC77/chaosstickers-backend/internal/infra/db"
	infraRepo "github.com/JamalC77/chaosstickers-backend/internal/infra/repository"
	"github.com/JamalC77/chaosstickers-backend/internal/notification"
	"github.com/JamalC77/chaosstickers-backend/internal/payment"
	"github.com/JamalC77/chaosstickers-backend/internal/usecase"
)

func main() {
	// ローカルでは.envから環境変数を読む（無ければ無視）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&model.Customer{},
		&model.GeneratedImage{},
		&model.Order{},
		&model.OrderItem{},
	); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	//Repository（GORM実装）生成
	orderRepo := infraRepo.NewOrderGormRepository(gormDB)
	orderItemRepo := infraRepo.NewOrderItemGormRepository(gormDB)
	customerRepo := infraRepo.NewCustomerGormRepository(gormDB)
	imageRepo := infraRepo.NewGeneratedImageGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//外部サービスのクライアント
	verifier := payment.NewVerifier(cfg.StripeWebhookSecret)
	checkoutClient := payment.NewCheckoutClient(cfg.StripeSecretKey)
	vendorClient := fulfillment.NewClient(cfg.PrintifyAPIKey, cfg.PrintifyShopID, cfg.PrintifyAPIURL)
	emailSender := notification.NewEmailSender(cfg.ResendAPIKey)

	//Usecase生成
	fulfillmentUC := usecase.NewFulfillmentUsecase(
		txManager, orderRepo, customerRepo, imageRepo, vendorClient, emailSender, cfg.FEURL,
	)
	orderUC := usecase.NewOrderUsecase(orderRepo, orderItemRepo, customerRepo, vendorClient, checkoutClient)

	//Handler生成とルーティング
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handler.NewWebhookHandler(verifier, fulfillmentUC, orderUC).RegisterRoutes(e)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e)
	handler.NewCheckoutHandler(imageRepo, checkoutClient, cfg.FEURL).RegisterRoutes(e)
	handler.NewImageHandler(imageRepo).RegisterRoutes(e)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]bool{"ok": true})
	})

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	log.Fatalf("server: %v", e.Start(addr))
}
