package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	agenttransport "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/adapters/in/transport"
	agentamqp "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/adapters/out_amqp"
	agentws "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/adapters/out_ws"
	agentrepo "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/adapters/redisidx"
	agentpg "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/adapters/repo"
	agentusecase "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/application/usecase"
	billingtransport "github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/adapters/in/transport"
	billingrepo "github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/adapters/repo"
	billingusecase "github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/application/usecase"
	billingdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/providers"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/adapters/gateway"
	deliverytransport "github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/adapters/in/transport"
	deliveryamqp "github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/adapters/out_amqp"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/adapters/out_geo"
	deliveryws "github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/adapters/out_ws"
	deliveryrepo "github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/adapters/repo"
	deliveryusecase "github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/usecase"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing"
	pricingrepo "github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing/repo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/promo"
	promorepo "github.com/Fazlibeqir/DeliverXY-sub000/internal/promo/repo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/auth"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/cache"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/config"
	db_conn "github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/db"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/mq"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/ws"
)

const trackingNodeID = 1

// Запасная скорость для расчета ETA, когда тариф города недоступен
const avgSpeedKmh = 30

// Run собирает и запускает courier service целиком: инфраструктура,
// репозитории, use cases, адаптеры и HTTP сервер.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger) {
	log.Info(logger.Entry{Action: "courier_service_starting", Message: "initializing courier service"})

	// Инфраструктура: PostgreSQL, RabbitMQ, Redis, JWT
	dbPool, err := db_conn.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer db_conn.Close(dbPool, log)

	if err := db_conn.Migrate(ctx, dbPool, log); err != nil {
		log.Fatal(logger.Entry{
			Action:  "db_migration_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	mqConn, err := mq.NewRabbitMQ(ctx, cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "rabbitmq_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer mqConn.Close()

	if err := mq.SetupTopology(mqConn, log); err != nil {
		log.Fatal(logger.Entry{
			Action:  "rabbitmq_topology_setup_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	redisClient, err := cache.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "redis_connection_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}
	defer cache.Close(redisClient, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// WebSocket hub для real-time уведомлений клиентов и курьеров
	wsHub := ws.NewHub(jwtService.ExtractUserID, log)
	go wsHub.Run(ctx)

	// Репозитории
	pricingConfigs := pricingrepo.NewConfigPgRepository(dbPool, log)
	promoRepo := promorepo.NewPromoPgRepository(dbPool, log)
	agentRepo := agentpg.NewAgentPgRepository(dbPool, log)
	locationRepo := agentpg.NewLocationPgRepository(dbPool, log)
	deliveryRepo := deliveryrepo.NewDeliveryPgRepository(dbPool)
	historyRepo := deliveryrepo.NewHistoryPgRepository(dbPool)
	walletRepo := billingrepo.NewWalletPgRepository(dbPool, log)
	paymentRepo := billingrepo.NewPaymentPgRepository(dbPool, log)

	// Гео-индекс курьеров и исходящие адаптеры
	locationIndex := agentrepo.NewRedisLocationIndex(redisClient, log)
	agentEvents := agentamqp.NewAgentEventPublisher(mqConn, log)
	agentNotifier := agentws.NewWsAgentNotifier(wsHub, log)
	deliveryEvents := deliveryamqp.NewAmqpEventPublisher(mqConn, log)
	deliveryNotifier := deliveryws.NewWsDeliveryNotifier(wsHub, log)
	geocoder := out_geo.NewHTTPGeocoder(cfg.Geocoder)

	// Движки и сервисы
	pricingEngine := pricing.NewEngine(pricingConfigs, log)
	orderHistory := gateway.NewOrderHistory(deliveryRepo)
	promoEngine := promo.NewEngine(promoRepo, orderHistory, log)
	walletService := billingusecase.NewWalletService(walletRepo, log)

	registry := providers.NewRegistry()
	registry.Register(billingdomain.ProviderWallet, providers.NewWalletProvider(walletService, log))
	registry.Register(billingdomain.ProviderCash, providers.NewCashProvider(log))
	registry.Register(billingdomain.ProviderCard, providers.NewCardProvider(providers.NoopCardGateway{}, log))
	registry.Register(billingdomain.ProviderMock, providers.NewMockProvider())

	settlementService := billingusecase.NewSettlementService(paymentRepo, registry, log)

	matcher := agentusecase.NewMatcher(agentRepo, locationRepo, locationIndex, agentNotifier, cfg.Dispatch, log)

	// Шлюзы между контекстами
	billingGateway := gateway.NewBillingGateway(settlementService)
	pricingGateway := gateway.NewPricingGateway(pricingConfigs)
	agentGateway := gateway.NewAgentGateway(agentRepo, locationRepo)

	trackingPush := deliveryusecase.NewTrackingPushService(deliveryRepo, deliveryNotifier, avgSpeedKmh, log)

	// Use cases курьеров
	goOnlineUC := agentusecase.NewGoOnlineUseCase(agentRepo, locationRepo, locationIndex, agentEvents, log)
	goOfflineUC := agentusecase.NewGoOfflineUseCase(agentRepo, locationIndex, agentEvents, log)
	updateLocationUC := agentusecase.NewUpdateLocationUseCase(agentRepo, locationRepo, locationIndex, agentEvents, trackingPush, log)

	// Use cases доставок
	trackingCodes, err := deliveryusecase.NewTrackingCodes(trackingNodeID)
	if err != nil {
		log.Fatal(logger.Entry{
			Action:  "tracking_codes_init_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	createUC := deliveryusecase.NewCreateDeliveryService(
		deliveryRepo, historyRepo, geocoder, pricingEngine, promoEngine,
		billingGateway, matcher, deliveryEvents, deliveryNotifier, trackingCodes, log,
	)
	assignUC := deliveryusecase.NewAssignDeliveryService(
		deliveryRepo, historyRepo, agentGateway, matcher, deliveryEvents, deliveryNotifier, log,
	)
	updateStatusUC := deliveryusecase.NewUpdateStatusService(
		deliveryRepo, historyRepo, billingGateway, pricingGateway, deliveryEvents, deliveryNotifier, log,
	)
	trackUC := deliveryusecase.NewTrackDeliveryService(deliveryRepo, agentGateway, avgSpeedKmh, log)
	estimateUC := deliveryusecase.NewEstimateFareService(pricingEngine, promoEngine, log)
	listActiveUC := deliveryusecase.NewListActiveService(deliveryRepo, log)

	// HTTP
	mux := http.NewServeMux()

	// Health check без аутентификации
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok","service":"courier-service"}`))
	})

	agentHandler := agenttransport.NewHTTPHandler(goOnlineUC, goOfflineUC, updateLocationUC, log)
	agentHandler.RegisterRoutes(mux, agenttransport.JWTMiddleware(jwtService, log))

	deliveryHandler := deliverytransport.NewHTTPHandler(
		createUC, assignUC, updateStatusUC, trackUC, estimateUC, listActiveUC, log,
	)
	deliveryHandler.RegisterRoutes(mux, deliverytransport.JWTMiddleware(jwtService, log))

	billingHandler := billingtransport.NewHTTPHandler(walletService, settlementService, log)
	billingHandler.RegisterRoutes(mux, billingtransport.JWTMiddleware(jwtService, log))

	mux.HandleFunc("/ws", wsHub.ServeWS)

	addr := fmt.Sprintf(":%d", cfg.Service.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(logger.Entry{
			Action:  "http_server_starting",
			Message: fmt.Sprintf("listening on %s", addr),
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(logger.Entry{
				Action:  "http_server_failed",
				Message: err.Error(),
				Error:   &logger.ErrObj{Msg: err.Error()},
			})
		}
	}()

	<-ctx.Done()
	log.Info(logger.Entry{Action: "courier_service_stopping", Message: "shutting down courier service"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(logger.Entry{
			Action:  "http_server_shutdown_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
	}

	log.Info(logger.Entry{Action: "courier_service_stopped", Message: "courier service stopped"})
}
