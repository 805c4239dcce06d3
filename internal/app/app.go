// Package app собирает зависимости сервиса: хранилище, сценарии, обработчики и роутер.
package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/gigflow/internal/config"
	"github.com/ignatzorin/gigflow/internal/domain/event"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/http/router"
	"github.com/ignatzorin/gigflow/internal/infrastructure/memory"
	"github.com/ignatzorin/gigflow/internal/infrastructure/persistence"
	"github.com/ignatzorin/gigflow/internal/interface/http/handler"
	"github.com/ignatzorin/gigflow/internal/service"
	"github.com/ignatzorin/gigflow/internal/usecase/bid"
	"github.com/ignatzorin/gigflow/internal/usecase/gig"
	"github.com/ignatzorin/gigflow/internal/ws"
)

// Storage - набор репозиториев одного драйвера.
type Storage struct {
	Name  string
	Gigs  repository.GigRepository
	Bids  repository.BidRepository
	Users repository.UserRepository
	Tx    repository.TxManager
	// DB проверяется в /health; nil для хранилища в памяти.
	DB handler.Pinger
}

func NewMemoryStorage() Storage {
	store := memory.NewStore()
	return Storage{
		Name:  config.StorageDriverMemory,
		Gigs:  store.Gigs(),
		Bids:  store.Bids(),
		Users: store.Users(),
		Tx:    store,
	}
}

func NewPostgresStorage(db *sqlx.DB, statementTimeout time.Duration) Storage {
	return Storage{
		Name:  config.StorageDriverPostgres,
		Gigs:  persistence.NewGigRepositoryAdapter(db),
		Bids:  persistence.NewBidRepositoryAdapter(db),
		Users: persistence.NewUserRepositoryAdapter(db),
		Tx:    persistence.NewTxManager(db, statementTimeout),
		DB:    db,
	}
}

// Server - собранное приложение.
type Server struct {
	Engine *gin.Engine
	Tokens *service.TokenManager
	Hire   *bid.HireBidUseCase
}

// NewServer связывает сценарии с хранилищем и каналом уведомлений.
// dispatcher доставляет событие "hired"; hub обслуживает WebSocket подключения.
func NewServer(cfg *config.Config, storage Storage, dispatcher event.Dispatcher, hub *ws.Hub) *Server {
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authService := service.NewAuthService(storage.Users, tokens)

	hire := bid.NewHireBidUseCase(storage.Tx, storage.Bids, dispatcher)

	handlers := router.Handlers{
		Auth: handler.NewAuthHandler(authService),
		Gig: handler.NewGigHandler(
			gig.NewCreateGigUseCase(storage.Gigs),
			gig.NewGetGigUseCase(storage.Gigs),
			gig.NewListGigsUseCase(storage.Gigs),
			gig.NewListMyGigsUseCase(storage.Gigs),
			gig.NewUpdateGigUseCase(storage.Gigs),
			gig.NewDeleteGigUseCase(storage.Gigs),
		),
		Bid: handler.NewBidHandler(
			bid.NewSubmitBidUseCase(storage.Bids, storage.Gigs),
			hire,
			bid.NewListGigBidsUseCase(storage.Bids, storage.Gigs),
			bid.NewListMyBidsUseCase(storage.Bids),
		),
		WS:     handler.NewWSHandler(hub, tokens, cfg.AllowedOrigins),
		Health: handler.NewHealthHandler(storage.DB, storage.Name),
	}

	return &Server{
		Engine: router.SetupRouter(cfg, handlers, tokens),
		Tokens: tokens,
		Hire:   hire,
	}
}
