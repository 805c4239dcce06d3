package router

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/gigflow/internal/config"
	"github.com/ignatzorin/gigflow/internal/http/middleware"
	"github.com/ignatzorin/gigflow/internal/interface/http/handler"
)

// Handlers - все обработчики HTTP API.
type Handlers struct {
	Auth   *handler.AuthHandler
	Gig    *handler.GigHandler
	Bid    *handler.BidHandler
	WS     *handler.WSHandler
	Health *handler.HealthHandler
}

func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", h.Health.Health)

	api := r.Group("/api")
	auth := middleware.AuthMiddleware(tokens)
	writeLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod), h.Auth.Register)
		authGroup.POST("/login", middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod), h.Auth.Login)
		authGroup.GET("/me", auth, h.Auth.Me)
	}

	gigs := api.Group("/gigs")
	{
		gigs.GET("", h.Gig.ListGigs)
		gigs.GET("/my/posted", auth, h.Gig.ListMyGigs)
		gigs.GET("/:id", middleware.UUIDValidator("id"), h.Gig.GetGig)
		gigs.POST("", auth, h.Gig.CreateGig)
		gigs.PUT("/:id", auth, middleware.UUIDValidator("id"), h.Gig.UpdateGig)
		gigs.DELETE("/:id", auth, middleware.UUIDValidator("id"), h.Gig.DeleteGig)
	}

	bids := api.Group("/bids", auth)
	{
		bids.POST("", writeLimit, h.Bid.SubmitBid)
		bids.GET("/my/bids", h.Bid.ListMyBids)
		bids.GET("/:gigId", middleware.UUIDValidator("gigId"), h.Bid.ListGigBids)
		bids.PATCH("/:bidId/hire", writeLimit, middleware.UUIDValidator("bidId"), h.Bid.HireBid)
	}

	api.GET("/ws", h.WS.Handle)

	return r
}
