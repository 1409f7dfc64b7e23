package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "nft-marketplace-backend/docs"
	"nft-marketplace-backend/internal/common/config"
	"nft-marketplace-backend/internal/common/middleware"
	nfthttp "nft-marketplace-backend/internal/features/nft/delivery/http"
	nftservice "nft-marketplace-backend/internal/features/nft/service"
	userhttp "nft-marketplace-backend/internal/features/user/delivery/http"
	userservice "nft-marketplace-backend/internal/features/user/service"
)

const serviceName = "nft-marketplace-backend"

// HealthChecker is a dependency probed by /ready.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

func setupRouter(cfg *config.Config, userSvc userservice.UserService, nftSvc nftservice.NFTService, probes map[string]HealthChecker) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Errors())
	router.Use(middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes
	router.Static("/nfts", cfg.Server.UploadDir)
	router.Static("/avatars", cfg.Server.AvatarDir)

	api := router.Group("/api")
	userhttp.NewUserHandler(userSvc, cfg.Server.MaxUploadBytes).RegisterRoutes(api)
	nfthttp.NewNFTHandler(nftSvc, cfg.Server.MaxUploadBytes).RegisterRoutes(api)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		for name, probe := range probes {
			if err := probe.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   name + " unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now().UTC(),
			"service":   serviceName,
		})
	})

	return router
}
