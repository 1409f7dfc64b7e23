package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nft-marketplace-backend/internal/common/cache"
	"nft-marketplace-backend/internal/common/config"
	"nft-marketplace-backend/internal/common/logger"
	nftrepo "nft-marketplace-backend/internal/features/nft/repository"
	nftcached "nft-marketplace-backend/internal/features/nft/repository/cached"
	nftpg "nft-marketplace-backend/internal/features/nft/repository/postgres"
	nftredis "nft-marketplace-backend/internal/features/nft/repository/redis"
	nftservice "nft-marketplace-backend/internal/features/nft/service"
	"nft-marketplace-backend/internal/features/nft/storage"
	userrepo "nft-marketplace-backend/internal/features/user/repository"
	userpg "nft-marketplace-backend/internal/features/user/repository/postgres"
	userredis "nft-marketplace-backend/internal/features/user/repository/redis"
	userservice "nft-marketplace-backend/internal/features/user/service"
	"nft-marketplace-backend/internal/platform/chain"
	"nft-marketplace-backend/internal/platform/postgres"
	"nft-marketplace-backend/internal/platform/redis"
)

// @title           NFT Marketplace API
// @version         1.0
// @description     Wallet login, NFT listings and purchase confirmation.

// @host      localhost:5001
// @BasePath  /api

// @tag.name auth
// @tag.description Wallet login

// @tag.name users
// @tag.description Registered wallets

// @tag.name nft
// @tag.description NFT creation, lookup and purchase

type stores struct {
	users  userrepo.UserRepository
	nfts   nftrepo.NFTRepository
	probes map[string]HealthChecker
	close  func()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Init("nft-marketplace-api", false)
		logger.Fatal().Err(err).Msg("Failed to load config")
	}
	logger.Init("nft-marketplace-api", cfg.Debug)

	logger.Info().
		Bool("debug", cfg.Debug).
		Str("store", cfg.Store.Driver).
		Msg("Starting NFT marketplace backend")

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer st.close()

	var verifier nftservice.TransferVerifier
	if cfg.Chain.RPCURL != "" {
		v, err := chain.Dial(ctx, cfg.Chain.RPCURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to chain RPC")
		}
		defer v.Close()
		verifier = v
		logger.Info().Msg("On-chain purchase verification enabled")
	}

	userSvc := userservice.NewUserService(st.users, storage.NewImageStore(cfg.Server.AvatarDir, "/avatars"))
	nftSvc := nftservice.NewNFTService(st.nfts, storage.NewImageStore(cfg.Server.UploadDir, "/nfts"), verifier)

	router := setupRouter(cfg, userSvc, nftSvc, st.probes)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	logger.Info().Msg("Server exited")
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StorePostgres:
		pg, err := postgres.NewClient(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.AutoMigrate {
			if err := pg.Migrate(ctx); err != nil {
				pg.Close()
				return nil, err
			}
		}
		st := &stores{
			users:  userpg.NewPostgresRepository(pg.Pool()),
			nfts:   nftpg.NewPostgresRepository(pg.Pool()),
			probes: map[string]HealthChecker{"postgres": pg},
			close:  pg.Close,
		}
		if !cfg.Cache.Enabled {
			return st, nil
		}

		rdb, err := redis.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			pg.Close()
			return nil, err
		}
		st.nfts = nftcached.NewCachedRepository(st.nfts, cache.NewCacheService(rdb.Client), cfg.Cache.TTL)
		st.probes["redis"] = rdb
		st.close = func() {
			_ = rdb.Close()
			pg.Close()
		}
		return st, nil
	default:
		rdb, err := redis.Open(ctx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  userredis.NewUserRepository(rdb.Client),
			nfts:   nftredis.NewRedisNFTRepository(rdb.Client),
			probes: map[string]HealthChecker{"redis": rdb},
			close:  func() { _ = rdb.Close() },
		}, nil
	}
}
