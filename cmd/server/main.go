package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"kle_back_end/internal/cache"
	"kle_back_end/internal/config"
	"kle_back_end/internal/database"
	"kle_back_end/internal/handlers"
	"kle_back_end/internal/middleware"
	"kle_back_end/internal/routes"
	"kle_back_end/internal/services"
	"kle_back_end/internal/store"
	"kle_back_end/internal/store/memory"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration invalide: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Connexion aux bases impossible: %v", err)
	}
	defer conns.Close()

	stores, err := buildStores(cfg, conns)
	if err != nil {
		log.Fatalf("❌ Initialisation des stores impossible: %v", err)
	}

	opts := routes.Options{
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}
	if conns.Redis != nil {
		stores.Products = cache.NewProducts(stores.Products, conns.Redis)
		opts.LoginLimiter = cache.NewLimiter(conns.Redis, "login", middleware.LoginMaxAttempts, middleware.LoginCooldown)
		opts.RegisterLimiter = cache.NewLimiter(conns.Redis, "register", middleware.RegisterMaxAttempts, middleware.RegisterCooldown)
		log.Println("✅ Cache produits et rate limiting Redis activés")
	}

	var images services.ImageResolver
	if conns.MinIO != nil {
		images = services.NewMinioImages(conns.MinIO, cfg.MinIO.Bucket, cfg.MinIO.URLExpiry)
	}

	auth := services.NewAuthService(stores.Users, []byte(cfg.JWTSecret), cfg.TokenTTL)
	h := handlers.New(
		auth,
		services.NewCatalogService(stores.Products, auth, images),
		services.NewCartService(stores, auth, images),
		conns,
	)

	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	routes.RegisterRoutes(r, h, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Println("🚀 Serveur KLE lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur arrêté: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Arrêt forcé: %v", err)
	}
}

func buildStores(cfg *config.Config, conns *database.Connections) (store.Stores, error) {
	if cfg.StoreBackend == config.BackendMemory {
		log.Println("⚠️ Backend mémoire : les données sont perdues à l'arrêt")
		return memory.NewStore().Stores(), nil
	}
	return conns.ScyllaStores()
}
