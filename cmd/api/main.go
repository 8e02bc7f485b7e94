package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"

	"chefsnap/internal/api"
	"chefsnap/internal/app"
	"chefsnap/internal/config"
	"chefsnap/internal/imageutil"
	"chefsnap/internal/kv"
	"chefsnap/internal/logger"
	"chefsnap/internal/platform"
	"chefsnap/internal/recipe"
	"chefsnap/internal/user"
)

func main() {
	ctx := context.Background()

	configPath := os.Getenv("CHEFSNAP_CONFIG")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.ParseLevel(cfg.LogLevel), os.Stderr)

	generator, err := platform.NewGenerator(ctx, cfg, log)
	if err != nil {
		panic(err)
	}
	defer generator.Close()

	db, err := kv.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Errorf("error opening storage: %w", err))
	}
	defer db.Close()

	a, err := newApp(ctx, db, generator, imageutil.NewDiskSink(cfg.ImagesDir, "/images"), log)
	if err != nil {
		panic(err)
	}

	r := setupRouter(a, cfg, log)
	log.Info("listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Error("server stopped: %v", err)
		os.Exit(1)
	}
}

// newApp restores the stored recipes and session and builds the App.
func newApp(ctx context.Context, db kv.Store, gen app.Generator, images app.ImageSink, log *logger.Logger) (*app.App, error) {
	store := recipe.NewStore(db, recipe.WithLogger(log))
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	session := user.NewSession(db, log)
	if err := session.Load(ctx); err != nil {
		return nil, err
	}
	return app.New(store, session, gen, images, log), nil
}

func setupRouter(a *app.App, cfg config.Config, log *logger.Logger) *gin.Engine {
	handler := api.NewHandler(a, log)
	return api.NewRouter(handler, api.RouterConfig{
		AllowOrigins: cfg.CORSOrigins,
		ImagesDir:    cfg.ImagesDir,
	})
}
