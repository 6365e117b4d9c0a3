// Package main API Server 入口
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"qa-server/internal/apiserver/auth"
	"qa-server/internal/apiserver/common"
	"qa-server/internal/apiserver/server"
	"qa-server/internal/config"
	"qa-server/internal/shared/infra"
	"qa-server/pkg/logging"
)

func main() {
	configDirFlag := flag.String("config", "", "配置文件目录（或 YAML 文件路径）")
	flag.Parse()

	if *configDirFlag != "" {
		dir := *configDirFlag
		// 支持直接指定 YAML 文件路径
		if strings.HasSuffix(dir, ".yaml") || strings.HasSuffix(dir, ".yml") {
			dir = filepath.Dir(dir)
		}
		config.SetConfigDir(dir)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    "stdout",
		Component: "apiserver",
	})
	logger.Info("Starting API Server", "env", cfg.Env, "config_file", cfg.ConfigFilePath)
	log.Printf("Config: %s", cfg.String())

	infrastructure, err := infra.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer infrastructure.Close()

	var schemas *common.Schemas
	if cfg.OpenAPI.Validate {
		schemas, err = common.EmbeddedSchemas(context.Background())
		if err != nil {
			log.Fatalf("Failed to load OpenAPI document: %v", err)
		}
	}

	store := infrastructure.Storage
	authenticator := auth.NewAuthenticator(auth.Config{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	}, store, store)

	h := server.NewHandler(server.Deps{
		Store:   store,
		Auth:    authenticator,
		Schemas: schemas,
		Paging: common.Paging{
			DefaultLimit: cfg.Pagination.DefaultLimit,
			MaxLimit:     cfg.Pagination.MaxLimit,
		},
		Logger: logger.Named("http"),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.WithError(err).Error("Server shutdown error")
		}
	}()

	logger.Info("API Server listening", "addr", srv.Addr, "token_store", cfg.Auth.TokenStore)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
