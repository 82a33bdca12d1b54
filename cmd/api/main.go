// @title           DocRAG API
// @version         1.0
// @description     Document ingestion, vector search and retrieval augmented chat.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/DocRAG/internal/app"
	"github.com/akolanti/DocRAG/internal/config"
	"github.com/akolanti/DocRAG/internal/data/fileStore"
	"github.com/akolanti/DocRAG/internal/handlers"
	"github.com/akolanti/DocRAG/internal/middleware"
	"github.com/akolanti/DocRAG/internal/server"
	"github.com/akolanti/DocRAG/pkg/logger_i"
)

//run redis
//docker run -p 6379:6379 -d redis

//run qdrant (answer cache)
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g cmd/api/main.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs

var (
	listenAddr string
	configPath string
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address (overrides config)")
	flag.StringVar(&configPath, "config", "docrag.yaml", "path to the YAML config file")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.Server.ListenAddr = listenAddr
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	stack, err := app.Build(serviceContext, settings)
	if err != nil {
		logger.Error("Retrieval stack failed to initialize. Shutting down.", "error", err)
		os.Exit(1)
	}

	files, err := fileStore.New(settings.Server.UploadDir)
	if err != nil {
		logger.Error("Upload directory unavailable", "error", err)
		stack.Close()
		os.Exit(1)
	}

	if settings.Server.AuthToken == "" {
		logger.Warn("No auth token configured, the API is open")
	}
	router := server.NewRouter(
		handlers.NewHandler(stack.Service, files),
		middleware.New(middleware.Options{AuthToken: settings.Server.AuthToken, RateLimit: settings.Server.RateLimit}),
	)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices: func() {
			stack.Close()
			closeExternalServices()
		},
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.Server.ListenAddr, router)

	<-stopExecution
	logger.Info("Server stopped")
}
