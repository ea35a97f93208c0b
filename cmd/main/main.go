package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fincharts-viewer/src/auth"
	"fincharts-viewer/src/config"
	"fincharts-viewer/src/fincharts"
	"fincharts-viewer/src/interfaces"
	"fincharts-viewer/src/logger"
	"fincharts-viewer/src/network"
	"fincharts-viewer/src/realtime"
	"fincharts-viewer/src/server"
	"fincharts-viewer/src/storage"
	"fincharts-viewer/src/subscription"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file (credentials overridable via .env)
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 2. Token store (persists the bearer token across restarts)
	var store interfaces.ITokenStore

	switch config.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresStore(config.MConfig, appLogger)
	default:
		// Default to SQLite
		store, err = storage.NewAsyncSQLiteStore(config.MConfig, appLogger)
	}

	if err != nil {
		appLogger.Critical("Failed to init token store: %v", err)
	}
	if err := store.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate token store: %v", err)
	}
	defer store.Close()

	// 3. Data-access layer
	netMgr := network.NewAsyncNetworkManager(config.MConfig, logger.NewLogger(config.LogLevel, "Network"))
	session := auth.NewSession(config.MConfig, netMgr, store, logger.NewLogger(config.LogLevel, "AuthSession"))
	client := fincharts.NewClient(config.MConfig, netMgr, session, logger.NewLogger(config.LogLevel, "Fincharts"))

	// 4. No persisted token yet: log in up front so the first subscribe
	// does not have to go through the 401 path.
	if session.AccessToken() == "" {
		appLogger.Info("No persisted token, acquiring one...")
		if _, err := session.AcquireToken(); err != nil {
			appLogger.Critical("Initial token exchange failed: %v", err)
		}
	}

	// 5. Viewer server + subscription controller
	srv := server.NewViewerServer(config.MConfig, client, logger.NewLogger(config.LogLevel, "ViewerServer"))

	factory := func() interfaces.IRealtimeChannel {
		return realtime.NewChannel(config.MConfig, session.AccessToken, logger.NewLogger(config.LogLevel, "RealtimeChannel"))
	}
	controller := subscription.NewController(client, factory, srv, srv, logger.NewLogger(config.LogLevel, "SubscriptionController"))
	srv.AttachController(controller)

	// 6. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Viewer is up. Subscribe via POST /api/subscription or the /ws hub.")

	<-quit
	appLogger.Info("Shutting down...")
	controller.Close()
	srv.Stop()
}
