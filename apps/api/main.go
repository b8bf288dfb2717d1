package main

import (
	"context"
	"database/sql"
	"expvar"
	"flag"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/lilypad-dao/lilypad/apps/api/echo"
	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/treasury"
	"github.com/lilypad-dao/lilypad/core/user"
	"github.com/lilypad-dao/lilypad/services/cache"
	"github.com/lilypad-dao/lilypad/services/ethrpc"
	logsvc "github.com/lilypad-dao/lilypad/services/logger"
	"github.com/lilypad-dao/lilypad/storage/database"
	inmemdb "github.com/lilypad-dao/lilypad/storage/database/inmem"
	boiledrepos "github.com/lilypad-dao/lilypad/storage/database/sqlboiler"
	sqlxrepos "github.com/lilypad-dao/lilypad/storage/database/sqlx"
)

func main() {
	inmem := flag.Bool("inmem", false, "serve from an empty in-memory database instead of Postgres")
	flag.Parse()

	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	zapLogger, err := logsvc.NewZapLogger("api", conf.Debug)
	if err != nil {
		log.Fatalf("main: building logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	logger := logsvc.NewRollbarLogger(zapLogger, conf)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(zapLogger.Named("db"), conf)

	// set up repositories
	var (
		contentRepo content.Repository
		usrRepo     user.Repository
	)
	if *inmem {
		db := inmemdb.Open()
		contentRepo = inmemdb.NewContentRepository(db)
		usrRepo = inmemdb.NewUserRepository(db)
	} else {
		db, err := setUpDB(conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()
		contentRepo = sqlxrepos.NewContentRepository(db)
		usrRepo = boiledrepos.NewUserRepository(db)
	}

	// set up cache
	var appCache core.Cache
	if conf.Redis.Addr != "" {
		client, err := cache.NewRedisClient(context.Background(), conf.Redis)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up cache: %v", err), err)
		}
		defer func() { _ = client.Close() }()
		appCache = cache.NewRedisCache(client, "lilypad:")
	}

	// set up services
	var balances treasury.BalanceReader
	if conf.Treasury.RPCURL != "" {
		rpc, err := ethrpc.NewClient(context.Background(), conf.Treasury.RPCURL, conf.Treasury.Timeout, logger)
		if err != nil {
			logger.Fatal(fmt.Sprintf("setting up rpc client: %v", err), err)
		}
		defer rpc.Close()
		balances = rpc
	} else if conf.Treasury.Address != "" {
		logger.Warn("treasury address set without an rpc url, the treasury value will read 0")
	}
	contentSvc := content.NewService(contentRepo, appCache, logger, conf)
	usrSvc := user.NewService(usrRepo, logger, conf)
	treasurySvc := treasury.NewService(balances, appCache, logger, conf)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	content.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      logger,
			ContentSvc:  contentSvc,
			UserSvc:     usrSvc,
			TreasurySvc: treasurySvc,
			Validate:    validate,
			Translator:  translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
