package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/lilypad-dao/lilypad/core"
	"github.com/lilypad-dao/lilypad/core/content"
	"github.com/lilypad-dao/lilypad/core/user"
	logsvc "github.com/lilypad-dao/lilypad/services/logger"
	"github.com/lilypad-dao/lilypad/storage/database"
	boiledrepos "github.com/lilypad-dao/lilypad/storage/database/sqlboiler"
	sqlxrepos "github.com/lilypad-dao/lilypad/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()

	zapLogger, err := logsvc.NewZapLogger("admin", conf.Debug)
	if err != nil {
		log.Fatalf("main: building logger: %v", err)
	}
	logger := logsvc.NewRollbarLogger(zapLogger, conf)
	logger.Enable(false)

	// set up DB
	if err = database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("creating database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	if err = database.Ping(db); err != nil {
		logger.Fatal("pinging database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	content.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		db:         db,
		conf:       conf,
		out:        os.Stdout,
		validate:   validate,
		usrSvc:     user.NewService(boiledrepos.NewUserRepository(db), logger, conf),
		contentSvc: content.NewService(sqlxrepos.NewContentRepository(db), nil, logger, conf),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	_ = zapLogger.Sync()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
