package main

import (
	"context"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"blog/internal/config"
	"blog/internal/db"
	"blog/internal/store"
	"blog/internal/tutorial"
)

var log *logrus.Logger

func init() {
	log = logrus.New()
	log.Formatter = &logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "severity",
			logrus.FieldKeyMsg:   "message",
		},
		TimestampFormat: time.RFC3339Nano,
	}
	// stdout carries the JSON dump.
	log.Out = os.Stderr
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel)

	conn, err := db.Open(cfg.Driver, cfg.Path, cfg.BusyTimeout)
	if err != nil {
		log.Fatalf("failed to open %s database %s: %v", cfg.Driver, cfg.Path, err)
	}
	st := store.New(conn, store.WithLogger(log), store.WithQueryLog(cfg.ShowQueries))
	log.WithFields(logrus.Fields{"driver": cfg.Driver, "path": cfg.Path}).Info("database open")

	runErr := tutorial.Run(context.Background(), st, os.Stdout, log)
	if err := st.Close(); err != nil {
		log.WithError(err).Warn("close failed")
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
