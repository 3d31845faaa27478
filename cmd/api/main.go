package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "github.com/greator25/Ievolve-mvp1.0/internal/adapters/httpserver"
	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/kafkaaudit"
	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/observability"
	redisad "github.com/greator25/Ievolve-mvp1.0/internal/adapters/redis"
	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/sms"
	"github.com/greator25/Ievolve-mvp1.0/internal/app"
	"github.com/greator25/Ievolve-mvp1.0/internal/domain"
	"github.com/greator25/Ievolve-mvp1.0/internal/shared"
	mysqlrepo "github.com/greator25/Ievolve-mvp1.0/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if err := mysqlrepo.ApplySchema(context.Background(), db); err != nil {
		log.Fatal().Err(err).Msg("schema apply failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	var notifier domain.Notifier = sms.Drop{}
	if cfg.SMSGatewayURL != "" {
		c, err := sms.New(cfg.SMSGatewayURL, cfg.SMSAPIKey, cfg.SMSRPS, cfg.SMSWorkers)
		if err != nil {
			log.Fatal().Err(err).Msg("sms client init failed")
		}
		notifier = c
	}

	audit := app.MultiSink{mysqlrepo.NewAuditSink(repo)}
	if cfg.KafkaBrokers != "" {
		pub := kafkaaudit.New(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		defer pub.Close()
		audit = append(audit, pub)
	}

	hotels := app.NewHotelService(repo, audit, cache)
	queries := app.NewQueryService(repo, repo, cache, cfg.CacheTTL)
	uploads := app.NewUploadService(repo, repo, audit)
	checkin := app.NewCheckinService(repo, notifier, audit)
	otp := app.NewOTPService(cache, notifier, repo, cfg.OTPTTL)

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(server.NewHandlers(hotels, queries, uploads, checkin, otp))

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
