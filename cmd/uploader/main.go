package main

import (
	"context"
	"database/sql"
	"flag"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/kafkaaudit"
	"github.com/greator25/Ievolve-mvp1.0/internal/adapters/observability"
	"github.com/greator25/Ievolve-mvp1.0/internal/app"
	"github.com/greator25/Ievolve-mvp1.0/internal/shared"
	mysqlrepo "github.com/greator25/Ievolve-mvp1.0/internal/storage/mysql"
)

// Batch loader for the pipe-separated sheets the event office produces.
// Hotels go first so participant rows can resolve their bookings.
func main() {
	var (
		hotelsPath  = flag.String("hotels", "", "hotel sheet (.psv)")
		coachesPath = flag.String("coaches", "", "coach/official sheet (.psv)")
		playersPath = flag.String("players", "", "player sheet (.psv)")
		user        = flag.String("user", "uploader", "user id recorded in the audit trail")
	)
	flag.Parse()

	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	if *hotelsPath == "" && *coachesPath == "" && *playersPath == "" {
		log.Fatal().Msg("nothing to do: pass -hotels, -coaches and/or -players")
	}

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	if err := mysqlrepo.ApplySchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("schema apply failed")
	}

	repo := mysqlrepo.New(db)
	audit := app.MultiSink{mysqlrepo.NewAuditSink(repo)}
	if cfg.KafkaBrokers != "" {
		pub := kafkaaudit.New(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		defer pub.Close()
		audit = append(audit, pub)
	}
	uploads := app.NewUploadService(repo, repo, audit)

	run := func(sheet, path string, do func(context.Context, string, string) app.UploadResult) {
		if path == "" {
			return
		}
		content, err := os.ReadFile(path)
		if err != nil {
			log.Fatal().Str("sheet", sheet).Str("path", path).Err(err).Msg("read sheet failed")
		}
		res := do(ctx, string(content), *user)
		ev := log.Info()
		if !res.Success {
			ev = log.Warn()
		}
		ev.Str("sheet", sheet).
			Int("created", res.Created).
			Int("errors", len(res.Errors)).
			Int("warnings", len(res.Warnings)).
			Msg("sheet processed")
		for _, e := range res.Errors {
			log.Warn().Str("sheet", sheet).Msg(e)
		}
		for _, w := range res.Warnings {
			log.Info().Str("sheet", sheet).Msg(w)
		}
	}

	run("hotels", *hotelsPath, uploads.ImportHotels)
	run("coaches", *coachesPath, uploads.ImportCoaches)
	run("players", *playersPath, uploads.ImportPlayers)

	log.Info().Msg("upload completed")
}
