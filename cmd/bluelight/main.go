// Package main - operations log backend server
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alwitt/bluelight"
	"github.com/alwitt/bluelight/api"
	"github.com/alwitt/bluelight/config"
	"github.com/alwitt/bluelight/models"
	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/apex/log/handlers/json"
	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

type cliArgs struct {
	configFile  string
	listenAddr  string
	logLevel    string
	jsonLog     bool
	migrateOnly bool
}

func parseArgs() cliArgs {
	var args cliArgs
	pflag.StringVarP(&args.configFile, "config", "c", "", "YAML configuration file")
	pflag.StringVar(&args.listenAddr, "listen", "", "override http.listen_addr")
	pflag.StringVar(&args.logLevel, "log-level", "", "override log_level")
	pflag.BoolVar(&args.jsonLog, "json-log", false, "write logs as JSON")
	pflag.BoolVar(&args.migrateOnly, "migrate-only", false, "apply DB migrations, then exit")
	pflag.Parse()
	return args
}

func main() {
	args := parseArgs()

	if args.jsonLog {
		log.SetHandler(json.New(os.Stderr))
	} else {
		log.SetHandler(cli.New(os.Stderr))
	}

	cfg, err := config.Load(args.configFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}
	if args.listenAddr != "" {
		cfg.HTTP.ListenAddr = args.listenAddr
	}
	if args.logLevel != "" {
		cfg.LogLevel = args.logLevel
	}
	if args.migrateOnly {
		cfg.Database.MigrateOnStart = true
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Configuration rejected")
	}
	log.SetLevel(log.MustParseLevel(cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, args.migrateOnly); err != nil {
		log.WithError(err).Error("Service terminated with error")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, migrateOnly bool) error {
	logTags := log.Fields{"package": "bluelight", "module": "main"}

	components, err := bluelight.NewComponents(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := components.Persistence.Close(); err != nil {
			log.WithError(err).WithFields(logTags).Error("Failed to close DB connection")
		}
	}()
	if migrateOnly {
		log.WithFields(logTags).Info("DB migrations applied")
		return nil
	}

	authParams := api.AuthenticatorParams{
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		JWTIssuer: cfg.Auth.JWTIssuer,
	}
	if cfg.Auth.SystemActorEnabled {
		authParams.SystemActor = &models.Actor{
			ID: cfg.Auth.SystemActorID, Name: cfg.Auth.SystemActorName,
		}
		log.WithFields(logTags).
			WithField("actor", cfg.Auth.SystemActorID).
			Warn("Requests without a bearer token are attributed to the system actor")
	}
	authenticator, err := api.NewAuthenticator(authParams)
	if err != nil {
		return fmt.Errorf("failed to define authenticator [%w]", err)
	}

	entries, err := api.NewEntryHandler(
		components.Entries,
		cfg.Attachments.MaxUploadBytes,
		cfg.HTTP.RequestIDHeader,
		cfg.HTTP.LogRequestHeaders,
	)
	if err != nil {
		return fmt.Errorf("failed to define entry handler [%w]", err)
	}

	health := api.NewHealthHandler(map[string]api.ReadinessCheck{
		"database": func(ctx context.Context) error {
			return components.Persistence.RunSQLInTransaction(
				ctx, func(_ context.Context, tx *gorm.DB) error {
					return tx.Exec("SELECT 1").Error
				},
			)
		},
	}, 5*time.Second)

	router := api.BuildRouter(api.RouterParams{
		Entries:       entries,
		Health:        health,
		Authenticator: authenticator,
		MetricsPath:   cfg.HTTP.MetricsPath,
	})

	return api.NewServer(cfg.HTTP, router).Run(ctx)
}
