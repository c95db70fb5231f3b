package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/fetch"
	"github.com/signagekit/tv-player/internal/identity"
	"github.com/signagekit/tv-player/internal/logger"
	"github.com/signagekit/tv-player/internal/platform"
	"github.com/signagekit/tv-player/internal/player"
	"github.com/signagekit/tv-player/internal/source"
	"github.com/signagekit/tv-player/internal/status"
	"github.com/signagekit/tv-player/internal/supervisor"
	"github.com/signagekit/tv-player/internal/visibility"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const defaultConfigPath = "tv-player.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to the configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "tv-player: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// Optional .env next to the binary; real environment wins.
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Infof("TV Player v%s starting", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := platform.EnsureDir(cfg.Drive.DownloadDir); err != nil {
		return fmt.Errorf("failed to prepare download directory: %w", err)
	}

	id, err := identity.NewResolver(cfg.Identity, log).Resolve(ctx)
	if err != nil {
		return err
	}

	var reporters []status.Reporter
	if cfg.Status.FirebaseDatabaseURL != "" {
		fb, err := status.NewFirebase(ctx, cfg.Status, id.Key(), log)
		if err != nil {
			log.WithError(err).Warn("Firebase reporting unavailable")
		} else {
			reporters = append(reporters, fb)
		}
	}
	if cfg.Status.MQTTBroker != "" {
		mq, err := status.NewMQTT(cfg.Status, id.Key(), log)
		if err != nil {
			log.WithError(err).Warn("MQTT reporting unavailable")
		} else {
			reporters = append(reporters, mq)
			defer mq.Close()
		}
	}

	vlc := player.NewVLC(cfg.Player, nil, log)
	if cfg.Player.ReapOnStart {
		player.ReapStray(ctx, log)
	}

	var enforcer visibility.Enforcer
	if cfg.Player.EnforceVisible {
		enforcer = visibility.NewExec(log)
	}

	sup := supervisor.New(
		cfg.Supervisor,
		id,
		source.NewDriveSource(cfg.Drive, log),
		fetch.NewDriveFetcher(cfg.Drive, log),
		vlc,
		enforcer,
		status.NewFanout(log, reporters...),
		log,
	)

	log.WithField("identity", id.Key()).Info("Supervisor starting")
	return sup.Run(ctx)
}
