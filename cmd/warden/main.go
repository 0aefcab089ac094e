package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "warden",
		Usage:   "trigger evaluation daemon (keeps the halls quiet)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "discord-token",
			Usage:    "bot token for the gateway connection",
			Required: true,
			EnvVars:  []string{"DISCORD_TOKEN"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection for shared spam windows and trigger configs (eg, redis://localhost:6379/0)",
			EnvVars: []string{"WARDEN_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "sqlite path for the recent-message store; empty disables message persistence",
			Value:   "data/warden/messages.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "configs-file-json",
			Usage:   "path to JSON file of per-guild trigger configs (in-memory mode only)",
			EnvVars: []string{"WARDEN_CONFIGS_FILE_JSON"},
		},
		&cli.StringFlag{
			Name:    "webhook-url",
			Usage:   "incoming-webhook URL for match notifications",
			EnvVars: []string{"WARDEN_WEBHOOK_URL"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":3989",
			EnvVars: []string{"WARDEN_METRICS_LISTEN"},
		},
		&cli.Int64Flag{
			Name:    "guild-event-rate",
			Usage:   "max events per guild per second admitted for evaluation (0 disables the guard)",
			Value:   50,
			EnvVars: []string{"WARDEN_GUILD_EVENT_RATE"},
		},
		&cli.DurationFlag{
			Name:    "sweep-interval",
			Usage:   "cadence for evicting idle spam windows and expired cooldowns",
			Value:   time.Minute,
			EnvVars: []string{"WARDEN_SWEEP_INTERVAL"},
		},
	},
	Action: func(cctx *cli.Context) error {
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		configOTEL("warden")

		srv, err := NewServer(Config{
			DiscordToken:   cctx.String("discord-token"),
			RedisURL:       cctx.String("redis-url"),
			DatabaseURL:    cctx.String("database-url"),
			ConfigsFile:    cctx.String("configs-file-json"),
			WebhookURL:     cctx.String("webhook-url"),
			GuildEventRate: cctx.Int64("guild-event-rate"),
			SweepInterval:  cctx.Duration("sweep-interval"),
			Logger:         logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("failed to run trigger evaluation service: %w", err)
		}
		return nil
	},
}
