package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/guildmod/guildmod/configstore"
	"github.com/guildmod/guildmod/dispatcher"
	"github.com/guildmod/guildmod/engine"
	"github.com/guildmod/guildmod/msgstore"
	"github.com/guildmod/guildmod/notify"
	"github.com/guildmod/guildmod/spamtracker"
	"github.com/guildmod/guildmod/trigger"
)

type Server struct {
	logger     *slog.Logger
	session    *discordgo.Session
	engine     *engine.Engine
	dispatcher *dispatcher.Dispatcher

	sweepInterval time.Duration
}

type Config struct {
	DiscordToken   string
	RedisURL       string
	DatabaseURL    string
	ConfigsFile    string
	WebhookURL     string
	GuildEventRate int64
	SweepInterval  time.Duration
	Logger         *slog.Logger
}

// LogActionSink is the default action layer: it just logs firings. A real deployment replaces it with the moderation action executor.
type LogActionSink struct {
	Logger *slog.Logger
}

func (s *LogActionSink) HandleMatches(ctx context.Context, results []engine.MatchResult) error {
	for _, res := range results {
		s.Logger.Info("match forwarded to action layer",
			"guild", res.GuildID,
			"actor", res.ActorID,
			"kind", res.Kind,
			"matched", res.Matched,
		)
	}
	return nil
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	registry := trigger.Default()

	var tracker spamtracker.Tracker
	var configs configstore.ConfigStore
	if config.RedisURL != "" {
		trk, err := spamtracker.NewRedisTracker(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis spam tracker: %w", err)
		}
		tracker = trk

		cfgs, err := configstore.NewRedisConfigStore(config.RedisURL, registry)
		if err != nil {
			return nil, fmt.Errorf("initializing redis config store: %w", err)
		}
		configs = configstore.NewCachedConfigStore(cfgs, 5_000, 5*time.Minute)
	} else {
		tracker = spamtracker.NewMemTracker()
		mem := configstore.NewMemConfigStore()
		if config.ConfigsFile != "" {
			if err := mem.LoadFromFileJSON(registry, config.ConfigsFile); err != nil {
				return nil, fmt.Errorf("loading trigger configs: %w", err)
			}
			logger.Info("loaded trigger configs from JSON", "path", config.ConfigsFile)
		}
		configs = mem
	}

	var notifier engine.Notifier
	if config.WebhookURL != "" {
		logger.Info("configuring match webhook notifications")
		notifier = notify.NewWebhookNotifier(config.WebhookURL)
	}

	eng := &engine.Engine{
		Logger:    logger,
		Registry:  registry,
		Tracker:   tracker,
		Configs:   configs,
		Cooldowns: engine.NewCooldowns(),
		Notifier:  notifier,
	}

	disp := dispatcher.New(logger, eng, &LogActionSink{Logger: logger})
	disp.GuildEventRate = config.GuildEventRate
	if config.DatabaseURL != "" {
		msgs, err := msgstore.NewSqliteMessageStore(config.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("initializing message store: %w", err)
		}
		disp.Messages = msgs
	}

	session, err := discordgo.New("Bot " + config.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("creating gateway session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentMessageContent
	disp.Bind(session)

	return &Server{
		logger:        logger,
		session:       session,
		engine:        eng,
		dispatcher:    disp,
		sweepInterval: config.SweepInterval,
	}, nil
}

// Run opens the gateway connection and runs background maintenance until ctx is cancelled, then drains in-flight evaluations.
func (s *Server) Run(ctx context.Context) error {
	if err := s.session.Open(); err != nil {
		return fmt.Errorf("opening gateway connection: %w", err)
	}
	s.logger.Info("gateway connected")

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return s.engine.RunSweeper(ctx, s.sweepInterval)
	})
	eg.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")

		if err := s.session.Close(); err != nil {
			s.logger.Error("closing gateway connection", "err", err)
		}

		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.dispatcher.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("draining dispatcher: %w", err)
		}
		return nil
	})
	return eg.Wait()
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}
