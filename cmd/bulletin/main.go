package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crimson-sun/bulletin/internal/admin"
	"github.com/crimson-sun/bulletin/internal/config"
	"github.com/crimson-sun/bulletin/internal/connector"
	"github.com/crimson-sun/bulletin/internal/engine"
	"github.com/crimson-sun/bulletin/internal/engine/classifier"
	"github.com/crimson-sun/bulletin/internal/engine/compactor"
	"github.com/crimson-sun/bulletin/internal/engine/dedup"
	"github.com/crimson-sun/bulletin/internal/engine/timestamp"
	"github.com/crimson-sun/bulletin/internal/engine/vocabulary"
	"github.com/crimson-sun/bulletin/internal/logging"
	"github.com/crimson-sun/bulletin/internal/output"
	"github.com/crimson-sun/bulletin/internal/output/async"
	"github.com/crimson-sun/bulletin/internal/output/file"
	"github.com/crimson-sun/bulletin/internal/output/multi"
	"github.com/crimson-sun/bulletin/internal/output/redis"
	"github.com/crimson-sun/bulletin/internal/output/roster"
	"github.com/crimson-sun/bulletin/internal/output/stdout"
	"github.com/crimson-sun/bulletin/internal/output/webhook"
	"github.com/crimson-sun/bulletin/internal/pipeline"

	// Register connector implementations.
	_ "github.com/crimson-sun/bulletin/internal/connector/file"
	_ "github.com/crimson-sun/bulletin/internal/connector/mongodb"
	_ "github.com/crimson-sun/bulletin/internal/connector/postgres"
	_ "github.com/crimson-sun/bulletin/internal/connector/rest"

	// Zone data for BULLETIN_TIMEZONE on hosts without it.
	_ "time/tzdata"
)

func main() {
	cfg, err := config.LoadWithFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "bulletin: %v\n", err)
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Println("bulletin " + config.Version)
		return
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "bulletin: invalid configuration:\n%v\n", err)
		os.Exit(2)
	}

	logging.Init(os.Stderr, logging.FormatFor(cfg.Output.Format == "stdout"), logging.ParseLevel(cfg.LogLevel))

	if err := run(cfg); err != nil {
		slog.Error("bulletin stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	loc, err := cfg.Engine.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	stamper := timestamp.New(loc)

	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		return err
	}
	conn := ctor()

	connCfg := connector.ConnectorConfig{
		Provider: cfg.Connector.Provider,
		APIKey:   cfg.Connector.APIKey,
		Endpoint: cfg.Connector.Endpoint,
		Extra:    cfg.Connector.Extra,
	}
	params := connector.QueryParams{
		Start:    cfg.Query.From,
		End:      cfg.Query.To,
		Limit:    cfg.Query.Limit,
		Category: cfg.Query.Category,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Mode == "admin" {
		env := admin.New(conn, connCfg, stamper).List(ctx, params)
		enc := json.NewEncoder(os.Stdout)
		enc.SetEscapeHTML(false)
		if cfg.Output.Pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(env)
	}

	verbosity, err := compactor.ParseVerbosity(cfg.Engine.Verbosity)
	if err != nil {
		return err
	}
	cls, err := newClassifier(cfg.Engine.VocabularyFile)
	if err != nil {
		return err
	}
	eng := engine.New(stamper, cls, compactor.New(verbosity), engine.WithWorkers(cfg.Engine.Workers))

	out, err := newOutput(ctx, cfg.Output, verbosity)
	if err != nil {
		return err
	}

	var opts []pipeline.Option
	if w := cfg.Engine.DedupWindow; w > 0 {
		opts = append(opts, pipeline.WithDedup(dedup.New(dedup.Config{Window: w}), w))
	}
	opts = append(opts, pipeline.WithMaxBufferSize(cfg.Engine.MaxBufferSize))
	p := pipeline.New(conn, eng, out, opts...)

	slog.Info("bulletin starting",
		"version", config.Version,
		"mode", cfg.Mode,
		"connector", cfg.Connector.Provider,
		"output", cfg.Output.Format,
		"verbosity", verbosity.String(),
	)

	errCh := make(chan error, 1)
	go func() {
		switch cfg.Mode {
		case "query":
			errCh <- p.Query(ctx, connCfg, params)
		case "schedule":
			errCh <- p.Schedule(ctx, cfg.Schedule, connCfg, params)
		default:
			errCh <- p.Stream(ctx, connCfg)
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		slog.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		select {
		case runErr = <-errCh:
		case <-time.After(cfg.ShutdownTimeout):
			runErr = fmt.Errorf("shutdown timed out after %s", cfg.ShutdownTimeout)
		}
	}
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	return errors.Join(runErr, p.Close())
}

func newClassifier(vocabFile string) (*classifier.Classifier, error) {
	vocab := vocabulary.Default()
	if vocabFile != "" {
		v, err := vocabulary.Load(vocabFile)
		if err != nil {
			return nil, err
		}
		vocab = v
	}
	compiled, err := vocab.Compile()
	if err != nil {
		return nil, err
	}
	return classifier.New(compiled), nil
}

func newOutput(ctx context.Context, cfg config.OutputConfig, verbosity compactor.Verbosity) (output.Output, error) {
	var primary output.Output
	switch cfg.Format {
	case "file":
		f, err := file.New(cfg.File, verbosity)
		if err != nil {
			return nil, err
		}
		primary = f
	case "webhook":
		onErr := func(err error) { slog.Warn("webhook delivery failed", "error", err) }
		wh := webhook.New(cfg.WebhookURL, webhook.WithVerbosity(verbosity), webhook.WithOnError(onErr))
		primary = async.New(wh, async.WithDropOnFull(), async.WithOnError(onErr))
	case "redis":
		r, err := redis.New(ctx, cfg.RedisURL, redis.WithKey(cfg.RedisKey), redis.WithVerbosity(verbosity))
		if err != nil {
			return nil, err
		}
		primary = r
	default:
		primary = stdout.New(verbosity, cfg.Pretty)
	}

	if cfg.RosterExport == "" {
		return primary, nil
	}
	export, err := roster.New(cfg.RosterExport)
	if err != nil {
		primary.Close()
		return nil, err
	}
	return multi.New(primary, export), nil
}
