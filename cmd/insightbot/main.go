// cmd/insightbot/main.go
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"insightbot/internal/common/config"
	"insightbot/internal/common/database"
	"insightbot/internal/common/logger"
	"insightbot/internal/common/observability"
	"insightbot/internal/insight/executor"
	"insightbot/internal/insight/intent"
	"insightbot/internal/insight/selector"
	"insightbot/internal/insight/session"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting insightbot...",
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Postgres with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return pg.Ping(pingCtx)
	}, 5, 2*time.Second, zapLog, "Postgres connection")
	if err != nil {
		zapLog.Fatal("postgres unavailable", zap.Error(err))
	}
	defer pg.Close()

	// --- Optional Redis result cache ---
	var cache *database.RedisClient
	if cfg.Cache.Enabled {
		cache, err = database.NewRedis(cfg.Database.Redis)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = cache.Ping(pingCtx)
			cancel()
		}
		if err != nil {
			zapLog.Warn("redis unavailable, running without result cache", zap.Error(err))
			cache = nil
		} else {
			defer cache.Close()
		}
	}

	// --- Metrics endpoint ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			zapLog.Info("metrics endpoint listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	exec := executor.New(pg.GetDB(), cache, &executor.Config{
		Timeout:  config.GetDuration(cfg.Database.Postgres.QueryTimeout),
		CacheTTL: time.Duration(cfg.Cache.TTL) * time.Second,
	}, log)

	var classifier session.Classifier
	if cfg.Intent.Enabled {
		labels := make([]string, 0)
		for _, id := range selector.TemplateIDs() {
			labels = append(labels, string(id))
		}
		classifier = intent.New(&intent.Config{
			BaseURL:    cfg.Intent.BaseURL,
			Token:      cfg.Intent.Token,
			Timeout:    config.GetDuration(cfg.Intent.Timeout),
			MaxRetries: cfg.Intent.MaxRetries,
			Labels:     labels,
		}, log)
	}

	sess := session.New(exec, classifier, obs, log, cfg.Session.MaxHistory)

	runChatLoop(ctx, sess, zapLog)

	zapLog.Info("insightbot stopped")
}

func runChatLoop(ctx context.Context, sess *session.Session, zapLog *zap.Logger) {
	fmt.Println("Business Intelligence Chat Assistant")
	fmt.Println(`Ask a business question, or type "history" or "exit".`)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		fmt.Print("question> ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok = <-lines:
			if !ok {
				fmt.Println()
				return
			}
		}

		question := strings.TrimSpace(line)
		switch {
		case question == "":
			continue
		case question == "exit" || question == "quit":
			return
		case question == "history":
			printHistory(sess)
			continue
		}

		answer, err := sess.Ask(ctx, question)
		if err != nil {
			// User-visible, recoverable; the next question proceeds.
			fmt.Printf("Sorry, that question failed: %v\n\n", err)
			continue
		}

		fmt.Printf("\nSQL (%s):\n%s\n", answer.TemplateID, answer.SQL)
		fmt.Printf("\nAnalysis\n%s\n", answer.Report.Summary)

		if len(answer.Report.Insights) > 0 {
			fmt.Println("\nKey Insights")
			for _, insight := range answer.Report.Insights {
				fmt.Printf("  - %s\n", insight)
			}
		}

		if len(answer.Charts) > 0 {
			fmt.Println("\nVisualizations")
			for _, chart := range answer.Charts {
				doc, err := chart.JSON()
				if err != nil {
					zapLog.Warn("failed to encode chart", zap.Error(err))
					continue
				}
				fmt.Printf("  [%s] %s\n  %s\n", chart.Kind, chart.Title, doc)
			}
		}

		for _, warning := range answer.Warnings {
			fmt.Printf("\nWarning: %s\n", warning)
		}
		fmt.Println()
	}
}

func printHistory(sess *session.Session) {
	entries := sess.History()
	if len(entries) == 0 {
		fmt.Println("No previous analyses.")
		return
	}

	fmt.Println("Previous Analyses")
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		fmt.Printf("- [%s] %s (%s)\n", entry.AskedAt.Format(time.RFC3339), entry.Question, entry.TemplateID)
	}
}
