package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"

	"intellitest/internal/app"
	"intellitest/internal/config"
	"intellitest/internal/report"
	transport "intellitest/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	deps, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer deps.close()

	countdown := app.NewCountdown(config.TTLDuration(cfg.Session.Tick, time.Second))
	defer countdown.StopAll()

	service := app.NewService(
		deps.sessionStore(ctx, cfg),
		deps.bankRepository(cfg),
		app.WithTimeBudget(cfg.Session.Budget),
		app.WithCountdown(countdown),
		app.WithMailer(report.NewMailer(report.SMTPConfig{
			Host: cfg.SMTP.Host,
			Port: cfg.SMTP.Port,
			User: cfg.SMTP.User,
			Pass: cfg.SMTP.Pass,
			From: cfg.SMTP.From,
		})),
	)

	if _, err := service.ResumeCountdowns(ctx); err != nil {
		glog.Warningf("resume countdowns: %v", err)
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(service),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		glog.Infof("starting assessment service on :%s (banks from %s)", finalPort, cfg.Banks.Source)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Errorf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		glog.Info("shutting down server...")
	case <-ctx.Done():
		glog.Info("context canceled, shutting down server...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	return server.Shutdown(shutdownCtx)
}
