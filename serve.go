package main

import (
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mock-interview/internal/health"
	"mock-interview/internal/server"
	"mock-interview/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP API, websocket-сессии и health-сервер",
	Long: `Запускает HTTP API (генерация вопросов, сохранение и оценка интервью),
websocket-сессии мастера настройки (/ws/setup) и интервью (/ws/interview),
Swagger UI (/swagger/) и gRPC health-сервис.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, afero.NewOsFs(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg
	logger := a.logger

	sessions := session.NewHandler(session.Config{
		Content:       a.content,
		GreetingDelay: cfg.Interview.IntroDelay,
		IntroDelay:    cfg.Interview.IntroDelay,
		RedirectDelay: cfg.Interview.RedirectDelay,
		SessionTTL:    cfg.Interview.SessionTTL,
	}, a.questions, a.handoff(), logger, a.metrics)
	sessions.StartCleanup(ctx, time.Minute)

	srv := server.New(cfg.Server, a.questions, a.saver(), a.store, logger, a.metrics)
	srv.Mount("GET /ws/setup", http.HandlerFunc(sessions.ServeSetup))
	srv.Mount("GET /ws/interview", http.HandlerFunc(sessions.ServeInterview))

	healthServer := health.New(cfg.Server.GRPCPort, logger)
	healthServer.Register(srv.Mux())

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := healthServer.ListenAndServeGRPC(ctx); err != nil {
			logger.Error("gRPC сервер остановлен с ошибкой", zap.Error(err))
		}
	}()
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(ctx); err != nil {
			logger.Error("HTTP сервер остановлен с ошибкой", zap.Error(err))
			cancel()
		}
	}()

	healthServer.SetReady(true)
	logger.Info("сервис готов",
		zap.Int("port", cfg.Server.Port),
		zap.Int("grpc_port", cfg.Server.GRPCPort))

	<-ctx.Done()
	logger.Info("получен сигнал остановки")
	healthServer.SetReady(false)
	sessions.CloseAll()

	wg.Wait()
	logger.Info("сервис остановлен")
	return nil
}
