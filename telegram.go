package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mock-interview/internal/telegram"
)

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Запустить Telegram бота для интервью в чате",
	RunE:  runTelegram,
}

func init() {
	rootCmd.AddCommand(telegramCmd)
}

func runTelegram(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, afero.NewOsFs(), nil)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.cfg.Telegram
	if cfg.Token == "" {
		return errors.New("TELEGRAM_BOT_TOKEN не установлен")
	}

	bot := telegram.New(cfg.Token, cfg.APIURL, cfg.PollTimeout, a.logger)
	handler := telegram.NewHandler(bot, telegram.Config{
		Content:    a.content,
		IntroDelay: a.cfg.Interview.IntroDelay,
		RateLimit:  cfg.RateLimit,
		SessionTTL: cfg.SessionTTL,
	}, a.questions, a.handoff(), a.feedbackReader(), a.logger, a.metrics)

	a.logger.Info("ожидание сообщений", zap.Bool("feedback", a.feedback != nil))
	return handler.Run(ctx, bot)
}
