package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mock-interview/internal/config"
	"mock-interview/internal/feedback"
	"mock-interview/internal/storage"
)

var resultsUser string

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Просмотр сохраненных интервью и оценок",
}

var resultsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Список интервью, новые первыми",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := newApp(cmd.Context(), afero.NewOsFs(), quietLogging)
		if err != nil {
			return err
		}
		defer a.Close()
		return listResults(cmd.Context(), cmd.OutOrStdout(), a.store, resultsUser)
	},
}

var resultsShowCmd = &cobra.Command{
	Use:   "show <interview-id>",
	Short: "Расшифровка интервью и его оценка",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), afero.NewOsFs(), quietLogging)
		if err != nil {
			return err
		}
		defer a.Close()
		return showResult(cmd.Context(), cmd.OutOrStdout(), a.store, args[0])
	},
}

func init() {
	resultsListCmd.Flags().StringVar(&resultsUser, "user", "", "показать интервью только этого пользователя")

	resultsCmd.AddCommand(resultsListCmd, resultsShowCmd)
	rootCmd.AddCommand(resultsCmd)
}

func quietLogging(cfg *config.AppConfig) {
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "console"
}

func listResults(ctx context.Context, w io.Writer, store storage.Store, userID string) error {
	records, err := store.ListInterviews(ctx, userID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(w, "Интервью не найдены")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tUSER\tROLE\tTECH STACK\tQUESTIONS\tDURATION")
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			rec.ID,
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.UserID,
			rec.Role,
			rec.TechStack,
			len(rec.Transcript),
			time.Duration(rec.Duration)*time.Second)
	}
	return tw.Flush()
}

func showResult(ctx context.Context, w io.Writer, store storage.Store, id string) error {
	rec, err := store.GetInterview(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("интервью %s не найдено", id)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Interview %s\nRole: %s (%s)\nDate: %s\n\n",
		rec.ID, rec.Role, rec.TechStack, rec.CreatedAt.Local().Format("2006-01-02 15:04"))
	for i, turn := range rec.Transcript {
		fmt.Fprintf(w, "Q%d: %s\nA%d: %s\n\n", i+1, turn.Question, i+1, turn.Answer)
	}

	fb, err := store.FeedbackByInterview(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(w, "Оценка еще не готова")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprint(w, feedback.FormatReport(fb.Assessment))
	return nil
}
