package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mock-interview/internal/config"
	"mock-interview/internal/conversation"
	"mock-interview/internal/domain"
	"mock-interview/internal/feedback"
	"mock-interview/internal/interviewer"
	"mock-interview/internal/setup"
	"mock-interview/internal/speech"
	"mock-interview/internal/storage"
)

var rehearseOpts struct {
	server string
	name   string
	role   string
	tech   string
	count  int
}

var rehearseCmd = &cobra.Command{
	Use:   "rehearse",
	Short: "Пройти интервью в терминале",
	Long: `Интервью в терминале: реплики интервьюера печатаются, ответы вводятся строками.

Без --role и --tech сначала запускается мастер настройки.
Команды во время интервью:
  /next  следующий вопрос
  /done  закончить ответ
  /mic   ответить на вопрос заново
  /quit  выйти`,
	RunE: runRehearse,
}

func init() {
	f := rehearseCmd.Flags()
	f.StringVar(&rehearseOpts.server, "server", "", "адрес сервера для генерации вопросов (например http://localhost:8080)")
	f.StringVar(&rehearseOpts.name, "name", "You", "имя кандидата")
	f.StringVar(&rehearseOpts.role, "role", "", "роль")
	f.StringVar(&rehearseOpts.tech, "tech", "", "стек технологий")
	f.IntVar(&rehearseOpts.count, "count", domain.DefaultQuestionCount, "количество вопросов")

	rootCmd.AddCommand(rehearseCmd)
}

func runRehearse(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, afero.NewOsFs(), quietLogging)
	if err != nil {
		return err
	}
	defer a.Close()

	var source conversation.QuestionSource = a.questions
	if rehearseOpts.server != "" {
		source = interviewer.NewFallbackSource(
			interviewer.NewClient(rehearseOpts.server, nil),
			a.content.Questions.Fallback, a.logger, a.metrics)
	}

	r := &rehearsal{
		out:     cmd.OutOrStdout(),
		lines:   readLines(ctx, cmd.InOrStdin()),
		content: a.content,
		source:  source,
		handoff: a.handoff(),
		store:   a.store,
		app:     a,
	}
	return r.run(ctx, domain.Setup{
		Role:      rehearseOpts.role,
		TechStack: rehearseOpts.tech,
		Count:     rehearseOpts.count,
	}, rehearseOpts.name)
}

// rehearsal ведет интервью в терминале
type rehearsal struct {
	out     io.Writer
	lines   <-chan string
	content *config.Content
	source  conversation.QuestionSource
	handoff conversation.Handoff
	store   storage.Store
	app     *app
}

func (r *rehearsal) run(ctx context.Context, params domain.Setup, name string) error {
	speaker := speech.NewConsole(r.out, "🎙 ")

	if params.Role == "" || params.TechStack == "" {
		var ok bool
		params, ok = r.runSetup(ctx, speaker)
		if !ok {
			return nil
		}
	}

	input := speech.NewLineInput()
	observer := &consoleObserver{
		out:       r.out,
		finished:  make(chan struct{}, 1),
		completed: make(chan completion, 1),
	}
	ctrl := conversation.New(conversation.Config{
		UserID:     storage.DefaultUserID,
		UserName:   name,
		Setup:      params,
		Greeting:   r.content.RenderGreeting(name, params.Role),
		Closing:    r.content.Interview.Closing,
		IntroDelay: r.app.cfg.Interview.IntroDelay,
	}, r.source, speaker, input, r.handoff, observer, r.app.logger, r.app.metrics)
	defer ctrl.Close()

	fmt.Fprintf(r.out, "Готовлю вопросы для роли %s (%s)...\n", params.Role, params.TechStack)
	ctrl.Start(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-observer.finished:
			if r.handoff == nil {
				fmt.Fprintln(r.out, "Оценка недоступна: не задан OPENAI_API_KEY")
				return nil
			}
			fmt.Fprintln(r.out, "Оцениваю ответы...")
		case c := <-observer.completed:
			return r.report(ctx, c)
		case line, ok := <-r.lines:
			if !ok {
				return nil
			}
			switch strings.TrimSpace(line) {
			case "/next":
				ctrl.Advance()
			case "/done":
				ctrl.StopCapture()
			case "/mic":
				ctrl.StartCapture()
			case "/quit":
				return nil
			default:
				if !input.Feed(line) && strings.TrimSpace(line) != "" {
					fmt.Fprintln(r.out, "(ответ сейчас не записывается: /mic, чтобы ответить заново, /next для следующего вопроса)")
				}
			}
		}
	}
}

// runSetup собирает параметры интервью через мастер настройки
func (r *rehearsal) runSetup(ctx context.Context, speaker speech.Output) (domain.Setup, bool) {
	observer := &setupConsoleObserver{done: make(chan domain.Setup, 1)}
	flow := setup.NewFlow(setup.Config{},
		setup.NewWizard(setup.MessagesFromContent(r.content.Wizard)), speaker, nil, observer, r.app.logger, r.app.metrics)
	defer flow.Close()
	flow.Start()

	for {
		select {
		case <-ctx.Done():
			return domain.Setup{}, false
		case params := <-observer.done:
			return params, true
		case line, ok := <-r.lines:
			if !ok || strings.TrimSpace(line) == "/quit" {
				return domain.Setup{}, false
			}
			flow.Answer(line)
		}
	}
}

func (r *rehearsal) report(ctx context.Context, c completion) error {
	if c.err != nil {
		return fmt.Errorf("не удалось сохранить интервью: %w", c.err)
	}
	fb, err := r.store.FeedbackByInterview(ctx, c.interviewID)
	if err != nil {
		return fmt.Errorf("ошибка чтения оценки: %w", err)
	}
	fmt.Fprintf(r.out, "\nИнтервью %s\n\n%s", c.interviewID, feedback.FormatReport(fb.Assessment))
	return nil
}

type completion struct {
	interviewID string
	err         error
}

// consoleObserver печатает прогресс интервью
type consoleObserver struct {
	conversation.NopObserver
	out       io.Writer
	finished  chan struct{}
	completed chan completion
}

func (o *consoleObserver) QuestionChanged(index, total int, _ string) {
	fmt.Fprintf(o.out, "\n[Вопрос %d/%d]\n", index+1, total)
}

func (o *consoleObserver) StateChanged(state conversation.State) {
	switch state {
	case conversation.StateListening:
		fmt.Fprintln(o.out, "(слушаю, /next когда закончите)")
	case conversation.StateFinished:
		o.finished <- struct{}{}
	}
}

func (o *consoleObserver) Completed(interviewID string, err error) {
	o.completed <- completion{interviewID: interviewID, err: err}
}

type setupConsoleObserver struct {
	done chan domain.Setup
}

func (o *setupConsoleObserver) Message(setup.Speaker, string)      {}
func (o *setupConsoleObserver) DraftChanged(string)                {}
func (o *setupConsoleObserver) CheckpointChanged(setup.Checkpoint) {}

func (o *setupConsoleObserver) Redirect(params domain.Setup) {
	o.done <- params
}

// readLines читает строки до EOF или отмены контекста
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}
