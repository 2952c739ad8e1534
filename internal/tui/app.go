package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/maltehb/capr/internal/ai"
	"github.com/maltehb/capr/internal/forecast"
	"github.com/maltehb/capr/internal/notify"
	"github.com/maltehb/capr/internal/store"
)

type adviceMsg struct {
	advice *ai.Advice
	err    error
}

// App is the chat loop. Engine turns are synchronous; only the advisor call
// runs as a command, behind the spinner.
type App struct {
	engine   *forecast.Engine
	db       *store.DB
	advisor  ai.Advisor
	notifier *notify.Notifier
	timeout  time.Duration
	logger   *slog.Logger

	transcript []string
	input      textarea.Model
	spinner    spinner.Model
	thinking   bool
	historyLen int
}

func NewApp(
	engine *forecast.Engine,
	db *store.DB,
	advisor ai.Advisor,
	notifier *notify.Notifier,
	timeout time.Duration,
	logger *slog.Logger,
) *App {
	ta := textarea.New()
	ta.Placeholder = "Tell me about your planning period..."
	ta.Focus()
	ta.CharLimit = 500
	ta.SetWidth(72)
	ta.SetHeight(2)
	ta.ShowLineNumbers = false

	s := spinner.New()
	s.Spinner = spinner.Dot

	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if notifier == nil {
		notifier = notify.New(false, logger)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &App{
		engine:     engine,
		db:         db,
		advisor:    advisor,
		notifier:   notifier,
		timeout:    timeout,
		logger:     logger,
		transcript: []string{botLine(greeting(engine.State()))},
		input:      ta,
		spinner:    s,
		historyLen: len(engine.State().History),
	}
}

// greeting picks the opening line: resume a restored session where it left
// off, otherwise start slot filling from the top.
func greeting(state forecast.ConversationState) string {
	if state.Params.Complete() && state.LastResult != nil {
		return fmt.Sprintf(
			"Welcome back! Your last forecast for %s came to %d tasks. Adjust anything, state a target, or say 'reset'.",
			state.Params.TimeWindow, state.LastResult.PrimaryCapacity,
		)
	}
	if state.WaitingFor != forecast.SlotNone {
		return forecast.PromptFor(state.WaitingFor)
	}
	if slot := forecast.NextMissing(state.Params); slot != forecast.SlotNone {
		return forecast.PromptFor(slot)
	}
	return "All parameters are set — adjust anything, state a target, or say 'reset'."
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.input.Focus(), a.spinner.Tick)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width > 4 {
			a.input.SetWidth(msg.Width - 4)
		}
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "enter":
			text := strings.TrimSpace(a.input.Value())
			if text == "" || a.thinking {
				return a, nil
			}
			return a, a.submit(text)
		}

	case adviceMsg:
		return a.handleAdvice(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("capr — Capacity Forecast") + "\n")
	b.WriteString(subtitleStyle.Render(statusLine(a.engine.State())) + "\n")
	b.WriteString(strings.Join(a.transcript, "\n") + "\n")
	if a.thinking {
		b.WriteString(a.spinner.View() + dimStyle.Render(" consulting advisor...") + "\n")
	}
	b.WriteString("\n" + a.input.View() + "\n")
	b.WriteString(helpStyle.Render("Enter: send • Ctrl+C: exit"))
	return b.String()
}

func statusLine(state forecast.ConversationState) string {
	if !state.Params.Complete() {
		return "gathering parameters..."
	}
	line := fmt.Sprintf("%s • %d staff • %.1fh/task • %.0f%% available",
		state.Params.TimeWindow, state.Params.StaffCount,
		state.Params.AvgImplementationTime, state.Params.AvailabilityRatio*100)
	if state.Target > 0 {
		line += fmt.Sprintf(" • target %d", state.Target)
	}
	return line
}

// submit runs one engine turn, persists the session, and kicks off the
// advisor when the turn produced a forecast.
func (a *App) submit(text string) tea.Cmd {
	a.transcript = append(a.transcript, userLine(text))
	a.input.Reset()

	reply := a.engine.HandleTurn(text)
	a.transcript = append(a.transcript, RenderReply(reply))
	a.persist()

	if reply.Bundle == nil {
		return nil
	}

	a.notifier.ForecastReady(reply.Bundle.Params.TimeWindow, reply.Bundle.Forecast.PrimaryCapacity)
	if reply.Bundle.Target > 0 && reply.Bundle.Forecast.PrimaryCapacity >= reply.Bundle.Target {
		a.notifier.TargetMet(reply.Bundle.Target)
	}

	if a.advisor == nil {
		return nil
	}
	a.thinking = true
	return tea.Batch(a.spinner.Tick, a.requestAdvice(*reply.Bundle))
}

func (a *App) requestAdvice(bundle forecast.Bundle) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()

		advice, err := a.advisor.Advise(ctx, bundle)
		return adviceMsg{advice: advice, err: err}
	}
}

func (a *App) handleAdvice(msg adviceMsg) (tea.Model, tea.Cmd) {
	a.thinking = false
	if msg.err != nil {
		a.logger.Warn("advisor unavailable", "error", msg.err)
		a.transcript = append(a.transcript, dimStyle.Render("(advisor unavailable: "+msg.err.Error()+")"))
		return a, nil
	}
	a.transcript = append(a.transcript, RenderAdvice(msg.advice))
	return a, nil
}

// persist writes the session snapshot and any new audit entries. Failures
// are logged; the conversation keeps going in memory.
func (a *App) persist() {
	if a.db == nil {
		return
	}
	state := a.engine.State()

	if fresh := state.History[a.historyLen:]; len(fresh) > 0 {
		if err := a.db.AppendChanges(state.SessionID, fresh); err != nil {
			a.logger.Warn("recording parameter history failed", "error", err)
		}
		a.historyLen = len(state.History)
	}

	if err := a.db.SaveSession(state); err != nil {
		a.logger.Warn("saving session failed", "error", err)
	}
}
