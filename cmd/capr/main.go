package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	naturaldate "github.com/tj/go-naturaldate"

	"github.com/maltehb/capr/internal/ai"
	"github.com/maltehb/capr/internal/config"
	"github.com/maltehb/capr/internal/export"
	"github.com/maltehb/capr/internal/forecast"
	"github.com/maltehb/capr/internal/notify"
	"github.com/maltehb/capr/internal/store"
	"github.com/maltehb/capr/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "capr",
	Short: "Conversational staffing-capacity calculator",
	Long:  "capr turns plain-English answers about your team and planning period into a deterministic capacity forecast, with scenarios for reaching a stated goal.",
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start or resume the forecast conversation",
	RunE:  runChat,
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send one message to the session without the chat UI",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session and its last forecast",
	RunE:  runStatus,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the parameter change audit trail",
	RunE:  runHistory,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current forecast as an iCalendar file",
	RunE:  runExport,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the current session (history is kept)",
	RunE:  runReset,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	historyCmd.Flags().String("since", "", "Only show changes after this point ('2 days ago', 'last monday')")
	exportCmd.Flags().StringP("out", "o", "capr-forecast.ics", "Output path, or '-' for stdout")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if os.Getenv("CAPR_DEBUG") != "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openStore(cfg *config.Config) (*store.DB, error) {
	db, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return db, nil
}

// loadEngine restores the persisted session, or seeds a fresh one with the
// configured allocation split.
func loadEngine(cfg *config.Config, db *store.DB) (*forecast.Engine, error) {
	state, err := db.LoadSession()
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = &forecast.ConversationState{Split: cfg.Split()}
	}
	return forecast.NewEngine(state), nil
}

func newAdvisor(cfg *config.Config, logger *slog.Logger) ai.Advisor {
	if !cfg.Advisor.Enabled || cfg.Advisor.APIKey == "" {
		return nil
	}
	return ai.NewOpenAI(cfg.Advisor.APIKey, cfg.Advisor.BaseURL, cfg.Advisor.Model, logger)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger()

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := loadEngine(cfg, db)
	if err != nil {
		return err
	}

	app := tui.NewApp(
		engine,
		db,
		newAdvisor(cfg, logger),
		notify.New(cfg.Notifications.Enabled, logger),
		time.Duration(cfg.Advisor.TimeoutSeconds)*time.Second,
		logger,
	)
	p := tea.NewProgram(app)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running chat UI: %w", err)
	}

	// An adopted scenario may have overridden the allocation split; carry
	// that back into the config file for future sessions.
	if err := cfg.SyncSplit(engine.State().Split); err != nil {
		logger.Warn("saving allocation split failed", "error", err)
	}
	return nil
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger()

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, err := loadEngine(cfg, db)
	if err != nil {
		return err
	}

	before := len(engine.State().History)
	reply := engine.HandleTurn(strings.Join(args, " "))
	fmt.Println(tui.RenderReply(reply))

	state := engine.State()
	if fresh := state.History[before:]; len(fresh) > 0 {
		if err := db.AppendChanges(state.SessionID, fresh); err != nil {
			logger.Warn("recording parameter history failed", "error", err)
		}
	}
	if err := db.SaveSession(state); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := cfg.SyncSplit(state.Split); err != nil {
		logger.Warn("saving allocation split failed", "error", err)
	}

	if reply.Bundle == nil {
		return nil
	}
	advisor := newAdvisor(cfg, logger)
	if advisor == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Advisor.TimeoutSeconds)*time.Second)
	defer cancel()

	advice, err := advisor.Advise(ctx, *reply.Bundle)
	if err != nil {
		logger.Warn("advisor unavailable", "error", err)
		return nil
	}
	fmt.Println(tui.RenderAdvice(advice))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.LoadSession()
	if err != nil {
		return err
	}
	if state == nil {
		fmt.Println("No active session. Run 'capr chat' to start one.")
		return nil
	}

	fmt.Printf("Session %s\n\n", state.SessionID)
	p := state.Params
	fmt.Printf("  Time window    %s\n", orUnset(p.TimeWindow))
	fmt.Printf("  Staff          %s\n", orUnsetInt(p.StaffCount))
	if p.AvgImplementationTime > 0 {
		fmt.Printf("  Avg time       %.1fh per task\n", p.AvgImplementationTime)
	} else {
		fmt.Printf("  Avg time       (unset)\n")
	}
	if p.AvailabilityRatio > 0 {
		fmt.Printf("  Availability   %.0f%%\n", p.AvailabilityRatio*100)
	} else {
		fmt.Printf("  Availability   (unset)\n")
	}
	fmt.Printf("  Allocation     %.0f/%.0f\n", state.Split.PrimaryShare*100, state.Split.SecondaryShare*100)
	if state.Target > 0 {
		fmt.Printf("  Target         %d tasks\n", state.Target)
	}

	if state.LastResult != nil {
		r := state.LastResult
		fmt.Printf("\nLast forecast: %d New Implementation tasks (%d working days, %.1f available hours)\n",
			r.PrimaryCapacity, r.WorkingDays, r.AvailableHours)
	} else {
		fmt.Println("\nNo forecast yet — parameters are still being gathered.")
	}
	if n := len(state.Scenarios); n > 0 {
		fmt.Printf("%d scenarios on offer. Run 'capr chat' to explore them.\n", n)
	}

	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}

func orUnsetInt(n int) string {
	if n <= 0 {
		return "(unset)"
	}
	return fmt.Sprintf("%d", n)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var since time.Time
	if expr, _ := cmd.Flags().GetString("since"); expr != "" {
		since, err = naturaldate.Parse(expr, time.Now(), naturaldate.WithDirection(naturaldate.Past))
		if err != nil {
			return fmt.Errorf("parsing --since %q: %w", expr, err)
		}
	}

	entries, err := db.ListChanges(since)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No parameter changes recorded.")
		return nil
	}

	fmt.Printf("%d changes:\n\n", len(entries))
	for _, e := range entries {
		c := e.Change
		old := c.OldValue
		if old == "" {
			old = "—"
		}
		fmt.Printf("  %s  %-22s  %s → %s  (%s)\n",
			c.Timestamp.Local().Format("2006-01-02 15:04"),
			c.Slot, old, c.NewValue, c.Reason,
		)
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.LoadSession()
	if err != nil {
		return err
	}
	if state == nil {
		return fmt.Errorf("no active session — run 'capr chat' first")
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "-" {
		return export.WriteICS(os.Stdout, *state, time.Now())
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	defer f.Close()

	if err := export.WriteICS(f, *state, time.Now()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.ClearSession(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Println("Session cleared. Parameter history is kept — see 'capr history'.")
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data := fmt.Sprintf(`[forecast]
primary_share = %.2f
secondary_share = %.2f

[advisor]
enabled = %t
model = "%s"
timeout_seconds = %d
# api_key comes from OPENAI_API_KEY unless set here

[notifications]
enabled = %t

[database]
# path defaults to ~/.config/capr/capr.db
`,
			cfg.Forecast.PrimaryShare,
			cfg.Forecast.SecondaryShare,
			cfg.Advisor.Enabled,
			cfg.Advisor.Model,
			cfg.Advisor.TimeoutSeconds,
			cfg.Notifications.Enabled,
		)
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
