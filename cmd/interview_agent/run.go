package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/intake"
	"github.com/jonathan/interview-agent/internal/intake/fetch"
	"github.com/jonathan/interview-agent/internal/notify"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/registry"
	"github.com/jonathan/interview-agent/internal/session"
)

var (
	runConfigPath string
	runResume     string
	runResumeURL  string
	runName       string
	runEmail      string
	runPhone      string
	runUseBrowser bool
	runVerbose    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a timed interview in the terminal",
	Long:  "Walks one candidate through the six-question interview in the terminal: per-question countdowns, automatic submission on expiry, and a final score.",
	RunE:  runInterviewCmd,
}

func init() {
	runCmd.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file")
	runCmd.Flags().StringVarP(&runResume, "resume", "r", "", "Path to resume file (.txt, .md, .html)")
	runCmd.Flags().StringVar(&runResumeURL, "resume-url", "", "URL to fetch the resume from (mutually exclusive with --resume)")
	runCmd.Flags().StringVarP(&runName, "name", "n", "", "Candidate name (default: extracted from resume)")
	runCmd.Flags().StringVar(&runEmail, "email", "", "Candidate email (default: extracted from resume)")
	runCmd.Flags().StringVar(&runPhone, "phone", "", "Candidate phone (default: extracted from resume)")
	runCmd.Flags().BoolVar(&runUseBrowser, "use-browser", false, "Use headless browser for JavaScript-rendered resume pages")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print the full transcript after the interview")
	rootCmd.AddCommand(runCmd)
}

func runInterviewCmd(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}
	if runResume != "" && runResumeURL != "" {
		return fmt.Errorf("--resume and --resume-url are mutually exclusive")
	}

	resumeText, err := loadResume(ctx, cfg.UseBrowser || runUseBrowser)
	if err != nil {
		return err
	}

	profile := registry.Profile{
		Name:       runName,
		Email:      runEmail,
		Phone:      runPhone,
		ResumeText: resumeText,
	}
	if resumeText != "" {
		fields := intake.ExtractFields(resumeText)
		if profile.Name == "" {
			profile.Name = fields.Name
		}
		if profile.Email == "" {
			profile.Email = fields.Email
		}
		if profile.Phone == "" {
			profile.Phone = fields.Phone
		}
	}
	if profile.Name == "" {
		return fmt.Errorf("candidate name is required (pass --name or a resume that starts with it)")
	}

	client := newLLMClient(ctx, cfg)
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	// The terminal flow prints notifications inline instead of logging.
	notifyFn := func(level notify.Level, message string) {
		fmt.Printf("\n  [%s] %s\n", level, message)
	}

	ctrl, st, err := newController(ctx, cfg, client, notifyFn)
	if err != nil {
		return err
	}
	defer st.Close()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	printer := observability.NewPrinter(os.Stdout)

	id, resuming, err := resolveCandidate(ctx, ctrl, profile, lines)
	if err != nil {
		return err
	}

	if !resuming {
		fmt.Printf("Interviewing %s", profile.Name)
		if resumeText != "" {
			fmt.Printf(" (resume: %d chars)", len(resumeText))
		}
		fmt.Println()
		fmt.Println("Generating questions...")
	}

	startCtx, cancel := context.WithTimeout(ctx, aiGenerationBudget(cfg))
	err = ctrl.StartInterview(startCtx, id, resuming)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to start interview: %w", err)
	}

	if err := runQuestionLoop(ctx, ctrl, printer, lines); err != nil {
		return err
	}

	printResult(ctrl, printer, id)
	return nil
}

// resolveCandidate handles the unfinished-interview prompt before a new
// candidate is added: an interrupted interview is either resumed or
// force-completed with empty answers, never silently dropped.
func resolveCandidate(ctx context.Context, ctrl *session.Controller, profile registry.Profile, lines <-chan string) (string, bool, error) {
	for _, cand := range ctrl.WelcomeBackCandidates() {
		fmt.Printf("Unfinished interview found for %s (question %d/6). Resume it? [y/N] ",
			cand.Name, cand.CurrentQuestionIndex+1)
		answer, ok := <-lines
		if ok && strings.EqualFold(strings.TrimSpace(answer), "y") {
			return cand.ID, true, nil
		}
		fmt.Printf("Closing out %s's interview with the answers given so far.\n", cand.Name)
		if err := ctrl.FinishAbandoned(ctx, cand.ID); err != nil {
			return "", false, fmt.Errorf("failed to close out unfinished interview: %w", err)
		}
	}

	return ctrl.AddCandidate(profile), false, nil
}

func loadResume(ctx context.Context, useBrowser bool) (string, error) {
	switch {
	case runResume != "":
		return intake.FromFile(runResume)
	case runResumeURL != "":
		opts := fetch.DefaultOptions()
		opts.AllowBrowser = useBrowser
		return intake.FromURL(ctx, runResumeURL, opts)
	default:
		return "", nil
	}
}

// runQuestionLoop drives the interview: for each question it starts the
// countdown, reads an answer from stdin, and lets the ticker auto-submit
// when time runs out mid-typing.
func runQuestionLoop(ctx context.Context, ctrl *session.Controller, printer *observability.Printer, lines <-chan string) error {
	for {
		view := ctrl.View()
		if view.State != session.StateActive {
			return nil
		}

		if err := ctrl.StartQuestionTimer(); err != nil {
			return err
		}
		view = ctrl.View()

		fmt.Println()
		printer.PrintQuestion(view.QuestionIndex, view.QuestionTotal, *view.Question)
		fmt.Print("> ")

		if expired, err := awaitAnswer(ctx, ctrl, view.QuestionIndex, lines); err != nil {
			return err
		} else if expired {
			fmt.Println("\n  Time's up; answer submitted as-is.")
		}
	}
}

// awaitAnswer blocks until the current question is answered or expires.
// Returns whether the question expired.
func awaitAnswer(ctx context.Context, ctrl *session.Controller, questionIndex int, lines <-chan string) (bool, error) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	lastShown := -1
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				// Stdin closed: wrap up with whatever was answered.
				return false, ctrl.FinishEarly(ctx)
			}
			if err := ctrl.SubmitAnswer(ctx, line); err != nil {
				// The countdown beat the submission; the answer is lost to
				// the auto-submit that already fired.
				return true, nil
			}
			return false, nil
		case <-ticker.C:
			ctrl.Tick(ctx)
			view := ctrl.View()
			if view.State != session.StateActive || view.QuestionIndex != questionIndex {
				return true, nil
			}
			if view.TimeRemaining != lastShown && view.TimeRemaining <= 10 {
				lastShown = view.TimeRemaining
				fmt.Printf("\n  %ds remaining\n> ", view.TimeRemaining)
			}
		}
	}
}

func printResult(ctrl *session.Controller, printer *observability.Printer, id string) {
	cand, ok := ctrl.Candidate(id)
	if !ok || cand.FinalScore == nil {
		fmt.Println("\nInterview ended without a score.")
		return
	}

	fmt.Println()
	printer.PrintResult(cand)
	if runVerbose {
		printer.PrintAnswers(cand.Answers)
	}
}
