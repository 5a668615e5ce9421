package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/interview-agent/internal/intake"
	"github.com/jonathan/interview-agent/internal/notify"
	"github.com/jonathan/interview-agent/internal/observability"
	"github.com/jonathan/interview-agent/internal/questions"
)

var (
	questionsConfigPath string
	questionsOutputDir  string
	questionsConcurrent int
)

var questionsCmd = &cobra.Command{
	Use:   "questions <resume>...",
	Short: "Generate tailored question sets from resume files",
	Long:  "Generates a six-question interview set for each resume file and prints it (or writes one JSON file per resume with --output). Resumes are processed concurrently.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runQuestionsCmd,
}

func init() {
	questionsCmd.Flags().StringVar(&questionsConfigPath, "config", "", "Path to config.json file")
	questionsCmd.Flags().StringVarP(&questionsOutputDir, "output", "o", "", "Directory to write <resume>.questions.json files into")
	questionsCmd.Flags().IntVar(&questionsConcurrent, "concurrency", 3, "Maximum resumes processed at once")
	rootCmd.AddCommand(questionsCmd)
}

type questionSet struct {
	Source    string               `json:"source"`
	Fallback  bool                 `json:"fallback"`
	Questions []questions.Question `json:"questions"`
}

func runQuestionsCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(questionsConfigPath)
	if err != nil {
		return err
	}
	if questionsOutputDir != "" {
		if err := os.MkdirAll(questionsOutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	client := newLLMClient(ctx, cfg)
	if client != nil {
		defer func() { _ = client.Close() }()
	}

	var notifyMu sync.Mutex
	notifyFn := notify.Func(func(level notify.Level, message string) {
		notifyMu.Lock()
		fmt.Fprintf(os.Stderr, "[%s] %s\n", level, message)
		notifyMu.Unlock()
	})
	provider := questions.NewProvider(client, cfg.AITimeout(), notifyFn)

	sets := make([]questionSet, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(questionsConcurrent)
	for i, path := range args {
		g.Go(func() error {
			text, err := intake.FromFile(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			result := provider.Generate(gctx, text)
			sets[i] = questionSet{Source: path, Fallback: result.Fallback, Questions: result.Questions}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(sets, func(i, j int) bool { return sets[i].Source < sets[j].Source })
	for _, set := range sets {
		if err := emitQuestionSet(set); err != nil {
			return err
		}
	}
	return nil
}

func emitQuestionSet(set questionSet) error {
	if questionsOutputDir == "" {
		observability.NewPrinter(os.Stdout).PrintQuestionSet(set.Source, set.Fallback, set.Questions)
		return nil
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return err
	}
	base := filepath.Base(set.Source)
	out := filepath.Join(questionsOutputDir, base[:len(base)-len(filepath.Ext(base))]+".questions.json")
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}
