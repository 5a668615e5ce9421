// Package main provides the entry point for the interview agent: an
// AI-assisted timed technical interview runner with a REST API and a
// terminal mode.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "interview_agent",
	Short: "AI-assisted timed technical interviews",
	Long:  "Interview Agent runs six-question timed technical interviews: questions are generated from the candidate's resume, answers are collected under per-question countdowns, and completed interviews are scored.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
