package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-agent/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Hash an operator password for OPERATOR_PASSWORD_HASH",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	authCfg, err := config.NewAuthConfig()
	if err != nil {
		return err
	}
	hash, err := authCfg.HashPassword(args[0])
	if err != nil {
		return err
	}
	cmd.Println(hash)
	return nil
}
