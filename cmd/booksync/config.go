package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/booksync/internal/config"
	"github.com/jackzampolin/booksync/internal/home"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage booksync configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.yaml",
	Long: `Write a default config.yaml to the current directory, or to
~/.booksync/config.yaml with --global.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "config.yaml"
		if global, _ := cmd.Flags().GetBool("global"); global {
			dir, err := home.New("")
			if err != nil {
				return err
			}
			if err := dir.EnsureExists(); err != nil {
				return err
			}
			if dir.ConfigExists() {
				return fmt.Errorf("%s already exists", dir.ConfigPath())
			}
			path = dir.ConfigPath()
		} else if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.WriteDefault(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("global", false, "write to ~/.booksync/config.yaml instead of the current directory")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
