package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/m3rciful/catalogbot/core/buildinfo"
	corecmd "github.com/m3rciful/catalogbot/core/cmd"
	"github.com/m3rciful/catalogbot/internal/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)
	root := &cobra.Command{
		Use:           "catalogbot",
		Short:         "Telegram bot for managing the product catalog",
		Version:       buildinfo.Version + " (" + buildinfo.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			err := corecmd.Run(corecmd.Options{
				ConfigPath:        configPath,
				ConfigEnvVar:      "CONFIG_PATH",
				DefaultConfigPath: "config.yaml",
				LoadConfig:        app.LoadConfig,
				Bootstrap:         app.Bootstrap,
			})
			if err != nil {
				log.Printf("catalogbot: %v", err)
			}
			return err
		},
	}
	root.Flags().StringVarP(&configPath, "config", "c", "", "path to the YAML config (default $CONFIG_PATH or config.yaml)")
	root.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	return root
}

// loadEnvFile loads dotenv variables without overriding the real environment.
// A missing file is fine.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
