package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1babii1/lessonsBot/core/buildinfo"
	corecmd "github.com/1babii1/lessonsBot/core/cmd"
	"github.com/1babii1/lessonsBot/core/logger"
	"github.com/1babii1/lessonsBot/internal/app"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lessonbot",
	Short: "Telegram bot that counts remaining lessons",
	Long: `lessonbot keeps a counter of remaining occurrences per lesson title.

Configuration is read from the YAML file given by --config or CONFIG_PATH,
then overridden by environment variables such as BOT_TOKEN, LESSONS_BACKEND
and DB_PATH.`,
	SilenceUsage: true,
	RunE:         runBot,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply schema migrations and exit",
	RunE:  runMigrate,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default $CONFIG_PATH)")
	rootCmd.AddCommand(migrateCmd, versionCmd)
}

func runBot(*cobra.Command, []string) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath: configPath,
		LoadConfig: app.LoadCarrier,
		Bootstrap:  app.BootstrapCarrier,
	})
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	path := corecmd.ResolveConfigPath(configPath, "")
	cfg, err := app.LoadStorageConfig(path)
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Config); err != nil {
		return err
	}
	defer func() {
		if lerr := logger.Shutdown(); lerr != nil {
			log.Printf("logger shutdown error: %v", lerr)
		}
	}()

	if cfg.Storage.Backend == app.BackendMongo {
		fmt.Fprintln(cmd.OutOrStdout(), "mongo backend has no schema to migrate")
		return nil
	}
	res, err := app.Migrate(context.Background(), cfg)
	if err != nil {
		return err
	}
	applied := "none"
	if len(res.Applied) > 0 {
		applied = strings.Join(res.Applied, ", ")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d -> %d, applied: %s\n", res.From, res.To, applied)
	return nil
}
