package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/cli"
	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries state shared by every command of one invocation.
type app struct {
	v        *viper.Viper
	cfgFile  string
	settings config.Settings
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	rootCmd := &cobra.Command{
		Use:   "books",
		Short: cli.BookIcon + " Household bookkeeping from the command line",
		Long: `books keeps household accounts, envelope budgets and loans in a local
SQLite book.

Income is spread across envelopes as it arrives, expenses are charged to their
envelope and account, loans carry a full amortization schedule and the budget
command compares spending with the 50/30/20 rule.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initConfig,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/books/config.yaml)")
	flags.String("db", "", "path to the SQLite book")
	flags.String("method", "", "income distribution method (priority, equal, proportional)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	_ = v.BindPFlag(config.KeyDatabasePath, flags.Lookup("db"))
	_ = v.BindPFlag(config.KeyAllocationMethod, flags.Lookup("method"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	rootCmd.AddCommand(a.accountsCmd())
	rootCmd.AddCommand(a.envelopesCmd())
	rootCmd.AddCommand(a.loansCmd())
	rootCmd.AddCommand(a.txCmd())
	rootCmd.AddCommand(a.budgetCmd())
	rootCmd.AddCommand(a.importOFXCmd())
	rootCmd.AddCommand(a.exportCmd())
	rootCmd.AddCommand(a.backupCmd())
	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	interrupts := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := interrupts.HandleInterrupts(context.Background())

	err := newRootCmd(viper.GetViper()).ExecuteContext(ctx)
	stop()

	if err != nil {
		if !interrupts.WasInterrupted() {
			fmt.Fprintln(os.Stderr, cli.FormatError(userMessage(err)))
		}
		os.Exit(1)
	}
}

func userMessage(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	return err.Error()
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	// A .env file is optional.
	_ = godotenv.Load()

	if a.cfgFile != "" {
		a.v.SetConfigFile(config.ExpandPath(a.cfgFile))
	} else {
		a.v.AddConfigPath(config.ConfigDir())
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	// Environment variables
	a.v.SetEnvPrefix("BOOKS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	config.SetDefaults(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings

	level, err := common.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(level, settings.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "books version %s\n", version)
		},
	}
}
