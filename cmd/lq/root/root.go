package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lifequest/internal/config"
	"lifequest/internal/logging"
	"lifequest/internal/ui"
)

const Version = "0.2.0"

var (
	cfg    config.Config
	logger = zap.NewNop()

	flagDB       string
	flagUser     string
	flagCatalog  string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:           "lq",
	Short:         "Lifequest: level up your life categories by finishing tasks",
	Long:          "Lifequest tracks tasks, habits, shared routines and challenges, turns completions into per-category XP and awards badges.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if flagDB != "" {
			loaded.DBPath = flagDB
		}
		if flagUser != "" {
			loaded.UserID = flagUser
		}
		if flagCatalog != "" {
			loaded.CatalogPath = flagCatalog
		}
		if flagLogLevel != "" {
			loaded.LogLevel = flagLogLevel
		}
		cfg = loaded

		l, err := logging.New(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func Execute() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDB, "db", "", "SQLite database path (default $LIFEQUEST_DB or ~/.lifequest.db)")
	pf.StringVarP(&flagUser, "user", "u", "", "User id (default $LIFEQUEST_USER or \"me\")")
	pf.StringVar(&flagCatalog, "catalog", "", "YAML badge catalog (default built-in)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug|info|warn|error")

	rootCmd.AddCommand(
		newAddCmd(),
		newDoCmd(),
		newListCmd(),
		newStatusCmd(),
		newBadgesCmd(),
		newGrantCmd(),
		newPrestigeCmd(),
		newRolloverCmd(),
		newBoardCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}
