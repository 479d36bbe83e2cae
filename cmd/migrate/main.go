package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"subtracker/internal/database"
	"subtracker/internal/logger"
	"subtracker/internal/models"
	"subtracker/internal/services"
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the sub_tracker database schema",
	Long:          `Apply or roll back schema migrations, seed the default categories and inspect the database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(downCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(pruneTokensCmd())
}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := rootCmd.Execute(); err != nil {
		logger.Get().Fatalf("Migration error: %v", err)
	}
}

// openManager connects using the DB_* environment.
func openManager() (*database.Manager, error) {
	cfg, err := database.NewConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database configuration: %w", err)
	}
	return database.NewManager(cfg)
}

func withManager(fn func(m *database.Manager) error) error {
	m, err := openManager()
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Get().Warnf("failed to close database: %v", err)
		}
	}()
	return fn(m)
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations and seed default categories",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withManager(func(m *database.Manager) error {
				if err := m.Initialize(); err != nil {
					return err
				}
				logger.Get().Info("Migrations applied successfully")
				return nil
			})
		},
	}
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [N]",
		Short: "Roll back the last N migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				steps = n
			}
			return withManager(func(m *database.Manager) error {
				if err := m.RollbackMigrations(steps); err != nil {
					return err
				}
				logger.Get().Infof("Rolled back %d migration(s)", steps)
				return nil
			})
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withManager(func(m *database.Manager) error {
				version, dirty, err := m.MigrationVersion()
				if err != nil {
					return err
				}
				logger.Get().Infof("Version: %d, Dirty: %v", version, dirty)
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert any missing default category",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withManager(func(m *database.Manager) error {
				inserted, err := database.SeedCategories(m.DB())
				if err != nil {
					return err
				}
				logger.Get().Infow("Seeded default categories", "inserted", inserted)
				return nil
			})
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the schema version and category counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withManager(func(m *database.Manager) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				defer w.Flush()

				version, dirty, err := m.MigrationVersion()
				switch {
				case errors.Is(err, database.ErrMigrationsUnsupported):
					fmt.Fprintf(w, "schema\tmanaged by models\n")
				case err != nil:
					return err
				default:
					fmt.Fprintf(w, "schema version\t%d\n", version)
					fmt.Fprintf(w, "dirty\t%v\n", dirty)
				}

				counts, err := services.NewCategoryService(m.DB()).CountByType()
				if err != nil {
					return err
				}
				for _, t := range []models.CategoryType{models.CategoryTypeIncome, models.CategoryTypeExpense, models.CategoryTypeTransfer} {
					fmt.Fprintf(w, "%s categories\t%d\n", t, counts[t])
				}
				return nil
			})
		},
	}
}

func pruneTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune-tokens",
		Short: "Delete expired auth tokens",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withManager(func(m *database.Manager) error {
				removed, err := services.NewAuthTokenService(m.DB()).PruneExpired(time.Now())
				if err != nil {
					return err
				}
				logger.Get().Infow("Pruned expired tokens", "removed", removed)
				return nil
			})
		},
	}
}
