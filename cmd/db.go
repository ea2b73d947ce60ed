package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inkpost/app/repositories"
	"inkpost/app/repositories/postgres"
	"inkpost/config"

	"github.com/spf13/cobra"
)

// dbCmd groups the maintenance commands of the embedded badger store.
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Maintain the blog database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new empty database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return initStore(cmd.OutOrStdout(), cfg.Store.BadgerPath)
	},
}

var dbCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		return cleanStore(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Store.BadgerPath, yes)
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Create a backup of the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		_, err = backupStore(cmd.OutOrStdout(), cfg.Store.BadgerPath, cfg.Store.BackupDir, time.Now())
		return err
	},
}

var dbRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Restore the database from a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		return restoreStore(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Store.BadgerPath, args[0], yes)
	},
}

var dbPruneSessionsCmd = &cobra.Command{
	Use:   "prune-sessions",
	Short: "Delete expired sessions from PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		return pruneSessions(cmd.Context(), cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd, dbCleanCmd, dbBackupCmd, dbRestoreCmd, dbPruneSessionsCmd)
	dbCleanCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation")
	dbRestoreCmd.Flags().BoolP("yes", "y", false, "replace an existing database without asking")
}

// errCancelled is returned when the operator declines a destructive step.
var errCancelled = errors.New("operation cancelled")

// confirm asks question on out and accepts only y or Y from in.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// initStore creates an empty database at path.
func initStore(out io.Writer, path string) error {
	found, err := exists(path)
	if err != nil {
		return err
	}
	if found {
		fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	store, err := repositories.OpenBadger(repositories.BadgerOptions{Path: path})
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	if err := store.Close(); err != nil {
		return err
	}

	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

// cleanStore removes the database at path after confirmation.
func cleanStore(in io.Reader, out io.Writer, path string, yes bool) error {
	found, err := exists(path)
	if err != nil {
		return err
	}
	if !found {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}

	if !yes && !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone.") {
		return errCancelled
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clean database: %w", err)
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// backupStore writes a full badger backup into dir and returns its path.
func backupStore(out io.Writer, path, dir string, now time.Time) (string, error) {
	found, err := exists(path)
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("no database exists to backup at %s", path)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	store, err := repositories.OpenBadger(repositories.BadgerOptions{Path: path})
	if err != nil {
		return "", err
	}
	defer store.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", now.Unix()))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("create backup file: %w", err)
	}

	if _, err := store.DB().Backup(f, 0); err != nil {
		f.Close()
		return "", fmt.Errorf("backup database: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}

	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// restoreStore replaces the database at path with the contents of backupFile.
func restoreStore(in io.Reader, out io.Writer, path, backupFile string, yes bool) (err error) {
	fi, err := os.Stat(backupFile)
	if err != nil {
		return fmt.Errorf("backup file: %w", err)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	found, err := exists(path)
	if err != nil {
		return err
	}
	if found {
		if !yes && !confirm(in, out, "Existing database found. Do you want to replace it?") {
			return errCancelled
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove existing database: %w", err)
		}
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create database directory: %w", err)
	}
	store, err := repositories.OpenBadger(repositories.BadgerOptions{Path: path})
	if err != nil {
		return err
	}
	defer store.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("open backup file: %w", err)
	}
	defer f.Close()

	// badger panics on some corrupt inputs instead of returning an error.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("restore database: %v", r)
		}
	}()
	if err := store.DB().Load(f, 16); err != nil {
		return fmt.Errorf("restore database: %w", err)
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

// pruneSessions deletes expired PostgreSQL sessions. Badger drops expired
// sessions by itself through entry TTLs.
func pruneSessions(ctx context.Context, out io.Writer, cfg config.Config) error {
	if cfg.Store.Driver != config.DriverPostgres {
		fmt.Fprintln(out, "Nothing to prune: badger expires sessions on its own")
		return nil
	}

	store, err := postgres.Open(ctx, cfg.Database.DSN())
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.PruneSessions(ctx)
	if err != nil {
		return fmt.Errorf("prune sessions: %w", err)
	}
	fmt.Fprintf(out, "Removed %d expired sessions\n", n)
	return nil
}
