package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tonysxn/brobar.delivery/internal/apply"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Execute the image update statements against Postgres",
	Args:  cobra.NoArgs,
	RunE:  runApply,
}

func init() {
	applyCmd.Flags().String("file", "", "Statement file (default scripts/update_images.sql)")
	applyCmd.Flags().String("dsn", "", "Postgres connection URL (default built from DB_* env)")
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	path := cfg.UpdatesPath
	if v, _ := cmd.Flags().GetString("file"); v != "" {
		path = v
	}
	dsn := cfg.DatabaseURL()
	if v, _ := cmd.Flags().GetString("dsn"); v != "" {
		dsn = v
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	stmts, err := apply.ParseStatements(f)
	f.Close()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := apply.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	res, err := apply.Run(ctx, db, stmts, log)
	if err != nil {
		return fmt.Errorf("apply %s: %w", path, err)
	}

	fmt.Fprintf(os.Stdout, "Applied %d statements from %s (%d rows updated, %d unmatched)\n",
		res.Statements, path, res.RowsAffected, res.Unmatched)
	return nil
}
