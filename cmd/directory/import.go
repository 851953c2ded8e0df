package main

import (
	"fmt"
	"os"

	"github.com/gartstein/bawsala/internal/directory/catalog"
	"github.com/gartstein/bawsala/internal/directory/db"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Replace the database catalog with a JSON file",
	Long: `Reads a JSON array of company records and stores it, in order and
verbatim, as the database catalog. Records are validated the same way the
server validates them on load; invalid records are reported but still
stored, since rejection happens at load time.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		data, err := os.ReadFile(importFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", importFile, err)
		}
		records, err := catalog.ParseRecords(data)
		if err != nil {
			return err
		}

		built := catalog.Build(records, catalog.NewValidator(catalog.DefaultTaxonomy()))
		for _, r := range built.Rejections() {
			logger.Warn("Record will be rejected on load",
				zap.Int("index", r.Index),
				zap.String("company_id", r.ID),
				zap.String("reason", r.Reason),
			)
		}

		repo, err := db.NewRepository(cfg.database())
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer repo.Close()

		n, err := repo.ReplaceRecords(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		logger.Info("Import complete",
			zap.String("file", importFile),
			zap.Int("stored", n),
			zap.Int("valid", built.Len()),
			zap.Int("rejected", len(built.Rejections())),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%d valid)\n", n, built.Len())
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "path to the JSON catalog (required)")
	_ = importCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(importCmd)
}
