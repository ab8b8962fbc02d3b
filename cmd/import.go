package cmd

import (
	"context"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/importer"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Ingest operator-declared credentials from a YAML file",
	Args:  cobra.ExactArgs(1),
	Run:   runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(_ *cobra.Command, args []string) {
	st, db := openStore()
	defer db.Close()

	imp := importer.New(st, catalog.NewDefault(), log.AddPrefixPath("import"))

	summary, err := imp.ImportFile(context.Background(), args[0])
	if err != nil {
		errors.Fatal(log, errors.WithMessage(err, "import failed"))
	}

	log.Info("Import completed")
	log.Infof("- Imported:   %d", summary.Imported)
	log.Infof("- Duplicates: %d", summary.Duplicates)
	log.Infof("- Skipped:    %d", summary.Skipped)
}
