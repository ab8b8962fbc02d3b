package cmd

import (
	"context"
	"path/filepath"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/reclassify"
	"github.com/nagelea/keysentry/pkg/store"

	"github.com/spf13/cobra"
)

var reprocessCmd = &cobra.Command{
	Use:   "reprocess",
	Short: "Replay stored credentials through the current pattern catalog",
	Run:   runReprocess,
}

func init() {
	initReprocessArgs()
	rootCmd.AddCommand(reprocessCmd)
}

func initReprocessArgs() {
	flags := reprocessCmd.Flags()

	flags.String(
		"key-type",
		"",
		"Only reprocess credentials of this key type.")

	flags.String(
		"status",
		"",
		"Only reprocess credentials with this status.")
}

func runReprocess(cmd *cobra.Command, _ []string) {
	keyType, err := cmd.Flags().GetString("key-type")
	exitOnErr(err, "unable to read key-type parameter")
	status, err := cmd.Flags().GetString("status")
	exitOnErr(err, "unable to read status parameter")

	if keyType != "" && !catalog.ValidKeyType(keyType) {
		errors.Fatal(log, errors.Errorv("unknown key type", keyType))
	}
	if status != "" && !store.ValidStatus(status) {
		errors.Fatal(log, errors.Errorv("unknown status", status))
	}

	st, db := openStore()
	defer db.Close()

	reprocessor := reclassify.New(st, catalog.NewDefault(),
		filepath.Join(cfg.OutputDir, "report"),
		filepath.Join(cfg.OutputDir, "report-archive"),
		log.AddPrefixPath("reprocess"))

	report, err := reprocessor.Run(context.Background(), &store.Filter{
		KeyType: catalog.KeyType(keyType),
		Status:  store.Status(status),
	})
	if err != nil {
		errors.Fatal(log, errors.WithMessage(err, "reprocessing failed"))
	}

	log.Info("Reprocessing completed")
	log.Infof("- Examined:     %d", report.Examined)
	log.Infof("- Kept:         %d", report.Kept)
	log.Infof("- Reclassified: %d", report.Reclassified)
	log.Infof("- Deleted:      %d", report.Deleted)
}
