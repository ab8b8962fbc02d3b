package cmd

import (
	"context"

	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/verify"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Probe stored credentials against their providers with read-only calls",
	Run:   runVerify,
}

func init() {
	initVerifyArgs()
	rootCmd.AddCommand(verifyCmd)
}

func initVerifyArgs() {
	flags := verifyCmd.Flags()

	flags.Int(
		"verify.limit",
		0,
		"At most this many credentials per run, zero for all.")

	flags.Int(
		"verify.worker-count",
		4,
		"How many providers to probe concurrently.")

	flags.Duration(
		"verify.probe-interval",
		verify.DefaultProbeInterval,
		"Minimum spacing between probes against one provider host.")
}

func runVerify(*cobra.Command, []string) {
	st, db := openStore()
	defer db.Close()

	verifier := verify.NewVerifier(nil, verify.NewDefaultProbeSet(), st,
		cfg.Verify.ProbeInterval, cfg.Verify.WorkerCount, log.AddPrefixPath("verify"))

	summary, err := verifier.VerifyAll(context.Background(), cfg.Verify.Limit)
	if err != nil {
		errors.Fatal(log, errors.WithMessage(err, "verification failed"))
	}

	log.Info("Verification completed")
	log.Infof("- Checked:     %d", summary.Checked)
	log.Infof("- Valid:       %d", summary.Valid)
	log.Infof("- Invalid:     %d", summary.Invalid)
	log.Infof("- Unsupported: %d", summary.Unsupported)
	log.Infof("- Transient:   %d", summary.Transient)
}
