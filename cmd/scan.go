package cmd

import (
	"context"
	"time"

	"github.com/nagelea/keysentry/pkg/catalog"
	"github.com/nagelea/keysentry/pkg/errors"
	"github.com/nagelea/keysentry/pkg/fetch"
	"github.com/nagelea/keysentry/pkg/scan"
	"github.com/nagelea/keysentry/pkg/stats"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Search public code for leaked credentials and store confirmed finds",
	Run:   runScan,
}

func init() {
	initScanArgs()
	rootCmd.AddCommand(scanCmd)
}

func initScanArgs() {
	flags := scanCmd.Flags()

	flags.String(
		"mode",
		"full",
		"Scan mode. \"full\" runs every pattern, \"strict\" only high-confidence ones.")

	flags.Int(
		"max-pages",
		scan.DefaultMaxPages,
		"Search result pages to walk per query.")

	flags.Int(
		"max-file-size",
		fetch.DefaultMaxContentSize,
		"Largest file, in bytes, worth fetching.")

	flags.Duration(
		"search-interval",
		scan.DefaultSearchInterval,
		"Minimum spacing between search requests.")

	flags.Duration(
		"fetch-interval",
		scan.DefaultFetchInterval,
		"Minimum spacing between file fetches.")

	flags.Duration(
		"cool-down-penalty",
		scan.DefaultCoolDownPenalty,
		"How long to back off after the host signals rate limiting.")
}

func runScan(*cobra.Command, []string) {
	if cfg.GithubToken == "" {
		errors.Fatal(log, errors.New("github-token is required"))
	}

	st, db := openStore()
	defer db.Close()

	sts := stats.New()
	sts.ExecutionStartTime = time.Now()

	fetcher := fetch.New(fetch.NewClient(cfg.GithubToken), cfg.MaxFileSize, log.AddPrefixPath("fetch"))
	scanner := scan.NewScanner(fetcher, catalog.NewDefault(), st, sts, newInteract(),
		scan.Options{
			Mode:            scanMode(),
			MaxPages:        cfg.MaxPages,
			SearchInterval:  cfg.SearchInterval,
			FetchInterval:   cfg.FetchInterval,
			CoolDownPenalty: cfg.CoolDownPenalty,
		}, log.AddPrefixPath("scan"))

	session, err := scanner.Run(context.Background())
	sts.ExecutionEndTime = time.Now()
	if err != nil {
		errors.ErrLog(log, err).Error("scan ended early")
	}

	log.Info("Scan completed")
	log.Infof("- Session:           %s", session.ID)
	log.Infof("- Queries run:       %d", session.QueriesRun)
	log.Infof("- Queries failed:    %d", session.QueriesFailed)
	log.Infof("- Files scanned:     %d", session.FilesScanned)
	log.Infof("- Candidates found:  %d", session.CandidatesFound)
	log.Infof("- Rejected:          %d", session.Rejected)
	log.Infof("- Duplicates:        %d", session.Duplicates)
	log.Infof("- Credentials added: %d", session.Stored)
	log.Infof("- Total duration:    %s", sts.ExecutionDurationHuman())

	for _, stat := range sts.FileDurations.Stats() {
		log.Debugf("- slow file: %s (%s)", stat.Item, stat.Dur)
	}
}
