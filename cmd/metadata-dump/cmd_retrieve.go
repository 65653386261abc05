/*
Copyright © 2024 paul <paul@denknerd.org>
*/
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/toothbrush/metadata-dump/internal/termfmt"
	"github.com/toothbrush/metadata-dump/metadata"
	"github.com/toothbrush/metadata-dump/retrieve"
)

var retrieveUsage = strings.TrimSpace(`
Retrieve metadata from the org.  Globs are matched against paths as they'd appear in your project,
e.g. src/classes/Foo.cls:

  metadata-dump retrieve 'classes/*' '*.trigger' 'email/Sales/**'

Patterns without a slash match file names in any folder.  With no globs, everything is retrieved.
`)

// retrieveCmd represents the retrieve command
var retrieveCmd = &cobra.Command{
	Use:   "retrieve [globs...]",
	Short: "Retrieve metadata matching globs from the org",
	Long:  retrieveUsage,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRetrieve(cmd.Context(), args)
	},
}

var (
	LocalOnly    bool
	Replace      bool
	Meta         bool
	DryRun       bool
	KeepScratch  bool
	WithVCR      bool
	ScratchDir   string
	PollInterval time.Duration
	PollTimeout  time.Duration
)

func init() {
	rootCmd.AddCommand(retrieveCmd)

	retrieveCmd.Flags().BoolVarP(&LocalOnly, "local-only", "l", false, "only retrieve files that exist locally (accepted, has no effect)")
	retrieveCmd.Flags().BoolVarP(&Replace, "replace", "r", false, "replace local files (accepted, has no effect)")
	retrieveCmd.Flags().BoolVar(&Meta, "meta", false, "use the Metadata API (accepted, it's the only way we retrieve)")
	retrieveCmd.Flags().BoolVar(&DryRun, "dry-run", false, "print the package.xml that would be retrieved and stop")
	retrieveCmd.Flags().BoolVar(&KeepScratch, "keep-scratch", false, "don't remove the scratch directory afterwards")
	retrieveCmd.Flags().BoolVar(&WithVCR, "with-vcr", false, "record API traffic with go-vcr, replaying what's already recorded")
	retrieveCmd.Flags().StringVar(&ScratchDir, "scratch-dir", "", "where to unpack retrieved zips (default: system temp dir)")
	retrieveCmd.Flags().DurationVar(&PollInterval, "poll-interval", retrieve.DefaultPollInterval, "time between retrieve status checks")
	retrieveCmd.Flags().DurationVar(&PollTimeout, "poll-timeout", retrieve.DefaultPollTimeout, "give up on a retrieve job after this long")
}

func runRetrieve(ctx context.Context, globs []string) error {
	if err := metadata.ValidateGlobs(globs); err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}
	for _, f := range []struct {
		name string
		set  bool
	}{{"--local-only", LocalOnly}, {"--replace", Replace}, {"--meta", Meta}} {
		if f.set {
			logger.Warn("flag has no effect, ignoring", "flag", f.name)
		}
	}

	tbl, err := loadTable()
	if err != nil {
		return err
	}

	api, stop, err := newAPI(ctx)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}
	defer func() {
		if err := stop(); err != nil {
			logger.Error("couldn't save go-vcr cassette", "err", err)
		}
	}()

	r := &retrieve.Retriever{
		API:          api,
		Table:        tbl,
		APIVersion:   api.APIVersion,
		PollInterval: PollInterval,
		PollTimeout:  PollTimeout,
		ScratchBase:  ScratchDir,
		KeepScratch:  KeepScratch,
		DryRun:       DryRun,
		Logger:       logger,
		Progress:     progressOutput(),
		Observers:    []retrieve.PollObserver{retrieve.PollObserverFunc(logPoll)},
	}

	res, err := r.Run(ctx, globs)
	if err != nil {
		return fmt.Errorf("retrieve: %w", err)
	}

	if DryRun {
		if res.Manifest.Empty() {
			return nil
		}
		packageXML, err := res.Manifest.PackageXML(api.APIVersion)
		if err != nil {
			return fmt.Errorf("retrieve: %w", err)
		}
		_, err = os.Stdout.Write(packageXML)
		return err
	}

	if res.JobID == "" {
		return nil
	}
	for _, f := range res.Files {
		fmt.Println(f)
	}
	fmt.Fprintf(os.Stderr, "%s %d files from job %s\n", termfmt.Fg(termfmt.Green).Bold().V("Retrieved"), len(res.Files), res.JobID)
	if res.ScratchDir != "" {
		fmt.Fprintf(os.Stderr, "%s\n", termfmt.Faint().V("unpacked into "+res.ScratchDir))
	}
	return nil
}

func logPoll(e retrieve.PollEvent) {
	logger.Info("waiting for retrieve job", "job", e.JobID, "poll", e.Attempt, "status", e.Status)
}

// the progress bar is noise when stderr goes to a file
func progressOutput() io.Writer {
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return os.Stderr
	}
	return nil
}

func loadTable() (metadata.Table, error) {
	if TypesFile == "" {
		return metadata.DefaultTable, nil
	}
	tbl, err := metadata.LoadTableFile(TypesFile)
	if err != nil {
		return nil, fmt.Errorf("metadata-dump: %w", err)
	}
	debugLog("Loaded %d metadata types from %s.\n", len(tbl), TypesFile)
	return tbl, nil
}
