package retrieve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/toothbrush/metadata-dump/metadata"
	"github.com/toothbrush/metadata-dump/salesforce"
)

const (
	DefaultWorkers      = 5
	DefaultGroupSize    = salesforce.MaxListMetadataQueries
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 10 * time.Minute
)

// MetadataAPI is the part of *salesforce.API a Retriever needs.
type MetadataAPI interface {
	ListMetadata(ctx context.Context, queries []salesforce.ListMetadataQuery) ([]salesforce.FileProperties, error)
	Retrieve(ctx context.Context, req salesforce.RetrieveRequest) (*salesforce.AsyncResult, error)
	CheckRetrieveStatus(ctx context.Context, id string, includeZip bool) (*salesforce.RetrieveResult, error)
}

// PollEvent is sent to observers for every poll that didn't finish the job.
type PollEvent struct {
	JobID   string
	Attempt int
	Status  salesforce.RetrieveStatus
}

type PollObserver interface {
	ObservePoll(PollEvent)
}

// PollObserverFunc lets a plain function observe polls.
type PollObserverFunc func(PollEvent)

func (f PollObserverFunc) ObservePoll(e PollEvent) { f(e) }

// Retriever runs one retrieval: resolve globs to types, list what the org has of those types,
// filter, build a manifest, run a retrieve job and unpack its zip into a scratch directory.
// Zero values get sensible defaults.
type Retriever struct {
	API        MetadataAPI
	Table      metadata.Table
	APIVersion string

	// concurrent listMetadata queries
	Workers int
	// types per listMetadata query
	GroupSize int

	PollInterval time.Duration
	PollTimeout  time.Duration
	// give up after this many status checks; 0 means only PollTimeout applies
	MaxPolls int

	// parent of the scratch directory, os.TempDir() when empty
	ScratchBase string
	// leave the scratch directory behind
	KeepScratch bool
	// stop after building the manifest
	DryRun bool

	Logger *log.Logger
	// discovery progress bar goes here; nil disables it
	Progress  io.Writer
	Observers []PollObserver
}

// Result describes how far a run got.  It's returned together with the error when a run fails.
type Result struct {
	Types    []metadata.Type
	Paths    []string
	Manifest metadata.Manifest
	JobID    string
	// only set when the scratch directory was kept
	ScratchDir string
	// extracted files, slash separated and relative to the scratch directory
	Files []string
}

// Run retrieves whatever matches globs.  No globs means everything.
func (r *Retriever) Run(ctx context.Context, globs []string) (res *Result, err error) {
	res = &Result{}

	globs = metadata.DefaultGlobs(globs)
	if err := metadata.ValidateGlobs(globs); err != nil {
		return res, fmt.Errorf("retrieve: %w", err)
	}

	tbl := r.table()
	res.Types = tbl.Resolve(globs)
	if len(res.Types) == 0 {
		r.logger().Warn("no metadata types match", "globs", globs)
		return res, nil
	}
	r.logger().Debug("resolved types", "count", len(res.Types))

	discovered, err := r.discover(ctx, res.Types)
	if err != nil {
		return res, err
	}
	res.Paths = metadata.FilterOnGlobs(discovered, globs)
	r.logger().Info("discovered", "files", len(discovered), "matching", len(res.Paths))

	res.Manifest = metadata.BuildManifest(tbl, res.Paths)
	for _, p := range res.Manifest.Skipped() {
		r.logger().Warn("no metadata type for path, skipping", "path", p)
	}
	if res.Manifest.Empty() {
		r.logger().Info("nothing to retrieve")
		return res, nil
	}
	if r.DryRun {
		return res, nil
	}

	jobID, zipFile, err := r.export(ctx, res.Manifest)
	res.JobID = jobID
	if err != nil {
		return res, err
	}

	dir, files, err := r.unpack(ctx, zipFile)
	if dir != "" {
		defer func() {
			if r.KeepScratch {
				res.ScratchDir = dir
				r.logger().Info("keeping scratch directory", "dir", dir)
				return
			}
			if cerr := r.cleanup(dir); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()
	}
	if err != nil {
		return res, err
	}
	res.Files = files
	r.logger().Info("retrieved", "job", jobID, "files", len(files))

	return res, nil
}

func (r *Retriever) cleanup(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return &CleanupError{Dir: dir, Err: err}
	}
	r.logger().Debug("removed scratch directory", "dir", dir)
	return nil
}

func (r *Retriever) table() metadata.Table {
	if len(r.Table) == 0 {
		return metadata.DefaultTable
	}
	return r.Table
}

func (r *Retriever) apiVersion() string {
	if r.APIVersion == "" {
		return salesforce.DefaultAPIVersion
	}
	return r.APIVersion
}

func (r *Retriever) workers() int {
	if r.Workers < 1 {
		return DefaultWorkers
	}
	return r.Workers
}

func (r *Retriever) groupSize() int {
	if r.GroupSize < 1 || r.GroupSize > salesforce.MaxListMetadataQueries {
		return DefaultGroupSize
	}
	return r.GroupSize
}

func (r *Retriever) pollInterval() time.Duration {
	if r.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return r.PollInterval
}

func (r *Retriever) pollTimeout() time.Duration {
	if r.PollTimeout <= 0 {
		return DefaultPollTimeout
	}
	return r.PollTimeout
}

func (r *Retriever) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
