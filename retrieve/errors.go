package retrieve

import (
	"fmt"
	"strings"

	"github.com/toothbrush/metadata-dump/salesforce"
)

// DiscoveryError means a listMetadata query failed.  Nothing from the discovery phase is used
// when this happens.
type DiscoveryError struct {
	// type names of the failed query
	Types []string
	Err   error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("retrieve: couldn't list %s: %v", strings.Join(e.Types, ", "), e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ExportError means the retrieve job couldn't be submitted, or didn't produce a zip file.
type ExportError struct {
	// empty when submission itself failed
	JobID string
	// last status we saw, if any
	Status salesforce.RetrieveStatus
	// what the server said went wrong, if it said anything
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	var b strings.Builder
	b.WriteString("retrieve: export")
	if e.JobID != "" {
		fmt.Fprintf(&b, " job %s", e.JobID)
	}
	if e.Status != "" {
		fmt.Fprintf(&b, " (%s)", e.Status)
	}
	b.WriteString(" failed")
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExportError) Unwrap() error { return e.Err }

// UnpackError means the zip payload couldn't be decoded or extracted.
type UnpackError struct {
	Dir string
	Err error
}

func (e *UnpackError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("retrieve: couldn't unpack: %v", e.Err)
	}
	return fmt.Sprintf("retrieve: couldn't unpack into %s: %v", e.Dir, e.Err)
}

func (e *UnpackError) Unwrap() error { return e.Err }

// CleanupError means the scratch directory couldn't be removed.
type CleanupError struct {
	Dir string
	Err error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("retrieve: couldn't remove scratch directory %s: %v", e.Dir, e.Err)
}

func (e *CleanupError) Unwrap() error { return e.Err }
