package retrieve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/toothbrush/metadata-dump/metadata"
	"github.com/toothbrush/metadata-dump/salesforce"
)

// export submits a retrieve job for the manifest and polls it until it's done.  It returns the
// job id and the base64 zip payload.
func (r *Retriever) export(ctx context.Context, m metadata.Manifest) (string, string, error) {
	req := salesforce.RetrieveRequest{
		APIVersion:    r.apiVersion(),
		SinglePackage: true,
		Unpackaged:    packageFor(m, r.apiVersion()),
	}

	job, err := r.API.Retrieve(ctx, req)
	if err != nil {
		return "", "", &ExportError{Err: err}
	}
	r.logger().Info("submitted retrieve job", "job", job.ID, "members", m.Len())

	pollCtx, cancel := context.WithTimeout(ctx, r.pollTimeout())
	defer cancel()

	ticker := time.NewTicker(r.pollInterval())
	defer ticker.Stop()

	var last salesforce.RetrieveStatus
	for attempt := 1; ; attempt++ {
		select {
		case <-ticker.C:
		case <-pollCtx.Done():
			reason := "cancelled while waiting"
			if errors.Is(pollCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				reason = fmt.Sprintf("not done after %s", r.pollTimeout())
			}
			return job.ID, "", &ExportError{JobID: job.ID, Status: last, Reason: reason, Err: context.Cause(pollCtx)}
		}

		res, err := r.API.CheckRetrieveStatus(pollCtx, job.ID, true)
		if err != nil {
			return job.ID, "", &ExportError{JobID: job.ID, Status: last, Err: err}
		}
		last = res.Status

		if !res.Status.Terminal() {
			r.notify(PollEvent{JobID: job.ID, Attempt: attempt, Status: res.Status})
			if r.MaxPolls > 0 && attempt >= r.MaxPolls {
				return job.ID, "", &ExportError{JobID: job.ID, Status: last, Reason: fmt.Sprintf("not done after %d polls", attempt)}
			}
			continue
		}

		if res.Status != salesforce.StatusSucceeded {
			return job.ID, "", &ExportError{JobID: job.ID, Status: res.Status, Reason: failureReason(res)}
		}
		if res.ZipFile == "" {
			return job.ID, "", &ExportError{JobID: job.ID, Status: res.Status, Reason: "job finished without a zip file"}
		}
		for _, msg := range res.Messages {
			r.logger().Warn("retrieve problem", "file", msg.FileName, "problem", msg.Problem)
		}
		return job.ID, res.ZipFile, nil
	}
}

func (r *Retriever) notify(e PollEvent) {
	for _, o := range r.Observers {
		o.ObservePoll(e)
	}
}

func packageFor(m metadata.Manifest, version string) *salesforce.Package {
	pkg := &salesforce.Package{Version: version}
	for _, tm := range m.Types() {
		pkg.Types = append(pkg.Types, salesforce.PackageTypeMembers{Name: tm.Type, Members: tm.Members})
	}
	return pkg
}

func failureReason(res *salesforce.RetrieveResult) string {
	switch {
	case res.ErrorMessage != "" && res.ErrorStatusCode != "":
		return fmt.Sprintf("%s: %s", res.ErrorStatusCode, res.ErrorMessage)
	case res.ErrorMessage != "":
		return res.ErrorMessage
	case len(res.Messages) > 0:
		return res.Messages[0].Problem
	}
	return ""
}
