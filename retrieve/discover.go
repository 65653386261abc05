package retrieve

import (
	"context"

	"github.com/toothbrush/metadata-dump/metadata"
	"github.com/toothbrush/metadata-dump/salesforce"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/sync/errgroup"
)

// discover lists every file the org has of the given types, as src/<fileName> paths.  In-folder
// types with a folder type get their folders listed first, then one query per folder.  The first
// failure cancels the rest.
func (r *Retriever) discover(ctx context.Context, types []metadata.Type) ([]string, error) {
	queries := make([]salesforce.ListMetadataQuery, 0, len(types))
	byFolderType := map[string]metadata.Type{}
	for _, t := range types {
		if t.InFolder && t.FolderType != "" {
			byFolderType[t.FolderType] = t
			queries = append(queries, salesforce.ListMetadataQuery{Type: t.FolderType})
			continue
		}
		queries = append(queries, salesforce.ListMetadataQuery{Type: t.Name})
	}
	if len(queries) == 0 {
		return []string{}, nil
	}

	// mpb renders nothing for a nil output
	p := mpb.NewWithContext(ctx, mpb.WithOutput(r.Progress), mpb.WithWidth(64))
	defer p.Wait()

	listed, err := r.listAll(ctx, p, "discovery:", queries)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(listed))
	var folderQueries []salesforce.ListMetadataQuery
	for _, fp := range listed {
		if t, ok := byFolderType[fp.Type]; ok {
			folderQueries = append(folderQueries, salesforce.ListMetadataQuery{Type: t.Name, Folder: fp.FullName})
			continue
		}
		paths = append(paths, "src/"+fp.FileName)
	}

	if len(folderQueries) > 0 {
		r.logger().Debug("listing folders", "count", len(folderQueries))
		inFolders, err := r.listAll(ctx, p, "folders:", folderQueries)
		if err != nil {
			return nil, err
		}
		for _, fp := range inFolders {
			paths = append(paths, "src/"+fp.FileName)
		}
	}

	return dedupe(paths), nil
}

// listAll runs one listMetadata call per group of queries, at most r.Workers in flight, and
// returns the results in query order.
func (r *Retriever) listAll(ctx context.Context, p *mpb.Progress, name string, queries []salesforce.ListMetadataQuery) ([]salesforce.FileProperties, error) {
	groups := metadata.Group(queries, r.groupSize())

	// each group owns its slot, so no locking
	slots := make([][]salesforce.FileProperties, len(groups))

	bar := p.AddBar(int64(len(groups)),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{C: decor.DindentRight | decor.DextraSpace}),
		),
		mpb.AppendDecorators(
			decor.CountersNoUnit("(%d/%d) "),
			decor.NewPercentage("%d"),
		),
	)

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(r.workers())

	for i, group := range groups {
		i, group := i, group
		grp.Go(func() error {
			names := queryNames(group)
			if err := gctx.Err(); err != nil {
				return &DiscoveryError{Types: names, Err: context.Cause(gctx)}
			}

			props, err := r.API.ListMetadata(gctx, group)
			if err != nil {
				return &DiscoveryError{Types: names, Err: err}
			}
			for _, fp := range props {
				if err := fp.Validate(); err != nil {
					return &DiscoveryError{Types: names, Err: err}
				}
			}
			slots[i] = props

			r.logger().Debug("listed", "types", names, "entries", len(props))
			bar.Increment()
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		bar.Abort(false)
		return nil, err
	}

	var out []salesforce.FileProperties
	for _, slot := range slots {
		out = append(out, slot...)
	}
	return out, nil
}

// dedupe drops repeated paths, keeping the first of each.
func dedupe(paths []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// queryNames names the queries of a group for errors and logs, e.g. EmailTemplate/Sales.
func queryNames(queries []salesforce.ListMetadataQuery) []string {
	names := make([]string, 0, len(queries))
	for _, q := range queries {
		if q.Folder != "" {
			names = append(names, q.Type+"/"+q.Folder)
			continue
		}
		names = append(names, q.Type)
	}
	return names
}
