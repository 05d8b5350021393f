package pipeline

import (
	"context"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// BatchReport lists which documents of a batch succeeded and which failed.
type BatchReport struct {
	Succeeded []string
	Failed    map[string]error
}

// OK reports whether every document succeeded.
func (r BatchReport) OK() bool {
	return len(r.Failed) == 0
}

// RunBatch processes every path independently with up to concurrency
// documents in flight. A failing document is logged and recorded; it never
// stops its siblings. Succeeded keeps the order of paths. The onDone callback,
// if set, is called once per document as it finishes.
func (p *Processor) RunBatch(ctx context.Context, paths []string, concurrency int, onDone func(path string, err error)) BatchReport {
	if concurrency <= 0 {
		concurrency = 1
	}
	errs := make([]error, len(paths))

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			_, err := p.ProcessFile(ctx, path)
			errs[i] = err
			if err != nil {
				p.log.Error("document failed", "document", filepath.Base(path), "error", err)
			}
			if onDone != nil {
				mu.Lock()
				onDone(path, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	report := BatchReport{Failed: map[string]error{}}
	for i, path := range paths {
		i, path := i, path
		if errs[i] != nil {
			report.Failed[path] = errs[i]
		} else {
			report.Succeeded = append(report.Succeeded, path)
		}
	}
	return report
}
