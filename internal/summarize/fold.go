package summarize

import (
	"context"
	"fmt"

	"github.com/dgallion1/filingdigest/internal/segment"
	"golang.org/x/sync/errgroup"
)

// Fold accumulates a summary for task by feeding each segment, in order, to s
// together with the summary so far. Absent segments are sent as empty text.
// Any failed call fails the whole fold; no partial summary is returned.
func Fold(ctx context.Context, s Summarizer, task string, segs []segment.Segment) (string, error) {
	summary := ""
	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		next, err := s.Summarize(ctx, summary, task, seg.Text)
		if err != nil {
			return "", fmt.Errorf("segment %d (%s to %s): %w", seg.Index, seg.StartLabel, seg.EndLabel, err)
		}
		summary = next
	}
	return summary, nil
}

// FanOut runs one Fold per info type over the same segments and returns the
// summaries aligned with infos. Up to concurrency folds run at once; the first
// failure cancels the rest.
func FanOut(ctx context.Context, s Summarizer, infos []InfoType, segs []segment.Segment, concurrency int) ([]string, error) {
	if concurrency <= 0 {
		concurrency = 1
	}
	out := make([]string, len(infos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, info := range infos {
		i, info := i, info
		g.Go(func() error {
			summary, err := Fold(gctx, s, info.Description, segs)
			if err != nil {
				return fmt.Errorf("info type %q: %w", info.Title, err)
			}
			out[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
