package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/filingdigest/internal/loader"
	"github.com/dgallion1/filingdigest/internal/segment"
	"github.com/dgallion1/filingdigest/internal/store"
	"github.com/dgallion1/filingdigest/internal/summarize"
)

// Processor turns one filing into a persisted DocumentResult: load, segment,
// fold every info type over the segments, then hand the result to the sink.
// It holds no per-document state and is safe for concurrent use.
type Processor struct {
	segmenter       *segment.Segmenter
	summarizer      summarize.Summarizer
	sink            store.Sink
	infos           []summarize.InfoType
	loadOpts        loader.Options
	foldConcurrency int
	log             *slog.Logger
}

// ProcessorConfig groups the Processor's collaborators.
type ProcessorConfig struct {
	Segmenter       *segment.Segmenter
	Summarizer      summarize.Summarizer
	Sink            store.Sink
	InfoTypes       []summarize.InfoType
	Loader          loader.Options
	FoldConcurrency int
}

func NewProcessor(cfg ProcessorConfig, log *slog.Logger) *Processor {
	seg := cfg.Segmenter
	if seg == nil {
		seg = segment.NewSegmenter(segment.LegacyMarkers())
	}
	return &Processor{
		segmenter:       seg,
		summarizer:      cfg.Summarizer,
		sink:            cfg.Sink,
		infos:           cfg.InfoTypes,
		loadOpts:        cfg.Loader,
		foldConcurrency: cfg.FoldConcurrency,
		log:             log,
	}
}

// InfoTypes returns the default info types.
func (p *Processor) InfoTypes() []summarize.InfoType {
	return p.infos
}

// ProcessFile processes the document at path with the default info types.
func (p *Processor) ProcessFile(ctx context.Context, path string) (store.DocumentResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return store.DocumentResult{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return p.Process(ctx, filepath.Base(path), f)
}

// Process processes one document read from r with the default info types.
func (p *Processor) Process(ctx context.Context, filename string, r io.Reader) (store.DocumentResult, error) {
	return p.run(ctx, filename, r, p.infos, nil)
}

func (p *Processor) run(ctx context.Context, filename string, r io.Reader, infos []summarize.InfoType, job *Job) (store.DocumentResult, error) {
	log := p.log.With("document", filename)
	if job != nil {
		log = log.With("job_id", job.ID)
	}
	setStatus := func(s JobStatus) {
		if job != nil {
			job.SetStatus(s, string(s))
		}
	}

	// Phase 1: Load
	setStatus(StatusLoading)
	l, err := loader.ForFile(filename, p.loadOpts)
	if err != nil {
		log.Error("unsupported format", "error", err)
		return store.DocumentResult{}, err
	}
	text, err := l.Load(r, filename)
	if err != nil {
		log.Error("load failed", "error", err)
		return store.DocumentResult{}, fmt.Errorf("load %s: %w", filename, err)
	}

	// Phase 2: Segment
	setStatus(StatusSegmenting)
	segs := p.segmenter.Segment(text)
	missing := segment.Missing(segs)
	for _, s := range segs {
		if !s.Found {
			log.Warn("segment boundary not found", "segment", s.Index, "start", s.StartLabel, "end", s.EndLabel, "error", s.Err)
		}
	}
	log.Info("segmented document", "chars", segment.RuneLen(text), "segments", len(segs), "missing", missing)

	// Phase 3: Summarize
	setStatus(StatusSummarizing)
	summarizer := p.summarizer
	if job != nil {
		job.SetSegments(len(segs), missing)
		job.SetPlannedCalls(len(infos), len(infos)*len(segs))
		summarizer = &countingSummarizer{next: summarizer, done: job.IncrCallsCompleted}
	}
	summaries, err := summarize.FanOut(ctx, summarizer, infos, segs, p.foldConcurrency)
	if err != nil {
		log.Error("summarization failed", "error", err)
		return store.DocumentResult{}, fmt.Errorf("summarize %s: %w", filename, err)
	}
	result, err := store.NewDocumentResult(summarize.Titles(infos), summaries)
	if err != nil {
		return store.DocumentResult{}, err
	}

	// Phase 4: Store
	setStatus(StatusStoring)
	name := OutputName(filename)
	if p.sink != nil {
		if err := p.sink.Put(ctx, name, result); err != nil {
			log.Error("store failed", "output", name, "error", err)
			return store.DocumentResult{}, err
		}
	}
	log.Info("JSON saved", "output", name, "info_types", len(infos))
	return result, nil
}

// OutputName replaces the extension of filename with .json.
func OutputName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

// countingSummarizer reports each successful call.
type countingSummarizer struct {
	next summarize.Summarizer
	done func()
}

func (c *countingSummarizer) Summarize(ctx context.Context, prior, task, passage string) (string, error) {
	out, err := c.next.Summarize(ctx, prior, task, passage)
	if err == nil {
		c.done()
	}
	return out, err
}
