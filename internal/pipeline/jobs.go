package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/filingdigest/internal/store"
	"github.com/dgallion1/filingdigest/internal/summarize"
	"github.com/google/uuid"
)

// JobStatus represents the state of a document job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusLoading     JobStatus = "loading"
	StatusSegmenting  JobStatus = "segmenting"
	StatusSummarizing JobStatus = "summarizing"
	StatusStoring     JobStatus = "storing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
)

// Job tracks the state of a single uploaded filing.
type Job struct {
	mu sync.Mutex

	ID       string
	Status   JobStatus
	Phase    string
	Filename string
	Output   string

	Progress Progress

	CreatedAt time.Time
	UpdatedAt time.Time

	// Internal: not serialized.
	fileData  []byte
	infoTypes []summarize.InfoType
	result    *store.DocumentResult
	errors    []string
}

// Progress tracks processing progress.
type Progress struct {
	SegmentsTotal   int      `json:"segments_total"`
	SegmentsMissing int      `json:"segments_missing"`
	FoldsTotal      int      `json:"folds_total"`
	CallsTotal      int      `json:"calls_total"`
	CallsCompleted  int      `json:"calls_completed"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job for an uploaded file. A nil infos slice means
// the processor's default info types.
func NewJob(filename string, data []byte, infos []summarize.InfoType) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		Output:    OutputName(filename),
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
		infoTypes: infos,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed. Phase keeps the step that failed.
func (j *Job) Fail(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.Status = StatusFailed
	j.UpdatedAt = time.Now()
}

// SetSegments records how many segments the document produced and how many
// of them had no boundaries.
func (j *Job) SetSegments(total, missing int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SegmentsTotal = total
	j.Progress.SegmentsMissing = missing
	j.UpdatedAt = time.Now()
}

// SetPlannedCalls records the fold and summarize-call totals.
func (j *Job) SetPlannedCalls(folds, calls int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.FoldsTotal = folds
	j.Progress.CallsTotal = calls
	j.UpdatedAt = time.Now()
}

// IncrCallsCompleted atomically increments completed summarize calls.
func (j *Job) IncrCallsCompleted() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.CallsCompleted++
	j.UpdatedAt = time.Now()
}

// SetResult stores the finished result.
func (j *Job) SetResult(r store.DocumentResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &r
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Result returns the finished result, if any.
func (j *Job) Result() (store.DocumentResult, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return store.DocumentResult{}, false
	}
	return *j.result, true
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// InfoTypes returns the info types requested for this job.
func (j *Job) InfoTypes() []summarize.InfoType {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.infoTypes
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID        string    `json:"job_id"`
	Status    JobStatus `json:"status"`
	Phase     string    `json:"phase"`
	Filename  string    `json:"filename"`
	Output    string    `json:"output"`
	Progress  Progress  `json:"progress"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:        j.ID,
		Status:    j.Status,
		Phase:     j.Phase,
		Filename:  j.Filename,
		Output:    j.Output,
		Progress:  p,
		CreatedAt: j.CreatedAt,
		UpdatedAt: j.UpdatedAt,
	}
}
