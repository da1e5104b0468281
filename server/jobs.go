package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sfxgraph/sfxgraph"
	"github.com/sfxgraph/sfxgraph/analysis"
	"github.com/sfxgraph/sfxgraph/render"
)

type JobStatus string

const (
	StatusPending    JobStatus = "pending"
	StatusProcessing JobStatus = "processing"
	StatusComplete   JobStatus = "complete"
	StatusFailed     JobStatus = "failed"
)

// jobRetention is how long finished jobs stay downloadable.
const jobRetention = 10 * time.Minute

// Job is a render started with POST /renders. Jobs handed out by the
// manager are snapshots; the manager owns the live ones.
type Job struct {
	ID        string
	Status    JobStatus
	Sound     sfxgraph.SoundDescription
	Wav       []byte
	Report    analysis.Report
	Error     string
	CreatedAt time.Time
}

// JobManager runs background renders and keeps their results for a while.
type JobManager struct {
	renderer render.Renderer
	logger   *slog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu   sync.RWMutex
	jobs map[string]*Job
}

func NewJobManager(renderer render.Renderer, logger *slog.Logger) *JobManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobManager{
		renderer: renderer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		jobs:     make(map[string]*Job),
	}
}

// Start registers a job for sound and renders it in the background.
func (m *JobManager) Start(sound sfxgraph.SoundDescription) Job {
	job := &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Sound:     sound,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	m.jobs[job.ID] = job
	snapshot := *job
	m.mu.Unlock()

	m.wg.Add(1)
	go m.process(job)
	return snapshot
}

// Get returns a snapshot of a job.
func (m *JobManager) Get(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Close cancels running renders and waits for them to finish.
func (m *JobManager) Close() {
	m.cancel()
	m.wg.Wait()
}

func (m *JobManager) process(job *Job) {
	defer m.wg.Done()
	m.update(job, func(j *Job) { j.Status = StatusProcessing })

	wav, report, err := renderWav(m.ctx, m.renderer, job.Sound)
	if err != nil {
		m.logger.Error("render failed", slog.String("job", job.ID), slog.Any("error", err))
		m.update(job, func(j *Job) {
			j.Status = StatusFailed
			j.Error = err.Error()
		})
	} else {
		m.logger.Info("render complete", slog.String("job", job.ID), slog.Int("bytes", len(wav)))
		m.update(job, func(j *Job) {
			j.Status = StatusComplete
			j.Wav = wav
			j.Report = report
		})
	}

	time.AfterFunc(jobRetention, func() {
		m.mu.Lock()
		delete(m.jobs, job.ID)
		m.mu.Unlock()
	})
}

func (m *JobManager) update(job *Job, f func(*Job)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f(job)
}

func renderWav(ctx context.Context, renderer render.Renderer, sound sfxgraph.SoundDescription) ([]byte, analysis.Report, error) {
	buffer, err := renderer.Render(ctx, sound)
	if err != nil {
		return nil, analysis.Report{}, err
	}
	report, err := analysis.Analyze(buffer)
	if err != nil {
		return nil, analysis.Report{}, err
	}
	wav, err := buffer.Wav()
	if err != nil {
		return nil, analysis.Report{}, err
	}
	return wav, report, nil
}
