package cron

import "context"

// Job is one pass of the lifecycle worker: opening pots, sending birthday
// reminders, closing pots, or reconciling payments. A pass must be safe to
// re-run; the worker gives no ordering or exactly-once guarantee.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry holds the passes in the order the worker executes them.
type Registry struct {
	jobs []Job
}

// NewRegistry builds a registry preloaded with the provided jobs.
func NewRegistry(jobs ...Job) *Registry {
	registry := &Registry{}
	for _, job := range jobs {
		if job == nil {
			continue
		}
		registry.jobs = append(registry.jobs, job)
	}
	return registry
}

// Register adds a job to the registry.
func (r *Registry) Register(job Job) {
	if job == nil {
		return
	}
	r.jobs = append(r.jobs, job)
}

// Jobs returns the registered jobs in the order they were added.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.jobs))
	copy(jobs, r.jobs)
	return jobs
}
