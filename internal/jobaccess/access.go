// Package jobaccess gives CLI commands one view of the job list whether a
// ytleads server owns the store or the command may open it directly.
package jobaccess

import (
	"context"
	"errors"
	"time"

	"ytleads/internal/app"
	"ytleads/internal/httpapi"
	"ytleads/internal/jobs"
)

// DefaultPollInterval is how often a remote Process checks the server for
// the submitted job's progress.
const DefaultPollInterval = time.Second

// Access provides job operations regardless of API or direct store backing.
type Access interface {
	List(ctx context.Context) ([]jobs.Job, error)
	Get(ctx context.Context, id string) (jobs.Job, error)
	Selected(ctx context.Context) (jobs.Job, bool, error)
	Select(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	// Process submits sourceURL and returns once the job stops processing.
	Process(ctx context.Context, sourceURL string) (jobs.Job, error)
}

// NewStoreAccess returns an Access backed by a runtime opened in this process.
func NewStoreAccess(rt *app.Runtime) Access {
	return &storeAccess{rt: rt}
}

// NewAPIAccess returns an Access backed by a running server. Process polls
// every interval until the job finishes.
func NewAPIAccess(client *httpapi.Client, interval time.Duration) Access {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &apiAccess{client: client, interval: interval}
}

type storeAccess struct {
	rt *app.Runtime
}

func (a *storeAccess) List(context.Context) ([]jobs.Job, error) {
	return a.rt.Jobs.List(), nil
}

func (a *storeAccess) Get(_ context.Context, id string) (jobs.Job, error) {
	return a.rt.Jobs.Get(id)
}

func (a *storeAccess) Selected(context.Context) (jobs.Job, bool, error) {
	job, ok := a.rt.Jobs.Selected()
	return job, ok, nil
}

func (a *storeAccess) Select(ctx context.Context, id string) error {
	return a.rt.Jobs.Select(ctx, id)
}

func (a *storeAccess) Delete(ctx context.Context, id string) error {
	return a.rt.Jobs.Delete(ctx, id)
}

func (a *storeAccess) Process(ctx context.Context, sourceURL string) (jobs.Job, error) {
	return a.rt.Orchestrator.Process(ctx, sourceURL)
}

type apiAccess struct {
	client   *httpapi.Client
	interval time.Duration
}

func (a *apiAccess) List(ctx context.Context) ([]jobs.Job, error) {
	list, _, err := a.client.ListJobs(ctx)
	return list, err
}

func (a *apiAccess) Get(ctx context.Context, id string) (jobs.Job, error) {
	return a.client.GetJob(ctx, id)
}

func (a *apiAccess) Selected(ctx context.Context) (jobs.Job, bool, error) {
	return a.client.SelectedJob(ctx)
}

func (a *apiAccess) Select(ctx context.Context, id string) error {
	return a.client.SelectJob(ctx, id)
}

func (a *apiAccess) Delete(ctx context.Context, id string) error {
	return a.client.DeleteJob(ctx, id)
}

// Process leaves the job running on the server if ctx ends first.
func (a *apiAccess) Process(ctx context.Context, sourceURL string) (jobs.Job, error) {
	job, err := a.client.CreateJob(ctx, sourceURL)
	if err != nil {
		return jobs.Job{}, err
	}
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for job.Status == jobs.StatusProcessing {
		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
		next, err := a.client.GetJob(ctx, job.ID)
		if err != nil {
			return job, err
		}
		job = next
	}
	if job.Status == jobs.StatusError {
		return job, errors.New(job.CurrentStep.String() + ": " + job.Error)
	}
	return job, nil
}
