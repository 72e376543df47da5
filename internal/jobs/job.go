package jobs

import (
	"time"

	"ytleads/internal/steps"
)

// Status is the lifecycle state of a job.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// Job is one URL's run through the step catalog.
type Job struct {
	ID             string         `json:"id"`
	YoutubeURL     string         `json:"youtubeUrl"`
	Title          string         `json:"title"`
	VideoTitle     string         `json:"videoTitle,omitempty"`
	ChannelName    string         `json:"channelName,omitempty"`
	ThumbnailURL   string         `json:"thumbnailUrl,omitempty"`
	Status         Status         `json:"status"`
	Progress       int            `json:"progress"`
	CurrentStep    steps.ID       `json:"currentStep"`
	CompletedSteps []steps.ID     `json:"completedSteps"`
	Results        []steps.Result `json:"results"`
	Error          string         `json:"error,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
}

// Result returns the recorded output of step id.
func (j Job) Result(id steps.ID) (steps.Result, bool) {
	for _, result := range j.Results {
		if result.Type == id {
			return result, true
		}
	}
	return steps.Result{}, false
}

// DisplayTitle prefers the video title, then the job title, then the URL.
func (j Job) DisplayTitle() string {
	switch {
	case j.VideoTitle != "":
		return j.VideoTitle
	case j.Title != "":
		return j.Title
	default:
		return j.YoutubeURL
	}
}

// Patch carries a partial job update. Nil fields are left untouched.
type Patch struct {
	Title          *string
	VideoTitle     *string
	ChannelName    *string
	ThumbnailURL   *string
	Status         *Status
	Progress       *int
	CurrentStep    *steps.ID
	CompletedSteps []steps.ID
	Results        []steps.Result
	Error          *string
}

func (p Patch) apply(job *Job) {
	if p.Title != nil {
		job.Title = *p.Title
	}
	if p.VideoTitle != nil {
		job.VideoTitle = *p.VideoTitle
	}
	if p.ChannelName != nil {
		job.ChannelName = *p.ChannelName
	}
	if p.ThumbnailURL != nil {
		job.ThumbnailURL = *p.ThumbnailURL
	}
	if p.Status != nil {
		job.Status = *p.Status
	}
	if p.Progress != nil {
		job.Progress = *p.Progress
	}
	if p.CurrentStep != nil {
		job.CurrentStep = *p.CurrentStep
	}
	if p.CompletedSteps != nil {
		job.CompletedSteps = append([]steps.ID{}, p.CompletedSteps...)
	}
	if p.Results != nil {
		job.Results = cloneResults(p.Results)
	}
	if p.Error != nil {
		job.Error = *p.Error
	}
}

func (j Job) clone() Job {
	out := j
	out.CompletedSteps = append([]steps.ID{}, j.CompletedSteps...)
	out.Results = cloneResults(j.Results)
	return out
}

func cloneResults(in []steps.Result) []steps.Result {
	out := make([]steps.Result, len(in))
	for i, result := range in {
		out[i] = steps.Result{ID: result.ID, Type: result.Type, Data: cloneMap(result.Data)}
	}
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string{}, typed...)
	default:
		return value
	}
}
