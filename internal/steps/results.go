package steps

import "math"

// Result is one step's recorded output.
type Result struct {
	ID   string         `json:"id"`
	Type ID             `json:"type"`
	Data map[string]any `json:"data"`
}

// Results is the ordered map of step outputs a job has accumulated so far.
// Payload builders read from it; they never see job state.
type Results struct {
	data  [Count + 1]map[string]any
	order []ID
}

// ResultsFrom indexes a job's result list.
func ResultsFrom(list []Result) Results {
	var r Results
	for _, result := range list {
		r.Set(result.Type, result.Data)
	}
	return r
}

// Set records data for id. Invalid ids are ignored; a repeated id keeps its
// original position.
func (r *Results) Set(id ID, data map[string]any) {
	if !id.Valid() {
		return
	}
	if r.data[id] == nil {
		r.order = append(r.order, id)
	}
	if data == nil {
		data = map[string]any{}
	}
	r.data[id] = data
}

// Get returns the output recorded for id.
func (r Results) Get(id ID) (map[string]any, bool) {
	if !id.Valid() || r.data[id] == nil {
		return nil, false
	}
	return r.data[id], true
}

// Field returns one top-level field of a step's output.
func (r Results) Field(id ID, key string) (any, bool) {
	data, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	value, ok := data[key]
	return value, ok
}

// Order lists the recorded step ids in insertion order.
func (r Results) Order() []ID {
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}

// Len reports how many steps have output.
func (r Results) Len() int {
	return len(r.order)
}

// Progress converts a completed-step count into a 0-100 percentage.
func Progress(completed int) int {
	if completed <= 0 {
		return 0
	}
	if completed >= Count {
		return 100
	}
	return int(math.Round(100 * float64(completed) / float64(Count)))
}

// Sequence returns the first n catalog ids, the completedSteps prefix for n
// finished steps.
func Sequence(n int) []ID {
	if n < 0 {
		n = 0
	}
	if n > Count {
		n = Count
	}
	out := make([]ID, n)
	for i := range out {
		out[i] = ID(i + 1)
	}
	return out
}
