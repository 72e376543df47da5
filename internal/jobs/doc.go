// Package jobs owns the ordered collection of lead-generation jobs.
//
// The Store keeps jobs newest-first in memory and mirrors the whole list to a
// recordstore.Store under one record key after every mutation. Reads return
// deep copies so callers can never mutate shared state. A persistence failure
// is reported as ErrPersist while the in-memory change stands.
package jobs
