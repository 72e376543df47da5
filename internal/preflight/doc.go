// Package preflight provides readiness checks for the services and
// filesystem paths ytleads depends on.
//
// The CLI "ytleads doctor" command prints every result, and the API server
// exposes the same results on its health endpoint. A failing optional check
// (such as a missing transcript webhook) degrades the run rather than
// blocking it.
package preflight
