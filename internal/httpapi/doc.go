// Package httpapi exposes the job store and pipeline over HTTP.
//
// Routes live under /v1 and speak JSON. POST /v1/jobs validates the URL,
// creates the job, and starts its run on a context detached from the request;
// the server tracks in-flight runs and waits for them during shutdown.
package httpapi
