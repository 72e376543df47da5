package httpapi

import (
	"context"
	"errors"
	"testing"

	"ytleads/internal/jobs"
	"ytleads/internal/services"
)

func TestClientJobLifecycle(t *testing.T) {
	srv, store, ts := newTestServer(t)
	client := NewClient(ts.Listener.Addr().String())
	ctx := context.Background()

	if err := client.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	created, err := client.CreateJob(ctx, "https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	srv.Wait()

	got, err := client.GetJob(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.StatusCompleted || got.VideoTitle != "Demo" {
		t.Fatalf("unexpected job %+v", got)
	}

	if _, ok, err := client.SelectedJob(ctx); err != nil || ok {
		t.Fatalf("expected no selection, got ok=%v err=%v", ok, err)
	}
	if err := client.SelectJob(ctx, created.ID); err != nil {
		t.Fatalf("SelectJob: %v", err)
	}
	selected, ok, err := client.SelectedJob(ctx)
	if err != nil || !ok || selected.ID != created.ID {
		t.Fatalf("SelectedJob = %v %v %v", selected.ID, ok, err)
	}

	list, selectedID, err := client.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(list) != 1 || selectedID != created.ID {
		t.Fatalf("unexpected list %d selected %q", len(list), selectedID)
	}

	if err := client.DeleteJob(ctx, created.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if len(store.List()) != 0 {
		t.Fatal("delete through the client must reach the server store")
	}
}

func TestClientMapsErrorStatuses(t *testing.T) {
	_, _, ts := newTestServer(t)
	client := NewClient(ts.URL)
	ctx := context.Background()

	_, err := client.GetJob(ctx, "missing")
	if !errors.Is(err, jobs.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 404 {
		t.Fatalf("expected APIError 404, got %#v", err)
	}

	_, err = client.CreateJob(ctx, "https://example.com/video")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	if err := client.SelectJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound selecting unknown id, got %v", err)
	}
}

func TestClientReportsUnreachableServer(t *testing.T) {
	_, _, ts := newTestServer(t)
	addr := ts.Listener.Addr().String()
	ts.Close()

	if err := NewClient(addr).Ping(context.Background()); err == nil {
		t.Fatal("expected error from closed server")
	}
}
