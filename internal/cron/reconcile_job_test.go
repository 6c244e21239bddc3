package cron

import (
	"context"
	"testing"
)

type stubReconciler struct {
	resolved int
	err      error
	calls    int
}

func (s *stubReconciler) ReconcilePayments(context.Context) (int, error) {
	s.calls++
	return s.resolved, s.err
}

func TestReconcileJobDelegates(t *testing.T) {
	stub := &stubReconciler{resolved: 3}
	job, err := NewReconcileJob(ReconcileJobParams{Logger: testJobLogger(), Payments: stub})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if got := job.Name(); got != "payment-reconcile" {
		t.Fatalf("name %q", got)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one sweep, got %d", stub.calls)
	}
}

func TestReconcileJobSurfacesSweepErrors(t *testing.T) {
	stub := &stubReconciler{resolved: 1, err: context.DeadlineExceeded}
	job, err := NewReconcileJob(ReconcileJobParams{Logger: testJobLogger(), Payments: stub})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected sweep error to surface")
	}
}

func TestReconcileJobRequiresDependencies(t *testing.T) {
	if _, err := NewReconcileJob(ReconcileJobParams{Payments: &stubReconciler{}}); err == nil {
		t.Fatalf("expected error without logger")
	}
	if _, err := NewReconcileJob(ReconcileJobParams{Logger: testJobLogger()}); err == nil {
		t.Fatalf("expected error without payments service")
	}
}
