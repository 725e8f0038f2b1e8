package testutil

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/testutil"
)

func TestComponent_Lifecycle(t *testing.T) {
	comp := NewComponent()
	ctx := context.Background()

	if comp.Storage() != nil {
		t.Error("Storage() should be nil before Start")
	}
	if err := comp.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := comp.Start(ctx); err == nil {
		t.Error("second Start() should fail")
	}
	if comp.Storage() == nil {
		t.Error("Storage() should not be nil after Start")
	}
	if h := comp.Health(ctx); h.Status != component.StatusHealthy {
		t.Errorf("Health = %q, want healthy", h.Status)
	}
	if err := comp.Stop(ctx); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
	if h := comp.Health(ctx); h.Status != component.StatusUnhealthy {
		t.Errorf("Health after Stop = %q, want unhealthy", h.Status)
	}
}

func TestComponent_PutDelete(t *testing.T) {
	comp := NewComponent()
	testutil.T(t).Setup(comp)
	ctx := context.Background()

	loc, err := comp.Put(ctx, "uploads/a.wav", strings.NewReader("RIFF"), "audio/wav")
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if loc != BaseURL+"uploads/a.wav" {
		t.Errorf("location = %q", loc)
	}
	data, ct, ok := comp.Object("uploads/a.wav")
	if !ok || string(data) != "RIFF" || ct != "audio/wav" {
		t.Errorf("Object() = %q, %q, %v", data, ct, ok)
	}

	if err := comp.Delete(ctx, loc); err != nil {
		t.Fatalf("Delete by URL failed: %v", err)
	}
	if ok, _ := comp.Exists(ctx, "uploads/a.wav"); ok {
		t.Error("object should be gone")
	}
	if d := comp.Deletes(); len(d) != 1 || d[0] != loc {
		t.Errorf("Deletes() = %v", d)
	}
}

func TestComponent_FailureInjection(t *testing.T) {
	comp := NewComponent()
	testutil.T(t).Setup(comp)
	ctx := context.Background()

	boom := errors.New("boom")
	comp.FailPuts(boom)
	if _, err := comp.Put(ctx, "k", strings.NewReader("x"), ""); !errors.Is(err, boom) {
		t.Errorf("Put err = %v, want boom", err)
	}
	comp.FailDeletes(boom)
	if err := comp.Delete(ctx, "k"); !errors.Is(err, boom) {
		t.Errorf("Delete err = %v, want boom", err)
	}
	if len(comp.Deletes()) != 1 {
		t.Error("failed deletes are still recorded")
	}
}

func TestComponent_SignedURL(t *testing.T) {
	comp := NewComponent()
	testutil.T(t).Setup(comp)

	u, err := comp.SignedURL(context.Background(), "k.wav", 300*time.Second)
	if err != nil {
		t.Fatalf("SignedURL: %v", err)
	}
	if !strings.Contains(u, "expires=300") || !comp.SignedCalls() {
		t.Errorf("unexpected signed URL %q", u)
	}
}

func TestComponent_ResetSnapshotRestore(t *testing.T) {
	comp := NewComponent()
	h := testutil.T(t)
	h.Setup(comp)
	ctx := context.Background()

	_, _ = comp.Put(ctx, "a", strings.NewReader("1"), "")
	snap := h.Snapshot(comp)
	_, _ = comp.Put(ctx, "b", strings.NewReader("2"), "")

	h.Restore(comp, snap)
	if keys := comp.Keys(); len(keys) != 1 || keys[0] != "a" {
		t.Errorf("keys after Restore = %v", keys)
	}

	h.Reset(comp)
	if len(comp.Keys()) != 0 || len(comp.Deletes()) != 0 {
		t.Error("Reset should clear objects and recorded deletes")
	}
	if err := comp.Restore(ctx, "bad"); err == nil {
		t.Error("expected error for invalid snapshot type")
	}
}
