package provider

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stub struct {
	name string
	up   bool
}

func (s *stub) Name() string                     { return s.name }
func (s *stub) IsAvailable(context.Context) bool { return s.up }

func TestPrioritySelector(t *testing.T) {
	tests := []struct {
		name     string
		priority []string
		up       map[string]bool
		want     string
	}{
		{"first listed and up", []string{"tencent", "whisper"}, map[string]bool{"tencent": true, "whisper": true}, "tencent"},
		{"skips unavailable", []string{"tencent", "whisper"}, map[string]bool{"tencent": false, "whisper": true}, "whisper"},
		{"unlisted in name order", []string{"tencent"}, map[string]bool{"tencent": false, "zeta": true, "alpha": true}, "alpha"},
		{"unknown names skipped", []string{"missing", "whisper"}, map[string]bool{"whisper": true}, "whisper"},
		{"no priority", nil, map[string]bool{"b": true, "a": true}, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers := map[string]*stub{}
			for name, up := range tt.up {
				providers[name] = &stub{name: name, up: up}
			}
			sel := &PrioritySelector[*stub]{Priority: tt.priority}
			got, err := sel.Select(context.Background(), providers)
			if err != nil {
				t.Fatalf("Select: %v", err)
			}
			if got.Name() != tt.want {
				t.Errorf("Select = %q, want %q", got.Name(), tt.want)
			}
		})
	}
}

func TestPrioritySelector_NoneAvailable(t *testing.T) {
	tests := map[string]map[string]*stub{
		"all down": {"tencent": {name: "tencent"}},
		"empty":    {},
	}
	for name, providers := range tests {
		t.Run(name, func(t *testing.T) {
			sel := &PrioritySelector[*stub]{Priority: []string{"tencent"}}
			_, err := sel.Select(context.Background(), providers)
			if !errors.Is(err, ErrNoneAvailable) || !strings.Contains(err.Error(), "tencent") {
				t.Errorf("err = %v", err)
			}
		})
	}
}

func TestManager(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager[*stub](&PrioritySelector[*stub]{Priority: []string{"tencent", "whisper"}})
	mgr.Add(&stub{name: "whisper", up: true})
	mgr.Add(&stub{name: "tencent", up: false})

	got, err := mgr.Get(ctx)
	if err != nil || got.Name() != "whisper" {
		t.Fatalf("Get = %v, %v", got, err)
	}

	mgr.Add(&stub{name: "tencent", up: true})
	if got, _ := mgr.Get(ctx); got.Name() != "tencent" {
		t.Errorf("replacement not used: %q", got.Name())
	}

	if names := mgr.Names(); strings.Join(names, ",") != "tencent,whisper" {
		t.Errorf("Names = %v", names)
	}
	if avail := mgr.Availability(ctx); !avail["tencent"] || !avail["whisper"] || len(avail) != 2 {
		t.Errorf("Availability = %v", avail)
	}
	if _, ok := mgr.Lookup("missing"); ok {
		t.Error("Lookup found an unknown provider")
	}
}

func TestManager_NilSelector(t *testing.T) {
	mgr := NewManager[*stub](nil)
	mgr.Add(&stub{name: "only", up: true})
	if got, err := mgr.Get(context.Background()); err != nil || got.Name() != "only" {
		t.Errorf("Get = %v, %v", got, err)
	}
	if p, ok := mgr.Lookup("only"); !ok || p.Name() != "only" {
		t.Errorf("Lookup = %v, %t", p, ok)
	}
}
