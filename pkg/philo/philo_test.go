package philo

import (
	"context"
	"errors"
	"testing"
	"time"

	"lockmy/pkg/locking"
)

func runTable(t *testing.T, cfg Config) ([]Result, error) {
	t.Helper()
	table, err := NewTable(cfg)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table.Run(context.Background())
}

func checkResults(t *testing.T, results []Result, diners int) {
	t.Helper()
	if len(results) != diners {
		t.Fatalf("got %d results, want %d", len(results), diners)
	}
	for _, r := range results {
		if r.Value < 0 || r.Value >= diners {
			t.Errorf("diner %d propagated impossible value %d", r.Diner, r.Value)
		}
	}
}

func TestAuthOnlyTableCompletes(t *testing.T) {
	results, err := runTable(t, Config{
		Diners:   5,
		Method:   AuthOnly,
		Strategy: locking.ReadWrite,
		Policy:   locking.PolicyReadWrite,
		Timeout:  30 * time.Second,
		Hold:     2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	checkResults(t, results, 5)
}

func TestMultiLockedTableCompletes(t *testing.T) {
	results, err := runTable(t, Config{
		Diners:   5,
		Method:   MultiLocked,
		Strategy: locking.ReadWrite,
		Policy:   locking.PolicyReadWrite,
		Timeout:  30 * time.Second,
		Hold:     2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	checkResults(t, results, 5)
}

func TestWriteOnlyPolicyTableCompletes(t *testing.T) {
	results, err := runTable(t, Config{
		Diners:   4,
		Method:   AuthOnly,
		Strategy: locking.WriteOnly,
		Policy:   locking.PolicyWriteOnly,
		Timeout:  30 * time.Second,
		Hold:     2 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	checkResults(t, results, 4)
}

func TestUnsafeTableDeadlocks(t *testing.T) {
	_, err := runTable(t, Config{
		Diners:   4,
		Method:   Unsafe,
		Strategy: locking.ReadWrite,
		Timeout:  time.Second,
		Hold:     100 * time.Millisecond,
	})
	if !errors.Is(err, ErrDeadlock) {
		t.Fatalf("Run returned %v, want ErrDeadlock", err)
	}
}

func TestEventsAreEmitted(t *testing.T) {
	events := make(chan Event, 1024)
	_, err := runTable(t, Config{
		Diners:   3,
		Method:   AuthOnly,
		Strategy: locking.ReadWrite,
		Policy:   locking.PolicyReadWrite,
		Timeout:  30 * time.Second,
		Hold:     time.Millisecond,
		Events:   events,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	close(events)

	done := 0
	for ev := range events {
		if ev.State == StateDone {
			done++
		}
	}
	if done == 0 {
		t.Error("no StateDone event observed")
	}
}

func TestConfigValidate(t *testing.T) {
	bad := []Config{
		{Diners: 1, Method: AuthOnly},
		{Diners: 300, Method: AuthOnly},
		{Diners: 4, Method: Unsafe, Policy: locking.PolicyWriteOnly},
	}
	for _, cfg := range bad {
		if err := cfg.Validate(); err == nil {
			t.Errorf("Validate accepted %+v", cfg)
		}
	}

	good := Config{Diners: 4, Method: AuthOnly, Policy: locking.PolicyReadWrite}
	if err := good.Validate(); err != nil {
		t.Errorf("Validate rejected %+v: %v", good, err)
	}
}
