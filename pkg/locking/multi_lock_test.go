package locking

import (
	"errors"
	"testing"
	"time"
)

func TestClaimGatesMultiAccess(t *testing.T) {
	m := NewMultiLock()
	c := NewContainer(0)

	owner := NewAuth(PolicyReadWrite)
	claim := m.Claim(owner, true)
	if !claim.Valid() {
		t.Fatalf("claim failed: %v", claim.Err())
	}
	if owner.WritingCount() != 1 {
		t.Errorf("claim not registered: WritingCount() = %d, want 1", owner.WritingCount())
	}

	// anyone else's multi-routed access cannot pass the gate
	other := NewAuth(PolicyReadWrite)
	if g := c.GetWriteMulti(m, other, false); g.Valid() {
		t.Error("multi access granted while the gate is claimed")
	} else if !errors.Is(g.Err(), ErrWouldBlock) {
		t.Errorf("gated access Err() = %v, want ErrWouldBlock", g.Err())
	}

	// a direct access ignores the gate entirely
	g := c.GetWriteAuth(other, false)
	if !g.Valid() {
		t.Fatalf("direct access failed while gate claimed: %v", g.Err())
	}
	g.Release()

	claim.Release()
	if owner.WritingCount() != 0 {
		t.Errorf("claim release not registered: WritingCount() = %d, want 0", owner.WritingCount())
	}

	g2 := c.GetWriteMulti(m, other, false)
	if !g2.Valid() {
		t.Fatalf("multi access failed after claim release: %v", g2.Err())
	}
	g2.Release()
}

func TestClaimHolderBatchesAcquisitions(t *testing.T) {
	m := NewMultiLock()
	x := NewContainer(0)
	y := NewContainer(0)

	auth := NewAuth(PolicyReadWrite)
	claim := m.Claim(auth, true)
	if !claim.Valid() {
		t.Fatalf("claim failed: %v", claim.Err())
	}

	// with the gate claimed, the holder may pile up write locks the policy
	// would otherwise refuse
	gx := x.GetWriteMulti(m, auth, true)
	if !gx.Valid() {
		t.Fatalf("first batched lock failed: %v", gx.Err())
	}
	gy := y.GetWriteMulti(m, auth, true)
	if !gy.Valid() {
		t.Fatalf("second batched lock failed: %v", gy.Err())
	}
	if auth.WritingCount() != 3 {
		t.Errorf("WritingCount() = %d, want 3 (claim and two containers)", auth.WritingCount())
	}

	// the claim can go early; the container holds survive it
	claim.Release()

	gx.Set(1)
	gy.Set(2)
	gx.Release()
	gy.Release()

	if auth.ReadingCount() != 0 || auth.WritingCount() != 0 {
		t.Errorf("auth not balanced: reading=%d writing=%d", auth.ReadingCount(), auth.WritingCount())
	}
}

func TestClaimWaitsForInFlightMultiAccess(t *testing.T) {
	m := NewMultiLock()
	c := NewContainer(0)

	reader := NewAuth(PolicyReadWrite)
	r := c.GetReadMulti(m, reader, true)
	if !r.Valid() {
		t.Fatalf("multi read failed: %v", r.Err())
	}

	// the reader's gate pass is still live, so a non-blocking claim fails
	if cl := m.Claim(NewAuth(PolicyReadWrite), false); cl.Valid() {
		t.Fatal("claim granted while a multi access is in flight")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		cl := m.Claim(NewAuth(PolicyReadWrite), true)
		if !cl.Valid() {
			t.Errorf("claim failed after reader drained: %v", cl.Err())
			return
		}
		cl.Release()
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("blocking claim returned while a multi access was in flight")
	default:
	}

	r.Release()
	<-done
}

func TestNilMultiLockIsPlainAuthAccess(t *testing.T) {
	c := NewContainer(0)
	auth := NewAuth(PolicyReadWrite)

	g := c.GetWriteMulti(nil, auth, true)
	if !g.Valid() {
		t.Fatalf("nil multi access failed: %v", g.Err())
	}
	if auth.WritingCount() != 1 {
		t.Errorf("WritingCount() = %d, want 1", auth.WritingCount())
	}
	g.Release()
}

func TestClaimCloneSharesHold(t *testing.T) {
	m := NewMultiLock()
	auth := NewAuth(PolicyReadWrite)

	cl := m.Claim(auth, true)
	clone := cl.Clone()
	cl.Release()

	other := NewAuth(PolicyReadWrite)
	if probe := m.Claim(other, false); probe.Valid() {
		t.Fatal("gate reopened while a claim share is live")
	}

	clone.Release()
	probe := m.Claim(other, true)
	if !probe.Valid() {
		t.Fatalf("claim failed after all shares released: %v", probe.Err())
	}
	probe.Release()
}
