package locking

import (
	"errors"
	"testing"
	"time"
)

func TestValueRoundTrip(t *testing.T) {
	c := NewContainer(10)

	w := c.GetWrite(true)
	if !w.Valid() {
		t.Fatalf("write guard failed: %v", w.Err())
	}
	w.Set(42)
	w.Release()

	r := c.GetRead(true)
	defer r.Release()
	if got := r.Value(); got != 42 {
		t.Errorf("read after write = %d, want 42", got)
	}
}

func TestDefaultStrategyIsReadWrite(t *testing.T) {
	c := NewContainer(struct{}{})
	if c.Strategy() != ReadWrite {
		t.Errorf("Strategy() = %v, want %v", c.Strategy(), ReadWrite)
	}
}

func TestNewAuthMirrorsStrategy(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     Policy
	}{
		{ReadWrite, PolicyReadWrite},
		{ReadOnly, PolicyReadOnly},
		{WriteOnly, PolicyWriteOnly},
		{Broken, PolicyBroken},
	}
	for _, tt := range tests {
		c := NewContainerWith(0, tt.strategy)
		if got := c.NewAuth().Policy(); got != tt.want {
			t.Errorf("NewAuth().Policy() for %v = %v, want %v", tt.strategy, got, tt.want)
		}
	}
}

func TestReadOnlyContainer(t *testing.T) {
	c := NewContainerWith("frozen", ReadOnly)

	if w := c.GetWrite(true); w.Valid() {
		t.Fatal("read-only container granted a write guard")
	} else if !errors.Is(w.Err(), ErrReadOnly) {
		t.Errorf("write Err() = %v, want ErrReadOnly", w.Err())
	}

	r1 := c.GetRead(true)
	r2 := c.GetRead(false)
	if !r1.Valid() || !r2.Valid() {
		t.Fatalf("read guards failed: %v, %v", r1.Err(), r2.Err())
	}
	if r1.Value() != "frozen" || r2.Value() != "frozen" {
		t.Error("read guards do not see the constructed value")
	}
	r1.Release()
	r2.Release()
}

func TestWriteOnlyContainerIsExclusive(t *testing.T) {
	c := NewContainerWith(0, WriteOnly)

	// even read access takes the exclusive hold
	r := c.GetRead(true)
	if !r.Valid() {
		t.Fatalf("read guard failed: %v", r.Err())
	}
	if probe := c.GetRead(false); probe.Valid() {
		t.Error("second holder admitted on a write-only container")
	}
	r.Release()

	w := c.GetWrite(false)
	if !w.Valid() {
		t.Fatalf("write after release failed: %v", w.Err())
	}
	w.Release()
}

func TestBrokenContainerNeverGrants(t *testing.T) {
	c := NewContainerWith(0, Broken)
	auth := NewAuth(PolicyReadWrite)
	multi := NewMultiLock()

	if g := c.GetWrite(true); g.Valid() {
		t.Error("GetWrite succeeded on a broken container")
	}
	if g := c.GetRead(true); g.Valid() {
		t.Error("GetRead succeeded on a broken container")
	}
	if g := c.GetWriteAuth(auth, false); g.Valid() {
		t.Error("GetWriteAuth succeeded on a broken container")
	}
	if g := c.GetReadMulti(multi, auth, true); g.Valid() {
		t.Error("GetReadMulti succeeded on a broken container")
	}

	if auth.ReadingCount() != 0 || auth.WritingCount() != 0 {
		t.Errorf("failed guards left auth registrations behind: reading=%d writing=%d",
			auth.ReadingCount(), auth.WritingCount())
	}
}

func TestAuthAccessorsBalanceAuth(t *testing.T) {
	c := NewContainer(0)
	auth := NewAuth(PolicyReadWrite)

	r := c.GetReadAuth(auth, true)
	if !r.Valid() {
		t.Fatalf("read guard failed: %v", r.Err())
	}
	if auth.ReadingCount() != 1 {
		t.Errorf("ReadingCount() = %d while guard held, want 1", auth.ReadingCount())
	}
	r.Release()

	w := c.GetWriteAuth(auth, true)
	if !w.Valid() {
		t.Fatalf("write guard failed: %v", w.Err())
	}
	if auth.WritingCount() != 1 {
		t.Errorf("WritingCount() = %d while guard held, want 1", auth.WritingCount())
	}
	w.Release()

	if auth.ReadingCount() != 0 || auth.WritingCount() != 0 {
		t.Errorf("auth not balanced after releases: reading=%d writing=%d",
			auth.ReadingCount(), auth.WritingCount())
	}
}

func TestIdleContainerAlwaysAcquirable(t *testing.T) {
	held := NewContainer(0)
	idle := NewContainer(0)
	auth := NewAuth(PolicyReadWrite)

	w := held.GetWriteAuth(auth, true)
	if !w.Valid() {
		t.Fatalf("write guard failed: %v", w.Err())
	}
	defer w.Release()

	// nobody touches idle, so the held write must not block this
	g := idle.GetWriteAuth(auth, true)
	if !g.Valid() {
		t.Fatalf("idle container refused while holding another lock: %v", g.Err())
	}
	g.Release()
}

func TestCloseRetiresContainer(t *testing.T) {
	c := NewContainer(5)
	c.Close()

	if g := c.GetWrite(true); g.Valid() {
		t.Error("write guard granted after Close")
	} else if !errors.Is(g.Err(), ErrClosed) {
		t.Errorf("Err() = %v, want ErrClosed", g.Err())
	}
	if g := c.GetRead(false); g.Valid() {
		t.Error("read guard granted after Close")
	}
}

func TestCloseWaitsForGuards(t *testing.T) {
	c := NewContainer(5)

	r := c.GetRead(true)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Close()
	}()

	time.Sleep(20 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("Close returned while a read guard was live")
	default:
	}
	r.Release()
	<-done
}

func TestCloseUnclosableContainerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Close on a broken container did not panic")
		}
	}()
	NewContainerWith(0, Broken).Close()
}

func TestCopyFrom(t *testing.T) {
	src := NewContainer(99)
	dst := NewContainer(0)

	dst.CopyFrom(src)

	r := dst.GetRead(true)
	defer r.Release()
	if got := r.Value(); got != 99 {
		t.Errorf("copied value = %d, want 99", got)
	}
}

func TestCopyFromSelf(t *testing.T) {
	c := NewContainer(3)
	c.CopyFrom(c) // must not deadlock against itself

	r := c.GetRead(true)
	defer r.Release()
	if got := r.Value(); got != 3 {
		t.Errorf("value after self-copy = %d, want 3", got)
	}
}

func TestCopyFromUnlockablePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("CopyFrom with a broken source did not panic")
		}
	}()
	NewContainer(0).CopyFrom(NewContainerWith(1, Broken))
}
