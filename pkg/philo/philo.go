package philo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"lockmy/pkg/locking"
	"lockmy/pkg/logging"
)

// Method selects how the diners defend against deadlock.
type Method int

const (
	// Unsafe takes plain blocking locks with no authorization. With every
	// diner holding its left chopstick and blocking on the right one, the
	// table deadlocks almost immediately; this mode exists to demonstrate it.
	Unsafe Method = iota

	// AuthOnly gives every diner an authorization object. Picking up the
	// right chopstick while it is contested is refused instead of blocking,
	// so the diner puts the left one back and retries.
	AuthOnly

	// MultiLocked adds the process-wide multi-lock: a diner claims it, takes
	// both chopsticks unconditionally, and releases the claim.
	MultiLocked
)

func (m Method) String() string {
	switch m {
	case Unsafe:
		return "unsafe"
	case AuthOnly:
		return "auth"
	case MultiLocked:
		return "multi"
	default:
		return fmt.Sprintf("method(%d)", int(m))
	}
}

// ErrDeadlock is returned by Run when the table stops making progress for
// the configured timeout. The blocked diners cannot be cancelled out of a
// kernel wait; the caller is expected to report and exit.
var ErrDeadlock = errors.New("philo: table deadlocked")

// Chopstick is the shared state each container protects. Value carries the
// id of the first diner seen to the right, so finished values propagate
// around the table; Tries records how often the last owner had to back off.
type Chopstick struct {
	Value int
	Tries int
}

// Result is one diner's outcome.
type Result struct {
	Diner int
	Value int
	Tries int
}

// Event reports a diner state change, for a UI following the run.
type Event struct {
	Diner int
	State State
	Tries int
}

// State is a diner's externally visible phase.
type State int

const (
	StateThinking State = iota
	StateLeft           // holding the left chopstick
	StateEating         // holding both
	StateBackoff        // right chopstick refused, retrying
	StateDone
)

func (s State) String() string {
	switch s {
	case StateThinking:
		return "thinking"
	case StateLeft:
		return "left"
	case StateEating:
		return "eating"
	case StateBackoff:
		return "backoff"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Config parameterizes a table run.
type Config struct {
	Diners   int
	Method   Method
	Strategy locking.Strategy // chopstick container strategy
	Policy   locking.Policy   // diner authorization policy (AuthOnly, MultiLocked)
	Timeout  time.Duration    // deadlock timeout for the whole run
	Hold     time.Duration    // pause between the two pickups, to provoke conflicts
	Events   chan<- Event     // optional progress feed; sends never block
}

func (c *Config) withDefaults() Config {
	cfg := *c
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Hold <= 0 {
		cfg.Hold = 10 * time.Millisecond
	}
	return cfg
}

// Validate rejects configurations the table cannot seat.
func (c *Config) Validate() error {
	if c.Diners < 2 || c.Diners > 256 {
		return fmt.Errorf("philo: diner count %d out of range [2,256]", c.Diners)
	}
	if c.Method == Unsafe && c.Policy != locking.PolicyReadWrite {
		return errors.New("philo: unsafe method takes no authorization policy")
	}
	return nil
}

// Table is one seating: a ring of chopstick containers plus the coordination
// objects the chosen method needs.
type Table struct {
	cfg    Config
	sticks []*locking.Container[Chopstick]
	multi  *locking.MultiLock
}

// NewTable builds the chopstick ring for the configuration.
func NewTable(cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	t := &Table{cfg: cfg}
	for i := 0; i < cfg.Diners; i++ {
		t.sticks = append(t.sticks, locking.NewContainerWith(Chopstick{Value: -1}, cfg.Strategy))
	}
	if cfg.Method == MultiLocked {
		t.multi = locking.NewMultiLock()
	}
	return t, nil
}

// Run seats the diners and waits for all of them to eat once. It returns
// ErrDeadlock if the table stalls past the timeout; diners blocked inside a
// lock at that point are abandoned, as a deadlocked thread would be.
func (t *Table) Run(ctx context.Context) ([]Result, error) {
	log := logging.WithComponent("philo")
	log.Info("seating diners", "diners", t.cfg.Diners, "method", t.cfg.Method.String(),
		"strategy", t.cfg.Strategy.String())

	results := make([]Result, t.cfg.Diners)

	// seat everyone before anyone starts grabbing, so the contention
	// pattern does not depend on spawn order
	start := make(chan struct{})

	g := new(errgroup.Group)
	for i := 0; i < t.cfg.Diners; i++ {
		diner := i
		g.Go(func() error {
			<-start
			r, err := t.dine(diner)
			if err != nil {
				return err
			}
			results[diner] = r
			return nil
		})
	}
	close(start)

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		log.Info("all diners finished")
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(t.cfg.Timeout):
		log.Warn("table stalled", "timeout", t.cfg.Timeout)
		return nil, ErrDeadlock
	}
}

// dine runs one diner to completion: grab the left chopstick for writing,
// pause, try the right one for reading, and back off whenever the right
// pickup is refused.
func (t *Table) dine(diner int) (Result, error) {
	log := logging.WithDiner(diner)

	var auth *locking.Auth
	if t.cfg.Method != Unsafe {
		auth = locking.NewAuth(t.cfg.Policy)
	}
	left := t.sticks[diner]
	right := t.sticks[(diner+1)%t.cfg.Diners]

	for tries := 0; ; tries++ {
		if tries > 0 {
			// everything stays unlocked for a moment; that window is what
			// lets some other diner complete and break the standoff
			t.emit(diner, StateBackoff, tries)
			time.Sleep(t.cfg.Hold)
		}
		t.emit(diner, StateThinking, tries)

		ok, err := t.attempt(diner, auth, left, right, tries)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}

		t.emit(diner, StateDone, tries)
		log.Debug("diner finished", "tries", tries)

		r := left.GetRead(true)
		if !r.Valid() {
			return Result{}, fmt.Errorf("philo: diner %d cannot re-read its chopstick: %w", diner, r.Err())
		}
		stick := r.Value()
		r.Release()
		return Result{Diner: diner, Value: stick.Value, Tries: stick.Tries}, nil
	}
}

// attempt is a single pass over the two chopsticks. A false return means the
// right chopstick was refused and the diner should back off and retry.
func (t *Table) attempt(diner int, auth *locking.Auth,
	left, right *locking.Container[Chopstick], tries int) (bool, error) {

	var claim *locking.Claim
	if t.multi != nil {
		// the claim itself always succeeds eventually; what matters is that
		// it holds every other diner at the gate while we take both sticks
		claim = t.multi.Claim(auth, true)
		defer claim.Release()
	}

	wl := t.guardLeft(auth, left)
	if !wl.Valid() {
		return false, fmt.Errorf("philo: diner %d cannot lock its left chopstick: %w", diner, wl.Err())
	}
	defer wl.Release()
	t.emit(diner, StateLeft, tries)

	// widen the window in which a deadlock could form
	time.Sleep(t.cfg.Hold)

	rr := t.guardRight(auth, right)
	if claim != nil {
		claim.Release()
	}
	if !rr.Valid() {
		return false, nil
	}
	defer rr.Release()
	t.emit(diner, StateEating, tries)

	v := rr.Value().Value
	if v < 0 {
		v = diner
	}
	wl.Set(Chopstick{Value: v, Tries: tries})
	return true, nil
}

func (t *Table) guardLeft(auth *locking.Auth, c *locking.Container[Chopstick]) *locking.WriteGuard[Chopstick] {
	switch t.cfg.Method {
	case MultiLocked:
		return c.GetWriteMulti(t.multi, auth, true)
	case AuthOnly:
		return c.GetWriteAuth(auth, true)
	default:
		return c.GetWrite(true)
	}
}

func (t *Table) guardRight(auth *locking.Auth, c *locking.Container[Chopstick]) *locking.ReadGuard[Chopstick] {
	switch t.cfg.Method {
	case MultiLocked:
		return c.GetReadMulti(t.multi, auth, true)
	case AuthOnly:
		return c.GetReadAuth(auth, true)
	default:
		return c.GetRead(true)
	}
}

func (t *Table) emit(diner int, state State, tries int) {
	if t.cfg.Events == nil {
		return
	}
	select {
	case t.cfg.Events <- Event{Diner: diner, State: state, Tries: tries}:
	default:
	}
}
