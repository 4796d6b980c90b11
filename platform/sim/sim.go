package sim

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Denis-69/CrashRollbackGuard/platform"
)

// Handle is the sim's platform.Handle implementation: just a label.
type Handle string

// Label implements platform.Handle.
func (h Handle) Label() string { return string(h) }

// Platform is an in-memory platform.Platform implementation.
//
// Every method holds an internal mutex, so a Platform may be called from
// several goroutines; the guard.Guard it drives is not safe for that.
type Platform struct {
	mu sync.Mutex

	partitions map[string]platform.OTAState
	running    string
	bootTarget string

	reason  platform.ResetReason
	millis  uint32
	restart func()

	restartCount   int
	setBootFailFor map[string]bool
	markValidErr   error
}

// Option configures a Platform at construction time.
type Option func(*Platform)

// WithPartitions declares the set of application partitions that exist,
// all starting in platform.OTAValid state.
func WithPartitions(labels ...string) Option {
	return func(p *Platform) {
		for _, l := range labels {
			p.partitions[l] = platform.OTAValid
		}
	}
}

// New creates a simulated Platform. The partition whose label sorts first
// (if any were declared) becomes the running and boot-target partition.
func New(opts ...Option) *Platform {
	p := &Platform{
		partitions:     make(map[string]platform.OTAState),
		setBootFailFor: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(p)
	}
	if len(p.partitions) > 0 && p.running == "" {
		labels := make([]string, 0, len(p.partitions))
		for l := range p.partitions {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		p.running = labels[0]
		p.bootTarget = labels[0]
	}
	return p
}

// SetRunning forces the currently-running partition, independent of the
// boot target the bootloader would otherwise have chosen. Used by tests to
// set up "we just booted into X" scenarios without going through Restart.
func (p *Platform) SetRunning(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = label
	p.bootTarget = label
}

// SetResetReason sets the reason the next ResetReason() call reports.
func (p *Platform) SetResetReason(r platform.ResetReason) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reason = r
}

// SetOTAState sets the recorded OTA state for a partition label.
func (p *Platform) SetOTAState(label string, s platform.OTAState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.partitions[label] = s
}

// AddPartition registers a new partition label with the given OTA state.
func (p *Platform) AddPartition(label string, s platform.OTAState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.partitions[label] = s
}

// RemovePartition deletes a partition from the table, simulating a missing
// or never-flashed slot.
func (p *Platform) RemovePartition(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.partitions, label)
}

// FailBootSwitchFor makes SetBootPartition fail for the given label, to
// exercise the FailedSwitch paths.
func (p *Platform) FailBootSwitchFor(label string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setBootFailFor[label] = true
}

// FailMarkValid makes MarkValidCancelRollback return err.
func (p *Platform) FailMarkValid(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.markValidErr = err
}

// OnRestart registers a callback invoked synchronously from Restart, before
// Restart returns control to the caller. Tests use this to assert a
// rollback path actually reached the point of rebooting.
func (p *Platform) OnRestart(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.restart = fn
}

// RestartCount reports how many times Restart has been called.
func (p *Platform) RestartCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.restartCount
}

// Advance moves the simulated clock forward by ms milliseconds, wrapping at
// the uint32 boundary the same way a real millisecond counter would.
func (p *Platform) Advance(ms uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.millis += ms
}

// ResetReason implements platform.Platform.
func (p *Platform) ResetReason() platform.ResetReason {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reason
}

// FindPartitionByLabel implements platform.Platform.
func (p *Platform) FindPartitionByLabel(label string) (platform.Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.partitions[label]; !ok {
		return nil, false
	}
	return Handle(label), true
}

// SetBootPartition implements platform.Platform.
func (p *Platform) SetBootPartition(h platform.Handle) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	label := h.Label()
	if _, ok := p.partitions[label]; !ok {
		return fmt.Errorf("sim: unknown partition %q", label)
	}
	if p.setBootFailFor[label] {
		return fmt.Errorf("sim: injected boot-switch failure for %q", label)
	}
	p.bootTarget = label
	return nil
}

// RunningPartition implements platform.Platform.
func (p *Platform) RunningPartition() platform.Handle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Handle(p.running)
}

// OTAStateOf implements platform.Platform.
func (p *Platform) OTAStateOf(h platform.Handle) platform.OTAState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.partitions[h.Label()]
}

// MarkValidCancelRollback implements platform.Platform.
func (p *Platform) MarkValidCancelRollback() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.markValidErr != nil {
		return p.markValidErr
	}
	p.partitions[p.running] = platform.OTAValid
	return nil
}

// Restart implements platform.Platform. Unlike a real target it returns to
// the caller, after moving the simulated "running" partition to whatever
// the boot target currently is, so a follow-up BeginEarly call observes the
// post-reboot world.
func (p *Platform) Restart() {
	p.mu.Lock()
	p.restartCount++
	p.running = p.bootTarget
	cb := p.restart
	p.mu.Unlock()
	if cb != nil {
		cb()
	}
}

// MonotonicMillis implements platform.Platform.
func (p *Platform) MonotonicMillis() uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.millis
}
