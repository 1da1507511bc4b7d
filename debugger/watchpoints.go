package debugger

import (
	"fmt"
	"sync"

	"github.com/mips32sim/mips32/isa"
)

// WatchKind distinguishes a register watchpoint from a memory one.
// The underlying check is value-change detection either way — there's
// no hook into the memory/register layer for true read/write
// interception, so a "read" watchpoint and a "write" watchpoint
// behave identically today.
type WatchKind int

const (
	WatchRegister WatchKind = iota
	WatchMemory
)

// Watchpoint monitors a register or memory word for a value change.
type Watchpoint struct {
	ID         int
	Kind       WatchKind
	Expression string // source text, e.g. "$t0" or "[0x10010000]"
	Address    uint32 // resolved memory address, if Kind == WatchMemory
	Register   string // register name, if Kind == WatchRegister
	Enabled    bool
	LastValue  uint32
	HitCount   int
}

// WatchpointManager tracks every watchpoint by ID.
type WatchpointManager struct {
	mu          sync.RWMutex
	watchpoints map[int]*Watchpoint
	nextID      int
}

// NewWatchpointManager builds an empty manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{watchpoints: make(map[int]*Watchpoint), nextID: 1}
}

// AddWatchpoint registers a new watchpoint. Its LastValue is left at
// zero until InitializeWatchpoint primes it against the live machine.
func (wm *WatchpointManager) AddWatchpoint(kind WatchKind, expression string, address uint32, register string) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp := &Watchpoint{ID: wm.nextID, Kind: kind, Expression: expression, Address: address, Register: register, Enabled: true}
	wm.watchpoints[wp.ID] = wp
	wm.nextID++
	return wp
}

// DeleteWatchpoint removes the watchpoint with the given ID.
func (wm *WatchpointManager) DeleteWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	if _, exists := wm.watchpoints[id]; !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	delete(wm.watchpoints, id)
	return nil
}

// EnableWatchpoint enables the watchpoint with the given ID.
func (wm *WatchpointManager) EnableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = true
	return nil
}

// DisableWatchpoint disables the watchpoint with the given ID.
func (wm *WatchpointManager) DisableWatchpoint(id int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	wp.Enabled = false
	return nil
}

// GetWatchpoint returns the watchpoint with the given ID, or nil.
func (wm *WatchpointManager) GetWatchpoint(id int) *Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return wm.watchpoints[id]
}

// GetAllWatchpoints returns every watchpoint.
func (wm *WatchpointManager) GetAllWatchpoints() []*Watchpoint {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	out := make([]*Watchpoint, 0, len(wm.watchpoints))
	for _, wp := range wm.watchpoints {
		out = append(out, wp)
	}
	return out
}

// readCurrent fetches the live value a watchpoint is monitoring.
func readCurrent(m *isa.Machine, wp *Watchpoint) (uint32, error) {
	if wp.Kind == WatchRegister {
		r := m.GPR.ByName(wp.Register)
		if r == nil {
			return 0, fmt.Errorf("unknown register %q", wp.Register)
		}
		return uint32(r.Read()), nil
	}
	v, err := m.Mem.ReadBytes(wp.Address, 4, false, false, m.Requester)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// CheckWatchpoints returns the first enabled watchpoint whose value
// differs from its last-known value, updating its LastValue and
// HitCount as a side effect.
func (wm *WatchpointManager) CheckWatchpoints(m *isa.Machine) (*Watchpoint, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for _, wp := range wm.watchpoints {
		if !wp.Enabled {
			continue
		}
		current, err := readCurrent(m, wp)
		if err != nil {
			continue
		}
		if current != wp.LastValue {
			wp.HitCount++
			wp.LastValue = current
			return wp, true
		}
	}
	return nil, false
}

// InitializeWatchpoint primes LastValue from the live machine so the
// first CheckWatchpoints call doesn't report a spurious hit.
func (wm *WatchpointManager) InitializeWatchpoint(id int, m *isa.Machine) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	wp, exists := wm.watchpoints[id]
	if !exists {
		return fmt.Errorf("watchpoint %d not found", id)
	}
	current, err := readCurrent(m, wp)
	if err != nil {
		return fmt.Errorf("failed to initialize watchpoint: %w", err)
	}
	wp.LastValue = current
	return nil
}

// Clear removes every watchpoint.
func (wm *WatchpointManager) Clear() {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	wm.watchpoints = make(map[int]*Watchpoint)
}

// Count returns the number of watchpoints.
func (wm *WatchpointManager) Count() int {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	return len(wm.watchpoints)
}
