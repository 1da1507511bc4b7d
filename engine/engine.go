// Package engine implements the fetch/decode/dispatch execution loop
// that drives an isa.Machine: reading decoded statements back out of
// memory, staging and committing branch/jump targets, running
// delay-slot semantics, and routing runtime exceptions to the syscall
// table or a kernel handler.
package engine

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mips32sim/mips32/asm"
	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/mem"
)

// DefaultLoopLimit is the per-address revisit count at which the
// engine gives up on a runaway program.
const DefaultLoopLimit = 100

// FetchObserver is invoked with the address of every instruction
// before its executor runs, letting a debugger or tracer follow
// execution.
type FetchObserver func(addr uint32)

// Config controls one run of the engine.
type Config struct {
	LoopLimit  int
	DelaySlots bool
	KtextBase  uint32
}

// DefaultConfig returns the engine's out-of-the-box behavior: delay
// slots disabled, loop-limit at the spec default, kernel handlers
// addressed from the standard kernel-text base.
func DefaultConfig() Config {
	return Config{LoopLimit: DefaultLoopLimit, DelaySlots: false, KtextBase: mem.KernelTextLower}
}

// Engine is one execution context over a Machine.
type Engine struct {
	M       *isa.Machine
	cfg     Config
	revisit map[uint32]int
	fetchCB []FetchObserver
	stdin   *bufio.Reader
	stdout  io.Writer
}

// New builds an Engine bound to m.
func New(m *isa.Machine, cfg Config) *Engine {
	return &Engine{M: m, cfg: cfg, revisit: make(map[uint32]int)}
}

// OnFetch registers a callback invoked with each instruction's
// address before its executor runs.
func (e *Engine) OnFetch(cb FetchObserver) {
	e.fetchCB = append(e.fetchCB, cb)
}

// Run drives the engine until it terminates, per spec §4.5's loop.
func (e *Engine) Run() *excn.Termination {
	for {
		if term := e.Step(); term != nil {
			return term
		}
	}
}

// Step executes exactly one instruction (plus its delay slot, if
// applicable) at the current PC and advances PC, returning a
// Termination if the program stopped.
func (e *Engine) Step() *excn.Termination {
	pc := e.M.PC.Value()
	res := e.executeAt(pc, false)
	if res.term != nil {
		return res.term
	}
	next := pc + 4
	if res.taken {
		next = res.target
	}
	e.M.PC.Set(next)
	return nil
}

type stepResult struct {
	taken  bool
	target uint32
	term   *excn.Termination
}

// executeAt fetches and runs the statement at addr. delaySlot is true
// only while executing the instruction immediately following a
// not-yet-committed branch/jump.
func (e *Engine) executeAt(addr uint32, delaySlot bool) stepResult {
	raw, err := e.M.Mem.ReadInstruction(addr)
	if err != nil {
		return stepResult{term: crashed(addr, fmt.Sprintf("instruction fetch failed: %s", err))}
	}
	if raw == nil {
		if delaySlot {
			return stepResult{}
		}
		return stepResult{term: &excn.Termination{Reason: excn.StopProgramDroppedOff, Address: addr}}
	}
	st, ok := raw.(*asm.Statement)
	if !ok {
		return stepResult{term: crashed(addr, "instruction memory holds an unrecognized record")}
	}

	if !delaySlot {
		e.revisit[addr]++
		if e.revisit[addr] > e.cfg.LoopLimit {
			return stepResult{term: &excn.Termination{Reason: excn.StopProgramCrashed,
				Detail: fmt.Sprintf("loop limit of %d exceeded at 0x%08X", e.cfg.LoopLimit, addr), Address: addr}}
		}
	}

	for _, cb := range e.fetchCB {
		cb(addr)
	}

	if delaySlot && isControlTransfer(st.Instr.Family) {
		return stepResult{term: &excn.Termination{Reason: excn.StopProgramCrashed,
			Exception: excn.NewReservedInstruction("control transfer instruction in delay slot"), Address: addr}}
	}

	e.M.PC.Set(addr)
	e.M.DelaySlot = delaySlot
	e.M.Requester = requesterFor(e.M.Mem, addr)
	e.M.BranchTaken = false
	e.M.BranchTarget = 0

	if exc := st.Instr.Execute(e.M, st.Operands); exc != nil {
		outcome := e.handleException(exc, addr)
		if outcome.term != nil {
			return stepResult{term: outcome.term}
		}
		if outcome.jump {
			return stepResult{taken: true, target: outcome.target}
		}
	}

	// Capture this instruction's own staged branch before running its
	// delay slot, which executes on the same Machine and will
	// overwrite BranchTaken/BranchTarget with its own (normally empty)
	// decision.
	taken, target := e.M.BranchTaken, e.M.BranchTarget

	if taken && st.Instr.HasDelaySlot && e.cfg.DelaySlots {
		ds := e.executeAt(addr+4, true)
		if ds.term != nil {
			return ds
		}
	}

	if taken {
		return stepResult{taken: true, target: target}
	}
	return stepResult{}
}

func isControlTransfer(f isa.Family) bool {
	switch f {
	case isa.FamilyBranch, isa.FamilyBranch1, isa.FamilyCompactBranch, isa.FamilyCompactBranch1,
		isa.FamilyJump, isa.FamilyJumpReg, isa.FamilyCompactJump, isa.FamilyJumpIndexed:
		return true
	default:
		return false
	}
}

func requesterFor(m *mem.Memory, addr uint32) mem.AccessLevel {
	if seg, err := m.FindSegment(addr); err == nil && seg.Name == "kernel text" {
		return mem.AccessKernel
	}
	return mem.AccessUser
}

func crashed(addr uint32, detail string) *excn.Termination {
	return &excn.Termination{Reason: excn.StopProgramCrashed, Detail: detail, Address: addr}
}
