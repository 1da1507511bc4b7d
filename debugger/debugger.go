package debugger

import (
	"fmt"
	"strings"

	"github.com/mips32sim/mips32/asm"
	"github.com/mips32sim/mips32/engine"
	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/reg"
)

// StepMode selects how the debugger decides when to stop during a
// continuous run.
type StepMode int

const (
	StepNone StepMode = iota
	StepSingle
	StepOver
	StepOut
)

// Debugger wraps an engine.Engine with breakpoints, watchpoints,
// command history, and an expression evaluator, the way a source-level
// debugger sits on top of a bare interpreter loop.
type Debugger struct {
	Eng     *engine.Engine
	Machine *isa.Machine

	Breakpoints *BreakpointManager
	Watchpoints *WatchpointManager
	History     *CommandHistory
	Evaluator   *ExpressionEvaluator

	Running           bool
	StepMode          StepMode
	StepOverReturnPC  uint32
	StepOverCallDepth int

	Symbols map[string]uint32

	// SourceMap associates instruction addresses with their original
	// assembly source line, for the TUI's source panel. nil/empty
	// until LoadSourceMap is called.
	SourceMap map[uint32]string

	LastCommand string
	Output      strings.Builder

	Terminated *excn.Termination

	// Restart rebuilds a fresh Eng/Machine pair from whatever program
	// is currently loaded (re-assemble and loader.Load), letting
	// "run"/"reset" start over. nil if the caller hasn't wired one up
	// (e.g. a one-shot debug session with no reload path).
	Restart func() (*engine.Engine, *isa.Machine, error)
}

// NewDebugger builds a debugger driving eng/m, with no breakpoints,
// watchpoints, or symbols loaded yet.
func NewDebugger(eng *engine.Engine, m *isa.Machine) *Debugger {
	return &Debugger{
		Eng:         eng,
		Machine:     m,
		Breakpoints: NewBreakpointManager(),
		Watchpoints: NewWatchpointManager(),
		History:     NewCommandHistory(),
		Evaluator:   NewExpressionEvaluator(),
		Symbols:     make(map[string]uint32),
		SourceMap:   make(map[uint32]string),
	}
}

// LoadSourceMap installs a mapping from instruction address to the
// original source line, for display in the TUI's source panel.
func (d *Debugger) LoadSourceMap(sourceMap map[uint32]string) {
	d.SourceMap = sourceMap
}

// LoadSymbols installs prog's symbol table for label resolution in
// expressions and the "break <label>" form.
func (d *Debugger) LoadSymbols(prog *asm.Program) {
	d.Symbols = make(map[string]uint32)
	for name, sym := range prog.Global.All() {
		d.Symbols[name] = sym.Address
	}
	for name, sym := range prog.Local.All() {
		d.Symbols[name] = sym.Address
	}
}

// ResolveAddress resolves a symbol name or parses a numeric address
// (decimal or 0x-prefixed hex).
func (d *Debugger) ResolveAddress(s string) (uint32, error) {
	if addr, ok := d.Symbols[s]; ok {
		return addr, nil
	}
	var addr uint32
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if _, err := fmt.Sscanf(s, "0x%x", &addr); err != nil {
			return 0, fmt.Errorf("invalid address: %s", s)
		}
		return addr, nil
	}
	if _, err := fmt.Sscanf(s, "%d", &addr); err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return addr, nil
}

// ExecuteCommand parses and runs one command line, repeating the last
// command when given an empty line (gdb's convention for step/next).
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.History.Add(cmdLine)
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}
	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	if strings.HasPrefix(cmd, "x/") {
		return d.cmdExamine(append([]string{cmd[1:]}, args...))
	}
	switch cmd {
	case "run", "r":
		return d.cmdRun(args)
	case "reset":
		return d.cmdReset(args)
	case "continue", "c":
		return d.cmdContinue(args)
	case "step", "s", "si":
		return d.cmdStep(args)
	case "next", "n":
		return d.cmdNext(args)
	case "finish", "fin":
		return d.cmdFinish(args)

	case "break", "b":
		return d.cmdBreak(args)
	case "tbreak", "tb":
		return d.cmdTBreak(args)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdEnable(args)
	case "disable":
		return d.cmdDisable(args)

	case "watch", "w":
		return d.cmdWatch(args)
	case "rwatch":
		return d.cmdRWatch(args)
	case "awatch":
		return d.cmdAWatch(args)

	case "print", "p":
		return d.cmdPrint(args)
	case "x":
		return d.cmdExamine(args)
	case "info", "i":
		return d.cmdInfo(args)

	case "set":
		return d.cmdSet(args)

	case "help", "h", "?":
		return d.cmdHelp(args)

	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

// ShouldBreak reports whether execution should pause at the Machine's
// current PC, per the active step mode, breakpoints, and watchpoints.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.Machine.PC.Value()

	switch d.StepMode {
	case StepSingle:
		d.StepMode = StepNone
		return true, "single step"
	case StepOver:
		if pc == d.StepOverReturnPC {
			d.StepMode = StepNone
			return true, "step over complete"
		}
	case StepOut:
		if pc == d.StepOverReturnPC {
			d.StepMode = StepNone
			return true, "step out complete"
		}
	}

	if bp := d.Breakpoints.GetBreakpoint(pc); bp != nil {
		if !bp.Enabled {
			return false, ""
		}
		if bp.Condition != "" {
			ok, err := d.Evaluator.Evaluate(bp.Condition, d.Machine, d.Symbols)
			if err != nil {
				return true, fmt.Sprintf("breakpoint %d (condition error: %v)", bp.ID, err)
			}
			if !ok {
				return false, ""
			}
		}
		hit := d.Breakpoints.ProcessHit(pc)
		return true, fmt.Sprintf("breakpoint %d", hit.ID)
	}

	if wp, changed := d.Watchpoints.CheckWatchpoints(d.Machine); changed {
		return true, fmt.Sprintf("watchpoint %d: %s", wp.ID, wp.Expression)
	}

	return false, ""
}

// GetOutput returns and clears the debugger's text output buffer.
func (d *Debugger) GetOutput() string {
	out := d.Output.String()
	d.Output.Reset()
	return out
}

func (d *Debugger) Printf(format string, args ...interface{}) {
	fmt.Fprintf(&d.Output, format, args...)
}

func (d *Debugger) Println(args ...interface{}) {
	fmt.Fprintln(&d.Output, args...)
}

// callMnemonics names every instruction that transfers control with a
// return address, so SetStepOver knows when to run to the return site
// instead of single-stepping into the callee.
var callMnemonics = map[string]bool{"jal": true, "jalr": true, "bal": true, "balc": true}

// SetStepOver arranges the debugger to stop after the current
// instruction returns, stepping over a call instead of into it.
func (d *Debugger) SetStepOver() {
	pc := d.Machine.PC.Value()
	raw, err := d.Machine.Mem.ReadInstruction(pc)
	st, ok := raw.(*asm.Statement)
	if err != nil || !ok {
		d.StepMode = StepSingle
		d.Running = true
		return
	}

	if callMnemonics[st.Instr.Mnemonic] {
		d.StepOverReturnPC = pc + 4
		if st.Instr.HasDelaySlot {
			d.StepOverReturnPC += 4
		}
		d.StepMode = StepOver
	} else {
		d.StepMode = StepSingle
	}
	d.Running = true
}

// SetStepOut runs until the instruction at the caller's return
// address (the value currently in $ra) is reached.
func (d *Debugger) SetStepOut() {
	d.StepOverReturnPC = uint32(d.Machine.GPR.ReadInteger(reg.Ra, false))
	d.StepMode = StepOut
	d.Running = true
}
