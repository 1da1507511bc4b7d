package debugger

import (
	"strings"
	"testing"

	"github.com/mips32sim/mips32/engine"
	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/reg"
)

func newCommandDebugger(t *testing.T) *Debugger {
	t.Helper()
	m := isa.NewMachine(mem.NewMemory())
	eng := engine.New(m, engine.DefaultConfig())
	return NewDebugger(eng, m)
}

func TestCmdBreakAndDelete(t *testing.T) {
	d := newCommandDebugger(t)

	if err := d.ExecuteCommand("break 0x00400000"); err != nil {
		t.Fatalf("break: %v", err)
	}
	if d.Breakpoints.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", d.Breakpoints.Count())
	}

	if err := d.ExecuteCommand("delete 1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if d.Breakpoints.Count() != 0 {
		t.Errorf("Count() = %d, want 0 after delete", d.Breakpoints.Count())
	}
}

func TestCmdBreakWithCondition(t *testing.T) {
	d := newCommandDebugger(t)

	if err := d.ExecuteCommand("break 0x00400000 if $t0 == 5"); err != nil {
		t.Fatalf("break: %v", err)
	}
	bp := d.Breakpoints.GetBreakpoint(0x00400000)
	if bp == nil {
		t.Fatal("expected breakpoint to exist")
	}
	if bp.Condition != "$t0 == 5" {
		t.Errorf("Condition = %q, want %q", bp.Condition, "$t0 == 5")
	}
}

func TestCmdTBreakIsTemporary(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("tbreak 0x00400000"); err != nil {
		t.Fatalf("tbreak: %v", err)
	}
	bp := d.Breakpoints.GetBreakpoint(0x00400000)
	if bp == nil || !bp.Temporary {
		t.Fatal("expected a temporary breakpoint")
	}
}

func TestCmdEnableDisable(t *testing.T) {
	d := newCommandDebugger(t)
	d.ExecuteCommand("break 0x00400000")

	if err := d.ExecuteCommand("disable 1"); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if d.Breakpoints.GetBreakpointByID(1).Enabled {
		t.Error("expected breakpoint to be disabled")
	}

	if err := d.ExecuteCommand("enable 1"); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if !d.Breakpoints.GetBreakpointByID(1).Enabled {
		t.Error("expected breakpoint to be enabled")
	}
}

func TestCmdWatchRegister(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("watch $t0"); err != nil {
		t.Fatalf("watch: %v", err)
	}
	if d.Watchpoints.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", d.Watchpoints.Count())
	}
}

func TestCmdWatchMemory(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("watch [0x10000000]"); err != nil {
		t.Fatalf("watch: %v", err)
	}
	wps := d.Watchpoints.GetAllWatchpoints()
	if len(wps) != 1 || wps[0].Kind != WatchMemory {
		t.Fatalf("expected one memory watchpoint, got %+v", wps)
	}
}

func TestCmdPrintEvaluatesAndRecordsHistory(t *testing.T) {
	d := newCommandDebugger(t)
	d.Machine.GPR.WriteInteger(reg.T0, 42)

	if err := d.ExecuteCommand("print $t0 + 1"); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := d.GetOutput()
	if !strings.Contains(out, "43") {
		t.Errorf("output = %q, want it to contain 43", out)
	}
	if d.Evaluator.GetValueNumber() != 1 {
		t.Errorf("GetValueNumber() = %d, want 1", d.Evaluator.GetValueNumber())
	}
}

func TestCmdSetRegister(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("set $t0 = 7"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := d.Machine.GPR.ReadInteger(reg.T0, false); got != 7 {
		t.Errorf("$t0 = %d, want 7", got)
	}
}

func TestCmdSetMemory(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("set *0x10000000 = 99"); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := d.Machine.Mem.ReadBytes(0x10000000, 4, false, false, d.Machine.Requester)
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}
	if value != 99 {
		t.Errorf("memory = %d, want 99", value)
	}
}

func TestCmdExamineWord(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.Machine.Mem.WriteBytes(0x10000000, 0xDEADBEEF, 4, false, d.Machine.Requester); err != nil {
		t.Fatalf("WriteBytes() error = %v", err)
	}

	if err := d.ExecuteCommand("x /1xw 0x10000000"); err != nil {
		t.Fatalf("x: %v", err)
	}
	out := d.GetOutput()
	if !strings.Contains(strings.ToUpper(out), "DEADBEEF") {
		t.Errorf("output = %q, want it to contain DEADBEEF", out)
	}
}

func TestCmdInfoRegisters(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("info registers"); err != nil {
		t.Fatalf("info registers: %v", err)
	}
	out := d.GetOutput()
	if !strings.Contains(out, "$zero") {
		t.Errorf("output = %q, want it to list $zero", out)
	}
}

func TestCmdRunWithoutRestartStillRuns(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("run"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !d.Running {
		t.Error("expected Running to be true after run")
	}
}

func TestCmdResetRequiresRestart(t *testing.T) {
	d := newCommandDebugger(t)
	if err := d.ExecuteCommand("reset"); err == nil {
		t.Error("expected an error when Restart is not configured")
	}
}

func TestCmdResetRebuildsMachine(t *testing.T) {
	d := newCommandDebugger(t)
	freshMachine := isa.NewMachine(mem.NewMemory())
	freshEngine := engine.New(freshMachine, engine.DefaultConfig())
	d.Restart = func() (*engine.Engine, *isa.Machine, error) {
		return freshEngine, freshMachine, nil
	}

	d.Running = true
	if err := d.ExecuteCommand("reset"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if d.Running {
		t.Error("expected Running to be false after reset")
	}
	if d.Machine != freshMachine {
		t.Error("expected reset to install the rebuilt Machine")
	}
}

func TestCmdContinueWithoutRunningProgram(t *testing.T) {
	d := newCommandDebugger(t)
	d.Terminated = &excn.Termination{Reason: excn.StopProgramDroppedOff, Address: 0x00400000}
	if err := d.ExecuteCommand("continue"); err == nil {
		t.Error("expected an error continuing a terminated program")
	}
}
