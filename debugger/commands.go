package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mips32sim/mips32/reg"
)

// cmdRun (re)starts execution. With Restart wired up it rebuilds a
// clean Eng/Machine, so execution starts from the program's entry
// point; without it, execution resumes at the current PC.
func (d *Debugger) cmdRun(args []string) error {
	if d.Restart != nil {
		eng, m, err := d.Restart()
		if err != nil {
			return fmt.Errorf("restart: %w", err)
		}
		d.Eng, d.Machine = eng, m
	}
	d.Terminated = nil
	d.Running = true
	d.StepMode = StepNone
	d.Println("Starting program execution...")
	return nil
}

// cmdReset rebuilds a fresh Eng/Machine via Restart without starting
// execution, unlike "run" which also sets Running.
func (d *Debugger) cmdReset(args []string) error {
	if d.Restart == nil {
		return fmt.Errorf("reset: no restart path configured")
	}
	eng, m, err := d.Restart()
	if err != nil {
		return fmt.Errorf("restart: %w", err)
	}
	d.Eng, d.Machine = eng, m
	d.Terminated = nil
	d.Running = false
	d.StepMode = StepNone
	d.Println("Program reset")
	return nil
}

// cmdContinue resumes execution after a stop.
func (d *Debugger) cmdContinue(args []string) error {
	if d.Terminated != nil {
		return fmt.Errorf("program is not running")
	}
	d.Running = true
	d.StepMode = StepNone
	d.Println("Continuing...")
	return nil
}

// cmdStep executes a single instruction.
func (d *Debugger) cmdStep(args []string) error {
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

// cmdNext steps over a call instruction instead of into it.
func (d *Debugger) cmdNext(args []string) error {
	d.SetStepOver()
	return nil
}

// cmdFinish runs until the current function returns.
func (d *Debugger) cmdFinish(args []string) error {
	d.SetStepOut()
	return nil
}

// cmdBreak sets a breakpoint, optionally conditional ("break main if $t0 == 0").
func (d *Debugger) cmdBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: break <address|label> [if <condition>]")
	}

	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}

	var condition string
	if len(args) > 1 && strings.ToLower(args[1]) == "if" {
		condition = strings.Join(args[2:], " ")
	}

	bp := d.Breakpoints.AddBreakpoint(address, false, condition)
	if condition != "" {
		d.Printf("Breakpoint %d at 0x%08X (condition: %s)\n", bp.ID, address, condition)
	} else {
		d.Printf("Breakpoint %d at 0x%08X\n", bp.ID, address)
	}
	return nil
}

// cmdTBreak sets a one-shot breakpoint.
func (d *Debugger) cmdTBreak(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tbreak <address|label>")
	}
	address, err := d.ResolveAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(address, true, "")
	d.Printf("Temporary breakpoint %d at 0x%08X\n", bp.ID, address)
	return nil
}

// cmdDelete deletes one breakpoint, or all of them with no argument.
func (d *Debugger) cmdDelete(args []string) error {
	if len(args) == 0 {
		d.Breakpoints.Clear()
		d.Println("All breakpoints deleted")
		return nil
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DeleteBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d deleted\n", id)
	return nil
}

func (d *Debugger) cmdEnable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: enable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.EnableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d enabled\n", id)
	return nil
}

func (d *Debugger) cmdDisable(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: disable <breakpoint-id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint ID: %s", args[0])
	}
	if err := d.Breakpoints.DisableBreakpoint(id); err != nil {
		return err
	}
	d.Printf("Breakpoint %d disabled\n", id)
	return nil
}

// cmdWatch sets a watchpoint; "watch $t0" watches a register, "watch
// [0x10010000]" or "watch myvar" watches a memory word.
func (d *Debugger) cmdWatch(args []string) error {
	return d.addWatch(args, "Watchpoint")
}

func (d *Debugger) cmdRWatch(args []string) error {
	return d.addWatch(args, "Read watchpoint")
}

func (d *Debugger) cmdAWatch(args []string) error {
	return d.addWatch(args, "Access watchpoint")
}

func (d *Debugger) addWatch(args []string, label string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: watch <expression>")
	}
	expression := strings.Join(args, " ")
	kind, register, address, err := d.parseWatchExpression(expression)
	if err != nil {
		return err
	}

	wp := d.Watchpoints.AddWatchpoint(kind, expression, address, register)
	if err := d.Watchpoints.InitializeWatchpoint(wp.ID, d.Machine); err != nil {
		d.Watchpoints.DeleteWatchpoint(wp.ID)
		return err
	}
	d.Printf("%s %d: %s\n", label, wp.ID, expression)
	return nil
}

// parseWatchExpression decides whether expr names a register or
// resolves to a memory address.
func (d *Debugger) parseWatchExpression(expr string) (kind WatchKind, register string, address uint32, err error) {
	expr = strings.TrimSpace(expr)

	if strings.HasPrefix(expr, "$") {
		if r := d.Machine.GPR.ByName(expr); r != nil {
			return WatchRegister, expr, 0, nil
		}
		return 0, "", 0, fmt.Errorf("unknown register: %s", expr)
	}

	if strings.HasPrefix(expr, "[") && strings.HasSuffix(expr, "]") {
		addrStr := strings.TrimSuffix(strings.TrimPrefix(expr, "["), "]")
		addr, rerr := d.ResolveAddress(addrStr)
		if rerr != nil {
			return 0, "", 0, rerr
		}
		return WatchMemory, "", addr, nil
	}

	addr, rerr := d.ResolveAddress(expr)
	if rerr != nil {
		return 0, "", 0, fmt.Errorf("invalid watch expression: %s", expr)
	}
	return WatchMemory, "", addr, nil
}

// cmdPrint evaluates and prints an expression, recording it in the
// evaluator's history.
func (d *Debugger) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: print <expression>")
	}
	expression := strings.Join(args, " ")
	result, err := d.Evaluator.EvaluateExpression(expression, d.Machine, d.Symbols)
	if err != nil {
		return err
	}
	d.Printf("$%d = 0x%08X (%d)\n", d.Evaluator.GetValueNumber(), uint32(result), result)
	return nil
}

// cmdExamine dumps memory starting at an address: "x/8xw <addr>".
func (d *Debugger) cmdExamine(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: x[/nfu] <address>\n  n: count, f: format (x/d/u/o/t), u: unit (b/h/w)")
	}

	count := 1
	format := 'x'
	unit := 'w'
	addrArg := args[0]

	if strings.HasPrefix(args[0], "/") {
		formatStr := args[0][1:]
		if len(args) < 2 {
			return fmt.Errorf("missing address")
		}
		addrArg = args[1]

		i := 0
		for i < len(formatStr) && formatStr[i] >= '0' && formatStr[i] <= '9' {
			i++
		}
		if i > 0 {
			if n, err := strconv.Atoi(formatStr[:i]); err == nil {
				count = n
			}
			formatStr = formatStr[i:]
		}
		if len(formatStr) > 0 {
			format = rune(formatStr[0])
			formatStr = formatStr[1:]
		}
		if len(formatStr) > 0 {
			unit = rune(formatStr[0])
		}
	}

	address, err := d.ResolveAddress(addrArg)
	if err != nil {
		return err
	}

	d.Printf("0x%08X:", address)
	for i := 0; i < count; i++ {
		var value uint64
		var n int
		switch unit {
		case 'b':
			n = 1
		case 'h':
			n = 2
		default:
			n = 4
		}
		value, err = d.Machine.Mem.ReadBytes(address, n, false, false, d.Machine.Requester)
		if err != nil {
			return err
		}
		address += uint32(n)

		switch format {
		case 'd':
			d.Printf(" %d", int64(value))
		case 'u':
			d.Printf(" %d", value)
		case 'o':
			d.Printf(" %o", value)
		case 't':
			d.Printf(" %b", value)
		default:
			d.Printf(" 0x%0*X", n*2, value)
		}
	}
	d.Println()
	return nil
}

// cmdInfo dispatches "info registers/breakpoints/watchpoints/stack".
func (d *Debugger) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: info <registers|breakpoints|watchpoints|stack>")
	}
	switch strings.ToLower(args[0]) {
	case "registers", "reg", "r":
		return d.showRegisters()
	case "breakpoints", "break", "b":
		return d.showBreakpoints()
	case "watchpoints", "watch", "w":
		return d.showWatchpoints()
	case "stack", "s":
		return d.showStack()
	default:
		return fmt.Errorf("unknown info command: %s", args[0])
	}
}

func (d *Debugger) showRegisters() error {
	d.Println("Registers:")
	for _, r := range d.Machine.GPR.All() {
		d.Printf("  %-5s = 0x%08X (%d)\n", r.Name(), uint32(r.Read()), int32(r.Read()))
	}
	d.Printf("  PC    = 0x%08X\n", d.Machine.PC.Value())
	d.Printf("  CAUSE = 0x%08X\n", uint32(d.Machine.CP0.ReadInteger(reg.Cause, false)))
	return nil
}

func (d *Debugger) showBreakpoints() error {
	breakpoints := d.Breakpoints.GetAllBreakpoints()
	if len(breakpoints) == 0 {
		d.Println("No breakpoints")
		return nil
	}
	d.Println("Breakpoints:")
	for _, bp := range breakpoints {
		status := "enabled"
		if !bp.Enabled {
			status = "disabled"
		}
		temp := ""
		if bp.Temporary {
			temp = " (temporary)"
		}
		condition := ""
		if bp.Condition != "" {
			condition = fmt.Sprintf(" if %s", bp.Condition)
		}
		d.Printf("  %d: 0x%08X %s%s%s (hit %d times)\n", bp.ID, bp.Address, status, temp, condition, bp.HitCount)
	}
	return nil
}

func (d *Debugger) showWatchpoints() error {
	watchpoints := d.Watchpoints.GetAllWatchpoints()
	if len(watchpoints) == 0 {
		d.Println("No watchpoints")
		return nil
	}
	d.Println("Watchpoints:")
	for _, wp := range watchpoints {
		status := "enabled"
		if !wp.Enabled {
			status = "disabled"
		}
		d.Printf("  %d: %s %s (hit %d times, last value: 0x%08X)\n", wp.ID, wp.Expression, status, wp.HitCount, wp.LastValue)
	}
	return nil
}

func (d *Debugger) showStack() error {
	sp := uint32(d.Machine.GPR.ReadInteger(reg.Sp, false))
	d.Printf("Stack (SP = 0x%08X):\n", sp)
	for i := 0; i < StackDisplayWords; i++ {
		addr := sp + uint32(i*4)
		value, err := d.Machine.Mem.ReadBytes(addr, 4, false, false, d.Machine.Requester)
		if err != nil {
			break
		}
		d.Printf("  0x%08X: 0x%08X (%d)\n", addr, uint32(value), int32(value))
	}
	return nil
}

// cmdSet assigns a register or memory word: "set $t0 = 5", "set *0x10010000 = 1".
func (d *Debugger) cmdSet(args []string) error {
	if len(args) < 3 || args[1] != "=" {
		return fmt.Errorf("usage: set <register|*address> = <value>")
	}

	target := args[0]
	value, err := d.Evaluator.EvaluateExpression(args[2], d.Machine, d.Symbols)
	if err != nil {
		return err
	}

	if strings.HasPrefix(target, "*") {
		address, err := d.ResolveAddress(target[1:])
		if err != nil {
			return err
		}
		if err := d.Machine.Mem.WriteBytes(address, uint64(uint32(value)), 4, false, d.Machine.Requester); err != nil {
			return err
		}
		d.Printf("Memory 0x%08X set to 0x%08X\n", address, uint32(value))
		return nil
	}

	r := d.Machine.GPR.ByName(target)
	if r == nil {
		return fmt.Errorf("invalid target: %s", target)
	}
	d.Machine.GPR.WriteInteger(r.Address, uint64(uint32(value)))
	d.Printf("Register %s set to 0x%08X\n", target, uint32(value))
	return nil
}

// cmdHelp prints the command summary, or detailed help for one command.
func (d *Debugger) cmdHelp(args []string) error {
	if len(args) > 0 {
		return d.showCommandHelp(args[0])
	}

	d.Println("Debugger commands:")
	d.Println()
	d.Println("Execution control:")
	d.Println("  run (r)           - Start program execution")
	d.Println("  reset             - Rebuild program state without running")
	d.Println("  continue (c)      - Continue execution")
	d.Println("  step (s, si)      - Execute single instruction")
	d.Println("  next (n)          - Step over a call")
	d.Println("  finish (fin)      - Run until the current function returns")
	d.Println()
	d.Println("Breakpoints:")
	d.Println("  break (b) <addr>  - Set breakpoint")
	d.Println("  tbreak (tb) <addr>- Set temporary breakpoint")
	d.Println("  delete (d) [id]   - Delete breakpoint(s)")
	d.Println("  enable <id>       - Enable breakpoint")
	d.Println("  disable <id>      - Disable breakpoint")
	d.Println()
	d.Println("Watchpoints:")
	d.Println("  watch (w) <expr>  - Watch for value changes")
	d.Println("  rwatch <expr>     - Watch for value changes (read-tagged)")
	d.Println("  awatch <expr>     - Watch for value changes (access-tagged)")
	d.Println()
	d.Println("Inspection:")
	d.Println("  print (p) <expr>  - Evaluate expression")
	d.Println("  x[/nfu] <addr>    - Examine memory")
	d.Println("  info (i) <what>   - Show registers/breakpoints/watchpoints/stack")
	d.Println()
	d.Println("Modification:")
	d.Println("  set <var> = <val> - Modify register/memory")
	d.Println()
	d.Println("  help (h, ?)       - Show this help")
	d.Println("Type 'help <command>' for detailed help on a specific command.")
	return nil
}

func (d *Debugger) showCommandHelp(cmd string) error {
	helpText := map[string]string{
		"break": "break <address|label> [if <condition>]\n  Set a breakpoint. An optional condition is evaluated each time it's hit.",
		"step":  "step\n  Execute a single instruction.",
		"next":  "next\n  Step over a call instruction instead of into it.",
		"print": "print <expression>\n  Evaluate and print an expression: registers, memory, symbols, and arithmetic.",
		"x":     "x[/nfu] <address>\n  Examine memory.\n  n: count, f: format (x/d/u/o/t), u: unit (b/h/w)",
		"info":  "info <registers|breakpoints|watchpoints|stack>\n  Display information about program state.",
	}
	if help, exists := helpText[cmd]; exists {
		d.Println(help)
		return nil
	}
	return fmt.Errorf("no help available for command: %s", cmd)
}
