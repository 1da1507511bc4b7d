package debugger

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/mips32sim/mips32/reg"
)

// TUI is the text user interface for the debugger: source, registers,
// memory, stack and disassembly panels around an output log and a
// command line.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application
	Pages    *tview.Pages

	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	SourceView      *tview.TextView
	RegisterView    *tview.TextView
	MemoryView      *tview.TextView
	StackView       *tview.TextView
	DisassemblyView *tview.TextView
	BreakpointsView *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField

	MemoryAddress uint32
}

// NewTUI builds a TUI driving dbg.
func NewTUI(dbg *Debugger) *TUI {
	t := &TUI{
		Debugger: dbg,
		App:      tview.NewApplication(),
	}

	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()

	return t
}

func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.RegisterView = tview.NewTextView().SetDynamicColors(true).SetScrollable(false)
	t.RegisterView.SetBorder(true).SetTitle(" Registers ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints/Watchpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 0, 3, false).
		AddItem(t.DisassemblyView, 0, 2, false)

	rightTop := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 14, 0, false).
		AddItem(t.MemoryView, 0, 1, false).
		AddItem(t.StackView, 0, 1, false)

	t.RightPanel = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(rightTop, 0, 3, false).
		AddItem(t.BreakpointsView, 8, 0, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 8, 0, false).
		AddItem(t.CommandInput, 3, 0, true)

	t.Pages = tview.NewPages().AddPage("main", t.MainLayout, true, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF1:
			t.executeCommand("help")
			return nil
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF9:
			t.executeCommand("break")
			return nil
		case tcell.KeyF10:
			t.executeCommand("next")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			t.RefreshAll()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	if cmd == "" {
		return
	}
	t.executeCommand(cmd)
	t.CommandInput.SetText("")
}

func (t *TUI) executeCommand(cmd string) {
	t.Debugger.Output.Reset()

	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	if err != nil {
		t.WriteOutput(fmt.Sprintf("[red]Error:[white] %v\n", err))
	}
	if output != "" {
		t.WriteOutput(output)
	}

	if t.Debugger.Running {
		t.runUntilStop()
	}

	t.RefreshAll()
}

// runUntilStop drives the engine from the command handler's goroutine
// (tview's event loop is single-threaded, so a long-running program
// would otherwise freeze the UI); it stops at the first breakpoint,
// watchpoint, step-mode trigger, or termination.
func (t *TUI) runUntilStop() {
	d := t.Debugger
	steps := 0
	for d.Running {
		if shouldBreak, reason := d.ShouldBreak(); shouldBreak {
			d.Running = false
			t.WriteOutput(fmt.Sprintf("Stopped: %s at PC=0x%08X\n", reason, d.Machine.PC.Value()))
			break
		}

		if term := d.Eng.Step(); term != nil {
			d.Terminated = term
			d.Running = false
			t.WriteOutput(term.String() + "\n")
			break
		}

		steps++
		if steps%DisplayUpdateFrequency == 0 {
			t.RefreshAll()
		}
	}
}

// WriteOutput appends text to the output log and scrolls it into view.
func (t *TUI) WriteOutput(text string) {
	fmt.Fprint(t.OutputView, text)
	t.OutputView.ScrollToEnd()
}

// RefreshAll redraws every panel from current debugger state.
func (t *TUI) RefreshAll() {
	t.UpdateSourceView()
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateStackView()
	t.UpdateDisassemblyView()
	t.UpdateBreakpointsView()
	t.App.Draw()
}

func (t *TUI) UpdateSourceView() {
	d := t.Debugger
	if len(d.SourceMap) == 0 {
		t.SourceView.SetText("[yellow]No source available[white]")
		return
	}

	pc := d.Machine.PC.Value()
	startAddr := pc - 20
	if startAddr > pc {
		startAddr = 0
	}

	var lines []string
	for addr := startAddr; addr < pc+40; addr += 4 {
		src, ok := d.SourceMap[addr]
		if !ok {
			continue
		}
		marker, color := "  ", "white"
		if addr == pc {
			marker, color = "->", "yellow"
		}
		if d.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}
		lines = append(lines, fmt.Sprintf("[%s]%s 0x%08X: %s[white]", color, marker, addr, src))
	}
	t.SourceView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateRegisterView() {
	d := t.Debugger
	all := d.Machine.GPR.All()

	var lines []string
	for i := 0; i < len(all); i += RegisterGroupSize {
		var cols []string
		for j := i; j < i+RegisterGroupSize && j < len(all); j++ {
			r := all[j]
			cols = append(cols, fmt.Sprintf("%-6s 0x%08X", r.Name(), uint32(r.Read())))
		}
		lines = append(lines, strings.Join(cols, "  "))
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("PC:     0x%08X", d.Machine.PC.Value()))
	status := d.Machine.CP0.ReadInteger(reg.Status, false)
	cause := d.Machine.CP0.ReadInteger(reg.Cause, false)
	epc := d.Machine.CP0.ReadInteger(reg.ExceptionPC, false)
	lines = append(lines, fmt.Sprintf("STATUS: 0x%08X  CAUSE: 0x%08X  EPC: 0x%08X", uint32(status), uint32(cause), uint32(epc)))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateMemoryView() {
	d := t.Debugger
	addr := t.MemoryAddress
	if addr == 0 {
		addr = d.Machine.PC.Value()
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Address: 0x%08X[white]", addr))

	for row := 0; row < MemoryDisplayRows; row++ {
		rowAddr := addr + uint32(row*MemoryDisplayColumns)
		line := fmt.Sprintf("0x%08X: ", rowAddr)

		var hexBytes []string
		var asciiBytes []byte
		for col := 0; col < MemoryDisplayColumns; col++ {
			b, err := d.Machine.Mem.ReadBytes(rowAddr+uint32(col), 1, false, false, d.Machine.Requester)
			if err != nil {
				hexBytes = append(hexBytes, "??")
				asciiBytes = append(asciiBytes, '.')
				continue
			}
			hexBytes = append(hexBytes, fmt.Sprintf("%02X", byte(b)))
			if b >= 32 && b < 127 {
				asciiBytes = append(asciiBytes, byte(b))
			} else {
				asciiBytes = append(asciiBytes, '.')
			}
		}

		line += strings.Join(hexBytes, " ") + "  " + string(asciiBytes)
		lines = append(lines, line)
	}

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateStackView() {
	d := t.Debugger
	sp := uint32(d.Machine.GPR.ReadInteger(reg.Sp, false))

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]Stack Pointer: 0x%08X[white]", sp))

	for i := 0; i < StackDisplayWords; i++ {
		addr := sp + uint32(i*4)
		word, err := d.Machine.Mem.ReadBytes(addr, 4, false, false, d.Machine.Requester)
		if err != nil {
			lines = append(lines, fmt.Sprintf("0x%08X: ????????", addr))
			continue
		}

		marker := "  "
		if addr == sp {
			marker = "->"
		}

		line := fmt.Sprintf("%s 0x%08X: 0x%08X", marker, addr, uint32(word))
		if sym := t.findSymbolForAddress(uint32(word)); sym != "" {
			line += fmt.Sprintf(" <%s>", sym)
		}
		lines = append(lines, line)
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateDisassemblyView() {
	d := t.Debugger
	pc := d.Machine.PC.Value()

	startAddr := pc - 32
	if startAddr > pc {
		startAddr = 0
	}

	var lines []string
	for i := 0; i < 16; i++ {
		addr := startAddr + uint32(i*4)

		marker, color := "  ", "white"
		if addr == pc {
			marker, color = "->", "yellow"
		}
		if d.Breakpoints.GetBreakpoint(addr) != nil {
			marker = "* "
		}

		text := formatInstructionAt(d.Machine, addr)
		line := fmt.Sprintf("[%s]%s 0x%08X: %s[white]", color, marker, addr, text)
		if sym := t.findSymbolForAddress(addr); sym != "" {
			line = fmt.Sprintf("[%s]%s 0x%08X: %-24s <%s>[white]", color, marker, addr, text, sym)
		}
		lines = append(lines, line)
	}

	t.DisassemblyView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateBreakpointsView() {
	d := t.Debugger

	var lines []string
	bps := d.Breakpoints.GetAllBreakpoints()
	if len(bps) > 0 {
		lines = append(lines, "[yellow]Breakpoints:[white]")
		for _, bp := range bps {
			status, color := "enabled", "green"
			if !bp.Enabled {
				status, color = "disabled", "red"
			}
			line := fmt.Sprintf("  %d: [%s]%s[white] 0x%08X", bp.ID, color, status, bp.Address)
			if sym := t.findSymbolForAddress(bp.Address); sym != "" {
				line += fmt.Sprintf(" <%s>", sym)
			}
			if bp.Condition != "" {
				line += fmt.Sprintf(" if %s", bp.Condition)
			}
			line += fmt.Sprintf(" (hits: %d)", bp.HitCount)
			lines = append(lines, line)
		}
	} else {
		lines = append(lines, "[yellow]No breakpoints set[white]")
	}

	lines = append(lines, "")

	wps := d.Watchpoints.GetAllWatchpoints()
	if len(wps) > 0 {
		lines = append(lines, "[yellow]Watchpoints:[white]")
		for _, wp := range wps {
			label := "watch"
			if wp.Kind == WatchMemory {
				label = "watch*"
			}
			lines = append(lines, fmt.Sprintf("  %d: %s %s = 0x%08X", wp.ID, label, wp.Expression, wp.LastValue))
		}
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) findSymbolForAddress(addr uint32) string {
	for sym, symAddr := range t.Debugger.Symbols {
		if symAddr == addr {
			return sym
		}
	}
	return ""
}

// Run shows the welcome message and starts the tview event loop.
func (t *TUI) Run() error {
	t.RefreshAll()

	t.WriteOutput("[green]MIPS32 Debugger TUI[white]\n")
	t.WriteOutput("Press F1 for help, F5 to continue, F10 to step over, F11 to step\n")
	t.WriteOutput("Type 'help' for command list\n\n")

	return t.App.SetRoot(t.Pages, true).SetFocus(t.CommandInput).Run()
}

// Stop tears down the tview event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
