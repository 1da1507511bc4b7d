package debugger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// RunCLI drives dbg from stdin/stdout: a plain read-eval-print loop
// with no terminal control codes, for piping scripted debug sessions
// or running without a real terminal.
func RunCLI(dbg *Debugger) error {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("(mips32-dbg) ")

		if !scanner.Scan() {
			break
		}

		cmdLine := strings.TrimSpace(scanner.Text())
		if cmdLine == "quit" || cmdLine == "q" || cmdLine == "exit" {
			fmt.Println("Exiting debugger...")
			break
		}

		if err := dbg.ExecuteCommand(cmdLine); err != nil {
			fmt.Printf("Error: %v\n", err)
		}

		if output := dbg.GetOutput(); output != "" {
			fmt.Print(output)
		}

		if dbg.Running {
			runCLIUntilStop(dbg)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("input error: %w", err)
	}
	return nil
}

func runCLIUntilStop(dbg *Debugger) {
	for dbg.Running {
		if shouldBreak, reason := dbg.ShouldBreak(); shouldBreak {
			dbg.Running = false
			fmt.Printf("Stopped: %s at PC=0x%08X\n", reason, dbg.Machine.PC.Value())
			break
		}

		if term := dbg.Eng.Step(); term != nil {
			dbg.Terminated = term
			dbg.Running = false
			fmt.Println(term.String())
			break
		}
	}
}

// RunTUI drives dbg through the tcell/tview terminal UI.
func RunTUI(dbg *Debugger) error {
	return NewTUI(dbg).Run()
}
