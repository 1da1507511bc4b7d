// Command mips32 assembles and runs MIPS32 Release 6 assembly
// programs: direct execution, a stepping CLI/TUI debugger, or an
// HTTP+WebSocket session server for external front ends.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/mips32sim/mips32/api"
	"github.com/mips32sim/mips32/asm"
	"github.com/mips32sim/mips32/config"
	"github.com/mips32sim/mips32/debugger"
	"github.com/mips32sim/mips32/engine"
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/loader"
)

// Version information, overridable at build time with
// -ldflags "-X main.Version=v1.2.3".
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in CLI debugger mode")
		tuiMode     = flag.Bool("tui", false, "Start in TUI debugger mode")
		apiServer   = flag.Bool("api-server", false, "Start HTTP API server mode")
		apiPort     = flag.Int("port", 8080, "API server port (used with -api-server)")
		loopLimit   = flag.Int("loop-limit", 0, "Per-address revisit limit before the engine gives up (0: use config default)")
		delaySlots  = flag.Bool("delay-slots", false, "Enable branch/jump delay-slot semantics")
		entryFlag   = flag.String("entry", "", "Override entry point address (hex or decimal)")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		configPath  = flag.String("config", "", "Configuration file path (default: platform config dir)")

		enableTrace = flag.Bool("trace", false, "Enable an execution trace of every fetched instruction")
		traceFile   = flag.String("trace-file", "", "Trace output file (default: stdout)")

		dumpSymbols = flag.Bool("dump-symbols", false, "Dump the symbol table and exit")
		symbolsFile = flag.String("symbols-file", "", "Symbol dump output file (default: stdout)")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mips32 %s (%s)\n", Version, Commit)
		os.Exit(0)
	}
	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	if *apiServer {
		runAPIServer(*apiPort)
		return
	}

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(0)
	}

	path := flag.Arg(0)
	src, err := os.ReadFile(path) // #nosec G304 -- user-specified assembly file
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %s: %v\n", path, err)
		os.Exit(1)
	}
	source := string(src)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if *loopLimit > 0 {
		cfg.Execution.LoopLimit = *loopLimit
	}
	cfg.Execution.DelaySlots = *delaySlots

	prog, err := asm.Assemble(path, source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error:\n%v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Assembled %s: %d instruction(s), entry 0x%08X\n", path, len(prog.Statements), prog.EntryPC)
	}

	if *dumpSymbols {
		if err := dumpSymbolTable(prog, *symbolsFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error dumping symbols: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	machine := loader.Load(prog)
	if *entryFlag != "" {
		addr, err := parseAddress(*entryFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid entry point: %v\n", err)
			os.Exit(1)
		}
		machine.PC.Set(addr)
	}

	eng := engine.New(machine, cfg.EngineConfig())

	var traceWriter *os.File
	if *enableTrace {
		if *traceFile == "" {
			traceWriter = os.Stdout
		} else {
			traceWriter, err = os.Create(*traceFile) // #nosec G304 -- user-specified trace output path
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error creating trace file: %v\n", err)
				os.Exit(1)
			}
			defer traceWriter.Close()
		}
		eng.OnFetch(func(addr uint32) {
			fmt.Fprintf(traceWriter, "0x%08X\n", addr)
		})
	}

	if *debugMode || *tuiMode {
		runDebugger(eng, machine, prog, source, path, cfg, *tuiMode)
		return
	}

	runDirect(eng, *verboseMode)
}

func runDirect(eng *engine.Engine, verbose bool) {
	term := eng.Run()
	fmt.Println(term.String())

	exitCode := 0
	if term.ExitCodeSet {
		exitCode = int(term.ExitCode)
	} else if term.Exception != nil {
		exitCode = 1
	}
	if verbose {
		fmt.Printf("Exit code: %d\n", exitCode)
	}
	os.Exit(exitCode)
}

func runDebugger(eng *engine.Engine, machine *isa.Machine, prog *asm.Program, source, path string, cfg *config.Config, tui bool) {
	dbg := debugger.NewDebugger(eng, machine)
	dbg.LoadSymbols(prog)
	dbg.LoadSourceMap(buildSourceMap(prog, source))
	dbg.Restart = func() (*engine.Engine, *isa.Machine, error) {
		p, err := asm.Assemble(path, source)
		if err != nil {
			return nil, nil, err
		}
		m := loader.Load(p)
		return engine.New(m, cfg.EngineConfig()), m, nil
	}

	if tui {
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("mips32 debugger - type 'help' for commands")
	fmt.Printf("Program loaded: %s\n", path)
	fmt.Println()
	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
		os.Exit(1)
	}
}

// buildSourceMap associates each assembled instruction's address with
// its original source line, for the debugger's source panel.
func buildSourceMap(prog *asm.Program, source string) map[uint32]string {
	lines := strings.Split(source, "\n")
	sourceMap := make(map[uint32]string, len(prog.Statements))
	for _, st := range prog.Statements {
		if st.Pos.Line-1 >= 0 && st.Pos.Line-1 < len(lines) {
			sourceMap[st.Address] = strings.TrimSpace(lines[st.Pos.Line-1])
		}
	}
	return sourceMap
}

func parseAddress(s string) (uint32, error) {
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

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func runAPIServer(port int) {
	server := api.NewServer(port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "API server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-sigChan
	fmt.Println("\nShutting down API server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error during shutdown: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("API server stopped")
}

// dumpSymbolTable writes prog's label table, sorted by address.
func dumpSymbolTable(prog *asm.Program, filename string) error {
	writer := os.Stdout
	if filename != "" {
		f, err := os.Create(filename) // #nosec G304 -- user-specified symbol output path
		if err != nil {
			return fmt.Errorf("failed to create symbol file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	all := make(map[string]*asm.Symbol, len(prog.Local.All())+len(prog.Global.All()))
	for name, sym := range prog.Local.All() {
		all[name] = sym
	}
	for name, sym := range prog.Global.All() {
		all[name] = sym
	}
	if len(all) == 0 {
		fmt.Fprintln(writer, "No symbols defined")
		return nil
	}

	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return all[names[i]].Address < all[names[j]].Address })

	fmt.Fprintln(writer, "Symbol Table")
	fmt.Fprintln(writer, "============")
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "%-30s %-10s %s\n", "Name", "Address", "Scope")
	fmt.Fprintln(writer, strings.Repeat("-", 60))
	for _, name := range names {
		sym := all[name]
		scope := "local"
		if _, ok := prog.Globals[name]; ok {
			scope = "global"
		}
		fmt.Fprintf(writer, "%-30s 0x%08X %s\n", name, sym.Address, scope)
	}
	fmt.Fprintln(writer)
	fmt.Fprintf(writer, "Total symbols: %d\n", len(all))
	return nil
}

func printHelp() {
	fmt.Printf(`mips32 %s

Usage: mips32 [options] <assembly-file>
       mips32 -api-server [-port N]

Options:
  -help               Show this help message
  -version            Show version information
  -api-server         Start HTTP API server mode (no assembly file required)
  -port N             API server port (default: 8080, used with -api-server)
  -debug              Start in CLI debugger mode
  -tui                Start in TUI debugger mode
  -loop-limit N       Per-address revisit limit before giving up on a runaway program
  -delay-slots        Enable branch/jump delay-slot semantics
  -entry ADDR         Override entry point address (hex or decimal)
  -verbose            Enable verbose output
  -config FILE        Configuration file path (default: platform config dir)

Symbol Options:
  -dump-symbols       Dump the symbol table and exit
  -symbols-file FILE  Symbol dump output file (default: stdout)

Tracing Options:
  -trace              Enable an execution trace of every fetched instruction
  -trace-file FILE    Trace output file (default: stdout)

Examples:
  mips32 examples/hello.asm
  mips32 -debug examples/fibonacci.asm
  mips32 -tui examples/bubble_sort.asm
  mips32 -delay-slots -loop-limit 500 program.asm
  mips32 -trace -trace-file trace.log program.asm
  mips32 -api-server -port 3000
  mips32 -dump-symbols program.asm

Debugger Commands (-debug mode):
  run, r              Start/restart program execution
  continue, c         Continue execution
  step, s             Execute a single instruction
  next, n             Step over function calls
  break ADDR          Set a breakpoint at an address or label
  info registers      Show all registers
  print EXPR          Evaluate and print an expression
  help                Show debugger help
`, Version)
}
