package debugger

// DisplayUpdateFrequency controls how often the TUI redraws during a
// continuous run (every N instructions), to stay responsive without
// flooding the terminal.
const DisplayUpdateFrequency = 100

// MemoryDisplayRows and MemoryDisplayColumns size the hex-dump panel.
const (
	MemoryDisplayRows    = 16
	MemoryDisplayColumns = 16
)

// StackDisplayWords is the number of words shown in the stack panel.
const StackDisplayWords = 16

// RegisterGroupSize is the number of registers rendered per row in
// the register panel.
const RegisterGroupSize = 4
