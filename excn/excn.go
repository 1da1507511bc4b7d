// Package excn defines the runtime MIPS exception and engine
// termination-reason tag types raised by the memory model, the
// instruction set's executors, and the execution engine. It sits
// below all of them in the dependency graph so none of those packages
// need to import each other just to signal a fault.
package excn

import "fmt"

// Kind is a MIPS runtime exception tag.
type Kind int

const (
	AddressLoad Kind = iota
	AddressStore
	ArithmeticOverflow
	DivideByZero
	ReservedInstruction
	Syscall
	Break
	Trap
)

func (k Kind) String() string {
	switch k {
	case AddressLoad:
		return "AddressLoad"
	case AddressStore:
		return "AddressStore"
	case ArithmeticOverflow:
		return "ArithmeticOverflow"
	case DivideByZero:
		return "DivideByZero"
	case ReservedInstruction:
		return "ReservedInstruction"
	case Syscall:
		return "Syscall"
	case Break:
		return "Break"
	case Trap:
		return "Trap"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Exception is raised by an executor or the memory model and handled
// by the execution engine per the dispatch table in spec §4.5.
type Exception struct {
	Kind    Kind
	Addr    uint32 // faulting address, for AddressLoad/AddressStore
	Code    uint32 // syscall service code, for Syscall
	Message string
}

func (e *Exception) Error() string {
	switch e.Kind {
	case AddressLoad, AddressStore:
		return fmt.Sprintf("%s: address 0x%08X: %s", e.Kind, e.Addr, e.Message)
	case Syscall:
		return fmt.Sprintf("%s: code %d", e.Kind, e.Code)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
}

// NewAddressLoad builds an AddressLoad exception for the given
// faulting address.
func NewAddressLoad(addr uint32, message string) *Exception {
	return &Exception{Kind: AddressLoad, Addr: addr, Message: message}
}

// NewAddressStore builds an AddressStore exception for the given
// faulting address.
func NewAddressStore(addr uint32, message string) *Exception {
	return &Exception{Kind: AddressStore, Addr: addr, Message: message}
}

// NewOverflow builds an ArithmeticOverflow exception.
func NewOverflow() *Exception {
	return &Exception{Kind: ArithmeticOverflow, Message: "signed operation overflowed"}
}

// NewReservedInstruction builds a ReservedInstruction exception.
func NewReservedInstruction(message string) *Exception {
	return &Exception{Kind: ReservedInstruction, Message: message}
}

// NewSyscall builds a Syscall exception carrying the requested
// service code.
func NewSyscall(code uint32) *Exception {
	return &Exception{Kind: Syscall, Code: code}
}

// NewBreak builds a Break exception.
func NewBreak() *Exception {
	return &Exception{Kind: Break, Message: "break instruction executed"}
}

// NewTrap builds a Trap exception.
func NewTrap(message string) *Exception {
	return &Exception{Kind: Trap, Message: message}
}

// StopReason is the closed set of ways the engine can stop running a
// program. The engine never panics; every termination path reduces to
// one of these.
type StopReason int

const (
	StopNone StopReason = iota
	StopProgramDroppedOff
	StopProgramCrashed
	StopProgramStopped
)

// Termination pairs a StopReason with the detail that produced it and
// an optional process exit code (valid only when ExitCodeSet is true).
type Termination struct {
	Reason       StopReason
	Detail       string
	Exception    *Exception
	Address      uint32
	ExitCode     int32
	ExitCodeSet  bool
}

func (t *Termination) String() string {
	switch t.Reason {
	case StopProgramDroppedOff:
		return fmt.Sprintf("program dropped off at 0x%08X", t.Address)
	case StopProgramCrashed:
		return fmt.Sprintf("program crashed: %s", t.Detail)
	case StopProgramStopped:
		return fmt.Sprintf("program stopped: %s", t.Detail)
	default:
		return "no termination"
	}
}
