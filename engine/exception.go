package engine

import (
	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/reg"
)

// exceptionOutcome is what the engine does next after an executor
// raises a MIPS exception: stop with term, jump to a kernel handler,
// or (implicitly, when neither is set) resume at PC+4.
type exceptionOutcome struct {
	term   *excn.Termination
	jump   bool
	target uint32
}

// handleException routes a runtime exception per spec §4.5: syscalls
// dispatch and resume, break/trap/reserved-instruction terminate
// immediately, and the remaining kinds record CP0 exception state and
// either jump to an assembled kernel-text handler or terminate.
func (e *Engine) handleException(exc *excn.Exception, addr uint32) exceptionOutcome {
	switch exc.Kind {
	case excn.Syscall:
		if term := e.dispatchSyscall(exc.Code); term != nil {
			return exceptionOutcome{term: term}
		}
		return exceptionOutcome{}

	case excn.Break:
		return exceptionOutcome{term: &excn.Termination{
			Reason: excn.StopProgramStopped, Detail: exc.Error(), Exception: exc, Address: addr}}

	case excn.Trap:
		return exceptionOutcome{term: &excn.Termination{
			Reason: excn.StopProgramStopped, Detail: exc.Error(), Exception: exc, Address: addr}}

	case excn.ReservedInstruction:
		return exceptionOutcome{term: &excn.Termination{
			Reason: excn.StopProgramCrashed, Detail: exc.Error(), Exception: exc, Address: addr}}

	default: // AddressLoad, AddressStore, ArithmeticOverflow, DivideByZero
		e.M.CP0.WriteInteger(reg.Cause, uint64(exc.Kind))
		e.M.CP0.WriteInteger(reg.ExceptionPC, uint64(addr))
		if exc.Kind == excn.AddressLoad || exc.Kind == excn.AddressStore {
			e.M.CP0.WriteInteger(reg.BadVAddr, uint64(exc.Addr))
		}
		if raw, err := e.M.Mem.ReadInstruction(e.cfg.KtextBase); err == nil && raw != nil {
			return exceptionOutcome{jump: true, target: e.cfg.KtextBase}
		}
		return exceptionOutcome{term: &excn.Termination{
			Reason: excn.StopProgramCrashed, Detail: exc.Error(), Exception: exc, Address: addr}}
	}
}
