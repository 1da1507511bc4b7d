package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/mem"
	"github.com/mips32sim/mips32/reg"
)

// maxSyscallString bounds print-string/read-string transfers, mirroring
// the address-wraparound and runaway-loop guards a real syscall
// handler needs against a misbehaving guest program.
const maxSyscallString = 1024 * 1024

// defaultReadStringLimit is the buffer length syscall 8 assumes when
// $a1 is zero.
const defaultReadStringLimit = 256

// SetStdin points read-oriented syscalls (5, 8, 12) at r instead of
// os.Stdin.
func (e *Engine) SetStdin(r io.Reader) {
	if br, ok := r.(*bufio.Reader); ok {
		e.stdin = br
	} else {
		e.stdin = bufio.NewReader(r)
	}
}

// SetStdout points write-oriented syscalls (1, 4, 11) at w instead of
// os.Stdout.
func (e *Engine) SetStdout(w io.Writer) {
	e.stdout = w
}

func (e *Engine) stdinReader() *bufio.Reader {
	if e.stdin == nil {
		e.stdin = bufio.NewReader(os.Stdin)
	}
	return e.stdin
}

func (e *Engine) stdoutWriter() io.Writer {
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	return e.stdout
}

// dispatchSyscall runs the service named by code (read from $v0 by
// the syscall executor) per spec §6's table. It returns a non-nil
// Termination for the two exiting codes, for an unrecognized code, and
// when printing or reading a string or an sbrk allocation fails; every
// other case resumes execution.
func (e *Engine) dispatchSyscall(code uint32) *excn.Termination {
	switch code {
	case 1: // print integer
		v := int32(e.M.GPR.ReadInteger(reg.A0, true))
		fmt.Fprintf(e.stdoutWriter(), "%d", v)

	case 4: // print string
		addr := uint32(e.M.GPR.ReadInteger(reg.A0, false))
		s, err := e.readCString(addr)
		if err != nil {
			return crashed(addr, err.Error())
		}
		fmt.Fprint(e.stdoutWriter(), s)

	case 5: // read integer
		e.M.GPR.WriteInteger(reg.V0, uint64(e.readIntLine()))

	case 8: // read string
		addr := uint32(e.M.GPR.ReadInteger(reg.A0, false))
		limit := uint32(e.M.GPR.ReadInteger(reg.A1, false))
		if limit == 0 {
			limit = defaultReadStringLimit
		}
		if err := e.readStringInto(addr, limit); err != nil {
			return crashed(addr, err.Error())
		}

	case 9: // sbrk
		n := uint32(e.M.GPR.ReadInteger(reg.A0, false))
		old, err := e.M.Mem.AllocateHeapBytes(n)
		if err != nil {
			return crashed(e.M.Mem.HeapPointer(), err.Error())
		}
		e.M.GPR.WriteInteger(reg.V0, uint64(old))

	case 10: // exit
		return &excn.Termination{Reason: excn.StopProgramStopped, Detail: "exit", ExitCode: 0, ExitCodeSet: true}

	case 11: // print char
		v := byte(e.M.GPR.ReadInteger(reg.A0, false))
		fmt.Fprintf(e.stdoutWriter(), "%c", v)

	case 12: // read char
		b, err := e.stdinReader().ReadByte()
		if err != nil {
			e.M.GPR.WriteInteger(reg.V0, 0)
		} else {
			e.M.GPR.WriteInteger(reg.V0, uint64(b))
		}

	case 17: // exit with value
		exitCode := int32(e.M.GPR.ReadInteger(reg.A0, true))
		return &excn.Termination{Reason: excn.StopProgramStopped, Detail: "exit with value", ExitCode: exitCode, ExitCodeSet: true}

	default:
		return &excn.Termination{Reason: excn.StopProgramCrashed, Detail: fmt.Sprintf("invalid syscall code %d", code)}
	}
	return nil
}

func (e *Engine) readCString(addr uint32) (string, error) {
	var out []byte
	for {
		v, err := e.M.Mem.ReadBytes(addr, 1, false, false, e.M.Requester)
		if err != nil {
			return "", fmt.Errorf("reading string at 0x%08X: %w", addr, err)
		}
		if v == 0 {
			break
		}
		out = append(out, byte(v))
		if len(out) > maxSyscallString {
			return "", fmt.Errorf("string at 0x%08X exceeds %d bytes", addr, maxSyscallString)
		}
		if addr == mem.ReservedHiUpper {
			return "", fmt.Errorf("address wraparound while reading string at 0x%08X", addr)
		}
		addr++
	}
	return string(out), nil
}

func (e *Engine) readStringInto(addr, limit uint32) error {
	line, err := e.stdinReader().ReadString('\n')
	if err != nil && line == "" {
		return nil
	}
	line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
	data := []byte(line)
	if uint32(len(data))+1 > limit {
		data = data[:limit-1]
	}
	for i, b := range data {
		if err := e.M.Mem.WriteBytes(addr+uint32(i), uint64(b), 1, false, e.M.Requester); err != nil {
			return err
		}
	}
	return e.M.Mem.WriteBytes(addr+uint32(len(data)), 0, 1, false, e.M.Requester)
}

func (e *Engine) readIntLine() int32 {
	for {
		line, err := e.stdinReader().ReadString('\n')
		if err != nil && line == "" {
			return 0
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return 0
			}
			continue
		}
		v, err := strconv.ParseInt(line, 10, 32)
		if err != nil {
			return 0
		}
		return int32(v)
	}
}
