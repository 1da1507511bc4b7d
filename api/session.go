package api

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/mips32sim/mips32/asm"
	"github.com/mips32sim/mips32/engine"
	"github.com/mips32sim/mips32/excn"
	"github.com/mips32sim/mips32/isa"
	"github.com/mips32sim/mips32/loader"
	"github.com/mips32sim/mips32/reg"
)

// ErrSessionNotFound is returned when a session ID doesn't match any
// active session.
var ErrSessionNotFound = errors.New("session not found")

// Session is one assembled program's machine state plus its engine,
// kept alive between HTTP requests so a client can load, step, and
// inspect it incrementally.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu          sync.Mutex
	prog        *asm.Program
	machine     *isa.Machine
	eng         *engine.Engine
	term        *excn.Termination
	stdout      *eventWriter
	stdinBuf    bytes.Buffer
	broadcaster *Broadcaster
}

// SessionManager tracks every active Session and broadcasts the
// events its sessions produce.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	broadcaster *Broadcaster
}

// NewSessionManager builds a manager that reports events through b.
func NewSessionManager(b *Broadcaster) *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session), broadcaster: b}
}

// CreateSession allocates a new, program-less session.
func (sm *SessionManager) CreateSession(cfg engine.Config) (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	s := &Session{ID: id, CreatedAt: time.Now(), broadcaster: sm.broadcaster}
	_ = cfg // applied once a program is loaded, see Session.Load

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[id] = s
	return s, nil
}

// GetSession returns the session named id.
func (sm *SessionManager) GetSession(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// DestroySession removes the session named id.
func (sm *SessionManager) DestroySession(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, ok := sm.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(sm.sessions, id)
	return nil
}

// ListSessions returns every active session ID.
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Load assembles src, loads it into a fresh machine, and readies the
// session for stepping. A prior program, if any, is replaced.
func (s *Session) Load(src string, cfg engine.Config) (*asm.Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prog, err := asm.Assemble(s.ID+".asm", src)
	if err != nil {
		return nil, err
	}

	s.prog = prog
	s.machine = loader.Load(prog)
	s.eng = engine.New(s.machine, cfg)
	s.stdout = newEventWriter(s.broadcaster, s.ID)
	s.eng.SetStdout(s.stdout)
	s.eng.SetStdin(&s.stdinBuf)
	s.term = nil
	return prog, nil
}

// Step runs exactly one instruction and returns the resulting
// termination, or nil if the program is still running.
func (s *Session) Step() *excn.Termination {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eng == nil || s.term != nil {
		return s.term
	}
	s.term = s.eng.Step()
	return s.term
}

// Run drives the engine to completion.
func (s *Session) Run() *excn.Termination {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eng == nil {
		return nil
	}
	if s.term == nil {
		s.term = s.eng.Run()
	}
	return s.term
}

// Registers snapshots every GPR by its primary name.
func (s *Session) Registers() map[string]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]uint32)
	if s.machine == nil {
		return out
	}
	for _, r := range s.machine.GPR.All() {
		out[r.Name()] = uint32(r.Read())
	}
	return out
}

// PC returns the current program counter.
func (s *Session) PC() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return 0
	}
	return s.machine.PC.Value()
}

// CP0 returns $cause, $badvaddr, $exceptionpc.
func (s *Session) CP0() (cause, badVAddr, exceptionPC uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.machine == nil {
		return 0, 0, 0
	}
	return uint32(s.machine.CP0.ReadInteger(reg.Cause, false)),
		uint32(s.machine.CP0.ReadInteger(reg.BadVAddr, false)),
		uint32(s.machine.CP0.ReadInteger(reg.ExceptionPC, false))
}

// MemoryDump groups every modified word by owning segment.
func (s *Session) MemoryDump() map[string]map[uint32]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]map[uint32]uint32)
	if s.prog == nil {
		return out
	}
	for seg, words := range s.prog.Memory.Dump() {
		m := make(map[uint32]uint32, len(words))
		for addr, bs := range words {
			m[addr] = uint32(bs[0])<<24 | uint32(bs[1])<<16 | uint32(bs[2])<<8 | uint32(bs[3])
		}
		out[seg] = m
	}
	return out
}

// ConsoleOutput returns everything written to stdout so far.
func (s *Session) ConsoleOutput() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stdout == nil {
		return ""
	}
	return s.stdout.String()
}

// FeedStdin appends text to the buffer read syscalls (5, 8, 12)
// consume from.
func (s *Session) FeedStdin(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stdinBuf.WriteString(text)
}

// Termination returns the session's stored termination, if any.
func (s *Session) Termination() *excn.Termination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.term
}

// Symbols returns every globally visible symbol's address.
func (s *Session) Symbols() map[string]uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]uint32)
	if s.prog == nil {
		return out
	}
	for name, sym := range s.prog.Global.All() {
		out[name] = sym.Address
	}
	return out
}
