package api

import (
	"testing"

	"github.com/mips32sim/mips32/engine"
	"github.com/mips32sim/mips32/excn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManagerCreateGetDestroy(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())

	s, err := sm.CreateSession(engine.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, 1, sm.Count())

	got, err := sm.GetSession(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, sm.DestroySession(s.ID))
	_, err = sm.GetSession(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionLoadAndRunExitsWithValue(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())
	s, err := sm.CreateSession(engine.DefaultConfig())
	require.NoError(t, err)

	_, err = s.Load("li $a0, 5\nli $v0, 17\nsyscall\n", engine.DefaultConfig())
	require.NoError(t, err)

	term := s.Run()
	require.NotNil(t, term)
	assert.Equal(t, excn.StopProgramStopped, term.Reason)
	assert.Equal(t, int32(5), term.ExitCode)
}

func TestSessionPrintIntegerFillsConsoleOutput(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())
	s, err := sm.CreateSession(engine.DefaultConfig())
	require.NoError(t, err)

	_, err = s.Load("li $v0, 1\nli $a0, 77\nsyscall\nli $v0, 10\nsyscall\n", engine.DefaultConfig())
	require.NoError(t, err)

	s.Run()
	assert.Equal(t, "77", s.ConsoleOutput())
}

func TestSessionRegistersReflectLoadedValue(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())
	s, err := sm.CreateSession(engine.DefaultConfig())
	require.NoError(t, err)

	_, err = s.Load("li $t0, 123\n", engine.DefaultConfig())
	require.NoError(t, err)

	s.Step()
	regs := s.Registers()
	assert.Equal(t, uint32(123), regs["$t0"])
}

func TestSessionSymbolsListsGlobalLabel(t *testing.T) {
	sm := NewSessionManager(NewBroadcaster())
	s, err := sm.CreateSession(engine.DefaultConfig())
	require.NoError(t, err)

	_, err = s.Load(".globl main\nmain:\nnop\n", engine.DefaultConfig())
	require.NoError(t, err)

	syms := s.Symbols()
	assert.Equal(t, uint32(0x00400000), syms["main"])
}
