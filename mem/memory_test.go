package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	m := NewMemory()
	err := m.WriteBytes(UserDataLower, 0xCAFEBABE, 4, false, AccessAll)
	require.NoError(t, err)

	v, err := m.ReadBytes(UserDataLower, 4, false, false, AccessAll)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xCAFEBABE), v)
}

func TestUnwrittenByteReadsZero(t *testing.T) {
	m := NewMemory()
	v, err := m.ReadBytes(UserDataLower+100, 1, false, false, AccessAll)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}

func TestMisalignedWordWriteFails(t *testing.T) {
	m := NewMemory()
	err := m.WriteBytes(UserDataLower+1, 1, 4, false, AccessAll)
	assert.Error(t, err)

	// Memory must be unaffected.
	v, rerr := m.ReadBytes(UserDataLower, 4, false, false, AccessAll)
	require.NoError(t, rerr)
	assert.Equal(t, uint64(0), v)
}

func TestKernelSegmentDeniesUserAccess(t *testing.T) {
	m := NewMemory()
	err := m.WriteBytes(KernelDataLower, 1, 1, false, AccessUser)
	assert.Error(t, err)

	_, exOk := AsException(err)
	assert.True(t, exOk)
}

func TestInstructionWriteOnlyInTextSegments(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.WriteInstruction(UserTextLower, "fake-statement"))
	got, err := m.ReadInstruction(UserTextLower)
	require.NoError(t, err)
	assert.Equal(t, "fake-statement", got)

	err = m.WriteInstruction(UserDataLower, "nope")
	assert.Error(t, err)
}

func TestAllocateHeapBytesRoundsToWord(t *testing.T) {
	m := NewMemory()
	addr, err := m.AllocateHeapBytes(3)
	require.NoError(t, err)
	assert.Equal(t, uint32(HeapLower), addr)
	assert.Equal(t, uint32(HeapLower+4), m.HeapPointer())
}

func TestWriteObserverFires(t *testing.T) {
	m := NewMemory()
	var gotAddr uint32
	var gotWord uint32
	m.OnWrite(func(addr uint32, byteVals [4]byte, word uint32) {
		gotAddr = addr
		gotWord = word
	})
	require.NoError(t, m.WriteBytes(UserDataLower, 0x11223344, 4, false, AccessAll))
	assert.Equal(t, uint32(UserDataLower), gotAddr)
	assert.Equal(t, uint32(0x11223344), gotWord)
}

func TestStackGrowsDownward(t *testing.T) {
	m := NewMemory()
	top := uint32(StackPointerInit)
	require.NoError(t, m.WriteBytes(top, 0xDEADBEEF, 4, true, AccessAll))
	v, err := m.ReadBytes(top, 4, false, true, AccessAll)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xDEADBEEF), v)
}

func TestDumpGroupsBySegment(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.WriteBytes(UserDataLower, 1, 4, false, AccessAll))
	dump := m.Dump()
	require.Contains(t, dump, "user data")
	assert.Contains(t, dump["user data"], uint32(UserDataLower))
}
