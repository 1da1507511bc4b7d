package reg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroRegisterIsReadOnly(t *testing.T) {
	gpr := NewGPRFile()
	gpr.WriteInteger(Zero, 0xFFFFFFFF)
	assert.Equal(t, uint64(0), gpr.ReadInteger(Zero, false))
}

func TestReadSignedSignExtends(t *testing.T) {
	gpr := NewGPRFile()
	gpr.WriteInteger(T0, 0xFFFFFFFF)
	assert.Equal(t, uint64(0xFFFFFFFF), gpr.ReadInteger(T0, false))
	assert.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), gpr.ReadInteger(T0, true))
}

func TestByNameResolvesAliases(t *testing.T) {
	gpr := NewGPRFile()
	gpr.WriteInteger(Sp, 0x7FFFEFFC)
	r := gpr.ByName("$29")
	assert.NotNil(t, r)
	assert.Equal(t, uint64(0x7FFFEFFC), r.Read())

	r2 := gpr.ByName("$sp")
	assert.Same(t, r, r2)
}

func TestDoubleWordSplitsAcrossAdjacentRegisters(t *testing.T) {
	gpr := NewGPRFile()
	gpr.WriteDouble(T0, 0x1122334455667788)
	assert.Equal(t, uint64(0x55667788), gpr.ReadInteger(T0, false))
	assert.Equal(t, uint64(0x11223344), gpr.ReadInteger(T0+1, false))
	assert.Equal(t, uint64(0x1122334455667788), gpr.ReadDouble(T0))
}

func TestPCAdvances(t *testing.T) {
	pc := NewPC()
	pc.Set(UserTextTestBase)
	pc.Advance()
	assert.Equal(t, UserTextTestBase+4, pc.Value())
}

const UserTextTestBase = 0x00400000

func TestCP0NamedLookup(t *testing.T) {
	cp0 := NewCP0File()
	cp0.WriteInteger(Cause, 12)
	assert.Equal(t, uint64(12), cp0.ByName("$cause").Read())
}
