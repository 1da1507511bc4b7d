// Package reg implements the MIPS32 register files: the general
// purpose registers, the floating-point registers, coprocessor 0, and
// the standalone program counter. All storage is fixed-width with
// read-only enforcement, matching spec §4.3.
package reg

import "github.com/mips32sim/mips32/bits"

// Register is a single named, fixed-width, optionally read-only
// storage cell. Floats and doubles are stored by bit pattern.
type Register struct {
	Address  uint32
	SizeBits uint8
	ReadOnly bool
	Names    []string
	value    uint64
}

// Name returns the register's primary name.
func (r *Register) Name() string {
	if len(r.Names) == 0 {
		return ""
	}
	return r.Names[0]
}

// Read returns the register's raw bit pattern, masked to its width.
func (r *Register) Read() uint64 {
	return bits.ToUint(r.value, uint(r.SizeBits))
}

// ReadSigned sign-extends the register's contents to a 64-bit signed
// value.
func (r *Register) ReadSigned() int64 {
	return bits.ToInt(r.value, uint(r.SizeBits))
}

// Write stores v, masked to the register's width. Writes to a
// read-only register are silently ignored, per spec §4.3.
func (r *Register) Write(v uint64) {
	if r.ReadOnly {
		return
	}
	r.value = bits.ToUint(v, uint(r.SizeBits))
}

// RegisterFile is an ordered collection of Registers indexed by
// address and by any of their names/aliases.
type RegisterFile struct {
	byAddress map[uint32]*Register
	byName    map[string]*Register
	ordered   []*Register
	width     uint8 // native register width, for double-word splitting
}

func newRegisterFile(width uint8) *RegisterFile {
	return &RegisterFile{
		byAddress: make(map[uint32]*Register),
		byName:    make(map[string]*Register),
		width:     width,
	}
}

// Add registers r in the file, indexing it by address and every name.
func (f *RegisterFile) add(r *Register) {
	f.ordered = append(f.ordered, r)
	f.byAddress[r.Address] = r
	for _, n := range r.Names {
		f.byName[n] = r
	}
}

// ByAddress returns the register at the given address, or nil.
func (f *RegisterFile) ByAddress(addr uint32) *Register {
	return f.byAddress[addr]
}

// ByName returns the register matching name (primary or alias), or
// nil.
func (f *RegisterFile) ByName(name string) *Register {
	return f.byName[name]
}

// All returns every register in the file, in declaration order.
func (f *RegisterFile) All() []*Register {
	return f.ordered
}

// ReadInteger reads the register at addr, sign-extending when signed
// is true.
func (f *RegisterFile) ReadInteger(addr uint32, signed bool) uint64 {
	r := f.byAddress[addr]
	if r == nil {
		return 0
	}
	if signed {
		return uint64(r.ReadSigned())
	}
	return r.Read()
}

// WriteInteger writes value into the register at addr. A write to
// $zero (or any read-only register) is a no-op.
func (f *RegisterFile) WriteInteger(addr uint32, value uint64) {
	if r := f.byAddress[addr]; r != nil {
		r.Write(value)
	}
}

// ReadDouble reads a 64-bit value spanning the register at addr and
// the next one, low word at addr and high word at addr+1, per spec
// §4.3's double-word read rule.
func (f *RegisterFile) ReadDouble(addr uint32) uint64 {
	lo := f.ReadInteger(addr, false)
	hi := f.ReadInteger(addr+1, false)
	return (hi << uint(f.width)) | lo
}

// WriteDouble splits a 64-bit value across the register at addr (low
// word) and addr+1 (high word).
func (f *RegisterFile) WriteDouble(addr uint32, value uint64) {
	mask := uint64(1)<<uint(f.width) - 1
	f.WriteInteger(addr, value&mask)
	f.WriteInteger(addr+1, (value>>uint(f.width))&mask)
}

// Reset zeroes every register's contents (read-only registers stay
// at their fixed value, which is already zero for $zero).
func (f *RegisterFile) Reset() {
	for _, r := range f.ordered {
		r.value = 0
	}
}
