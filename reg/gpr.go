package reg

import "strconv"

// GPR register addresses, per spec §4.3/§6.
const (
	Zero = iota
	At
	V0
	V1
	A0
	A1
	A2
	A3
	T0
	T1
	T2
	T3
	T4
	T5
	T6
	T7
	S0
	S1
	S2
	S3
	S4
	S5
	S6
	S7
	T8
	T9
	K0
	K1
	Gp
	Sp
	Fp
	Ra
)

var gprNames = map[uint32][]string{
	Zero: {"$zero", "$0"},
	At:   {"$at", "$1"},
	V0:   {"$v0", "$2"},
	V1:   {"$v1", "$3"},
	A0:   {"$a0", "$4"},
	A1:   {"$a1", "$5"},
	A2:   {"$a2", "$6"},
	A3:   {"$a3", "$7"},
	T0:   {"$t0", "$8"},
	T1:   {"$t1", "$9"},
	T2:   {"$t2", "$10"},
	T3:   {"$t3", "$11"},
	T4:   {"$t4", "$12"},
	T5:   {"$t5", "$13"},
	T6:   {"$t6", "$14"},
	T7:   {"$t7", "$15"},
	S0:   {"$s0", "$16"},
	S1:   {"$s1", "$17"},
	S2:   {"$s2", "$18"},
	S3:   {"$s3", "$19"},
	S4:   {"$s4", "$20"},
	S5:   {"$s5", "$21"},
	S6:   {"$s6", "$22"},
	S7:   {"$s7", "$23"},
	T8:   {"$t8", "$24"},
	T9:   {"$t9", "$25"},
	K0:   {"$k0", "$26"},
	K1:   {"$k1", "$27"},
	Gp:   {"$gp", "$28"},
	Sp:   {"$sp", "$29"},
	Fp:   {"$fp", "$30"},
	Ra:   {"$ra", "$31"},
}

// NewGPRFile builds the 32-entry general-purpose register file.
// $zero is read-only and always 0.
func NewGPRFile() *RegisterFile {
	f := newRegisterFile(32)
	for addr := uint32(0); addr < 32; addr++ {
		f.add(&Register{
			Address:  addr,
			SizeBits: 32,
			ReadOnly: addr == Zero,
			Names:    gprNames[addr],
		})
	}
	return f
}

// NewFPRFile builds the 32-entry floating-point register file,
// $f0-$f31.
func NewFPRFile() *RegisterFile {
	f := newRegisterFile(32)
	for addr := uint32(0); addr < 32; addr++ {
		f.add(&Register{
			Address:  addr,
			SizeBits: 32,
			Names:    []string{"$f" + strconv.FormatUint(uint64(addr), 10)},
		})
	}
	return f
}
