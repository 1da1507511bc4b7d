package reg

// Coprocessor-0 register addresses, per spec §4.3.
const (
	BadVAddr = iota
	Count
	Compare
	Status
	Cause
	ExceptionPC
	PRId
	Config
	ErrorPC
)

var cp0Names = map[uint32][]string{
	BadVAddr:    {"$badvaddr"},
	Count:       {"$count"},
	Compare:     {"$compare"},
	Status:      {"$status"},
	Cause:       {"$cause"},
	ExceptionPC: {"$exceptionpc"},
	PRId:        {"$prid"},
	Config:      {"$config"},
	ErrorPC:     {"$errorpc"},
}

// NewCP0File builds the coprocessor-0 register file.
func NewCP0File() *RegisterFile {
	f := newRegisterFile(32)
	for addr := uint32(0); addr < uint32(len(cp0Names)); addr++ {
		f.add(&Register{
			Address:  addr,
			SizeBits: 32,
			Names:    cp0Names[addr],
		})
	}
	return f
}

// PC is the standalone, word-wide program counter. It is not part of
// any RegisterFile since it is addressed by name only.
type PC struct {
	value uint32
}

// NewPC creates a program counter initialized to 0.
func NewPC() *PC { return &PC{} }

// Value returns the current PC.
func (p *PC) Value() uint32 { return p.value }

// Set assigns the PC a new value.
func (p *PC) Set(v uint32) { p.value = v }

// Advance increments the PC by 4 (one instruction word).
func (p *PC) Advance() { p.value += 4 }
