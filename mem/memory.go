package mem

import (
	"fmt"
	"sort"

	"github.com/mips32sim/mips32/excn"
)

// WriteObserver is notified synchronously after a word-aligned region
// of memory changes. addr is the word boundary that was touched; word
// is its newly composed big-endian value. Modeled as an explicit
// callback slice per spec §9, not a reflection-based event system.
type WriteObserver func(addr uint32, byteVals [4]byte, word uint32)

// Memory is the MIPS32 byte-addressed, segmented address space. Bytes
// that were never written read as zero (the sparse-zero invariant);
// only modified addresses occupy the backing map.
type Memory struct {
	segments  []*Segment
	bytes     map[uint32]byte
	instrText map[uint32]interface{}
	heapPtr   uint32
	observers []WriteObserver
}

// NewMemory builds a Memory with the default MIPS32 segment layout
// and the heap pointer at its base.
func NewMemory() *Memory {
	segs := DefaultSegments()
	m := &Memory{
		segments:  segs,
		bytes:     make(map[uint32]byte),
		instrText: make(map[uint32]interface{}),
	}
	m.heapPtr = HeapLower
	return m
}

// OnWrite registers a callback invoked after every memory write.
func (m *Memory) OnWrite(cb WriteObserver) {
	m.observers = append(m.observers, cb)
}

// FindSegment returns the segment owning addr.
func (m *Memory) FindSegment(addr uint32) (*Segment, error) {
	for _, seg := range m.segments {
		if seg.Contains(addr) {
			return seg, nil
		}
	}
	return nil, fmt.Errorf("address 0x%08X is not mapped to any segment", addr)
}

func isAligned(addr uint32, size int) bool {
	return addr%uint32(size) == 0
}

// IsStackAddress reports whether addr falls in the stack segment,
// which grows downward: callers use this to decide whether ReadBytes/
// WriteBytes should gather bytes below addr instead of above it.
func (m *Memory) IsStackAddress(addr uint32) bool {
	return addr >= StackLower && addr <= StackUpper
}

// ReadBytes reads n bytes (n in {1,2,4,8}) starting at addr, composing
// them big-endian. When downward is true (stack reads) the bytes are
// gathered from addr-n+1..addr, matching the teacher's stack
// growth-aware addressing. requester is the access level of the
// calling context (user program vs. kernel handler).
func (m *Memory) ReadBytes(addr uint32, n int, signed bool, downward bool, requester AccessLevel) (uint64, error) {
	if !isAligned(addr, n) {
		return 0, &addrErr{excn.AddressLoad, addr, fmt.Sprintf("address not aligned for %d-byte access", n)}
	}
	start := addr
	if downward {
		start = addr - uint32(n) + 1
	}
	var result uint64
	for i := 0; i < n; i++ {
		a := start + uint32(i)
		seg, err := m.FindSegment(a)
		if err != nil {
			return 0, &addrErr{excn.AddressLoad, a, err.Error()}
		}
		if !seg.Access.Permits(requester) {
			return 0, &addrErr{excn.AddressLoad, a, fmt.Sprintf("access denied to segment %q", seg.Name)}
		}
		result = result<<8 | uint64(m.bytes[a])
	}
	if signed {
		return uint64(signExtend(result, n)), nil
	}
	return result, nil
}

func signExtend(v uint64, nBytes int) int64 {
	width := uint(nBytes) * 8
	signBit := uint64(1) << (width - 1)
	if v&signBit != 0 && width < 64 {
		return int64(v) - int64(uint64(1)<<width)
	}
	return int64(v)
}

// WriteBytes stores the low n bytes of value at addr, big-endian.
// downward mirrors ReadBytes's stack semantics.
func (m *Memory) WriteBytes(addr uint32, value uint64, n int, downward bool, requester AccessLevel) error {
	if !isAligned(addr, n) {
		return &addrErr{excn.AddressStore, addr, fmt.Sprintf("address not aligned for %d-byte access", n)}
	}
	start := addr
	if downward {
		start = addr - uint32(n) + 1
	}
	for i := 0; i < n; i++ {
		a := start + uint32(i)
		seg, err := m.FindSegment(a)
		if err != nil {
			return &addrErr{excn.AddressStore, a, err.Error()}
		}
		if !seg.Access.Permits(requester) {
			return &addrErr{excn.AddressStore, a, fmt.Sprintf("access denied to segment %q", seg.Name)}
		}
		shift := uint(n-1-i) * 8
		m.bytes[a] = byte(value >> shift)
	}
	m.notify(wordBoundary(start))
	return nil
}

func wordBoundary(addr uint32) uint32 {
	return addr &^ 0x3
}

func (m *Memory) notify(boundary uint32) {
	if len(m.observers) == 0 {
		return
	}
	var vals [4]byte
	var word uint32
	for i := 0; i < 4; i++ {
		vals[i] = m.bytes[boundary+uint32(i)]
		word = word<<8 | uint32(vals[i])
	}
	for _, cb := range m.observers {
		cb(boundary, vals, word)
	}
}

// ReadInstruction returns the decoded statement stored at addr, if
// any. Only the two text segments participate.
func (m *Memory) ReadInstruction(addr uint32) (interface{}, error) {
	if !isAligned(addr, 4) {
		return nil, &addrErr{excn.AddressLoad, addr, "address not aligned on word boundary"}
	}
	seg, err := m.FindSegment(addr)
	if err != nil || !seg.IsText {
		return nil, &addrErr{excn.AddressStore, addr, "cannot read instruction outside text/ktext segment"}
	}
	return m.instrText[addr], nil
}

// WriteInstruction stores the decoded statement stmt at addr, which
// must fall in the user-text or kernel-text segment.
func (m *Memory) WriteInstruction(addr uint32, stmt interface{}) error {
	if !isAligned(addr, 4) {
		return &addrErr{excn.AddressStore, addr, "address not aligned on word boundary"}
	}
	seg, err := m.FindSegment(addr)
	if err != nil || !seg.IsText {
		return &addrErr{excn.AddressStore, addr, "cannot write instruction outside text/ktext segment"}
	}
	m.instrText[addr] = stmt
	return nil
}

// AllocateHeapBytes bumps the heap pointer by n bytes rounded up to
// the next word, returning the address of the allocation's start.
func (m *Memory) AllocateHeapBytes(n uint32) (uint32, error) {
	if n%4 != 0 {
		n += 4 - n%4
	}
	old := m.heapPtr
	next := old + n
	if next < old || next > StackLower {
		return 0, fmt.Errorf("heap allocation of %d bytes overflows into stack segment", n)
	}
	m.heapPtr = next
	return old, nil
}

// HeapPointer returns the current heap bump-allocator position.
func (m *Memory) HeapPointer() uint32 {
	return m.heapPtr
}

// Reset clears all written bytes and decoded instructions, restoring
// the heap pointer to its base.
func (m *Memory) Reset() {
	m.bytes = make(map[uint32]byte)
	m.instrText = make(map[uint32]interface{})
	m.heapPtr = HeapLower
}

// ModifiedAddresses returns every address that has been written to,
// sorted ascending.
func (m *Memory) ModifiedAddresses() []uint32 {
	out := make([]uint32, 0, len(m.bytes))
	for a := range m.bytes {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Segments exposes the segment table for the collaborator dump
// interface (spec §6).
func (m *Memory) Segments() []*Segment {
	return m.segments
}

// Dump groups every modified word by owning segment, per spec §4.1's
// canonical segment-keyed dump (the flat dump variant is not
// implemented; see DESIGN.md).
func (m *Memory) Dump() map[string]map[uint32][4]byte {
	out := make(map[string]map[uint32][4]byte)
	seen := make(map[uint32]bool)
	for _, addr := range m.ModifiedAddresses() {
		boundary := wordBoundary(addr)
		if seen[boundary] {
			continue
		}
		seen[boundary] = true
		seg, err := m.FindSegment(boundary)
		if err != nil {
			continue
		}
		if out[seg.Name] == nil {
			out[seg.Name] = make(map[uint32][4]byte)
		}
		var word [4]byte
		for i := 0; i < 4; i++ {
			word[i] = m.bytes[boundary+uint32(i)]
		}
		out[seg.Name][boundary] = word
	}
	return out
}

type addrErr struct {
	kind excn.Kind
	addr uint32
	msg  string
}

func (e *addrErr) Error() string {
	return fmt.Sprintf("%s at 0x%08X: %s", e.kind, e.addr, e.msg)
}

// AsException converts any error returned by Memory's accessors into
// the engine-facing *excn.Exception, if it originated here.
func AsException(err error) (*excn.Exception, bool) {
	if ae, ok := err.(*addrErr); ok {
		if ae.kind == excn.AddressLoad {
			return excn.NewAddressLoad(ae.addr, ae.msg), true
		}
		return excn.NewAddressStore(ae.addr, ae.msg), true
	}
	return nil, false
}
