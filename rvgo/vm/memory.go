package vm

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Pages are only a unit of serialization and usage accounting,
// the backing store itself is one contiguous buffer.
const (
	PageAddrSize = 12
	PageSize     = 1 << PageAddrSize
	PageAddrMask = PageSize - 1
)

// Memory is a fixed-capacity, byte-addressed little-endian RAM.
// Every access is bounds-checked against the capacity.
type Memory struct {
	data []byte
}

func NewMemory(capacity uint32) *Memory {
	return &Memory{data: make([]byte, capacity)}
}

func (m *Memory) Capacity() uint32 {
	return uint32(len(m.data))
}

func (m *Memory) span(addr uint32, width uint8, store bool) ([]byte, error) {
	switch width {
	case 8, 16, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidWidth, width)
	}
	start := uint64(addr)
	end := start + uint64(width/8)
	if end > uint64(len(m.data)) {
		return nil, &MemoryFault{Addr: start, Width: width, Capacity: uint64(len(m.data)), Store: store}
	}
	return m.data[start:end], nil
}

// Load reads width (8, 16 or 32) bits at addr, zero-extended.
func (m *Memory) Load(addr uint32, width uint8) (uint32, error) {
	b, err := m.span(addr, width, false)
	if err != nil {
		return 0, err
	}
	switch width {
	case 8:
		return uint32(b[0]), nil
	case 16:
		return uint32(binary.LittleEndian.Uint16(b)), nil
	default:
		return binary.LittleEndian.Uint32(b), nil
	}
}

// Store writes the low width (8, 16 or 32) bits of value at addr.
func (m *Memory) Store(addr uint32, value uint32, width uint8) error {
	b, err := m.span(addr, width, true)
	if err != nil {
		return err
	}
	switch width {
	case 8:
		b[0] = uint8(value)
	case 16:
		binary.LittleEndian.PutUint16(b, uint16(value))
	default:
		binary.LittleEndian.PutUint32(b, value)
	}
	return nil
}

// SetMemoryRange copies everything from r into memory starting at addr.
// It returns the number of bytes written.
func (m *Memory) SetMemoryRange(addr uint32, r io.Reader) (uint32, error) {
	if uint64(addr) > uint64(len(m.data)) {
		return 0, &MemoryFault{Addr: uint64(addr), Width: 8, Capacity: uint64(len(m.data)), Store: true}
	}
	n, err := io.ReadFull(r, m.data[addr:])
	switch err {
	case nil:
		// the range is full, anything left in r does not fit
		var probe [1]byte
		if k, _ := r.Read(probe[:]); k > 0 {
			return uint32(n), &MemoryFault{Addr: uint64(len(m.data)), Width: 8, Capacity: uint64(len(m.data)), Store: true}
		}
		return uint32(n), nil
	case io.EOF, io.ErrUnexpectedEOF:
		return uint32(n), nil
	default:
		return uint32(n), err
	}
}

// ReadMemoryRange returns a reader over count bytes starting at addr.
// The range is clamped to the capacity.
func (m *Memory) ReadMemoryRange(addr uint32, count uint32) io.Reader {
	start := uint64(addr)
	end := start + uint64(count)
	if start > uint64(len(m.data)) {
		start = uint64(len(m.data))
	}
	if end > uint64(len(m.data)) {
		end = uint64(len(m.data))
	}
	return &memReader{data: m.data[start:end]}
}

type memReader struct {
	data []byte
}

func (r *memReader) Read(dest []byte) (n int, err error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n = copy(dest, r.data)
	r.data = r.data[n:]
	return n, nil
}

func (m *Memory) forEachPage(fn func(pageIndex uint32, page []byte)) {
	for start := 0; start < len(m.data); start += PageSize {
		end := start + PageSize
		if end > len(m.data) {
			end = len(m.data)
		}
		fn(uint32(start>>PageAddrSize), m.data[start:end])
	}
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// PageCount is the number of pages holding at least one non-zero byte.
func (m *Memory) PageCount() int {
	count := 0
	m.forEachPage(func(_ uint32, page []byte) {
		if !isZero(page) {
			count++
		}
	})
	return count
}

func (m *Memory) Usage() string {
	total := uint64(m.PageCount()) * PageSize
	const unit = 1024
	if total < unit {
		return fmt.Sprintf("%d B", total)
	}
	div, exp := uint64(unit), 0
	for n := total / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	// KiB, MiB, GiB
	return fmt.Sprintf("%.1f %ciB", float64(total)/float64(div), "KMG"[exp])
}

type pageEntry struct {
	Index uint32        `json:"index"`
	Data  hexutil.Bytes `json:"data"`
}

type memoryJSON struct {
	Capacity uint32      `json:"capacity"`
	Pages    []pageEntry `json:"pages"`
}

// MarshalJSON only encodes the non-zero pages.
func (m *Memory) MarshalJSON() ([]byte, error) {
	out := memoryJSON{Capacity: m.Capacity(), Pages: make([]pageEntry, 0)}
	m.forEachPage(func(pageIndex uint32, page []byte) {
		if isZero(page) {
			return
		}
		out.Pages = append(out.Pages, pageEntry{Index: pageIndex, Data: page})
	})
	return json.Marshal(out)
}

func (m *Memory) UnmarshalJSON(data []byte) error {
	var in memoryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	sort.Slice(in.Pages, func(i, j int) bool {
		return in.Pages[i].Index < in.Pages[j].Index
	})
	m.data = make([]byte, in.Capacity)
	for i, p := range in.Pages {
		if i > 0 && in.Pages[i-1].Index == p.Index {
			return fmt.Errorf("cannot load duplicate page, entry %d, page index %d", i, p.Index)
		}
		start := uint64(p.Index) << PageAddrSize
		if len(p.Data) > PageSize || start+uint64(len(p.Data)) > uint64(in.Capacity) {
			return fmt.Errorf("page %d of %d bytes does not fit capacity %d", p.Index, len(p.Data), in.Capacity)
		}
		copy(m.data[start:], p.Data)
	}
	return nil
}
