package vm

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
)

// LoadELF builds a machine from a 32-bit RISC-V ELF executable. Segments are
// loaded at their virtual addresses and execution starts at the entry point.
// ProgramSize is set to the end of the highest executable segment.
func LoadELF(f *elf.File, memSize uint32) (*VMState, error) {
	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("ELF is not RISC-V, but got %q", f.Machine.String())
	}
	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("ELF is not 32-bit, but got %q", f.Class.String())
	}
	if f.Entry >= uint64(memSize) {
		return nil, fmt.Errorf("entry point %08x is outside memory of %d bytes", f.Entry, memSize)
	}
	out := NewVMState(memSize)
	out.PC = uint32(f.Entry)

	for i, prog := range f.Progs {
		// PT_RISCV_ATTRIBUTES has no memory image, like the other non-load segments
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if prog.Filesz > prog.Memsz {
			return nil, fmt.Errorf("invalid PT_LOAD program segment %d, file size (%d) > mem size (%d)", i, prog.Filesz, prog.Memsz)
		}
		end := prog.Vaddr + prog.Memsz
		if end > uint64(memSize) {
			return nil, fmt.Errorf("program segment %d [%08x, %08x) does not fit memory of %d bytes", i, prog.Vaddr, end, memSize)
		}
		r := io.Reader(io.NewSectionReader(prog, 0, int64(prog.Filesz)))
		if prog.Filesz < prog.Memsz {
			r = io.MultiReader(r, bytes.NewReader(make([]byte, prog.Memsz-prog.Filesz)))
		}
		if _, err := out.Memory.SetMemoryRange(uint32(prog.Vaddr), r); err != nil {
			return nil, fmt.Errorf("failed to read program segment %d: %w", i, err)
		}
		if prog.Flags&elf.PF_X != 0 && uint32(end) > out.ProgramSize {
			out.ProgramSize = uint32(end)
		}
	}
	if out.ProgramSize == 0 {
		return nil, fmt.Errorf("ELF has no executable segment")
	}
	return out, nil
}
