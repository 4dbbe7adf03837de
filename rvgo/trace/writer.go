package trace

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rv32im/rvtrace/rvgo/vm"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatJSON:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown trace format %q", s)
	}
}

// Writer renders trace records to an output stream.
//
// The text format prints six lines per record:
//
//	PC=<pc>
//	[<instr>]
//	x<rd>=<value after>
//	x<rs1>=<value before>
//	x<rs2>=<value before>
//	<mnemonic>
//
// The json format prints one object per line.
type Writer struct {
	out    *bufio.Writer
	format Format
	enc    *json.Encoder
	count  uint64
}

func NewWriter(w io.Writer, format Format) *Writer {
	out := bufio.NewWriter(w)
	tw := &Writer{out: out, format: format}
	if format == FormatJSON {
		tw.enc = json.NewEncoder(out)
	}
	return tw
}

type jsonRecord struct {
	Step     uint64         `json:"step"`
	PC       hexutil.Uint64 `json:"pc"`
	Instr    hexutil.Uint64 `json:"instr"`
	Op       string         `json:"op"`
	Rd       uint8          `json:"rd"`
	RdValue  hexutil.Uint64 `json:"rdValue"`
	Rs1      uint8          `json:"rs1"`
	Rs1Value hexutil.Uint64 `json:"rs1Value"`
	Rs2      uint8          `json:"rs2"`
	Rs2Value hexutil.Uint64 `json:"rs2Value"`
	Imm      int32          `json:"imm"`
	NextPC   hexutil.Uint64 `json:"nextPC"`
	Mnemonic string         `json:"mnemonic"`
}

func (w *Writer) Write(rec vm.TraceRecord) error {
	w.count++
	if w.format == FormatJSON {
		return w.enc.Encode(&jsonRecord{
			Step:     rec.Step,
			PC:       hexutil.Uint64(rec.PC),
			Instr:    hexutil.Uint64(rec.Instr),
			Op:       rec.Op.String(),
			Rd:       rec.Rd,
			RdValue:  hexutil.Uint64(rec.RdValue),
			Rs1:      rec.Rs1,
			Rs1Value: hexutil.Uint64(rec.Rs1Value),
			Rs2:      rec.Rs2,
			Rs2Value: hexutil.Uint64(rec.Rs2Value),
			Imm:      rec.Imm,
			NextPC:   hexutil.Uint64(rec.NextPC),
			Mnemonic: Mnemonic(&rec),
		})
	}
	_, err := fmt.Fprintf(w.out, "PC=%08x\n[%08x]\nx%02d=%08x\nx%02d=%08x\nx%02d=%08x\n%s\n",
		rec.PC, rec.Instr,
		rec.Rd, rec.RdValue,
		rec.Rs1, rec.Rs1Value,
		rec.Rs2, rec.Rs2Value,
		Mnemonic(&rec))
	return err
}

// Count is the number of records written so far.
func (w *Writer) Count() uint64 {
	return w.count
}

func (w *Writer) Flush() error {
	return w.out.Flush()
}

// Drain writes records from q until it is closed and empty, then flushes.
// On a write error the queue is closed so a blocked producer gives up.
func Drain(q *Queue, w *Writer) error {
	for {
		rec, ok := q.Get()
		if !ok {
			return w.Flush()
		}
		if err := w.Write(rec); err != nil {
			q.Close()
			return fmt.Errorf("failed to write trace record %d: %w", rec.Step, err)
		}
	}
}

// DrainAvailable writes whatever is queued right now without waiting.
func DrainAvailable(q *Queue, w *Writer) error {
	for {
		rec, err := q.TryGet()
		if err == ErrQueueEmpty {
			return w.Flush()
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write trace record %d: %w", rec.Step, err)
		}
	}
}
