package fragment

import (
	"github.com/dd0wney/cluso-meshroute/pkg/logging"
	"github.com/dd0wney/cluso-meshroute/pkg/metrics"
)

// Disassemble splits payload into ceil(len/Size) fragments. Fragment i holds
// bytes [i*Size, i*Size+Length). An empty payload still yields one empty
// fragment so the receiver sees the session complete.
func Disassemble(payload []byte) []Fragment {
	total := (len(payload) + Size - 1) / Size
	if total == 0 {
		return []Fragment{{Index: 0, Total: 1}}
	}

	fragments := make([]Fragment, total)
	for i := range fragments {
		chunk := payload[i*Size : min((i+1)*Size, len(payload))]
		f := &fragments[i]
		f.Index = uint64(i)
		f.Total = uint64(total)
		f.Length = uint8(len(chunk))
		copy(f.Data[:], chunk)
	}
	return fragments
}

// Disassembler is the instrumented form of Disassemble. It keeps no state
// between calls.
type Disassembler struct {
	logger  logging.Logger
	metrics *metrics.Registry
}

// DisassemblerOption configures a Disassembler
type DisassemblerOption func(*Disassembler)

// WithDisassemblerLogger sets the logger
func WithDisassemblerLogger(l logging.Logger) DisassemblerOption {
	return func(d *Disassembler) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDisassemblerMetrics counts produced fragments in m
func WithDisassemblerMetrics(m *metrics.Registry) DisassemblerOption {
	return func(d *Disassembler) { d.metrics = m }
}

// NewDisassembler creates a Disassembler
func NewDisassembler(opts ...DisassemblerOption) *Disassembler {
	d := &Disassembler{logger: logging.NewNopLogger()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Disassemble splits payload for sessionID
func (d *Disassembler) Disassemble(payload []byte, sessionID uint64) []Fragment {
	fragments := Disassemble(payload)
	d.logger.Debug("payload disassembled",
		logging.Session(sessionID),
		logging.Int("bytes", len(payload)),
		logging.Count(len(fragments)),
	)
	if d.metrics != nil {
		d.metrics.RecordFragments(metrics.DirectionOut, len(fragments))
	}
	return fragments
}
