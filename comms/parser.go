package comms

import (
	"errors"
	"fmt"
	"time"
)

type parseState int

const (
	stateHeader parseState = iota
	stateType
	stateLength
	stateData
)

// Parser assembles packets from a byte stream.
// Bytes preceding a packet header are skipped. Packets with unknown ID or
// wrong data length are dropped and the parser resynchronizes on the next header,
// including a header byte that caused the packet to be rejected.
type Parser struct {
	state parseState
	id    ID
	want  int
	buf   []byte
	// toa is arrival time of the header of the packet being assembled
	toa time.Time
	// last is arrival time of the last decoded packet
	last time.Time
	now  func() time.Time
}

// NewParser creates new Parser and returns it.
func NewParser() *Parser {
	return &Parser{
		buf: make([]byte, 0, HeaderLen+16),
		now: time.Now,
	}
}

// Feed feeds a single byte b to the parser.
// It returns decoded packet once all of its bytes have been fed, otherwise it returns nil.
// It returns error if the packet being assembled is invalid.
func (p *Parser) Feed(b byte) (Packet, error) {
	switch p.state {
	case stateHeader:
		p.start(b)
	case stateType:
		if b == Header {
			// stray header: b starts the packet
			p.start(b)
			return nil, nil
		}
		n, err := DataLen(ID(b))
		if err != nil {
			p.Reset()
			return nil, err
		}
		p.id, p.want = ID(b), n
		p.buf = append(p.buf, b)
		p.state = stateLength
	case stateLength:
		if int(b) != p.want {
			id, want := p.id, p.want
			p.Reset()
			p.start(b)
			return nil, fmt.Errorf("%w: %v data length %d != %d", ErrInvalidPacket, id, b, want)
		}
		p.buf = append(p.buf, b)
		if p.want == 0 {
			return p.emit()
		}
		p.state = stateData
	case stateData:
		p.buf = append(p.buf, b)
		if len(p.buf) == HeaderLen+p.want {
			return p.emit()
		}
	}

	return nil, nil
}

// Toa returns the time of arrival of the first byte of the last decoded packet.
func (p *Parser) Toa() time.Time {
	return p.last
}

// Reset discards any partially assembled packet.
func (p *Parser) Reset() {
	p.state = stateHeader
	p.id = 0
	p.want = 0
	p.buf = p.buf[:0]
}

// start begins a new packet if b is a packet header
func (p *Parser) start(b byte) {
	if b != Header {
		return
	}
	p.buf = append(p.buf[:0], b)
	p.toa = p.now()
	p.state = stateType
}

func (p *Parser) emit() (Packet, error) {
	pkt, err := Decode(p.buf)
	if err == nil {
		p.last = p.toa
	}
	p.Reset()
	return pkt, err
}

// Unpack decodes all packets found in data.
// Invalid packets are skipped and their errors are joined into the returned error.
func Unpack(data []byte) ([]Packet, error) {
	p := NewParser()

	var (
		pkts []Packet
		errs []error
	)

	for i, b := range data {
		pkt, err := p.Feed(b)
		if err != nil {
			errs = append(errs, fmt.Errorf("byte %d: %w", i, err))
			continue
		}
		if pkt != nil {
			pkts = append(pkts, pkt)
		}
	}

	if p.state != stateHeader {
		errs = append(errs, fmt.Errorf("%w: truncated %v", ErrInvalidPacket, p.id))
	}

	return pkts, errors.Join(errs...)
}
