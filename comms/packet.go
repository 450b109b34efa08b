// Package comms encodes and decodes the packets exchanged with the cart and
// pendulum interfaces.
//
// Every packet starts with a fixed header byte followed by the packet ID and
// the length of the data section:
//
//	0xAA | ID | LEN | DATA[LEN]
//
// Multi-byte values in the data section are big-endian.
package comms

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

const (
	// Header is the first byte of every packet
	Header byte = 0xaa
	// HeaderLen is the length of the packet header: header byte, ID and data length
	HeaderLen = 3
	// PendScale is pendulum angle resolution in rad
	PendScale = 1e-4
)

var (
	// ErrInvalidPacket is returned when packet bytes are malformed
	ErrInvalidPacket = errors.New("invalid packet")
	// ErrUnknownID is returned when packet ID is not recognized
	ErrUnknownID = errors.New("unknown packet id")
)

// ID identifies packet type
type ID byte

const (
	// ForceCmdID commands cart force
	ForceCmdID ID = 0x10
	// CartDataID reports cart position and velocity
	CartDataID ID = 0x11
	// PollCmdID polls cart for data
	PollCmdID ID = 0x12
	// LockCmdID locks or unlocks the cart
	LockCmdID ID = 0x13
	// KeepaliveID keeps the cart link alive
	KeepaliveID ID = 0xff
	// PendDataID reports pendulum angle
	PendDataID ID = 0x20
)

// data section length of each packet type
var dataLen = map[ID]int{
	ForceCmdID:  8,
	CartDataID:  16,
	PollCmdID:   0,
	LockCmdID:   1,
	KeepaliveID: 0,
	PendDataID:  2,
}

// String implements the Stringer interface.
func (id ID) String() string {
	switch id {
	case ForceCmdID:
		return "ForceCmd"
	case CartDataID:
		return "CartData"
	case PollCmdID:
		return "PollCmd"
	case LockCmdID:
		return "LockCmd"
	case KeepaliveID:
		return "Keepalive"
	case PendDataID:
		return "PendData"
	default:
		return fmt.Sprintf("ID(0x%02x)", byte(id))
	}
}

// DataLen returns the length of the data section of packets with the given id.
func DataLen(id ID) (int, error) {
	n, ok := dataLen[id]
	if !ok {
		return 0, fmt.Errorf("%w: 0x%02x", ErrUnknownID, byte(id))
	}

	return n, nil
}

// Packet is a cart or pendulum interface packet
type Packet interface {
	// ID returns packet ID
	ID() ID
	// MarshalBinary encodes the packet including its header
	MarshalBinary() ([]byte, error)
}

// ForceCmd commands cart force
type ForceCmd struct {
	// Force is cart force in N
	Force float64
}

// ID returns packet ID
func (p ForceCmd) ID() ID { return ForceCmdID }

// MarshalBinary encodes the packet including its header
func (p ForceCmd) MarshalBinary() ([]byte, error) {
	b := newPacket(ForceCmdID)
	putFloat(b[HeaderLen:], p.Force)
	return b, nil
}

// CartData reports cart position and velocity
type CartData struct {
	// Pos is cart position in m
	Pos float64
	// Vel is cart velocity in m/s
	Vel float64
}

// ID returns packet ID
func (p CartData) ID() ID { return CartDataID }

// MarshalBinary encodes the packet including its header
func (p CartData) MarshalBinary() ([]byte, error) {
	b := newPacket(CartDataID)
	putFloat(b[HeaderLen:], p.Pos)
	putFloat(b[HeaderLen+8:], p.Vel)
	return b, nil
}

// PollCmd polls the cart for data
type PollCmd struct{}

// ID returns packet ID
func (p PollCmd) ID() ID { return PollCmdID }

// MarshalBinary encodes the packet including its header
func (p PollCmd) MarshalBinary() ([]byte, error) {
	return newPacket(PollCmdID), nil
}

// LockCmd locks or unlocks the cart
type LockCmd struct {
	Locked bool
}

// ID returns packet ID
func (p LockCmd) ID() ID { return LockCmdID }

// MarshalBinary encodes the packet including its header
func (p LockCmd) MarshalBinary() ([]byte, error) {
	b := newPacket(LockCmdID)
	if p.Locked {
		b[HeaderLen] = 1
	}
	return b, nil
}

// Keepalive keeps the cart link alive
type Keepalive struct{}

// ID returns packet ID
func (p Keepalive) ID() ID { return KeepaliveID }

// MarshalBinary encodes the packet including its header
func (p Keepalive) MarshalBinary() ([]byte, error) {
	return newPacket(KeepaliveID), nil
}

// PendData reports pendulum angle.
// The angle is sent as a signed 16 bit count of PendScale radians.
type PendData struct {
	// Pos is pendulum angle in rad
	Pos float64
}

// ID returns packet ID
func (p PendData) ID() ID { return PendDataID }

// MarshalBinary encodes the packet including its header.
// Angles outside of the encodable range are clamped.
func (p PendData) MarshalBinary() ([]byte, error) {
	if math.IsNaN(p.Pos) {
		return nil, fmt.Errorf("%w: pendulum angle is NaN", ErrInvalidPacket)
	}

	b := newPacket(PendDataID)
	count := math.Round(p.Pos / PendScale)
	count = math.Max(math.Min(count, math.MaxInt16), math.MinInt16)
	binary.BigEndian.PutUint16(b[HeaderLen:], uint16(int16(count)))
	return b, nil
}

// Validate checks b holds a complete packet with known ID and correct data length.
func Validate(b []byte) error {
	if len(b) < HeaderLen || b[0] != Header {
		return fmt.Errorf("%w: missing header", ErrInvalidPacket)
	}

	n, err := DataLen(ID(b[1]))
	if err != nil {
		return err
	}

	if int(b[2]) != n {
		return fmt.Errorf("%w: %v data length %d != %d", ErrInvalidPacket, ID(b[1]), b[2], n)
	}

	if len(b) < HeaderLen+n {
		return fmt.Errorf("%w: %v truncated", ErrInvalidPacket, ID(b[1]))
	}

	return nil
}

// Decode decodes the packet stored in b.
// It returns error if b does not hold a valid packet.
func Decode(b []byte) (Packet, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}

	data := b[HeaderLen:]
	switch id := ID(b[1]); id {
	case ForceCmdID:
		return ForceCmd{Force: getFloat(data)}, nil
	case CartDataID:
		return CartData{Pos: getFloat(data), Vel: getFloat(data[8:])}, nil
	case PollCmdID:
		return PollCmd{}, nil
	case LockCmdID:
		return LockCmd{Locked: data[0] != 0}, nil
	case KeepaliveID:
		return Keepalive{}, nil
	case PendDataID:
		count := int16(binary.BigEndian.Uint16(data))
		return PendData{Pos: float64(count) * PendScale}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownID, byte(id))
	}
}

// EncodeInputs encodes control inputs u as a stream of force command packets.
func EncodeInputs(u []float64) ([]byte, error) {
	n := dataLen[ForceCmdID] + HeaderLen
	out := make([]byte, 0, n*len(u))

	for k, f := range u {
		b, err := ForceCmd{Force: f}.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("failed to encode input %d: %w", k, err)
		}
		out = append(out, b...)
	}

	return out, nil
}

func newPacket(id ID) []byte {
	n := dataLen[id]
	b := make([]byte, HeaderLen+n)
	b[0] = Header
	b[1] = byte(id)
	b[2] = byte(n)
	return b
}

func putFloat(b []byte, v float64) {
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
}

func getFloat(b []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}
