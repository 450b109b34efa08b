package comms

import (
	"fmt"
	"io"

	"go.einride.tech/can"
)

// CAN identifiers of packets carried over a CAN bus.
// CartData does not fit into a single frame so its position and velocity
// are sent in two separate frames.
const (
	ForceCmdCANID uint32 = 0x110
	CartPosCANID  uint32 = 0x111
	CartVelCANID  uint32 = 0x115
	PendDataCANID uint32 = 0x120
)

// ForceCmdFrame encodes force command p as a CAN frame.
func ForceCmdFrame(p ForceCmd) can.Frame {
	f := can.Frame{ID: ForceCmdCANID, Length: 8}
	putFloat(f.Data[:], p.Force)
	return f
}

// CartDataFrames encodes cart data p as a pair of position and velocity CAN frames.
func CartDataFrames(p CartData) [2]can.Frame {
	pos := can.Frame{ID: CartPosCANID, Length: 8}
	putFloat(pos.Data[:], p.Pos)

	vel := can.Frame{ID: CartVelCANID, Length: 8}
	putFloat(vel.Data[:], p.Vel)

	return [2]can.Frame{pos, vel}
}

// PendDataFrame encodes pendulum data p as a CAN frame.
func PendDataFrame(p PendData) (can.Frame, error) {
	b, err := p.MarshalBinary()
	if err != nil {
		return can.Frame{}, err
	}

	f := can.Frame{ID: PendDataCANID}
	f.Length = uint8(copy(f.Data[:], b[HeaderLen:]))
	return f, nil
}

// DecodeForceCmdFrame decodes force command from CAN frame f.
func DecodeForceCmdFrame(f can.Frame) (ForceCmd, error) {
	if err := checkFrame(f, ForceCmdCANID, 8); err != nil {
		return ForceCmd{}, err
	}

	return ForceCmd{Force: getFloat(f.Data[:])}, nil
}

// DecodeCartDataFrames decodes cart data from position and velocity CAN frames.
func DecodeCartDataFrames(pos, vel can.Frame) (CartData, error) {
	if err := checkFrame(pos, CartPosCANID, 8); err != nil {
		return CartData{}, err
	}

	if err := checkFrame(vel, CartVelCANID, 8); err != nil {
		return CartData{}, err
	}

	return CartData{Pos: getFloat(pos.Data[:]), Vel: getFloat(vel.Data[:])}, nil
}

// DecodePendDataFrame decodes pendulum data from CAN frame f.
func DecodePendDataFrame(f can.Frame) (PendData, error) {
	if err := checkFrame(f, PendDataCANID, 2); err != nil {
		return PendData{}, err
	}

	b := newPacket(PendDataID)
	copy(b[HeaderLen:], f.Data[:f.Length])

	p, err := Decode(b)
	if err != nil {
		return PendData{}, err
	}

	return p.(PendData), nil
}

// WriteForceCmdFrames writes one force command frame per input in u to w.
// Frames are written in candump text format, one per line.
func WriteForceCmdFrames(w io.Writer, u []float64) error {
	for k, f := range u {
		if _, err := fmt.Fprintln(w, ForceCmdFrame(ForceCmd{Force: f}).String()); err != nil {
			return fmt.Errorf("failed to write frame %d: %w", k, err)
		}
	}

	return nil
}

func checkFrame(f can.Frame, id uint32, length uint8) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPacket, err)
	}

	if f.ID != id {
		return fmt.Errorf("%w: can id 0x%x", ErrUnknownID, f.ID)
	}

	if f.Length != length || f.IsRemote {
		return fmt.Errorf("%w: can frame 0x%x length %d != %d", ErrInvalidPacket, f.ID, f.Length, length)
	}

	return nil
}
