package comms

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParserFeed(t *testing.T) {
	assert := assert.New(t)

	p := NewParser()
	b, _ := CartData{Pos: 1.0, Vel: 2.0}.MarshalBinary()

	for _, c := range b[:len(b)-1] {
		pkt, err := p.Feed(c)
		assert.NoError(err)
		assert.Nil(pkt)
	}

	pkt, err := p.Feed(b[len(b)-1])
	assert.NoError(err)
	assert.Equal(CartData{Pos: 1.0, Vel: 2.0}, pkt)

	// unknown ID
	_, err = p.Feed(Header)
	assert.NoError(err)
	_, err = p.Feed(0x42)
	assert.True(errors.Is(err, ErrUnknownID))

	// wrong length
	_, _ = p.Feed(Header)
	_, err = p.Feed(byte(PollCmdID))
	assert.NoError(err)
	_, err = p.Feed(0x01)
	assert.True(errors.Is(err, ErrInvalidPacket))
}

func TestUnpack(t *testing.T) {
	assert := assert.New(t)

	var stream []byte
	stream = append(stream, 0x00, 0x01)
	b, _ := Keepalive{}.MarshalBinary()
	stream = append(stream, b...)
	// packet with unknown ID
	stream = append(stream, 0xaa, 0x42)
	b, _ = LockCmd{Locked: true}.MarshalBinary()
	stream = append(stream, b...)

	pkts, err := Unpack(stream)
	assert.True(errors.Is(err, ErrUnknownID))
	assert.Equal([]Packet{Keepalive{}, LockCmd{Locked: true}}, pkts)

	// truncated stream
	b, _ = ForceCmd{Force: 1.0}.MarshalBinary()
	pkts, err = Unpack(b[:5])
	assert.True(errors.Is(err, ErrInvalidPacket))
	assert.Empty(pkts)
}

func TestUnpackResync(t *testing.T) {
	assert := assert.New(t)

	force, _ := ForceCmd{Force: -123.45}.MarshalBinary()
	poll, _ := PollCmd{}.MarshalBinary()

	// stray header before a valid packet
	pkts, err := Unpack(append([]byte{Header}, force...))
	assert.NoError(err)
	assert.Equal([]Packet{ForceCmd{Force: -123.45}}, pkts)

	// several stray headers
	pkts, err = Unpack(append([]byte{Header, Header, Header}, poll...))
	assert.NoError(err)
	assert.Equal([]Packet{PollCmd{}}, pkts)

	// header rejected as data length starts the next packet
	stream := []byte{Header, byte(PollCmdID), Header}
	stream = append(stream, force[1:]...)
	pkts, err = Unpack(stream)
	assert.True(errors.Is(err, ErrInvalidPacket))
	assert.Equal([]Packet{ForceCmd{Force: -123.45}}, pkts)
}

func TestParserToa(t *testing.T) {
	assert := assert.New(t)

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	p := NewParser()
	p.now = func() time.Time {
		tick++
		return start.Add(time.Duration(tick) * time.Millisecond)
	}

	assert.True(p.Toa().IsZero())

	b, _ := Keepalive{}.MarshalBinary()
	b = append([]byte{0x01, Header}, b...)

	var pkt Packet
	for _, c := range b {
		out, err := p.Feed(c)
		assert.NoError(err)
		if out != nil {
			pkt = out
		}
	}

	assert.Equal(Keepalive{}, pkt)
	// stray header stamped at tick 1, packet header at tick 2
	assert.Equal(start.Add(2*time.Millisecond), p.Toa())
}
