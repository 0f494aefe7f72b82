package discord

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ///////////////////////////////////////////////
// Constants
// ///////////////////////////////////////////////

// Opcode is the first header word of an IPC frame.
type Opcode uint32

const (
	OpHandshake Opcode = 0
	OpFrame     Opcode = 1
	OpClose     Opcode = 2
	OpPing      Opcode = 3
	OpPong      Opcode = 4

	// headerSize covers the little-endian opcode and payload length words.
	headerSize = 8

	// MaxPayloadSize bounds a single frame payload in either direction.
	MaxPayloadSize = 1 << 20

	// ipcSlots is how many numbered sockets Discord may listen on (0-9).
	ipcSlots = 10
)

// ErrPayloadTooLarge is returned for frames whose payload exceeds
// [MaxPayloadSize].
var ErrPayloadTooLarge = errors.New("payload too large")

// ErrIPCNotAvailable is returned when no Discord IPC endpoint accepts a
// connection, typically because Discord is not running.
var ErrIPCNotAvailable = errors.New("discord IPC not available")

// ///////////////////////////////////////////////
// Encoding
// ///////////////////////////////////////////////

// EncodeFrame returns the wire form of one frame: opcode, length, payload.
func EncodeFrame(op Opcode, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	buf := make([]byte, headerSize+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], uint32(op))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[headerSize:], payload)
	return buf, nil
}

// WriteFrame encodes a frame and writes it to w in a single call.
func WriteFrame(w io.Writer, op Opcode, payload []byte) error {
	buf, err := EncodeFrame(op, payload)
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// ///////////////////////////////////////////////
// Decoding
// ///////////////////////////////////////////////

// DecodeFrame reads exactly one frame from r.
func DecodeFrame(r io.Reader) (op Opcode, payload []byte, err error) {
	var header [headerSize]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		return 0, nil, fmt.Errorf("reading frame header: %w", err)
	}

	op = Opcode(binary.LittleEndian.Uint32(header[0:4]))
	n := binary.LittleEndian.Uint32(header[4:8])
	if n > MaxPayloadSize {
		return 0, nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, n, MaxPayloadSize)
	}

	payload = make([]byte, n)
	if _, err = io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("reading frame payload: %w", err)
	}
	return op, payload, nil
}
