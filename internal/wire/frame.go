// Package wire implements the length-prefixed frame format shared by the
// Discord IPC client and the mediakeys session socket.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Frame opcodes.
const (
	OpHandshake uint32 = 0
	OpFrame     uint32 = 1
	OpClose     uint32 = 2
)

// MaxPayload bounds the size of a frame payload accepted by ReadFrame
const MaxPayload = 64 << 10

// WriteFrame sends a frame: [opcode LE u32][length LE u32][payload].
func WriteFrame(w io.Writer, opcode uint32, payload []byte) error {
	buf := make([]byte, 8+len(payload))
	binary.LittleEndian.PutUint32(buf[0:4], opcode)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(payload)))
	copy(buf[8:], payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one frame, allocating a buffer of the exact size declared
// in the header.
func ReadFrame(r io.Reader) (uint32, []byte, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return 0, nil, err
	}
	opcode := binary.LittleEndian.Uint32(header[0:4])
	length := binary.LittleEndian.Uint32(header[4:8])
	if length > MaxPayload {
		return 0, nil, fmt.Errorf("frame payload %d bytes exceeds limit of %d", length, MaxPayload)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, err
	}
	return opcode, payload, nil
}
