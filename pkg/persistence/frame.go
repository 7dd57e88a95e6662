// Package persistence implements the binary framing used by graph snapshot files.
//
// A snapshot is a plain sequence of frames. Each frame carries an op code telling
// the reader what kind of record the payload holds, and a CRC32 of the payload so
// that truncated or corrupted files are detected at load time instead of
// producing a silently wrong network.
package persistence

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Constants for the snapshot binary protocol.
const (
	// MagicByte marks the start of a valid frame.
	MagicByte = 0xA5

	// HeaderSize is the fixed size of the frame metadata:
	// 1 byte (Magic) + 1 byte (OpCode) + 4 bytes (Length) + 4 bytes (CRC32) = 10 bytes.
	HeaderSize = 10

	// MaxPayloadSize bounds a single record. Graph records are small; anything
	// larger means the length field itself is corrupt.
	MaxPayloadSize = 16 << 20
)

// OpCode identifies the record type carried by a frame.
type OpCode byte

const (
	OpHeader OpCode = 0x01
	OpNode   OpCode = 0x02
	OpEdge   OpCode = 0x03
)

func (op OpCode) String() string {
	switch op {
	case OpHeader:
		return "header"
	case OpNode:
		return "node"
	case OpEdge:
		return "edge"
	default:
		return fmt.Sprintf("op(0x%02x)", byte(op))
	}
}

var (
	// ErrInvalidMagic indicates the stream lost synchronization or is not a snapshot.
	ErrInvalidMagic = errors.New("invalid magic byte")
	// ErrChecksumMismatch indicates data corruption within the frame payload.
	ErrChecksumMismatch = errors.New("crc32 checksum mismatch")
	// ErrIncompleteFrame indicates the file ended in the middle of a frame.
	ErrIncompleteFrame = errors.New("incomplete frame")
	// ErrFrameTooLarge indicates a length field beyond MaxPayloadSize.
	ErrFrameTooLarge = errors.New("frame too large")
)

// Frame is a decoded record.
type Frame struct {
	Op      OpCode
	Payload []byte
}

// FrameWriter writes frames to an io.Writer.
type FrameWriter struct {
	w      io.Writer
	header [HeaderSize]byte
}

// NewFrameWriter creates a writer that wraps an underlying io.Writer.
// Wrap files in a bufio.Writer so header and payload end up in one syscall.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame encodes the payload into a frame and writes it.
// Frame Format: [Magic(1)][OpCode(1)][Length(4)][CRC(4)][Payload(N)]
func (fw *FrameWriter) WriteFrame(op OpCode, payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(payload))
	}

	fw.header[0] = MagicByte
	fw.header[1] = byte(op)
	binary.LittleEndian.PutUint32(fw.header[2:6], uint32(len(payload)))
	binary.LittleEndian.PutUint32(fw.header[6:10], crc32.ChecksumIEEE(payload))

	if _, err := fw.w.Write(fw.header[:]); err != nil {
		return err
	}
	if _, err := fw.w.Write(payload); err != nil {
		return err
	}
	return nil
}

// ReadFrame reads the next frame from the reader, validating the magic byte and
// the checksum. It returns io.EOF only when the stream ends exactly on a frame
// boundary.
func ReadFrame(r io.Reader) (Frame, error) {
	var header [HeaderSize]byte

	if _, err := io.ReadFull(r, header[:]); err != nil {
		if err == io.EOF {
			return Frame{}, io.EOF
		}
		return Frame{}, ErrIncompleteFrame
	}

	if header[0] != MagicByte {
		return Frame{}, ErrInvalidMagic
	}

	op := OpCode(header[1])
	length := binary.LittleEndian.Uint32(header[2:6])
	expectedCRC := binary.LittleEndian.Uint32(header[6:10])

	if length > MaxPayloadSize {
		return Frame{}, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Frame{}, ErrIncompleteFrame
	}

	if crc32.ChecksumIEEE(payload) != expectedCRC {
		return Frame{}, ErrChecksumMismatch
	}

	return Frame{Op: op, Payload: payload}, nil
}
