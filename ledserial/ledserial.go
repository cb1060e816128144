// Package ledserial implements the serial protocol between the board
// and the LED strip controller. Every packet is a one-byte type,
// a type-specific payload, and a trailing CRC32 of everything before
// it.
package ledserial

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
)

// Endianness defines the endianness of the protocol.
var Endianness = binary.LittleEndian

// HostPacketType is the type of a packet sent from the board to the
// controller.
type HostPacketType uint8

const (
	TypeInitializePacket HostPacketType = iota
	TypeClearPacket
	TypeSetPacket
)

// String returns a string representation of the packet type.
func (t HostPacketType) String() string {
	switch t {
	case TypeInitializePacket:
		return "initialize"
	case TypeClearPacket:
		return "clear"
	case TypeSetPacket:
		return "set"
	default:
		return fmt.Sprintf("HostPacketType(%d)", t)
	}
}

// HostPacket is a packet sent from the board to the controller.
type HostPacket interface {
	// Type returns the type of packet.
	Type() HostPacketType
}

// InitializePacket tells the controller how many LEDs the strip has.
// It must be the first packet on the wire.
type InitializePacket struct {
	NumLEDs uint16
}

// ClearPacket turns the whole strip off.
type ClearPacket struct{}

// SetPacket transfers one full frame, 3 bytes per LED in R, G, B
// order. The controller latches the frame as a unit, so a flushed
// frame is never half-visible.
type SetPacket struct {
	Pix []uint8
}

func (p InitializePacket) Type() HostPacketType { return TypeInitializePacket }
func (p ClearPacket) Type() HostPacketType      { return TypeClearPacket }
func (p SetPacket) Type() HostPacketType        { return TypeSetPacket }

// ControllerPacketType is the type of a packet sent by the controller
// back to the board.
type ControllerPacketType uint8

const (
	TypeAckPacket ControllerPacketType = iota
	TypeErrorPacket
	TypePanicPacket
	TypeLogPacket
)

// String returns a string representation of the packet type.
func (t ControllerPacketType) String() string {
	switch t {
	case TypeAckPacket:
		return "ack"
	case TypeErrorPacket:
		return "error"
	case TypePanicPacket:
		return "panic"
	case TypeLogPacket:
		return "log"
	default:
		return fmt.Sprintf("ControllerPacketType(%d)", t)
	}
}

// ControllerPacket is a packet sent by the controller to the board.
type ControllerPacket interface {
	// Type returns the type of packet.
	Type() ControllerPacketType
}

// AckPacket acknowledges a host packet.
type AckPacket struct {
	For HostPacketType
}

// ErrorPacket reports a recoverable controller error.
type ErrorPacket struct {
	Message string
}

// PanicPacket reports that the controller cannot recover.
type PanicPacket struct {
	Message string
}

// LogPacket carries a controller log message.
type LogPacket struct {
	Message string
}

func (p AckPacket) Type() ControllerPacketType   { return TypeAckPacket }
func (p ErrorPacket) Type() ControllerPacketType { return TypeErrorPacket }
func (p PanicPacket) Type() ControllerPacketType { return TypePanicPacket }
func (p LogPacket) Type() ControllerPacketType   { return TypeLogPacket }

// ReadContext carries strip state that the controller needs to frame
// incoming packets.
type ReadContext struct {
	// NumLEDs is the number of LEDs in the strip, as told by the last
	// InitializePacket.
	NumLEDs uint16
}

// ReadHostPacket reads one board-to-controller packet from r and
// verifies its checksum.
func ReadHostPacket(r io.Reader, context ReadContext) (HostPacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	ptype, err := readPacketType(r)
	if err != nil {
		return nil, err
	}

	var packet HostPacket
	switch ptype := HostPacketType(ptype); ptype {
	case TypeInitializePacket:
		var p InitializePacket
		if err := binary.Read(r, Endianness, &p); err != nil {
			return nil, fmt.Errorf("failed to read number of LEDs: %w", err)
		}
		packet = p

	case TypeClearPacket:
		packet = ClearPacket{}

	case TypeSetPacket:
		p := SetPacket{Pix: make([]uint8, 3*context.NumLEDs)}
		if _, err := io.ReadFull(r, p.Pix); err != nil {
			return nil, fmt.Errorf("failed to read pixel data: %w", err)
		}
		packet = p

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := verifyChecksum(r, hash.Sum32()); err != nil {
		return nil, err
	}
	return packet, nil
}

// WriteHostPacket writes one board-to-controller packet to w, followed
// by its checksum.
func WriteHostPacket(w io.Writer, p HostPacket) error {
	hash := crc32.NewIEEE()
	w = io.MultiWriter(w, hash)

	if err := writePacketType(w, uint8(p.Type())); err != nil {
		return err
	}

	switch p := p.(type) {
	case InitializePacket:
		if err := binary.Write(w, Endianness, p); err != nil {
			return fmt.Errorf("failed to write initialize packet: %w", err)
		}
	case ClearPacket:
		// No payload.
	case SetPacket:
		if _, err := w.Write(p.Pix); err != nil {
			return fmt.Errorf("failed to write pixel data: %w", err)
		}
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	return writeChecksum(w, hash.Sum32())
}

// ReadControllerPacket reads one controller-to-board packet from r and
// verifies its checksum.
func ReadControllerPacket(r io.Reader) (ControllerPacket, error) {
	hash := crc32.NewIEEE()
	r = io.TeeReader(r, hash)

	ptype, err := readPacketType(r)
	if err != nil {
		return nil, err
	}

	var packet ControllerPacket
	switch ptype := ControllerPacketType(ptype); ptype {
	case TypeAckPacket:
		var p AckPacket
		if err := binary.Read(r, Endianness, &p); err != nil {
			return nil, fmt.Errorf("failed to read acked packet type: %w", err)
		}
		packet = p

	case TypeErrorPacket:
		msg, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read error message: %w", err)
		}
		packet = ErrorPacket{Message: msg}

	case TypePanicPacket:
		msg, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read panic message: %w", err)
		}
		packet = PanicPacket{Message: msg}

	case TypeLogPacket:
		msg, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read log message: %w", err)
		}
		packet = LogPacket{Message: msg}

	default:
		return nil, fmt.Errorf("unknown packet type: %s", ptype)
	}

	if err := verifyChecksum(r, hash.Sum32()); err != nil {
		return nil, err
	}
	return packet, nil
}

// WriteControllerPacket writes one controller-to-board packet to w,
// followed by its checksum.
func WriteControllerPacket(w io.Writer, p ControllerPacket) error {
	hash := crc32.NewIEEE()
	w = io.MultiWriter(w, hash)

	if err := writePacketType(w, uint8(p.Type())); err != nil {
		return err
	}

	var err error
	switch p := p.(type) {
	case AckPacket:
		err = binary.Write(w, Endianness, p)
	case ErrorPacket:
		err = writeString(w, p.Message)
	case PanicPacket:
		err = writeString(w, p.Message)
	case LogPacket:
		err = writeString(w, p.Message)
	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}
	if err != nil {
		return fmt.Errorf("failed to write %s packet: %w", p.Type(), err)
	}

	return writeChecksum(w, hash.Sum32())
}

func readPacketType(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("failed to read packet type: %w", err)
	}
	return buf[0], nil
}

func writePacketType(w io.Writer, t uint8) error {
	if _, err := w.Write([]byte{t}); err != nil {
		return fmt.Errorf("failed to write packet type: %w", err)
	}
	return nil
}

// readString reads a length-prefixed string.
func readString(r io.Reader) (string, error) {
	var length uint16
	if err := binary.Read(r, Endianness, &length); err != nil {
		return "", fmt.Errorf("failed to read length: %w", err)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeString writes a length-prefixed string.
func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, Endianness, uint16(len(s))); err != nil {
		return fmt.Errorf("failed to write length: %w", err)
	}
	if _, err := io.WriteString(w, s); err != nil {
		return err
	}
	return nil
}

// verifyChecksum consumes the trailing checksum and compares it to the
// sum of everything read so far. The hash must be summed before the
// checksum itself is read, which is why the caller passes it in.
func verifyChecksum(r io.Reader, sum uint32) error {
	var checksum uint32
	if err := binary.Read(r, Endianness, &checksum); err != nil {
		return fmt.Errorf("failed to read packet checksum: %w", err)
	}
	if checksum != sum {
		return fmt.Errorf("packet checksum mismatch")
	}
	return nil
}

func writeChecksum(w io.Writer, sum uint32) error {
	if err := binary.Write(w, Endianness, sum); err != nil {
		return fmt.Errorf("failed to write packet checksum: %w", err)
	}
	return nil
}
