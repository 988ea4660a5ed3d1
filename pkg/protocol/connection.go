package protocol

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/go-mclib/polymer/pkg/errs"
	"github.com/go-mclib/polymer/pkg/ringbuf"
)

// inboundCapacity is generous enough to hold several queued chunk-data
// packets without the poll loop needing to drain every tick.
const inboundCapacity = 1 << 20 // 1 MiB

// pollTimeout is the read deadline used to emulate a non-blocking poll
// without putting the socket in a real O_NONBLOCK mode.
const pollTimeout = 1 * time.Millisecond

// Connection owns the TCP socket and inbound ring buffer.
type Connection struct {
	conn                  net.Conn
	in                    *ringbuf.RingBuffer
	state                 State
	compressionThreshold  int // -1 disables compression
	compressionEnabled    bool
	Logger                *log.Logger
}

// New creates a Connection with compression disabled and state Handshake.
func New(logger *log.Logger) *Connection {
	return &Connection{
		in:                   ringbuf.New(inboundCapacity),
		state:                StateHandshake,
		compressionThreshold: -1,
		Logger:               logger,
	}
}

// Connect opens a blocking TCP socket to host:port.
func (c *Connection) Connect(host string, port int) error {
	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", host, port), 10*time.Second)
	if err != nil {
		return fmt.Errorf("dial %s:%d: %w", host, port, errs.SocketError)
	}
	c.conn = conn
	c.state = StateHandshake
	c.compressionThreshold = -1
	c.compressionEnabled = false
	c.in.Reset()
	return nil
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Connection) State() State      { return c.state }
func (c *Connection) SetState(s State)  { c.state = s }

// SetCompressionThreshold enables compressed framing once a SetCompression
// packet is received. A negative threshold disables compression.
func (c *Connection) SetCompressionThreshold(threshold int) {
	c.compressionThreshold = threshold
	c.compressionEnabled = threshold >= 0
}

// Compressed reports whether the compressed frame format is active.
func (c *Connection) Compressed() bool { return c.compressionEnabled }

// Poll reads whatever bytes are immediately available from the socket into
// the inbound ring buffer without blocking the main loop: the socket read
// is the loop's only suspension point, and only briefly here.
func (c *Connection) Poll() error {
	_ = c.conn.SetReadDeadline(time.Now().Add(pollTimeout))
	var chunk [4096]byte
	for {
		n, err := c.conn.Read(chunk[:])
		if n > 0 {
			if werr := c.stage(chunk[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			if err == io.EOF {
				return fmt.Errorf("connection closed by peer: %w", errs.SocketError)
			}
			return fmt.Errorf("socket read: %w", errs.SocketError)
		}
		if n < len(chunk) {
			return nil
		}
	}
}

func (c *Connection) stage(b []byte) error {
	if uint64(len(b)) > c.in.Writable() {
		return fmt.Errorf("inbound ring buffer overrun: %w", errs.SocketError)
	}
	_, err := c.in.Write(b)
	return err
}

// DrainPacket attempts to parse one complete frame from the inbound ring
// buffer. It returns errs.IncompleteFrame (non-fatal - try again after the
// next Poll) if the frame is not fully buffered yet. On any parse failure
// inside an already-fully-buffered frame, the read cursor still advances
// past the frame (the frame length was already consumed before parsing its
// contents), so a bad packet skips to its declared frame boundary without
// corrupting connection state.
func (c *Connection) DrainPacket() (*WirePacket, error) {
	mark := c.in.Mark()

	frameLen, err := ringbuf.ReadVarInt(c.in)
	if err != nil {
		if errors.Is(err, errs.MalformedPacket) {
			// Frame-header corruption has no declared boundary to skip to;
			// drop the staged bytes so the drain loop cannot spin on them.
			c.in.Reset()
			return nil, fmt.Errorf("corrupt frame header: %w", err)
		}
		c.in.Rewind(mark)
		return nil, err
	}
	if frameLen < 0 || uint64(frameLen) > c.in.Cap() {
		c.in.Reset()
		return nil, fmt.Errorf("frame length %d out of range: %w", frameLen, errs.MalformedPacket)
	}

	body, err := c.in.Peek(0, uint64(frameLen))
	if err != nil {
		c.in.Rewind(mark)
		return nil, errs.IncompleteFrame
	}
	bodyCopy := make([]byte, len(body))
	copy(bodyCopy, body)
	c.in.Advance(uint64(frameLen))

	frame := ringbuf.FromBytes(bodyCopy)

	var idPayload []byte
	if !c.compressionEnabled {
		idPayload = bodyCopy
	} else {
		dataLen, err := ringbuf.ReadVarInt(frame)
		if err != nil {
			return nil, fmt.Errorf("read data_length: %w", err)
		}
		rest := bodyCopy[frame.Mark():]
		if dataLen == 0 {
			idPayload = rest
		} else {
			r, err := zlib.NewReader(bytes.NewReader(rest))
			if err != nil {
				return nil, fmt.Errorf("zlib init: %w", errs.MalformedPacket)
			}
			defer r.Close()
			decompressed := make([]byte, dataLen)
			if _, err := io.ReadFull(r, decompressed); err != nil {
				return nil, fmt.Errorf("zlib inflate: %w", errs.MalformedPacket)
			}
			idPayload = decompressed
		}
	}

	payloadReader := ringbuf.FromBytes(idPayload)
	id, err := ringbuf.ReadVarInt(payloadReader)
	if err != nil {
		return nil, fmt.Errorf("read packet id: %w", err)
	}
	rest := idPayload[payloadReader.Mark():]
	payload := make([]byte, len(rest))
	copy(payload, rest)

	return &WirePacket{State: c.state, PacketID: id, Payload: payload}, nil
}

// WritePacket builds an outbound frame and writes it to the
// socket: VarInt length | id | payload, optionally zlib-compressed once
// threshold >= 0 and id+payload is at least the threshold.
func (c *Connection) WritePacket(id int32, payload []byte) error {
	var idPayload bytes.Buffer
	if err := ringbuf.WriteVarInt(&idPayload, id); err != nil {
		return err
	}
	idPayload.Write(payload)

	var frame bytes.Buffer
	if !c.compressionEnabled {
		if err := ringbuf.WriteVarInt(&frame, int32(idPayload.Len())); err != nil {
			return err
		}
		frame.Write(idPayload.Bytes())
	} else if idPayload.Len() < c.compressionThreshold {
		if err := ringbuf.WriteVarInt(&frame, 0); err != nil { // data_length = 0 = uncompressed
			return err
		}
		frame.Write(idPayload.Bytes())

		var outer bytes.Buffer
		if err := ringbuf.WriteVarInt(&outer, int32(frame.Len())); err != nil {
			return err
		}
		outer.Write(frame.Bytes())
		frame = outer
	} else {
		var compressed bytes.Buffer
		zw := zlib.NewWriter(&compressed)
		if _, err := zw.Write(idPayload.Bytes()); err != nil {
			return err
		}
		if err := zw.Close(); err != nil {
			return err
		}

		var body bytes.Buffer
		if err := ringbuf.WriteVarInt(&body, int32(idPayload.Len())); err != nil {
			return err
		}
		body.Write(compressed.Bytes())

		if err := ringbuf.WriteVarInt(&frame, int32(body.Len())); err != nil {
			return err
		}
		frame.Write(body.Bytes())
	}

	_, err := c.conn.Write(frame.Bytes())
	if err != nil {
		return fmt.Errorf("socket write: %w", errs.SocketError)
	}
	return nil
}

// SendHandshake writes the initial Handshake packet (id 0x00).
func (c *Connection) SendHandshake(intent HandshakeIntent, protocolVersion int32, host string, port uint16) error {
	var buf bytes.Buffer
	if err := ringbuf.WriteVarInt(&buf, protocolVersion); err != nil {
		return err
	}
	if err := ringbuf.WriteString(&buf, host); err != nil {
		return err
	}
	if err := ringbuf.WriteUint16(&buf, port); err != nil {
		return err
	}
	if err := ringbuf.WriteVarInt(&buf, int32(intent)); err != nil {
		return err
	}
	return c.WritePacket(0x00, buf.Bytes())
}
