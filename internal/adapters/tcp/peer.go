package tcp

import (
	"fmt"
	"net"
)

// Request is one inbound client message as seen by the remote side.
type Request struct {
	Type MessageType

	// Fn and Args are set for sync and async requests.
	Fn   string
	Args []any

	// Credentials is set for login requests.
	Credentials string
}

// Peer is the remote-process side of a tcp connection. It is what a data
// process (or a test double of one) uses to answer a Dialer's handles.
type Peer struct {
	conn   net.Conn
	framer *framer
}

// NewPeer wraps an accepted connection.
func NewPeer(conn net.Conn, maxSize uint32) *Peer {
	return &Peer{conn: conn, framer: newFramer(conn, maxSize)}
}

// ReadRequest blocks for the next client message.
func (p *Peer) ReadRequest() (Request, error) {
	payload, err := p.framer.readFrame()
	if err != nil {
		return Request{}, err
	}
	t, body, err := decodeMessage(payload)
	if err != nil {
		return Request{Type: t}, fmt.Errorf("decode %s request: %w", t, err)
	}

	req := Request{Type: t}
	switch t {
	case MsgLogin:
		req.Credentials, _ = body.(string)
	case MsgSync, MsgAsync:
		parts, ok := body.([]any)
		if !ok || len(parts) == 0 {
			return req, fmt.Errorf("malformed %s request: %T", t, body)
		}
		if req.Fn, ok = parts[0].(string); !ok {
			return req, fmt.Errorf("malformed %s request: function is %T", t, parts[0])
		}
		req.Args = parts[1:]
	default:
		return req, fmt.Errorf("unexpected %s frame from client", t)
	}
	return req, nil
}

// Respond answers the pending sync request or login.
func (p *Peer) Respond(v any) error {
	return p.write(MsgResponse, v)
}

// RespondError rejects the pending sync request or login.
func (p *Peer) RespondError(msg string) error {
	return p.write(MsgError, msg)
}

// Publish pushes an asynchronous message, for example an update triple.
func (p *Peer) Publish(fn string, args ...any) error {
	return p.write(MsgAsync, request(fn, args))
}

// WriteRaw writes a frame payload as-is.
func (p *Peer) WriteRaw(payload []byte) error {
	return p.framer.writeFrame(payload)
}

// Close closes the connection.
func (p *Peer) Close() error {
	return p.conn.Close()
}

func (p *Peer) write(t MessageType, body any) error {
	payload, err := encodeMessage(t, body)
	if err != nil {
		return err
	}
	return p.framer.writeFrame(payload)
}
