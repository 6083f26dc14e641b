package tcp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// Framing constants.
const (
	// LengthPrefixSize is the size of the length prefix in bytes.
	LengthPrefixSize = 4

	// DefaultMaxMessageSize is the default maximum frame payload (16 MB).
	DefaultMaxMessageSize = 16 << 20
)

// Framing errors.
var (
	// ErrMessageTooLarge indicates the frame exceeds the maximum size.
	ErrMessageTooLarge = errors.New("message too large")

	// ErrMessageEmpty indicates a zero-length frame.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrFrameTruncated indicates the stream ended inside a frame.
	ErrFrameTruncated = errors.New("frame truncated")
)

// frameWriter writes length-prefixed frames. Safe for concurrent use.
type frameWriter struct {
	mu      sync.Mutex
	w       io.Writer
	maxSize uint32
}

func (fw *frameWriter) writeFrame(data []byte) error {
	if len(data) == 0 {
		return ErrMessageEmpty
	}
	if uint64(len(data)) > uint64(fw.maxSize) {
		return fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(data), fw.maxSize)
	}

	buf := make([]byte, LengthPrefixSize+len(data))
	binary.BigEndian.PutUint32(buf, uint32(len(data)))
	copy(buf[LengthPrefixSize:], data)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	if _, err := fw.w.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// frameReader reads length-prefixed frames. Not safe for concurrent use.
type frameReader struct {
	r         io.Reader
	maxSize   uint32
	lengthBuf [LengthPrefixSize]byte
}

func (fr *frameReader) readFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.lengthBuf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrFrameTruncated
		}
		return nil, err
	}

	length := binary.BigEndian.Uint32(fr.lengthBuf[:])
	if length == 0 {
		return nil, ErrMessageEmpty
	}
	if length > fr.maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, length, fr.maxSize)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, ErrFrameTruncated
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

// framer combines frame reading and writing over one stream.
type framer struct {
	frameReader
	frameWriter
}

func newFramer(rw io.ReadWriter, maxSize uint32) *framer {
	if maxSize == 0 {
		maxSize = DefaultMaxMessageSize
	}
	return &framer{
		frameReader: frameReader{r: rw, maxSize: maxSize},
		frameWriter: frameWriter{w: rw, maxSize: maxSize},
	}
}
