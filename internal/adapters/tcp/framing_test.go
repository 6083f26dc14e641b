package tcp

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramingRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	f := newFramer(&buf, 0)

	require.NoError(t, f.writeFrame([]byte("hello")))
	require.NoError(t, f.writeFrame([]byte{1}))

	got, err := f.readFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = f.readFrame()
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, got)

	_, err = f.readFrame()
	assert.ErrorIs(t, err, io.EOF)
}

func TestFramingLimits(t *testing.T) {
	var buf bytes.Buffer
	f := newFramer(&buf, 4)

	assert.ErrorIs(t, f.writeFrame(nil), ErrMessageEmpty)
	assert.ErrorIs(t, f.writeFrame([]byte("too long")), ErrMessageTooLarge)

	var hdr [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], 100)
	r := newFramer(bytes.NewBuffer(hdr[:]), 4)
	_, err := r.readFrame()
	assert.ErrorIs(t, err, ErrMessageTooLarge)

	binary.BigEndian.PutUint32(hdr[:], 0)
	r = newFramer(bytes.NewBuffer(hdr[:]), 4)
	_, err = r.readFrame()
	assert.ErrorIs(t, err, ErrMessageEmpty)
}

func TestFramingTruncated(t *testing.T) {
	var hdr [LengthPrefixSize]byte
	binary.BigEndian.PutUint32(hdr[:], 3)
	r := newFramer(bytes.NewBuffer(append(hdr[:], 'a')), 0)
	_, err := r.readFrame()
	assert.ErrorIs(t, err, ErrFrameTruncated)

	r = newFramer(bytes.NewBuffer([]byte{0, 0}), 0)
	_, err = r.readFrame()
	assert.ErrorIs(t, err, ErrFrameTruncated)
}
