package nativehost

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Spec §8 item 6: for any byte sequence framed as u32 LE || payload,
// ReadFrame returns exactly that payload's bytes.
func TestReadFrameRoundTrips(t *testing.T) {
	payload := []byte(`{"type":"PONG"}`)
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, payload))

	got, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadFrameShortPrefixIsEOF(t *testing.T) {
	buf := bytes.NewReader([]byte{0x01, 0x02})
	_, err := ReadFrame(buf)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	_ = WriteFrame(&buf, nil)
	data := buf.Bytes()
	data[0], data[1], data[2], data[3] = 0xFF, 0xFF, 0xFF, 0xFF
	_, err := ReadFrame(bytes.NewReader(data))
	assert.Error(t, err)
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, StopMonitoringMessage{Type: "STOP_MONITORING"}))
	frame, err := ReadFrame(&buf)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"STOP_MONITORING"}`, string(frame))
}
