// Package nativehost implements the Chromium native-messaging host: a
// long-lived process attached to the browser extension over stdio,
// mediating between it and the agent via three state files in a known
// runtime directory (spec §4.5/§6).
package nativehost

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrameBytes bounds a single frame's payload at 64MB, a generous
// ceiling against a corrupt or hostile length prefix on an otherwise
// untrusted, length-prefixed read.
const maxFrameBytes = 64 * 1024 * 1024

// ReadFrame reads one length-prefixed JSON frame: a little-endian u32
// byte count followed by that many UTF-8 JSON bytes, per spec §6. A
// short length prefix (including a clean io.EOF) is returned verbatim
// so the caller can distinguish "extension disconnected" from a
// framing violation.
func ReadFrame(r io.Reader) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(lenBuf[:])
	if n > maxFrameBytes {
		return nil, fmt.Errorf("nativehost: frame length %d exceeds %d byte limit", n, maxFrameBytes)
	}

	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("nativehost: short frame body: %w", err)
	}
	return payload, nil
}

// WriteFrame writes payload as one length-prefixed frame, per spec §6.
// Both directions of the protocol are symmetric, so the host uses this
// both to emit responses and (in tests) to synthesize extension input.
func WriteFrame(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// WriteJSON marshals v and writes it as one frame.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return WriteFrame(w, data)
}
