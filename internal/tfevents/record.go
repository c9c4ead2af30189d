package tfevents

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

const (
	maskDelta = 0xa282ead8
	// MaxRecordLength bounds the payload of one record.
	MaxRecordLength = 256 << 20
)

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

var ErrCorruptRecord = errors.New("corrupt record")

func maskedCRC(b []byte) uint32 {
	crc := crc32.Checksum(b, castagnoli)
	return ((crc >> 15) | (crc << 17)) + maskDelta
}

// RecordReader reads TFRecord framed payloads:
// uint64 length, uint32 masked crc of length, payload, uint32 masked crc of payload.
type RecordReader struct {
	r *bufio.Reader
}

func NewRecordReader(r io.Reader) *RecordReader {
	return &RecordReader{r: bufio.NewReader(r)}
}

// Next returns the next payload, or io.EOF once the stream ends on a record
// boundary.
func (rr *RecordReader) Next() ([]byte, error) {
	var header [12]byte
	if _, err := io.ReadFull(rr.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: truncated header", ErrCorruptRecord)
	}
	if binary.LittleEndian.Uint32(header[8:]) != maskedCRC(header[:8]) {
		return nil, fmt.Errorf("%w: length checksum mismatch", ErrCorruptRecord)
	}
	length := binary.LittleEndian.Uint64(header[:8])
	if length > MaxRecordLength {
		return nil, fmt.Errorf("%w: length %d exceeds %d", ErrCorruptRecord, length, MaxRecordLength)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(rr.r, payload); err != nil {
		return nil, fmt.Errorf("%w: truncated payload", ErrCorruptRecord)
	}
	var footer [4]byte
	if _, err := io.ReadFull(rr.r, footer[:]); err != nil {
		return nil, fmt.Errorf("%w: truncated footer", ErrCorruptRecord)
	}
	if binary.LittleEndian.Uint32(footer[:]) != maskedCRC(payload) {
		return nil, fmt.Errorf("%w: payload checksum mismatch", ErrCorruptRecord)
	}
	return payload, nil
}

// WriteRecord frames payload as one TFRecord.
func WriteRecord(w io.Writer, payload []byte) error {
	var header [12]byte
	binary.LittleEndian.PutUint64(header[:8], uint64(len(payload)))
	binary.LittleEndian.PutUint32(header[8:], maskedCRC(header[:8]))
	var footer [4]byte
	binary.LittleEndian.PutUint32(footer[:], maskedCRC(payload))
	for _, b := range [][]byte{header[:], payload, footer[:]} {
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}
