package tfevents

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, []byte("first")))
	require.NoError(t, WriteRecord(&buf, nil))

	reader := NewRecordReader(&buf)
	payload, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", string(payload))
	payload, err = reader.Next()
	require.NoError(t, err)
	assert.Empty(t, payload)
	_, err = reader.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestRecordCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, []byte("payload")))
	data := buf.Bytes()

	t.Run("payload checksum", func(t *testing.T) {
		corrupt := bytes.Clone(data)
		corrupt[13] ^= 0xff
		_, err := NewRecordReader(bytes.NewReader(corrupt)).Next()
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})
	t.Run("length checksum", func(t *testing.T) {
		corrupt := bytes.Clone(data)
		corrupt[0] ^= 0x01
		_, err := NewRecordReader(bytes.NewReader(corrupt)).Next()
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})
	t.Run("oversized length", func(t *testing.T) {
		for _, length := range []uint64{1 << 62, MaxRecordLength + 1} {
			var header [12]byte
			binary.LittleEndian.PutUint64(header[:8], length)
			binary.LittleEndian.PutUint32(header[8:], maskedCRC(header[:8]))
			_, err := NewRecordReader(bytes.NewReader(header[:])).Next()
			assert.ErrorIs(t, err, ErrCorruptRecord)
		}
	})
	t.Run("truncated", func(t *testing.T) {
		_, err := NewRecordReader(bytes.NewReader(data[:len(data)-2])).Next()
		assert.ErrorIs(t, err, ErrCorruptRecord)
	})
}

func TestReadScalars(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteScalar("loss", 1, 1700000000.5, 0.75))
	require.NoError(t, w.WriteTensorScalar("accuracy", 2, 1700000001, 0.5))
	require.NoError(t, w.WriteScalar("loss", 2, 1700000001, 0.25))

	scalars, err := ReadScalars(&buf)
	require.NoError(t, err)
	assert.Equal(t, []Scalar{
		{Tag: "loss", Step: 1, WallTime: 1700000000.5, Value: 0.75},
		{Tag: "accuracy", Step: 2, WallTime: 1700000001, Value: 0.5},
		{Tag: "loss", Step: 2, WallTime: 1700000001, Value: 0.25},
	}, scalars)
}

func tensorValue(tag string, tensor []byte) []byte {
	var v []byte
	v = protowire.AppendTag(v, valueTag, protowire.BytesType)
	v = protowire.AppendString(v, tag)
	v = protowire.AppendTag(v, valueTensor, protowire.BytesType)
	return protowire.AppendBytes(v, tensor)
}

func TestDecodeTensorEncodings(t *testing.T) {
	content := make([]byte, 4)
	binary.LittleEndian.PutUint32(content, math.Float32bits(1.5))

	tests := []struct {
		name     string
		tensor   []byte
		expected float64
		ok       bool
	}{
		{
			name: "float tensor content",
			tensor: protowire.AppendBytes(
				protowire.AppendTag(protowire.AppendVarint(protowire.AppendTag(nil, tensorDtype, protowire.VarintType), dtFloat), tensorContent, protowire.BytesType),
				content,
			),
			expected: 1.5,
			ok:       true,
		},
		{
			name:     "unpacked int64",
			tensor:   protowire.AppendVarint(protowire.AppendTag(nil, tensorInt64, protowire.VarintType), 42),
			expected: 42,
			ok:       true,
		},
		{
			name:     "packed float",
			tensor:   protowire.AppendBytes(protowire.AppendTag(nil, tensorFloat, protowire.BytesType), protowire.AppendFixed32(nil, math.Float32bits(2.5))),
			expected: 2.5,
			ok:       true,
		},
		{
			name:   "string tensor",
			tensor: protowire.AppendBytes(protowire.AppendTag(nil, 8, protowire.BytesType), []byte("text")),
			ok:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scalars, err := DecodeEvent(encodeEvent(3, 0, tensorValue("metric", tt.tensor)))
			require.NoError(t, err)
			if !tt.ok {
				assert.Empty(t, scalars)
				return
			}
			require.Len(t, scalars, 1)
			assert.Equal(t, tt.expected, scalars[0].Value)
			assert.Equal(t, int64(3), scalars[0].Step)
		})
	}
}

func TestDecodeEventMalformed(t *testing.T) {
	_, err := DecodeEvent([]byte{0x2a, 0x05, 0x01})
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRecord(&buf, []byte{0x2a, 0x05, 0x01}))
	_, err = ReadScalars(&buf)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, io.EOF))
}

func shapeProto(dims ...int64) []byte {
	var shape []byte
	for _, size := range dims {
		dim := protowire.AppendVarint(protowire.AppendTag(nil, dimSize, protowire.VarintType), uint64(size))
		shape = protowire.AppendBytes(protowire.AppendTag(shape, shapeDim, protowire.BytesType), dim)
	}
	return shape
}

func doubleTensor(shape []byte, values ...float64) []byte {
	var content []byte
	for _, v := range values {
		content = binary.LittleEndian.AppendUint64(content, math.Float64bits(v))
	}
	tensor := protowire.AppendVarint(protowire.AppendTag(nil, tensorDtype, protowire.VarintType), dtDouble)
	if shape != nil {
		tensor = protowire.AppendBytes(protowire.AppendTag(tensor, tensorShape, protowire.BytesType), shape)
	}
	return protowire.AppendBytes(protowire.AppendTag(tensor, tensorContent, protowire.BytesType), content)
}

func withPlugin(value []byte, plugin string) []byte {
	pluginData := protowire.AppendString(protowire.AppendTag(nil, pluginName, protowire.BytesType), plugin)
	metadata := protowire.AppendBytes(protowire.AppendTag(nil, metadataPluginData, protowire.BytesType), pluginData)
	return protowire.AppendBytes(protowire.AppendTag(value, valueMetadata, protowire.BytesType), metadata)
}

func TestDecodeSkipsNonScalarTensors(t *testing.T) {
	floatContent := protowire.AppendBytes(
		protowire.AppendTag(protowire.AppendVarint(protowire.AppendTag(nil, tensorDtype, protowire.VarintType), dtFloat), tensorContent, protowire.BytesType),
		binary.LittleEndian.AppendUint64(nil, math.Float64bits(1)),
	)

	tests := []struct {
		name     string
		value    []byte
		expected []float64
	}{
		{
			name:  "histogram buckets",
			value: tensorValue("weights/histogram", doubleTensor(shapeProto(2, 3), -1, 0, 3, 0, 1, 5)),
		},
		{
			name:  "empty vector",
			value: tensorValue("empty", doubleTensor(shapeProto(0))),
		},
		{
			name:  "content longer than one float",
			value: tensorValue("float", floatContent),
		},
		{
			name:  "histogram plugin",
			value: withPlugin(tensorValue("weights", doubleTensor(nil, 2)), "histograms"),
		},
		{
			name:     "one element vector",
			value:    tensorValue("loss", doubleTensor(shapeProto(1), 0.5)),
			expected: []float64{0.5},
		},
		{
			name:     "scalars plugin",
			value:    withPlugin(tensorValue("loss", doubleTensor(nil, 0.25)), scalarsPlugin),
			expected: []float64{0.25},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scalars, err := DecodeEvent(encodeEvent(1, 0, tt.value))
			require.NoError(t, err)
			values := make([]float64, 0, len(scalars))
			for _, s := range scalars {
				values = append(values, s.Value)
			}
			if tt.expected == nil {
				assert.Empty(t, values)
				return
			}
			assert.Equal(t, tt.expected, values)
		})
	}
}
