package tfevents

import (
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Writer writes scalar summaries as an event file. It produces the same
// framing TensorBoard writers do and is used to build fixtures.
type Writer struct {
	w io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteScalar writes one event holding a simple_value summary.
func (w *Writer) WriteScalar(tag string, step int64, wallTime float64, value float32) error {
	var v []byte
	v = protowire.AppendTag(v, valueTag, protowire.BytesType)
	v = protowire.AppendString(v, tag)
	v = protowire.AppendTag(v, valueSimpleValue, protowire.Fixed32Type)
	v = protowire.AppendFixed32(v, math.Float32bits(value))
	return WriteRecord(w.w, encodeEvent(step, wallTime, v))
}

// WriteTensorScalar writes one event holding a double scalar tensor, the
// encoding of summaries written with tf.summary in TF2.
func (w *Writer) WriteTensorScalar(tag string, step int64, wallTime float64, value float64) error {
	var tensor []byte
	tensor = protowire.AppendTag(tensor, tensorDtype, protowire.VarintType)
	tensor = protowire.AppendVarint(tensor, dtDouble)
	tensor = protowire.AppendTag(tensor, tensorDouble, protowire.BytesType)
	tensor = protowire.AppendBytes(tensor, protowire.AppendFixed64(nil, math.Float64bits(value)))

	var v []byte
	v = protowire.AppendTag(v, valueTag, protowire.BytesType)
	v = protowire.AppendString(v, tag)
	v = protowire.AppendTag(v, valueTensor, protowire.BytesType)
	v = protowire.AppendBytes(v, tensor)
	return WriteRecord(w.w, encodeEvent(step, wallTime, v))
}

func encodeEvent(step int64, wallTime float64, value []byte) []byte {
	var summary []byte
	summary = protowire.AppendTag(summary, summaryValue, protowire.BytesType)
	summary = protowire.AppendBytes(summary, value)

	var event []byte
	event = protowire.AppendTag(event, eventWallTime, protowire.Fixed64Type)
	event = protowire.AppendFixed64(event, math.Float64bits(wallTime))
	event = protowire.AppendTag(event, eventStep, protowire.VarintType)
	event = protowire.AppendVarint(event, uint64(step))
	event = protowire.AppendTag(event, eventSummary, protowire.BytesType)
	event = protowire.AppendBytes(event, summary)
	return event
}
