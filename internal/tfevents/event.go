package tfevents

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of tensorflow.Event, Summary, Summary.Value, SummaryMetadata,
// TensorProto and TensorShapeProto.
const (
	eventWallTime = 1
	eventStep     = 2
	eventSummary  = 5

	summaryValue = 1

	valueTag         = 1
	valueSimpleValue = 2
	valueTensor      = 8
	valueMetadata    = 9

	metadataPluginData = 1
	pluginName         = 1

	tensorDtype   = 1
	tensorShape   = 2
	tensorContent = 4
	tensorFloat   = 5
	tensorDouble  = 6
	tensorInt     = 7
	tensorInt64   = 10

	shapeDim         = 2
	shapeUnknownRank = 3
	dimSize          = 1
)

// TensorProto data types that hold scalars.
const (
	dtFloat  = 1
	dtDouble = 2
	dtInt32  = 3
	dtInt64  = 9
)

// scalarsPlugin is the plugin name TensorBoard gives scalar summaries. Values
// of any other plugin (histograms, images, text) are not scalars even when
// their tensor is numeric.
const scalarsPlugin = "scalars"

// Scalar is one numeric summary value.
type Scalar struct {
	Tag      string
	Step     int64
	WallTime float64
	Value    float64
}

// ReadScalars reads an event file and returns every scalar summary value in
// file order. Values that are not scalars (images, histograms) are skipped.
func ReadScalars(r io.Reader) ([]Scalar, error) {
	records := NewRecordReader(r)
	var scalars []Scalar
	for {
		payload, err := records.Next()
		if errors.Is(err, io.EOF) {
			return scalars, nil
		}
		if err != nil {
			return nil, err
		}
		event, err := DecodeEvent(payload)
		if err != nil {
			return nil, err
		}
		scalars = append(scalars, event...)
	}
}

// DecodeEvent returns the scalar values of one serialized tensorflow.Event.
func DecodeEvent(b []byte) ([]Scalar, error) {
	var (
		wallTime  float64
		step      int64
		summaries [][]byte
	)
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte, u uint64) error {
		switch {
		case num == eventWallTime && typ == protowire.Fixed64Type:
			wallTime = math.Float64frombits(u)
		case num == eventStep && typ == protowire.VarintType:
			step = int64(u)
		case num == eventSummary && typ == protowire.BytesType:
			summaries = append(summaries, v)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("event: %w", err)
	}

	var scalars []Scalar
	for _, summary := range summaries {
		err := walkFields(summary, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
			if num != summaryValue || typ != protowire.BytesType {
				return nil
			}
			tag, value, ok, err := decodeValue(v)
			if err != nil {
				return err
			}
			if ok {
				scalars = append(scalars, Scalar{Tag: tag, Step: step, WallTime: wallTime, Value: value})
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("summary: %w", err)
		}
	}
	return scalars, nil
}

func decodeValue(b []byte) (tag string, value float64, ok bool, err error) {
	var (
		tensor []byte
		plugin string
	)
	err = walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte, u uint64) error {
		switch {
		case num == valueTag && typ == protowire.BytesType:
			tag = string(v)
		case num == valueSimpleValue && typ == protowire.Fixed32Type:
			value, ok = float64(math.Float32frombits(uint32(u))), true
		case num == valueTensor && typ == protowire.BytesType:
			tensor = v
		case num == valueMetadata && typ == protowire.BytesType:
			var metadataErr error
			plugin, metadataErr = decodePluginName(v)
			return metadataErr
		}
		return nil
	})
	if err != nil || ok || tensor == nil {
		return tag, value, ok, err
	}
	if plugin != "" && plugin != scalarsPlugin {
		return tag, 0, false, nil
	}
	value, ok, err = decodeScalarTensor(tensor)
	return tag, value, ok, err
}

func decodePluginName(b []byte) (string, error) {
	var name string
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
		if num != metadataPluginData || typ != protowire.BytesType {
			return nil
		}
		return walkFields(v, func(num protowire.Number, typ protowire.Type, v []byte, _ uint64) error {
			if num == pluginName && typ == protowire.BytesType {
				name = string(v)
			}
			return nil
		})
	})
	return name, err
}

// decodeScalarTensor returns the value of a numeric TensorProto holding
// exactly one element. A missing shape is rank 0.
func decodeScalarTensor(b []byte) (float64, bool, error) {
	var (
		dtype   uint64
		content []byte
		values  []float64
		scalar  = true
	)
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte, u uint64) error {
		switch num {
		case tensorDtype:
			dtype = u
		case tensorShape:
			var err error
			scalar, err = isScalarShape(v)
			return err
		case tensorContent:
			content = v
		case tensorFloat:
			return appendRepeated(&values, typ, v, u, protowire.Fixed32Type, func(x uint64) float64 {
				return float64(math.Float32frombits(uint32(x)))
			})
		case tensorDouble:
			return appendRepeated(&values, typ, v, u, protowire.Fixed64Type, math.Float64frombits)
		case tensorInt:
			return appendRepeated(&values, typ, v, u, protowire.VarintType, func(x uint64) float64 {
				return float64(int32(x))
			})
		case tensorInt64:
			return appendRepeated(&values, typ, v, u, protowire.VarintType, func(x uint64) float64 {
				return float64(int64(x))
			})
		}
		return nil
	})
	if err != nil || !scalar {
		return 0, false, err
	}
	switch {
	case len(values) == 1 && content == nil:
		return values[0], true, nil
	case len(values) == 0:
		return decodeContent(dtype, content)
	}
	return 0, false, nil
}

// isScalarShape reports whether a TensorShapeProto holds exactly one element:
// rank 0, or every dimension of size 1.
func isScalarShape(b []byte) (bool, error) {
	scalar := true
	err := walkFields(b, func(num protowire.Number, typ protowire.Type, v []byte, u uint64) error {
		switch {
		case num == shapeUnknownRank && typ == protowire.VarintType && u != 0:
			scalar = false
		case num == shapeDim && typ == protowire.BytesType:
			var size int64
			if err := walkFields(v, func(num protowire.Number, typ protowire.Type, _ []byte, u uint64) error {
				if num == dimSize && typ == protowire.VarintType {
					size = int64(u)
				}
				return nil
			}); err != nil {
				return err
			}
			if size != 1 {
				scalar = false
			}
		}
		return nil
	})
	return scalar, err
}

// decodeContent reads tensor_content, which must hold exactly one element of
// dtype. Tensors without a dtype are taken as float or double by size.
func decodeContent(dtype uint64, content []byte) (float64, bool, error) {
	switch {
	case (dtype == dtFloat || dtype == 0) && len(content) == 4:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(content))), true, nil
	case (dtype == dtDouble || dtype == 0) && len(content) == 8:
		return math.Float64frombits(binary.LittleEndian.Uint64(content)), true, nil
	case dtype == dtInt32 && len(content) == 4:
		return float64(int32(binary.LittleEndian.Uint32(content))), true, nil
	case dtype == dtInt64 && len(content) == 8:
		return float64(int64(binary.LittleEndian.Uint64(content))), true, nil
	}
	return 0, false, nil
}

// appendRepeated decodes a repeated numeric field in either packed or
// unpacked encoding.
func appendRepeated(values *[]float64, typ protowire.Type, v []byte, u uint64, elemType protowire.Type, convert func(uint64) float64) error {
	if typ == elemType {
		*values = append(*values, convert(u))
		return nil
	}
	if typ != protowire.BytesType {
		return nil
	}
	for len(v) > 0 {
		var x uint64
		var n int
		switch elemType {
		case protowire.Fixed32Type:
			var x32 uint32
			x32, n = protowire.ConsumeFixed32(v)
			x = uint64(x32)
		case protowire.Fixed64Type:
			x, n = protowire.ConsumeFixed64(v)
		default:
			x, n = protowire.ConsumeVarint(v)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		*values = append(*values, convert(x))
		v = v[n:]
	}
	return nil
}

// walkFields calls fn for every field of a message. Length delimited fields
// are passed as v, all other wire types as u.
func walkFields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte, u uint64) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var (
			v []byte
			u uint64
		)
		switch typ {
		case protowire.VarintType:
			u, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var u32 uint32
			u32, n = protowire.ConsumeFixed32(b)
			u = uint64(u32)
		case protowire.Fixed64Type:
			u, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			v, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		if err := fn(num, typ, v, u); err != nil {
			return err
		}
	}
	return nil
}
