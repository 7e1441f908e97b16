package instrument

import "strconv"

// ValueKind identifies the wire type of a Value. Registries use it to
// detect type mismatches between registrations of the same key name.
type ValueKind string

const (
	KindInt64   ValueKind = "int64"
	KindFloat64 ValueKind = "float64"
	KindString  ValueKind = "string"
	KindLight   ValueKind = "trafficlight"
	KindSummary ValueKind = "summary"
)

func (k ValueKind) String() string { return string(k) }

// Value is the opaque wire value a registry stores under a key.
// The library never interprets values after encoding; how they are
// formatted or exported is entirely the registry's concern.
type Value interface {
	Kind() ValueKind
	String() string
}

// Encoder converts an instrument's measurement type into the registry's
// wire value. Encoders are selected explicitly at construction; the
// library never resolves one implicitly from the value type.
type Encoder[T any] func(T) Value

// Int64Value is the wire form of integer measurements (counts, deltas).
type Int64Value int64

func (Int64Value) Kind() ValueKind  { return KindInt64 }
func (v Int64Value) String() string { return strconv.FormatInt(int64(v), 10) }

// Float64Value is the wire form of floating-point measurements.
type Float64Value float64

func (Float64Value) Kind() ValueKind  { return KindFloat64 }
func (v Float64Value) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// StringValue is the wire form of free-form gauge values.
type StringValue string

func (StringValue) Kind() ValueKind  { return KindString }
func (v StringValue) String() string { return string(v) }

// EncodeInt64 encodes an int64 measurement as Int64Value.
func EncodeInt64(v int64) Value { return Int64Value(v) }

// EncodeFloat64 encodes a float64 measurement as Float64Value.
func EncodeFloat64(v float64) Value { return Float64Value(v) }

// EncodeString encodes a string measurement as StringValue.
func EncodeString(v string) Value { return StringValue(v) }
