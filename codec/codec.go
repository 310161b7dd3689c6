// Package codec encodes the element values of container snapshots.
//
// Snapshots record the name of the codec that wrote them. A decoder either
// names its codec explicitly, which must match, or resolves the recorded name
// with ByName.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Appender is implemented by codecs that can encode directly onto a buffer.
type Appender interface {
	Append(dst []byte, v any) ([]byte, error)
}

// Append encodes v with c and appends the result to dst. A nil c selects
// Default.
func Append(c Codec, dst []byte, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	if a, ok := c.(Appender); ok {
		return a.Append(dst, v)
	}
	b, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(dst, b...), nil
}

// ByName returns a built-in codec by the name it records in snapshots.
func ByName(name string) (Codec, bool) {
	switch name {
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is Marshal for values known to be encodable; it panics on error.
func MustMarshal(c Codec, v any) []byte {
	b, err := Append(c, nil, v)
	if err != nil {
		if c == nil {
			c = Default
		}
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
