package codec

import (
	"encoding/json"
)

// JSON encodes with encoding/json.
//
// Any host that can parse JSON can read the value section of a snapshot
// written with it.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns "json".
func (JSON) Name() string { return "json" }

// Default is the codec used by encoders given a nil Codec.
var Default Codec = GoJSON{}
