package wire

import "math"

// These thin wrappers exist so reader.go and writer.go don't need to
// import math directly; math.Float{32,64}{from,}bits preserve the bit
// pattern exactly, including NaN payloads, which the wire format
// requires (spec.md §9 "Float NaN").

func uint32ToFloat32(v uint32) float32 { return math.Float32frombits(v) }
func uint64ToFloat64(v uint64) float64 { return math.Float64frombits(v) }

func float32ToUint32(f float32) uint32 { return math.Float32bits(f) }
func float64ToUint64(f float64) uint64 { return math.Float64bits(f) }
