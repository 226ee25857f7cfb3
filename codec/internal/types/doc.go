// Package types defines the compiled type structures executed by the codec.
//
// A CompiledType is built once per Go type and cached by the compiler. It
// pairs the type's resolved plan with the Go field indexes the plan binds
// to, so encoding and decoding never consult struct tags or plans by name.
//
// # Key Types
//
//   - CompiledType: cached type metadata with the static encoded size
//   - Kind: type discriminator (primitive, list, map, struct, enum, ...)
//
// This package is internal to the codec.
package types
