// Package errors provides the error model of rawcodec.
//
// Every failure carries a Code with a stable, explicitly assigned wire
// ordinal. The Error type adds the Phase where it happened, the field path,
// a detail message and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.CodeInvalidFormat).
//		Path("user", "age").
//		GoType("uint8").
//		Detail("value %d out of range", v).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfLimit(errors.PhaseEncode, path, need, len(buf))
//	err := errors.Truncated(errors.PhaseDecode, path, 8, len(buf))
//
// # Wire form
//
// An Error encodes as its code (uvarint ordinal, plus a big-endian uint16
// for MetaError and DecError), the length-prefixed message and a
// presence-tagged Origin. The Origin is a lossy downgrade of the cause:
// numeric codes survive, everything else travels as text. Decoding an
// unknown ordinal fails with CodeNotSupport.
//
// I/O failures from the os, io and net packages are classified with
// FromError, one code per failure category.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
