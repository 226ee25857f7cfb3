package types

type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindS8
	KindU16
	KindS16
	KindU32
	KindS32
	KindU64
	KindS64
	KindF32
	KindF64
	KindString
	KindBytes
	KindSlice
	KindArray
	KindMap
	KindOption
	KindStruct
	KindTuple
	KindUnit
	KindEnum
	KindIdentifier
	KindCustom
)

var kindNames = [...]string{
	KindBool:       "bool",
	KindU8:         "u8",
	KindS8:         "s8",
	KindU16:        "u16",
	KindS16:        "s16",
	KindU32:        "u32",
	KindS32:        "s32",
	KindU64:        "u64",
	KindS64:        "s64",
	KindF32:        "f32",
	KindF64:        "f64",
	KindString:     "string",
	KindBytes:      "bytes",
	KindSlice:      "list",
	KindArray:      "array",
	KindMap:        "map",
	KindOption:     "option",
	KindStruct:     "struct",
	KindTuple:      "tuple",
	KindUnit:       "unit",
	KindEnum:       "enum",
	KindIdentifier: "identifier",
	KindCustom:     "custom",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

func (k Kind) IsPrimitive() bool {
	return k <= KindF64
}

// FixedSize returns the encoded size of a primitive kind, or 0 for kinds
// whose size depends on the value.
func (k Kind) FixedSize() int {
	switch k {
	case KindBool, KindU8, KindS8:
		return 1
	case KindU16, KindS16:
		return 2
	case KindU32, KindS32, KindF32:
		return 4
	case KindU64, KindS64, KindF64:
		return 8
	default:
		return 0
	}
}
