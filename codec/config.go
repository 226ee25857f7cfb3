package codec

// Safety limits applied while decoding untrusted input.
const (
	MaxStringSize = 1 << 30 // 1 GB max string or byte string
	MaxListLength = 1 << 27 // 128M max elements in a list or map
)

// Config tunes the codec engine. A nil *Config means DefaultConfig.
type Config struct {
	// ZeroCopyStrings decodes every string as a view of the input instead of
	// only fields marked `borrow`. The input must then outlive the value and
	// must not be modified.
	ZeroCopyStrings bool

	// MaxStringSize caps the decoded length of strings and byte strings.
	// Zero means the package default.
	MaxStringSize int

	// MaxListLength caps decoded element counts of lists and maps.
	// Zero means the package default.
	MaxListLength int
}

// DefaultConfig returns the configuration used by NewCompiler.
func DefaultConfig() *Config {
	return &Config{
		MaxStringSize: MaxStringSize,
		MaxListLength: MaxListLength,
	}
}

func (c *Config) normalized() *Config {
	if c == nil {
		return DefaultConfig()
	}
	out := *c
	if out.MaxStringSize <= 0 {
		out.MaxStringSize = MaxStringSize
	}
	if out.MaxListLength <= 0 {
		out.MaxListLength = MaxListLength
	}
	return &out
}
