package lzss

// EventKind identifies what the decoder just did.
type EventKind int

const (
	EventCommand EventKind = iota
	EventLiteral
	EventMatch
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventLiteral:
		return "literal"
	case EventMatch:
		return "match"
	case EventEnd:
		return "end"
	}
	return "unknown"
}

// Event describes one decoder step. Output is the number of bytes written before the step,
// Input the offset of the step's first byte within the token stream.
type Event struct {
	Kind   EventKind
	Input  int
	Output int

	Command  byte // EventCommand
	Literal  byte // EventLiteral
	Position int  // EventMatch
	Length   int  // EventMatch
	Source   int  // EventMatch, index into the output
}

// Tracer receives decoder events. Decoding behaves identically with or without one.
type Tracer interface {
	Trace(Event)
}

// TraceFunc adapts a function to Tracer.
type TraceFunc func(Event)

func (f TraceFunc) Trace(e Event) { f(e) }

// Options configures Decode and Uncompress.
type Options struct {
	Tracer Tracer
}

// DefaultOptions returns options with tracing disabled.
func DefaultOptions() *Options {
	return &Options{}
}
