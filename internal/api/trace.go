package api

import (
	"fmt"
	"io"

	"github.com/jcoene/lzss/internal/compression/algorithms/lzss"
)

// newTraceLogger writes one line per decoder event, tagged with the upload name.
func newTraceLogger(w io.Writer, name string) lzss.Tracer {
	return lzss.TraceFunc(func(e lzss.Event) {
		switch e.Kind {
		case lzss.EventCommand:
			fmt.Fprintf(w, "[LZSS] %s %d: cmdByte = %x\n", name, e.Output, e.Command)
		case lzss.EventLiteral:
			fmt.Fprintf(w, "[LZSS] %s %d: copy %x\n", name, e.Output, e.Literal)
		case lzss.EventMatch:
			fmt.Fprintf(w, "[LZSS] %s %d: position = %d, count = %d, source = %d\n", name, e.Output, e.Position, e.Length, e.Source)
		case lzss.EventEnd:
			fmt.Fprintf(w, "[LZSS] %s %d: end of stream at input offset %d\n", name, e.Output, e.Input)
		}
	})
}
