package lzss

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"testing"
)

func TestDecodeSentinelOnly(t *testing.T) {
	out, err := Decode([]byte{0x01, 0x00, 0x00}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("got %d bytes, want 0", len(out))
	}
}

func TestDecodeLiteralPassThrough(t *testing.T) {
	lits := []byte("ABCDEFGH")
	src := append([]byte{0x00}, lits...)
	src = append(src, 0x01, 0x00, 0x00)
	out, err := Decode(src, 8, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, lits) {
		t.Fatalf("got %q, want %q", out, lits)
	}
}

func TestDecodeOverlappingMatch(t *testing.T) {
	// literal 'A', match position 0 length 5, sentinel
	src := []byte{0x06, 'A', 0x00, 0x04, 0x00, 0x00}
	out, err := Decode(src, 6, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("AAAAAA"); !bytes.Equal(out, want) {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestDecodeOverlappingPattern(t *testing.T) {
	// "ab" then match position 1 length 6 repeats the pair
	src := []byte{0x0C, 'a', 'b', 0x00, 0x15, 0x00, 0x00}
	out, err := Decode(src, 8, nil)
	if err != nil {
		t.Fatal(err)
	}
	if want := []byte("abababab"); !bytes.Equal(out, want) {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestDecodeFarPosition(t *testing.T) {
	// a repeat 0x124 bytes back encodes position 0x123, split across both token bytes
	data := make([]byte, 0x124, 0x124+4)
	rand.New(rand.NewSource(7)).Read(data)
	data = append(data, data[0:4]...)
	enc := compressForTest(data)
	out, err := Uncompress(enc, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("round trip mismatch")
	}
}

func TestDecodeOutputOverflow(t *testing.T) {
	src := []byte{0x00, 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h', 0x01, 0x00, 0x00}
	_, err := Decode(src, 2, nil)
	if !errors.Is(err, ErrOutputOverflow) {
		t.Fatalf("err = %v, want ErrOutputOverflow", err)
	}
}

func TestDecodeMatchOverflow(t *testing.T) {
	src := []byte{0x06, 'A', 0x00, 0x0F, 0x00, 0x00}
	_, err := Decode(src, 10, nil)
	if !errors.Is(err, ErrOutputOverflow) {
		t.Fatalf("err = %v, want ErrOutputOverflow", err)
	}
}

func TestDecodeSizeMismatch(t *testing.T) {
	src := []byte{0x02, 'a', 0x00, 0x00}
	for _, size := range []uint32{0, 2, 100} {
		_, err := Decode(src, size, nil)
		wantErr := ErrSizeMismatch
		if size == 0 {
			wantErr = ErrOutputOverflow
		}
		if !errors.Is(err, wantErr) {
			t.Fatalf("size %d: err = %v, want %v", size, err, wantErr)
		}
	}
}

func TestDecodeInvalidBackReference(t *testing.T) {
	src := []byte{0x01, 0x00, 0x01, 0x00, 0x00}
	_, err := Decode(src, 2, nil)
	if !errors.Is(err, ErrInvalidBackReference) {
		t.Fatalf("err = %v, want ErrInvalidBackReference", err)
	}

	// one byte of history, position 1 reaches two back
	src = []byte{0x06, 'x', 0x00, 0x11, 0x00, 0x00}
	_, err = Decode(src, 3, nil)
	if !errors.Is(err, ErrInvalidBackReference) {
		t.Fatalf("err = %v, want ErrInvalidBackReference", err)
	}
}

func TestDecodeTruncatedInput(t *testing.T) {
	inputs := [][]byte{
		nil,
		{0x00},
		{0x00, 'a'},
		{0x01, 0x00},
		{0x00, 'a', 'b', 'c', 'd', 'e', 'f', 'g', 'h'},
	}
	for _, in := range inputs {
		if _, err := Decode(in, 8, nil); !errors.Is(err, ErrTruncatedInput) {
			t.Fatalf("Decode(% x) err = %v, want ErrTruncatedInput", in, err)
		}
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	src := []byte{0x02, 'z', 0x00, 0x00, 0xDE, 0xAD}
	out, consumed, err := DecodeBlock(src, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "z" {
		t.Fatalf("got %q", out)
	}
	if consumed != 4 {
		t.Fatalf("consumed = %d, want 4", consumed)
	}
}

func TestDecodeNeverGrowsPastDeclaredSize(t *testing.T) {
	enc := compressForTest(bytes.Repeat([]byte("q"), 200))
	out, err := Decode(enc[HeaderSize:], 200, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cap(out) != 200 {
		t.Fatalf("cap = %d, want 200", cap(out))
	}
}

func TestUncompressNotCompressed(t *testing.T) {
	_, err := Uncompress([]byte("just some bytes"), nil)
	if !errors.Is(err, ErrNotCompressed) {
		t.Fatalf("err = %v, want ErrNotCompressed", err)
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 3000)
	rng.Read(random)
	lowEntropy := make([]byte, 5000)
	for i := range lowEntropy {
		lowEntropy[i] = "ab c"[rng.Intn(4)]
	}

	inputs := map[string][]byte{
		"empty":   {},
		"single":  {0x41},
		"text":    []byte("the quick brown fox jumps over the lazy dog, the quick brown fox"),
		"run":     bytes.Repeat([]byte{0}, 1000),
		"pattern": bytes.Repeat([]byte("abcdefgh"), 64),
		"random":  random,
		"low":     lowEntropy,
		"distant": append(append([]byte{}, random[:2000]...), random[:64]...),
	}
	for name, in := range inputs {
		enc := compressForTest(in)
		out, err := Uncompress(enc, nil)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !bytes.Equal(out, in) {
			t.Fatalf("%s: round trip mismatch: got %d bytes, want %d", name, len(out), len(in))
		}
	}
}

func TestTracerSeesEveryStep(t *testing.T) {
	var kinds []EventKind
	var match Event
	opts := &Options{Tracer: TraceFunc(func(e Event) {
		kinds = append(kinds, e.Kind)
		if e.Kind == EventMatch {
			match = e
		}
	})}
	src := []byte{0x06, 'A', 0x00, 0x04, 0x00, 0x00}
	if _, err := Decode(src, 6, opts); err != nil {
		t.Fatal(err)
	}
	want := []EventKind{EventCommand, EventLiteral, EventMatch, EventEnd}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("events = %v, want %v", kinds, want)
		}
	}
	if match.Position != 0 || match.Length != 5 || match.Source != 0 || match.Output != 1 || match.Input != 2 {
		t.Fatalf("unexpected match event %+v", match)
	}
}

func TestTracerDoesNotChangeOutput(t *testing.T) {
	in := bytes.Repeat([]byte("tracing "), 40)
	enc := compressForTest(in)
	plain, err := Uncompress(enc, nil)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	traced, err := Uncompress(enc, &Options{Tracer: TraceFunc(func(Event) { n++ })})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(plain, traced) || n == 0 {
		t.Fatalf("traced output differs or no events (%d)", n)
	}
}

func TestDecompressionReaderAndWriter(t *testing.T) {
	in := []byte("stream adapter stream adapter stream adapter")
	enc := compressForTest(in)
	r, w := NewDecompressionReaderAndWriter(nil)
	defer r.Close()

	if _, err := w.Write(enc[:5]); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(enc[5:]); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Read(make([]byte, 1)); err == nil {
		t.Fatal("expected read before close to fail")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, in) {
		t.Fatalf("got %q", out)
	}
	if got := w.(*DecompressionWriter).Consumed(); got != len(enc) {
		t.Fatalf("consumed = %d, want %d", got, len(enc))
	}
}

func TestDecompressionWriterReportsDecodeError(t *testing.T) {
	_, w := NewDecompressionReaderAndWriter(nil)
	if _, err := w.Write([]byte("not an lzss blob")); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); !errors.Is(err, ErrNotCompressed) {
		t.Fatalf("err = %v, want ErrNotCompressed", err)
	}
}

func TestDecodeConcurrent(t *testing.T) {
	in := bytes.Repeat([]byte("concurrent decode of one shared container "), 50)
	enc := compressForTest(in)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := Uncompress(enc, nil)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(out, in) {
				errs <- errors.New("concurrent decode mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}

func TestOutputLimit(t *testing.T) {
	limit, err := outputLimit(100)
	if err != nil || limit != 100 {
		t.Fatalf("outputLimit(100) = %d, %v", limit, err)
	}

	limit, err = outputLimit(math.MaxUint32)
	if strconv.IntSize == 32 {
		if !errors.Is(err, ErrOutputOverflow) {
			t.Fatalf("err = %v, want ErrOutputOverflow", err)
		}
		return
	}
	if err != nil || uint64(limit) != math.MaxUint32 {
		t.Fatalf("outputLimit(MaxUint32) = %d, %v", limit, err)
	}
}
