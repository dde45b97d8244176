package interpreter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bfvm/bfvm/internal/engine"
	"github.com/bfvm/bfvm/internal/ir"
	"github.com/bfvm/bfvm/internal/token"
)

func compile(t *testing.T, src string) ir.Program {
	t.Helper()
	p, err := ir.Compile(token.Tokenize([]byte(src)))
	require.NoError(t, err)
	return p
}

func run(t *testing.T, it *Interpreter, src, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := it.Run(context.Background(), compile(t, src), strings.NewReader(input), &out)
	return out.String(), err
}

func TestRunHelloWorld(t *testing.T) {
	const src = `++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++.`
	it := New(0)
	out, err := run(t, it, src, "")
	require.NoError(t, err)
	require.Equal(t, "Hello World!\n", out)
}

func TestRunCat(t *testing.T) {
	const input = "testtesttesttest\n"
	out, err := run(t, New(0), ",[.,]", input)
	require.NoError(t, err)
	require.Equal(t, input, out)
}

func TestRunClearThenIncrement(t *testing.T) {
	it := New(0)
	_, err := run(t, it, "[-]+", "")
	require.NoError(t, err)
	require.Equal(t, byte(1), it.Tape()[it.Cursor()])
}

func TestRunCopyLoop(t *testing.T) {
	it := New(0)
	start := it.Cursor()
	it.Tape()[start] = 10

	_, err := run(t, it, ">>[-]<<[->>+<<]", "")
	require.NoError(t, err)

	require.Equal(t, start, it.Cursor())
	require.Equal(t, []byte{0, 0, 10}, it.Tape()[start:start+3])
}

func TestRunFindZero(t *testing.T) {
	it := New(0)
	start := it.Cursor()
	it.Tape()[start] = 1
	it.Tape()[start+2] = 2
	it.Tape()[start+4] = 3
	// Cells at start, start+2, start+4 are non-zero; start+6 is the hole.
	_, err := run(t, it, "[>>]", "")
	require.NoError(t, err)
	require.Equal(t, start+6, it.Cursor())
}

func TestRunCellWrap(t *testing.T) {
	it := New(0)
	_, err := run(t, it, "-", "")
	require.NoError(t, err)
	require.Equal(t, byte(255), it.Tape()[it.Cursor()])

	_, err = run(t, it, "+", "")
	require.NoError(t, err)
	require.Equal(t, byte(0), it.Tape()[it.Cursor()])
}

func TestRunEOFSentinel(t *testing.T) {
	it := New(0)
	it.Tape()[it.Cursor()] = 42
	_, err := run(t, it, ",", "")
	require.NoError(t, err)
	require.Equal(t, byte(0), it.Tape()[it.Cursor()])
}

func TestRunMemoryOutOfRangeRight(t *testing.T) {
	it := New(0)
	_, err := run(t, it, strings.Repeat(">", DefaultMemorySize), "")
	require.ErrorIs(t, err, engine.ErrMemoryOutOfRange)
}

func TestRunMemoryOutOfRangeLeft(t *testing.T) {
	it := New(0)
	_, err := run(t, it, strings.Repeat("<", DefaultMemorySize/2+1), "")
	require.ErrorIs(t, err, engine.ErrMemoryOutOfRange)
}

func TestRunMulIntoOutOfRange(t *testing.T) {
	it := New(16)
	it.Tape()[it.Cursor()] = 1
	// Offset +10 from the center of a 16-cell tape escapes it.
	_, err := run(t, it, "[->>>>>>>>>>+<<<<<<<<<<]", "")
	require.ErrorIs(t, err, engine.ErrMemoryOutOfRange)
}

func TestRunFindZeroOutOfRange(t *testing.T) {
	it := New(16)
	for i := range it.Tape() {
		it.Tape()[i] = 1
	}
	_, err := run(t, it, "[>]", "")
	require.ErrorIs(t, err, engine.ErrMemoryOutOfRange)
}

func TestRunWriterErrorsDropped(t *testing.T) {
	it := New(0)
	err := it.Run(context.Background(), compile(t, "+."), strings.NewReader(""), failWriter{})
	require.NoError(t, err)
}

func TestRunTapePersistsAcrossRuns(t *testing.T) {
	it := New(0)
	_, err := run(t, it, "+++", "")
	require.NoError(t, err)
	_, err = run(t, it, "++", "")
	require.NoError(t, err)
	require.Equal(t, byte(5), it.Tape()[it.Cursor()])
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := New(0).Run(ctx, compile(t, "+"), strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNativeHandOff(t *testing.T) {
	it := New(0)
	backend := &recordingBackend{cursor: 123}
	it.SetNativeBackend(backend, 0)

	p := compile(t, "+++")
	require.NoError(t, it.Run(context.Background(), p, strings.NewReader(""), &bytes.Buffer{}))

	require.Equal(t, 0, backend.start)
	require.Equal(t, len(p)-1, backend.end)
	require.Equal(t, 123, it.Cursor())
}

func TestNativeHandOffThreshold(t *testing.T) {
	it := New(0)
	backend := &recordingBackend{cursor: it.Cursor()}
	it.SetNativeBackend(backend, 2)

	p := compile(t, "+-+-")
	require.NoError(t, it.Run(context.Background(), p, strings.NewReader(""), &bytes.Buffer{}))

	require.Equal(t, 2, backend.start)
	require.Equal(t, len(p)-1, backend.end)
}

func TestNativeHandOffWaitsForBalance(t *testing.T) {
	// pc 0 is balanced; after entering the loop the suffix closes a loop it
	// did not open, so hand-off must not happen until the loop exits.
	it := New(0)
	it.Tape()[it.Cursor()] = 3
	backend := &recordingBackend{cursor: it.Cursor()}
	it.SetNativeBackend(backend, 1)

	p := ir.Program{ir.Jz(3), ir.Add(-1), ir.Jnz(1), ir.Add(1)}
	require.NoError(t, it.Run(context.Background(), p, strings.NewReader(""), &bytes.Buffer{}))

	// The only balanced pc at or after threshold is the tail after the loop.
	require.Equal(t, 3, backend.start)
	require.Equal(t, 3, backend.end)
}

func TestNativeBackendError(t *testing.T) {
	it := New(0)
	wantErr := errors.New("native backend failed")
	it.SetNativeBackend(&recordingBackend{err: wantErr}, 0)
	err := it.Run(context.Background(), compile(t, "+"), strings.NewReader(""), &bytes.Buffer{})
	require.ErrorIs(t, err, wantErr)
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

type recordingBackend struct {
	start, end int
	cursor     int
	err        error
}

func (b *recordingBackend) Call(_ ir.Program, start, end int, _ []byte, _ int, _ io.Reader, _ io.Writer) (int, error) {
	b.start, b.end = start, end
	return b.cursor, b.err
}
