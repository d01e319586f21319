package journal

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eternalApril/respkit/resp"
)

func tempJournal(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.journal")
}

func TestJournal_AppendAndLoad(t *testing.T) {
	for _, fsync := range []string{"always", "everysec", "no"} {
		t.Run(fsync, func(t *testing.T) {
			name := tempJournal(t)
			j, err := Open(name, Options{Fsync: fsync}, zap.NewNop())
			require.NoError(t, err)

			require.NoError(t, j.Append(resp.MakeCommand("SET", "k", "v")))
			require.NoError(t, j.Append(resp.MakeInteger(42)))
			require.NoError(t, j.Append([]string{"DEL", "k"}))
			require.NoError(t, j.Close())

			data, err := os.ReadFile(name)
			require.NoError(t, err)
			assert.Equal(t,
				"*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n:42\r\n*2\r\n+DEL\r\n+k\r\n",
				string(data))

			r, err := Load(name, zap.NewNop())
			require.NoError(t, err)
			require.Len(t, r.Values, 3)
			assert.Equal(t, resp.MakeCommand("SET", "k", "v"), r.Values[0])
			assert.Equal(t, resp.MakeInteger(42), r.Values[1])
			assert.Equal(t, len(data), r.Size)
			assert.Zero(t, r.Truncated)
		})
	}
}

func TestJournal_Reopen(t *testing.T) {
	name := tempJournal(t)

	j, err := Open(name, Options{Fsync: "always"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, j.Append(resp.MakeSimpleString("first")))
	require.NoError(t, j.Close())

	j, err = Open(name, Options{Fsync: "always"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, j.Append(resp.MakeSimpleString("second")))
	require.NoError(t, j.Close())

	r, err := Load(name, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []resp.Value{
		resp.MakeSimpleString("first"),
		resp.MakeSimpleString("second"),
	}, r.Values)
}

func TestJournal_AppendEncodeError(t *testing.T) {
	name := tempJournal(t)
	j, err := Open(name, Options{}, zap.NewNop())
	require.NoError(t, err)

	err = j.Append(1.5)
	require.Error(t, err)
	assert.ErrorIs(t, err, resp.ErrMessage)
	require.NoError(t, j.Close())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestJournal_Closed(t *testing.T) {
	j, err := Open(tempJournal(t), Options{}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, j.Close())

	assert.ErrorIs(t, j.Append(resp.MakeNull()), ErrClosed)
	assert.ErrorIs(t, j.Close(), ErrClosed)
}

func TestJournal_ConcurrentAppend(t *testing.T) {
	name := tempJournal(t)
	j, err := Open(name, Options{QueueSize: 4, BufferSize: 64}, zap.NewNop())
	require.NoError(t, err)

	const writers, perWriter = 8, 100
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				assert.NoError(t, j.Append(resp.MakeCommand("INCR", "counter")))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, j.Close())

	r, err := Load(name, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, r.Values, writers*perWriter)
	for _, v := range r.Values {
		assert.Equal(t, resp.MakeCommand("INCR", "counter"), v)
	}
}

func TestJournal_OpenError(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "test.journal"), Options{}, zap.NewNop())
	assert.Error(t, err)
}

func TestLoad_Missing(t *testing.T) {
	r, err := Load(tempJournal(t), zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, r.Values)
	assert.Zero(t, r.Size)
}

func TestLoad_TruncatedTail(t *testing.T) {
	name := tempJournal(t)
	require.NoError(t, os.WriteFile(name, []byte("+OK\r\n:1\r\n*2\r\n$3\r\nfoo\r\n$3\r\nba"), 0o644))

	core, logs := observer.New(zapcore.WarnLevel)
	r, err := Load(name, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, []resp.Value{resp.MakeSimpleString("OK"), resp.MakeInteger(1)}, r.Values)
	assert.Equal(t, 9, r.Size)
	assert.Equal(t, 19, r.Truncated)

	entries := logs.FilterMessage("journal has a truncated tail").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(9), entries[0].ContextMap()["offset"])
}

func TestLoad_TruncatedLine(t *testing.T) {
	tests := []struct {
		name string
		tail string
	}{
		{"simple string", "+QUE"},
		{"simple string before LF", "+QUEUED\r"},
		{"integer", ":12"},
		{"nested element", "*2\r\n+GET"},
		{"bulk header", "$1"},
		{"boolean", "#t\r"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name := tempJournal(t)
			require.NoError(t, os.WriteFile(name, []byte("+OK\r\n"+tt.tail), 0o644))

			r, err := Load(name, zap.NewNop())
			require.NoError(t, err)
			assert.Equal(t, []resp.Value{resp.MakeSimpleString("OK")}, r.Values)
			assert.Equal(t, 5, r.Size)
			assert.Equal(t, len(tt.tail), r.Truncated)
		})
	}
}

func TestLoad_Corrupt(t *testing.T) {
	name := tempJournal(t)
	require.NoError(t, os.WriteFile(name, []byte("+OK\r\n:abc\r\n"), 0o644))

	_, err := Load(name, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, resp.ErrExpectedInteger)
	assert.Contains(t, err.Error(), name)

	// a complete but malformed element at the end is not a truncated tail either
	require.NoError(t, os.WriteFile(name, []byte(":1\r\n*2\r\n:1\r\n?"), 0o644))
	_, err = Load(name, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, resp.ErrSyntax)

	_, err = Compact(name, zap.NewNop())
	require.Error(t, err)
	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, ":1\r\n*2\r\n:1\r\n?", string(data))

	// a broken line followed by more data is not a truncated tail
	require.NoError(t, os.WriteFile(name, []byte("+OK\r\n:1\n:2\r\n"), 0o644))
	_, err = Load(name, zap.NewNop())
	assert.ErrorIs(t, err, resp.ErrExpectedCRLF)
}

func TestCompact(t *testing.T) {
	name := tempJournal(t)
	require.NoError(t, os.WriteFile(name, []byte("+OK\r\n#t\r\n$5\r\nhel"), 0o644))

	r, err := Compact(name, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 7, r.Truncated)

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "+OK\r\n#t\r\n", string(data))

	_, err = os.Stat(name + ".tmp")
	assert.True(t, os.IsNotExist(err))

	r, err = Load(name, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, r.Truncated)
	assert.Len(t, r.Values, 2)
}

func TestRewrite(t *testing.T) {
	name := tempJournal(t)
	require.NoError(t, os.WriteFile(name, []byte("garbage"), 0o644))

	values := []resp.Value{resp.MakeNilBulkString(), resp.MakeNilArray(), resp.MakeError("ERR x")}
	require.NoError(t, Rewrite(name, values, zap.NewNop()))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "$-1\r\n*-1\r\n-ERR x\r\n", string(data))
}
