package resp_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eternalApril/respkit/resp"
)

// miniServer answers a handful of commands to check the codec against a real
// client. Requests are parsed with resp.Decoder, replies are built with resp.Marshal
type miniServer struct {
	ln    net.Listener
	mu    sync.Mutex
	strs  map[string][]byte
	lists map[string][][]byte
}

func startMiniServer(t *testing.T) *miniServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &miniServer{
		ln:    ln,
		strs:  make(map[string][]byte),
		lists: make(map[string][][]byte),
	}
	go s.serve()
	t.Cleanup(func() { _ = ln.Close() })

	return s
}

func (s *miniServer) serve() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

func (s *miniServer) handle(conn net.Conn) {
	defer conn.Close() //nolint:errcheck

	var pending []byte
	chunk := make([]byte, 4096)

	for {
		n, err := conn.Read(chunk)
		if err != nil {
			return
		}
		pending = append(pending, chunk[:n]...)

		dec := resp.NewDecoder(pending)
		var out []byte
		for dec.More() {
			var args [][]byte
			if err := dec.Decode(&args); err != nil {
				if errors.Is(err, resp.ErrEOF) {
					// wait for the rest of the command
					break
				}
				return
			}

			reply, err := resp.Marshal(s.execute(args))
			if err != nil {
				return
			}
			out = append(out, reply...)
		}
		pending = append(pending[:0], pending[dec.Offset():]...)

		if len(out) > 0 {
			if _, err := conn.Write(out); err != nil {
				return
			}
		}
	}
}

func (s *miniServer) execute(args [][]byte) resp.Value {
	if len(args) == 0 {
		return resp.MakeError("ERR empty command")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch name := strings.ToUpper(string(args[0])); {
	case name == "PING" && len(args) == 1:
		return resp.MakeSimpleString("PONG")
	case name == "PING" && len(args) == 2:
		return resp.MakeBulkBytes(args[1])
	case name == "SET" && len(args) >= 3:
		s.strs[string(args[1])] = args[2]
		return resp.MakeSimpleString("OK")
	case name == "GET" && len(args) == 2:
		v, ok := s.strs[string(args[1])]
		if !ok {
			return resp.MakeNilBulkString()
		}
		return resp.MakeBulkBytes(v)
	case name == "INCR" && len(args) == 2:
		var n int64
		if v, ok := s.strs[string(args[1])]; ok {
			parsed, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return resp.MakeError("ERR value is not an integer or out of range")
			}
			n = parsed
		}
		n++
		s.strs[string(args[1])] = []byte(strconv.FormatInt(n, 10))
		return resp.MakeInteger(n)
	case name == "RPUSH" && len(args) >= 3:
		key := string(args[1])
		s.lists[key] = append(s.lists[key], args[2:]...)
		return resp.MakeInteger(int64(len(s.lists[key])))
	case name == "LRANGE" && len(args) == 4:
		list := s.lists[string(args[1])]
		values := make([]resp.Value, len(list))
		for i, el := range list {
			values[i] = resp.MakeBulkBytes(el)
		}
		return resp.MakeArray(values)
	case name == "FLAG":
		return resp.MakeBoolean(true)
	case name == "NOTHING":
		return resp.MakeNull()
	}

	return resp.MakeErrorf("ERR unknown command '%s'", args[0])
}

func newCompatClient(t *testing.T) *redis.Client {
	t.Helper()

	s := startMiniServer(t)
	rdb := redis.NewClient(&redis.Options{
		Addr:            s.ln.Addr().String(),
		Protocol:        2,
		DisableIdentity: true,
		MaxRetries:      -1,
		DialTimeout:     time.Second,
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    2 * time.Second,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	return rdb
}

func TestGoRedisCompat(t *testing.T) {
	rdb := newCompatClient(t)
	ctx := context.Background()

	pong, err := rdb.Ping(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)

	require.NoError(t, rdb.Set(ctx, "key", "value", 0).Err())
	val, err := rdb.Get(ctx, "key").Result()
	require.NoError(t, err)
	assert.Equal(t, "value", val)

	_, err = rdb.Get(ctx, "missing").Result()
	assert.ErrorIs(t, err, redis.Nil)

	binary := "a\r\nb\x00c"
	require.NoError(t, rdb.Set(ctx, "bin", binary, 0).Err())
	val, err = rdb.Get(ctx, "bin").Result()
	require.NoError(t, err)
	assert.Equal(t, binary, val)

	for want := int64(1); want <= 3; want++ {
		n, err := rdb.Incr(ctx, "counter").Result()
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := rdb.RPush(ctx, "list", "a", "b", "").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	list, err := rdb.LRange(ctx, "list", 0, -1).Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", ""}, list)

	empty, err := rdb.LRange(ctx, "nolist", 0, -1).Result()
	require.NoError(t, err)
	assert.Empty(t, empty)

	flag, err := rdb.Do(ctx, "FLAG").Bool()
	require.NoError(t, err)
	assert.True(t, flag)

	assert.ErrorIs(t, rdb.Do(ctx, "NOTHING").Err(), redis.Nil)

	err = rdb.Do(ctx, "BOGUS").Err()
	require.Error(t, err)
	assert.Equal(t, "ERR unknown command 'BOGUS'", err.Error())
}

func TestGoRedisCompat_Pipeline(t *testing.T) {
	rdb := newCompatClient(t)
	ctx := context.Background()

	const count = 1000
	pipe := rdb.Pipeline()

	for i := 0; i < count; i++ {
		pipe.Set(ctx, fmt.Sprintf("pipe_key_%d", i), fmt.Sprintf("val_%d", i), 0)
	}

	getResults := make([]*redis.StringCmd, count)
	for i := 0; i < count; i++ {
		getResults[i] = pipe.Get(ctx, fmt.Sprintf("pipe_key_%d", i))
	}

	_, err := pipe.Exec(ctx)
	require.NoError(t, err, "Pipeline execution failed")

	for i := 0; i < count; i++ {
		val, err := getResults[i].Result()
		assert.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("val_%d", i), val, "Key %d mismatch", i)
	}
}

func TestMiniServer_MakeCommand(t *testing.T) {
	s := startMiniServer(t)

	conn, err := net.DialTimeout("tcp", s.ln.Addr().String(), time.Second)
	require.NoError(t, err)
	defer conn.Close() //nolint:errcheck
	require.NoError(t, conn.SetDeadline(time.Now().Add(2*time.Second)))

	enc := resp.NewEncoder(conn)
	require.NoError(t, enc.Write(resp.MakeCommand("SET", "k", "v")))
	require.NoError(t, enc.Write(resp.MakeCommand("GET", "k")))
	require.NoError(t, enc.Flush())

	want := "+OK\r\n$1\r\nv\r\n"
	got := make([]byte, len(want))
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, want, string(got))
}
