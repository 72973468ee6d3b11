package realtime

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages [][]byte
	failNext bool
	closed   bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		return errors.New("broken pipe")
	}
	f.messages = append(f.messages, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (f *fakeConn) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeConn) received() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.messages...)
}

func TestHub_BroadcastReachesEveryClient(t *testing.T) {
	var builds int32
	h := NewHub("test", func() ([]byte, error) {
		n := atomic.AddInt32(&builds, 1)
		return []byte{byte('0' + n)}, nil
	})

	a, b := &fakeConn{}, &fakeConn{}
	h.register(a)
	h.register(b)
	require.Equal(t, 2, h.ClientCount())

	h.Broadcast()

	assert.Equal(t, [][]byte{[]byte("1")}, a.received())
	assert.Equal(t, [][]byte{[]byte("1")}, b.received())
	assert.Equal(t, []byte("1"), h.LastMessage())
}

func TestHub_BroadcastWithoutClientsSkipsBuild(t *testing.T) {
	called := false
	h := NewHub("test", func() ([]byte, error) {
		called = true
		return nil, nil
	})

	h.Broadcast()

	assert.False(t, called)
	assert.Nil(t, h.LastMessage())
}

func TestHub_WriteErrorDropsClient(t *testing.T) {
	h := NewHub("test", func() ([]byte, error) { return []byte("x"), nil })

	good, bad := &fakeConn{}, &fakeConn{failNext: true}
	h.register(good)
	h.register(bad)

	h.Broadcast()

	assert.Equal(t, 1, h.ClientCount())
	assert.True(t, bad.closed)
	assert.Len(t, good.received(), 1)
}

func TestHub_NotifyIsDebounced(t *testing.T) {
	var builds int32
	h := NewHub("test", func() ([]byte, error) {
		atomic.AddInt32(&builds, 1)
		return []byte("tally"), nil
	})
	h.SetDebounce(20 * time.Millisecond)

	conn := &fakeConn{}
	h.register(conn)

	for i := 0; i < 10; i++ {
		h.Notify()
	}

	assert.Eventually(t, func() bool { return len(conn.received()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builds))
}

func TestHub_UnregisterClosesConnection(t *testing.T) {
	h := NewHub("test", func() ([]byte, error) { return []byte("x"), nil })
	conn := &fakeConn{}
	h.register(conn)

	h.unregister(conn)

	assert.Equal(t, 0, h.ClientCount())
	assert.True(t, conn.closed)

	h.Broadcast()
	assert.Empty(t, conn.received())
}

func TestHub_SendFreshFallsBackToLastBroadcast(t *testing.T) {
	fail := false
	h := NewHub("test", func() ([]byte, error) {
		if fail {
			return nil, errors.New("db down")
		}
		return []byte("tally-1"), nil
	})

	first := &fakeConn{}
	h.register(first)
	h.Broadcast()

	fail = true
	late := &fakeConn{}
	h.sendFresh(h.register(late))

	assert.Equal(t, [][]byte{[]byte("tally-1")}, late.received())
}

func TestHub_SendFreshWithoutHistorySendsNothing(t *testing.T) {
	h := NewHub("test", func() ([]byte, error) { return nil, errors.New("db down") })

	conn := &fakeConn{}
	h.sendFresh(h.register(conn))

	assert.Empty(t, conn.received())
}
