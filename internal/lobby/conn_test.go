package lobby

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/phira-mp/internal/protocol"
)

// tcpPair returns both ends of a loopback TCP connection.
func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			accepted <- nil
			return
		}
		accepted <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	server = <-accepted
	require.NotNil(t, server)
	t.Cleanup(func() { server.Close() })

	return client, server
}

func TestConn_OverflowDropsFrame(t *testing.T) {
	client, server := tcpPair(t)

	c, err := newConn(server, 2, time.Second)
	require.NoError(t, err)

	// Queue capacity is 2 and the pump is not running yet, so the third
	// frame must be dropped without blocking.
	c.Send(protocol.EncodeFrame([]byte{0x10}))
	c.Send(protocol.EncodeFrame([]byte{0x11}))
	done := make(chan struct{})
	go func() {
		c.Send(protocol.EncodeFrame([]byte{0x12}))
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Send blocked on a full queue")
	}
	require.Len(t, c.sendCh, 2)
	require.False(t, c.Closed(), "overflow must not close the connection")

	// The two queued frames still go out once the pump starts.
	go c.writePump()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	payload, err := protocol.ReadMessage(client)
	require.NoError(t, err)
	require.Equal(t, []byte{0x10}, payload)
	payload, err = protocol.ReadMessage(client)
	require.NoError(t, err)
	require.Equal(t, []byte{0x11}, payload)

	require.NoError(t, c.Close())
}

func TestConn_CloseFlushesQueued(t *testing.T) {
	client, server := tcpPair(t)

	c, err := newConn(server, 8, time.Second)
	require.NoError(t, err)
	go c.writePump()

	c.Send(protocol.EncodeFrame([]byte{0x01, 0xAA}))
	require.NoError(t, c.Close())

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	payload, err := protocol.ReadMessage(client)
	require.NoError(t, err)
	require.Equal(t, []byte{0x01, 0xAA}, payload)

	// The socket is closed after the flush.
	_, err = protocol.ReadMessage(client)
	require.Error(t, err)
}

func TestConn_CloseIdempotent(t *testing.T) {
	_, server := tcpPair(t)

	c, err := newConn(server, 4, time.Second)
	require.NoError(t, err)
	go c.writePump()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	require.True(t, c.Closed())

	// Send after close is a no-op.
	c.Send([]byte{0x00})
}

func TestConn_HealthLoopClosesIdle(t *testing.T) {
	client, server := tcpPair(t)

	c, err := newConn(server, 4, time.Second)
	require.NoError(t, err)
	go c.writePump()
	go c.healthLoop(10*time.Millisecond, 40*time.Millisecond)

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err = client.Read(buf)
	require.Error(t, err, "server should close the idle connection")

	require.Eventually(t, c.Closed, time.Second, 10*time.Millisecond)
}

func TestConn_WriteErrorTearsDown(t *testing.T) {
	client, server := tcpPair(t)

	c, err := newConn(server, 4, time.Second)
	require.NoError(t, err)
	go c.writePump()

	require.NoError(t, client.Close())
	// Writes into a closed peer eventually surface an error; the pump
	// must then mark the connection closed.
	require.Eventually(t, func() bool {
		c.Send(protocol.EncodeFrame([]byte{0x02}))
		return c.Closed()
	}, 2*time.Second, 20*time.Millisecond)
}
