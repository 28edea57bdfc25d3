package mrfsk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPacket(phr uint16, payload string) *Packet {
	return &Packet{PHR: phr, Branch: BranchUncoded, CRCValid: true, Payload: hexStringToBytes(payload)}
}

func TestPacketQueueOrder(t *testing.T) {
	var ctx = context.Background()
	var q = NewPacketQueue(4)

	require.NoError(t, q.Put(ctx, testPacket(0x0007, "01 00 00 00 00 00 00")))
	require.NoError(t, q.Put(ctx, testPacket(0x0007, "02 00 00 00 00 00 00")))
	assert.Equal(t, 2, q.Len())

	var p1, err1 = q.Get(ctx)
	require.NoError(t, err1)
	assert.Equal(t, byte(1), p1.Payload[0])

	var p2, err2 = q.Get(ctx)
	require.NoError(t, err2)
	assert.Equal(t, byte(2), p2.Payload[0])
}

func TestPacketQueueDefaultCapacity(t *testing.T) {
	assert.Equal(t, DEFAULT_QUEUE_CAPACITY, NewPacketQueue(0).Cap())
	assert.Equal(t, 2, DEFAULT_QUEUE_CAPACITY)
}

func TestPacketQueueBackpressure(t *testing.T) {
	var q = NewPacketQueue(2)

	require.NoError(t, q.Put(context.Background(), testPacket(0x0007, "00")))
	require.NoError(t, q.Put(context.Background(), testPacket(0x0007, "00")))

	// Full.  Put waits rather than dropping.
	var ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	var err = q.Put(ctx, testPacket(0x0007, "00"))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 2, q.Len())

	// Room again once the consumer catches up.
	var done = make(chan error)
	go func() {
		done <- q.Put(context.Background(), testPacket(0x0007, "03"))
	}()

	var _, gerr = q.Get(context.Background())
	require.NoError(t, gerr)
	require.NoError(t, <-done)
	assert.Equal(t, 2, q.Len())
}

func TestPacketQueueClose(t *testing.T) {
	var ctx = context.Background()
	var q = NewPacketQueue(2)

	require.NoError(t, q.Put(ctx, testPacket(0x0007, "01")))
	q.Close()
	q.Close()

	assert.True(t, errors.Is(q.Put(ctx, testPacket(0x0007, "02")), ErrQueueClosed))

	// Already queued is still delivered.
	var p, err = q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, p.Payload)

	_, err = q.Get(ctx)
	assert.True(t, errors.Is(err, ErrQueueClosed))
}

func TestPacketQueueGetCancelled(t *testing.T) {
	var q = NewPacketQueue(2)
	var ctx, cancel = context.WithCancel(context.Background())
	cancel()

	var _, err = q.Get(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPacketString(t *testing.T) {
	var p = &Packet{PHR: 0x0007, Branch: BranchCoded, CRCValid: true, Payload: hexStringToBytes("40 00 56 5d 29 fa 28")}
	assert.Equal(t, "FEC PHR:0007 crc32-ok 40 00 56 5d 29 fa 28", p.String())

	p = &Packet{PHR: 0x1805, Branch: BranchUncoded, CRCValid: false, Payload: hexStringToBytes("40 00 56 27 9f")}
	assert.Equal(t, "PHR:1805 dw crc16-fail 40 00 56 27 9f", p.String())
}

func TestPacketData(t *testing.T) {
	var p = testPacket(0x1005, "40 00 56 27 9e")
	assert.Equal(t, []byte{0x40, 0x00, 0x56}, p.Data())
	assert.False(t, p.Coded())

	// Length shorter than the FCS can't get this far normally.
	p = testPacket(0x0001, "40")
	assert.Nil(t, p.Data())
}
