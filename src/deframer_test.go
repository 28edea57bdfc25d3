package mrfsk

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStats() *Stats {
	return NewStats(prometheus.NewRegistry())
}

func TestDecodeBitsScenarios(t *testing.T) {
	var testData = []struct {
		name    string
		vector  string
		branch  Branch
		phr     uint16
		payload string
	}{
		{"uncoded crc32", vectorUncodedCRC32, BranchUncoded, 0x0007, "40 00 56 5d 29 fa 28"},
		{"uncoded crc16", vectorUncodedCRC16, BranchUncoded, 0x1005, "40 00 56 27 9e"},
		{"uncoded whitened", vectorUncodedWhitened, BranchUncoded, 0x0807, "40 00 56 5d 29 fa 28"},
		{"coded", vectorCoded, BranchCoded, 0x0007, "40 00 56 5d 29 fa 28"},
	}

	for _, td := range testData {
		t.Run(td.name, func(t *testing.T) {
			var stats = newTestStats()

			var packets, err = DecodeBits(context.Background(), framedBits(td.vector), stats)
			require.NoError(t, err)
			require.Len(t, packets, 1)

			var p = packets[0]
			assert.Equal(t, td.branch, p.Branch)
			assert.Equal(t, td.phr, p.PHR)
			assert.True(t, p.CRCValid)
			assert.Equal(t, hexStringToBytes(td.payload), p.Payload)
			assert.Equal(t, []byte{0x40, 0x00, 0x56}, p.Data())
			assert.Zero(t, p.CorrectedBits)

			assert.InDelta(t, 1, testutil.ToFloat64(stats.Packets(td.branch, true)), 0)
			assert.InDelta(t, 0, testutil.ToFloat64(stats.Packets(td.branch, false)), 0)
			assert.InDelta(t, 0, testutil.ToFloat64(stats.FramingErrors(BranchUncoded)), 0)
			assert.InDelta(t, 0, testutil.ToFloat64(stats.FramingErrors(BranchCoded)), 0)
		})
	}
}

func TestDecodeBitsCodedWithErrors(t *testing.T) {
	var stats = newTestStats()
	var bits = framedBits(vectorCoded)
	for _, pos := range []int{5, 60, 140} {
		bits[codedSpanOffset+pos] ^= 1
	}

	var packets, err = DecodeBits(context.Background(), bits, stats)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	assert.True(t, packets[0].CRCValid)
	assert.Equal(t, hexStringToBytes("40 00 56 5d 29 fa 28"), packets[0].Payload)
	assert.Equal(t, 3, packets[0].CorrectedBits)
	assert.InDelta(t, 3, testutil.ToFloat64(stats.CorrectedBits(BranchCoded)), 0)
}

func TestDecodeBitsBadFCSStillDelivered(t *testing.T) {
	var stats = newTestStats()

	var packets, err = DecodeBits(context.Background(), framedBits("55 55 55 55 90 4e 00 07 40 00 57 5d 29 fa 28"), stats)
	require.NoError(t, err)
	require.Len(t, packets, 1)

	assert.False(t, packets[0].CRCValid)
	assert.Equal(t, hexStringToBytes("40 00 57 5d 29 fa 28"), packets[0].Payload)
	assert.InDelta(t, 1, testutil.ToFloat64(stats.Packets(BranchUncoded, false)), 0)
}

func TestDecodeBitsAccessCodeInsideFrame(t *testing.T) {
	// The length of the first frame takes in the preamble and SFD of
	// the second.  That doesn't end the first frame early, and the
	// second is still found where the first one stops.
	var stats = newTestStats()
	var first = "55 55 55 55 90 4e 00 07 40 00"
	var second = "55 55 55 55 90 4e 00 07 40"

	var packets, err = DecodeBits(context.Background(), framedBits(first+" "+second+" 00 56 5d 29 fa 28"), stats)
	require.NoError(t, err)
	require.Len(t, packets, 2)

	assert.Equal(t, uint16(0x0007), packets[0].PHR)
	assert.False(t, packets[0].CRCValid)
	assert.Equal(t, hexStringToBytes("40 00 55 55 55 55 90"), packets[0].Payload)

	assert.Equal(t, uint16(0x0007), packets[1].PHR)
	assert.True(t, packets[1].CRCValid)
	assert.Equal(t, hexStringToBytes("40 00 56 5d 29 fa 28"), packets[1].Payload)

	assert.InDelta(t, 0, testutil.ToFloat64(stats.FramingErrors(BranchUncoded)), 0)
}

func TestDecodeBitsPayloadLooksLikeAccessCode(t *testing.T) {
	var testData = []struct {
		name    string
		fec     bool
		payload []byte
	}{
		{"uncoded", false, hexStringToBytes("01 55 59 04 e0 02")},
		{"uncoded longest", false, bytes.Repeat(hexStringToBytes("55 59 04 e0"), (MAX_FRAME_LENGTH-4)/4+1)[:MAX_FRAME_LENGTH-4]},
		// Coded bits of this one come within 2 bits of the coded access code.
		{"coded", true, hexStringToBytes("00 f7 ee e5 dc d3 ca c1 b9 b0 a7 9e 95 8c 83 7a 72 69 60 57 4e 45 3c 33")},
	}

	for _, td := range testData {
		t.Run(td.name, func(t *testing.T) {
			var r = DefaultEncodeRequest()
			r.PayloadType = PAYLOAD_BYTES
			r.Payload = td.payload
			r.FEC = td.fec
			r.LeadInBytes = 8

			var burst, err = GenerateBurst(r)
			require.NoError(t, err)

			var stats = newTestStats()
			var packets, derr = DecodeBits(context.Background(), UnpackBits(burst), stats)
			require.NoError(t, derr)

			var branch = IfThenElse(td.fec, BranchCoded, BranchUncoded)
			var found = 0
			for _, p := range packets {
				if p.Branch == branch {
					found++
					assert.True(t, p.CRCValid)
					assert.Equal(t, td.payload, p.Data())
				}
			}
			assert.Equal(t, 1, found)
			assert.InDelta(t, 0, testutil.ToFloat64(stats.FramingErrors(branch)), 0)
		})
	}
}

func TestDecodeBitsLengthShorterThanFCS(t *testing.T) {
	var stats = newTestStats()

	var packets, err = DecodeBits(context.Background(), framedBits("55 55 55 55 90 4e 00 03 01 02 03"), stats)
	require.NoError(t, err)
	assert.Empty(t, packets)
	assert.InDelta(t, 1, testutil.ToFloat64(stats.FramingErrors(BranchUncoded)), 0)
}

func TestDecodeBitsNothing(t *testing.T) {
	var packets, err = DecodeBits(context.Background(), UnpackBits(make([]byte, 100)), nil)
	require.NoError(t, err)
	assert.Empty(t, packets)
}

func TestDeframerDirect(t *testing.T) {
	var ctx = context.Background()
	var q = NewPacketQueue(2)
	var d = NewDeframer(BranchUncoded, q, nil)

	assert.Equal(t, StateAwaitingAccessCode, d.State())

	// Ignored before Sync.
	for _, bit := range UnpackBits(hexStringToBytes("00 07 40 00")) {
		require.NoError(t, d.PutBit(ctx, bit))
	}
	assert.Equal(t, 0, q.Len())

	require.NoError(t, d.Sync())
	assert.Equal(t, StateHeaderPending, d.State())
	assert.True(t, d.InFrame())

	var bits = UnpackBits(hexStringToBytes("10 05 40 00 56 27 9e"))
	for i, bit := range bits {
		require.NoError(t, d.PutBit(ctx, bit))
		if i == PHR_BITS-1 {
			assert.Equal(t, StatePayloadPending, d.State())
		}
	}

	assert.Equal(t, StateAwaitingAccessCode, d.State())
	require.Equal(t, 1, q.Len())

	var p, err = q.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1005), p.PHR)
	assert.True(t, p.CRCValid)
}

func TestDeframerSyncInFrame(t *testing.T) {
	var ctx = context.Background()
	var stats = newTestStats()
	var d = NewDeframer(BranchCoded, NewPacketQueue(2), stats)

	require.NoError(t, d.Sync())
	for _, bit := range UnpackBits(hexStringToBytes("bf 7f 3f")) {
		require.NoError(t, d.PutBit(ctx, bit))
	}

	var err = d.Sync()
	assert.True(t, errors.Is(err, ErrFraming))
	assert.Equal(t, StateHeaderPending, d.State())
	assert.InDelta(t, 1, testutil.ToFloat64(stats.FramingErrors(BranchCoded)), 0)
}

func TestDeframerShortLength(t *testing.T) {
	var ctx = context.Background()
	var d = NewDeframer(BranchUncoded, NewPacketQueue(2), nil)

	require.NoError(t, d.Sync())

	var bits = UnpackBits(hexStringToBytes("10 01"))
	var err error
	for _, bit := range bits {
		err = d.PutBit(ctx, bit)
	}
	assert.True(t, errors.Is(err, ErrFraming))
	assert.Equal(t, StateAwaitingAccessCode, d.State())
}

func TestDeframerQueueClosed(t *testing.T) {
	var ctx = context.Background()
	var q = NewPacketQueue(2)
	q.Close()
	var d = NewDeframer(BranchUncoded, q, nil)

	require.NoError(t, d.Sync())

	var err error
	for _, bit := range UnpackBits(hexStringToBytes("10 05 40 00 56 27 9e")) {
		err = d.PutBit(ctx, bit)
	}
	assert.True(t, errors.Is(err, ErrQueueClosed))
	assert.Equal(t, StateAwaitingAccessCode, d.State())
}

func TestDeframerStateString(t *testing.T) {
	assert.Equal(t, "AwaitingAccessCode", StateAwaitingAccessCode.String())
	assert.Equal(t, "FrameComplete", StateFrameComplete.String())
}
