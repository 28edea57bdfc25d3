package mrfsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestComputeFCSExample(t *testing.T) {
	// 802.15.4g-2012 section 5.2.1.9.
	var data = []byte{0x40, 0x00, 0x56}

	assert.Equal(t, []byte{0x27, 0x9e}, ComputeFCS(FCS_CRC16, data))
	assert.Equal(t, []byte{0x5d, 0x29, 0xfa, 0x28}, ComputeFCS(FCS_CRC32, data))
}

func TestComputeFCSCheckValues(t *testing.T) {
	// Catalogue check values: CRC-16/XMODEM and CRC-32/BZIP2.
	var data = []byte("123456789")

	assert.Equal(t, []byte{0x31, 0xc3}, ComputeFCS(FCS_CRC16, data))
	assert.Equal(t, []byte{0xfc, 0x89, 0x19, 0x18}, ComputeFCS(FCS_CRC32, data))
}

func TestCRC32ShortDataIsZeroPadded(t *testing.T) {
	assert.Equal(t, ComputeFCS(FCS_CRC32, []byte{0x40, 0x00, 0x56, 0x00}), ComputeFCS(FCS_CRC32, []byte{0x40, 0x00, 0x56}))
	assert.Equal(t, ComputeFCS(FCS_CRC32, []byte{0, 0, 0, 0}), ComputeFCS(FCS_CRC32, nil))
}

func TestVerifyFCS(t *testing.T) {
	assert.True(t, VerifyFCS(FCS_CRC32, hexStringToBytes("40 00 56 5d 29 fa 28")))
	assert.True(t, VerifyFCS(FCS_CRC16, hexStringToBytes("40 00 56 27 9e")))

	assert.False(t, VerifyFCS(FCS_CRC32, hexStringToBytes("40 00 57 5d 29 fa 28")))
	assert.False(t, VerifyFCS(FCS_CRC16, hexStringToBytes("40 00 56 27 9f")))

	// Not even room for the FCS.
	assert.False(t, VerifyFCS(FCS_CRC32, hexStringToBytes("5d 29 fa")))
	assert.False(t, VerifyFCS(FCS_CRC16, hexStringToBytes("27")))
}

func TestVerifyFCSSingleBitError(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var fcs = rapid.SampledFrom([]FCSType{FCS_CRC16, FCS_CRC32}).Draw(t, "fcs")
		var data = rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "data")

		var psdu = append(append([]byte(nil), data...), ComputeFCS(fcs, data)...)
		assert.True(t, VerifyFCS(fcs, psdu))

		var bit = rapid.IntRange(0, 8*len(psdu)-1).Draw(t, "bit")
		psdu[bit/8] ^= 0x80 >> (bit % 8)
		assert.False(t, VerifyFCS(fcs, psdu), "flipped bit %d not detected", bit)
	})
}

func TestFCSTypeString(t *testing.T) {
	assert.Equal(t, "crc16", FCS_CRC16.String())
	assert.Equal(t, "crc32", FCS_CRC32.String())
}
