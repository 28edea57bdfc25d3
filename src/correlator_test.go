package mrfsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Feed bits, return the indices at which the correlator fired.
func correlate(c *Correlator, bits []byte) []int {
	var hits []int
	for i, b := range bits {
		if c.Put(b) {
			hits = append(hits, i)
		}
	}
	return hits
}

func TestBranchProperties(t *testing.T) {
	assert.Equal(t, "uncoded", BranchUncoded.String())
	assert.Equal(t, "coded", BranchCoded.String())
	assert.Equal(t, SFD_UNCODED, BranchUncoded.SFD())
	assert.Equal(t, SFD_CODED, BranchCoded.SFD())

	// Access code ends with the SFD.
	for _, b := range []Branch{BranchUncoded, BranchCoded} {
		assert.Equal(t, uint64(b.SFD()), b.AccessCode()&0xffff)
	}
}

func TestCorrelatorScenarios(t *testing.T) {
	var testData = []struct {
		vector  string
		branch  Branch
		lastBit int
	}{
		{vectorUncodedCRC32, BranchUncoded, 64 + 48 - 1},
		{vectorUncodedCRC16, BranchUncoded, 64 + 32 - 1},
		{vectorUncodedWhitened, BranchUncoded, 64 + 40 - 1},
		{vectorCoded, BranchCoded, 64 + 48 - 1},
	}

	for _, td := range testData {
		var bits = framedBits(td.vector)

		assert.Equal(t, []int{td.lastBit}, correlate(NewBranchCorrelator(td.branch), bits), td.vector)

		var other = IfThenElse(td.branch == BranchCoded, BranchUncoded, BranchCoded)
		assert.Empty(t, correlate(NewBranchCorrelator(other), bits), td.vector)
	}
}

func TestCorrelatorThreshold(t *testing.T) {
	var code = UnpackBits([]byte{0x05, 0x55, 0x90, 0x4e})[4:]

	var one = append([]byte(nil), code...)
	one[3] ^= 1
	assert.Equal(t, []int{27}, correlate(NewBranchCorrelator(BranchUncoded), one))

	var two = append([]byte(nil), one...)
	two[20] ^= 1
	assert.Empty(t, correlate(NewBranchCorrelator(BranchUncoded), two))

	// Coded branch tolerates two.
	var coded = UnpackBits([]byte{0x05, 0x55, 0x6f, 0x4e})[4:]
	coded[0] ^= 1
	coded[27] ^= 1
	assert.Equal(t, []int{27}, correlate(NewBranchCorrelator(BranchCoded), coded))
}

func TestCorrelatorNeedsFullCode(t *testing.T) {
	// The register starts out as zeros, which must not count as
	// matching bits.
	var c = NewCorrelator(0x0000003, 28, 0)
	assert.Empty(t, correlate(c, []byte{1, 1}))

	c.Reset()
	var bits = append(make([]byte, 26), 1, 1)
	assert.Equal(t, []int{27}, correlate(c, bits))
}
