package mrfsk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestPN9Sequence(t *testing.T) {
	var p = NewPN9()
	var got = make([]byte, 7)
	for i := range got {
		got[i] = p.Byte()
	}
	assert.Equal(t, hexStringToBytes("0f 70 b3 6f 43 98 48"), got)

	p.Reset()
	assert.Equal(t, byte(0x0f), p.Byte())
}

func TestPN9Period(t *testing.T) {
	var p = NewPN9()
	for range 511 {
		p.Bit()
	}
	assert.Equal(t, PN9_SEED, p.state)
}

func TestWhitenBytesExample(t *testing.T) {
	assert.Equal(t,
		hexStringToBytes("4f 70 e5 32 6a 62 60"),
		WhitenBytes(hexStringToBytes("40 00 56 5d 29 fa 28")))
}

func TestWhitenSelfInverse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var in = rapid.SliceOfN(rapid.Byte(), 0, 300).Draw(t, "in")

		assert.Equal(t, in, WhitenBytes(WhitenBytes(in)))
	})
}

func TestWhitenMatchesWhitenBytes(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var in = rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "in")

		assert.Equal(t, UnpackBits(WhitenBytes(in)), Whiten(UnpackBits(in)))
	})
}
