package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Symbol interleaver for the coded PHR + PSDU.
 *
 * Description:	Coded bits are taken in blocks of 16 code symbols
 *		(32 bits, each symbol being the ui1, ui0 pair).
 *		Symbol k of a block is sent in position
 *
 *			15 - 4 * (k mod 4) - floor(k / 4)
 *
 *		Applying the permutation twice gives back the original
 *		order so the same function deinterleaves.
 *
 * Reference:	IEEE 802.15.4g-2012, section 18.1.2.5.
 *
 *------------------------------------------------------------------*/

const INTERLEAVER_SYMBOLS = 16
const INTERLEAVER_BITS = 2 * INTERLEAVER_SYMBOLS

var interleaverMap = func() [INTERLEAVER_SYMBOLS]int {
	var m [INTERLEAVER_SYMBOLS]int
	for k := range INTERLEAVER_SYMBOLS {
		m[k] = INTERLEAVER_SYMBOLS - 1 - 4*(k%4) - k/4
	}
	return m
}()

// Interleave (or deinterleave) coded bits.  A trailing partial block,
// which never occurs in a properly terminated span, is copied as is.
func Interleave(in []byte) []byte {
	var out = make([]byte, len(in))
	copy(out, in)

	for blk := 0; blk+INTERLEAVER_BITS <= len(in); blk += INTERLEAVER_BITS {
		for k, j := range interleaverMap {
			out[blk+2*j] = in[blk+2*k]
			out[blk+2*j+1] = in[blk+2*k+1]
		}
	}
	return out
}
