package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Forward error correction for MR-FSK.
 *
 * Description:	Rate 1/2, constraint length 4, non-recursive,
 *		non-systematic convolutional code (NRNSC).
 *
 *			ui1 = bi ^ b(i-2) ^ b(i-3)		G1 = 1011
 *			ui0 = bi ^ b(i-1) ^ b(i-2) ^ b(i-3)	G0 = 1111
 *
 *		Both outputs are inverted before they go over the air
 *		and ui1 is sent first.
 *
 *		The PHR and PSDU are coded as one span.  The encoder is
 *		flushed with three zero tail bits and then padded so the
 *		span is a whole number of 16 bit interleaver blocks:
 *
 *			odd number of octets	01011
 *			even number of octets	0101100001011
 *
 *		Both pads end with 011, so the final encoder state is
 *		always known to the decoder.
 *
 * Reference:	IEEE 802.15.4g-2012, section 18.1.2.4, figure 124.
 *
 *------------------------------------------------------------------*/

const NRNSC_TAIL_BITS = 3
const NRNSC_SHORT_PAD_BITS = 5
const NRNSC_LONG_PAD_BITS = 13

// State after the tail and either pad: last three input bits 0,1,1.
const NRNSC_END_STATE = 3

const nrnscNumStates = 8

var nrnscShortPad = []byte{0, 1, 0, 1, 1}
var nrnscLongPad = []byte{0, 1, 0, 1, 1, 0, 0, 0, 0, 1, 0, 1, 1}

/*
 * Encoder state holds the previous three input bits,
 * most recent in bit 0.
 */

type nrnscEncoder struct {
	state int
}

func nrnsc_outputs(state int, bit byte) (byte, byte) {
	var b = int(bit & 1)
	var ui1 = b ^ (state>>1)&1 ^ (state>>2)&1
	var ui0 = b ^ state&1 ^ (state>>1)&1 ^ (state>>2)&1
	return byte(ui1 ^ 1), byte(ui0 ^ 1)
}

func nrnsc_next_state(state int, bit byte) int {
	return ((state << 1) | int(bit&1)) & (nrnscNumStates - 1)
}

func (e *nrnscEncoder) encodeBit(bit byte) (byte, byte) {
	var ui1, ui0 = nrnsc_outputs(e.state, bit)
	e.state = nrnsc_next_state(e.state, bit)
	return ui1, ui0
}

/*------------------------------------------------------------------
 *
 * Name:	ConvEncode
 *
 * Purpose:	Convolutionally encode bits, starting from the zero state.
 *
 * Inputs:	in	- One bit per byte.
 *
 * Returns:	Twice as many coded bits.  No tail is added here.
 *
 *------------------------------------------------------------------*/

func ConvEncode(in []byte) []byte {
	var e nrnscEncoder
	var out = make([]byte, 0, 2*len(in))
	for _, bit := range in {
		var ui1, ui0 = e.encodeBit(bit)
		out = append(out, ui1, ui0)
	}
	return out
}

// Tail and pad bits which follow a span of nbytes octets.
func nrnsc_terminator(nbytes int) []byte {
	var t = make([]byte, NRNSC_TAIL_BITS, NRNSC_TAIL_BITS+NRNSC_LONG_PAD_BITS)
	if nbytes%2 == 1 {
		return append(t, nrnscShortPad...)
	}
	return append(t, nrnscLongPad...)
}

// Number of coded bits on the air for a PHR + PSDU span of nbytes octets.
func CodedSpanBits(nbytes int) int {
	return 2 * (8*nbytes + len(nrnsc_terminator(nbytes)))
}

/*------------------------------------------------------------------
 *
 * Name:	FECEncode
 *
 * Purpose:	Produce the coded, interleaved bits for a PHR + PSDU span.
 *
 * Inputs:	span	- Octets, PHR first.
 *
 * Returns:	CodedSpanBits(len(span)) bits, one per byte.
 *
 *------------------------------------------------------------------*/

func FECEncode(span []byte) []byte {
	var in = append(UnpackBits(span), nrnsc_terminator(len(span))...)
	return Interleave(ConvEncode(in))
}

/*------------------------------------------------------------------
 *
 * Name:	FECDecode
 *
 * Purpose:	Recover a PHR + PSDU span from coded bits.
 *
 * Inputs:	coded	- At least CodedSpanBits(nbytes) bits.  Anything
 *			  beyond that is ignored.
 *
 *		nbytes	- Span length in octets.
 *
 * Returns:	Decoded octets and the number of coded bits that
 *		disagreed with the chosen path.
 *
 *------------------------------------------------------------------*/

func FECDecode(coded []byte, nbytes int) ([]byte, int) {
	var n = CodedSpanBits(nbytes)
	Assert(len(coded) >= n)
	var bits, corrected = ConvDecode(Interleave(coded[:n]), NRNSC_END_STATE)
	return PackBits(bits[:8*nbytes]), corrected
}
