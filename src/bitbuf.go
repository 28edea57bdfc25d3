package mrfsk

/********************************************************************************
 *
 * Purpose:	Bit buffer used by the deframer.
 *		Bits are accumulated here, one per byte, until enough have
 *		arrived for the next field.  Nothing is assumed about
 *		octet alignment, which matters for FEC coded spans.
 *
 *******************************************************************************/

/*
 * Largest span a deframer ever has to hold: a maximum length
 * PSDU plus PHR, convolutionally coded with the longest pad.
 */

const MAX_NUM_BITS = 2 * (8*(PHR_LENGTH+MAX_FRAME_LENGTH) + NRNSC_TAIL_BITS + NRNSC_LONG_PAD_BITS)

type BitBuffer struct {
	fdata []byte
}

func NewBitBuffer() *BitBuffer {
	return &BitBuffer{fdata: make([]byte, 0, MAX_NUM_BITS)}
}

func (b *BitBuffer) Clear() {
	b.fdata = b.fdata[:0]
}

/***********************************************************************************
 *
 * Name:	Append
 *
 * Purpose:	Append another bit to the end.
 *
 * Returns:	false if the buffer was already full and the bit was dropped.
 *
 ***********************************************************************************/

func (b *BitBuffer) Append(bit byte) bool {
	if len(b.fdata) >= MAX_NUM_BITS {
		return false
	}
	b.fdata = append(b.fdata, bit&1)
	return true
}

func (b *BitBuffer) Len() int {
	return len(b.fdata)
}

func (b *BitBuffer) HasAtLeast(n int) bool {
	return len(b.fdata) >= n
}

// Bits returns the accumulated bits.  The slice is only valid until
// the next Append or Clear.
func (b *BitBuffer) Bits() []byte {
	return b.fdata
}

// Packed octets starting at bit position start, MSB first.
func (b *BitBuffer) Bytes(start int, count int) []byte {
	Assert(start+count*8 <= len(b.fdata))
	return PackBits(b.fdata[start : start+count*8])
}

// Pack bits (one per byte) into octets, first bit in the MSB.
// A partial final octet is padded with zeros.
func PackBits(in []byte) []byte {
	var out = make([]byte, (len(in)+7)/8)
	for i, bit := range in {
		if bit&1 != 0 {
			out[i/8] |= 0x80 >> (i % 8)
		}
	}
	return out
}

// Inverse of PackBits.
func UnpackBits(in []byte) []byte {
	var out = make([]byte, 0, len(in)*8)
	for _, b := range in {
		for m := byte(0x80); m != 0; m >>= 1 {
			out = append(out, IfThenElse(b&m != 0, byte(1), byte(0)))
		}
	}
	return out
}
