package mrfsk

/*--------------------------------------------------------------------------------
 *
 * Purpose:	Data whitening as specified for MR-FSK.
 *
 * Description:	A PN9 sequence, x^9 + x^5 + 1, is XORed with the PSDU when
 *		the DW bit of the PHR is set.  The generator is reset to
 *		all ones at the start of every PSDU so the operation is
 *		its own inverse.  The same code is used for transmit and
 *		receive.
 *
 *		The preamble, SFD and PHR are never whitened.  The receiver
 *		has to read the PHR to know whether whitening is in effect.
 *
 * Reference:	IEEE 802.15.4g-2012, section 18.1.3.
 *
 *--------------------------------------------------------------------------------*/

const PN9_SEED uint16 = 0x1ff

type PN9 struct {
	state uint16
}

func NewPN9() *PN9 {
	return &PN9{state: PN9_SEED}
}

func (p *PN9) Reset() {
	p.state = PN9_SEED
}

// Advance one step and return the next sequence bit.
func (p *PN9) Bit() byte {
	var fb = (p.state ^ (p.state >> 5)) & 1
	p.state = (p.state >> 1) | (fb << 8)
	return byte(fb)
}

// Next 8 sequence bits, first one in the MSB.
func (p *PN9) Byte() byte {
	var b byte
	for range 8 {
		b = (b << 1) | p.Bit()
	}
	return b
}

/*--------------------------------------------------------------------------------
 *
 * Function:	Whiten
 *
 * Purpose:	Whiten or dewhiten a sequence of bits.
 *
 * Inputs:	in	- One bit per byte, 0 or 1.
 *
 * Returns:	New slice, same length.  Generator starts from the seed.
 *
 *--------------------------------------------------------------------------------*/

func Whiten(in []byte) []byte {
	var p = NewPN9()
	var out = make([]byte, len(in))
	for i, b := range in {
		out[i] = (b & 1) ^ p.Bit()
	}
	return out
}

// Same as Whiten for packed octets, MSB first.
func WhitenBytes(in []byte) []byte {
	var p = NewPN9()
	var out = make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ p.Byte()
	}
	return out
}
