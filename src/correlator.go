package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Spot the access code in a raw bit stream.
 *
 * Description:	Stand-in for the synchronizer in front of each deframer.
 *		The last N received bits are compared with the access
 *		code and a match is declared when no more than
 *		"threshold" bits differ.
 *
 *		The access code used here is the tail of the preamble
 *		followed by the SFD.  Including some preamble keeps
 *		random data from triggering it.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"math/bits"
)

type Branch int

const (
	BranchUncoded Branch = iota
	BranchCoded
)

const NUM_BRANCHES = 2

const PREAMBLE_OCTET = 0x55

const SFD_UNCODED uint16 = 0x904e
const SFD_CODED uint16 = 0x6f4e

// 12 bits of preamble + SFD.
const ACCESS_CODE_UNCODED uint64 = 0x555904e
const ACCESS_CODE_CODED uint64 = 0x5556f4e
const ACCESS_CODE_BITS = 28

func (b Branch) String() string {
	switch b {
	case BranchUncoded:
		return "uncoded"
	case BranchCoded:
		return "coded"
	default:
		return fmt.Sprintf("branch(%d)", int(b))
	}
}

func (b Branch) SFD() uint16 {
	return IfThenElse(b == BranchCoded, SFD_CODED, SFD_UNCODED)
}

func (b Branch) AccessCode() uint64 {
	return IfThenElse(b == BranchCoded, ACCESS_CODE_CODED, ACCESS_CODE_UNCODED)
}

// Coded frames get a little more slack.
func (b Branch) Threshold() int {
	return IfThenElse(b == BranchCoded, 2, 1)
}

type Correlator struct {
	code      uint64
	mask      uint64
	threshold int
	reg       uint64
	count     int // Bits seen, saturating at the code length.
	length    int
}

func NewCorrelator(code uint64, length int, threshold int) *Correlator {
	Assert(length > 0 && length <= 64)
	return &Correlator{
		code:      code,
		mask:      IfThenElse(length == 64, ^uint64(0), uint64(1)<<length-1),
		threshold: threshold,
		length:    length,
	}
}

func NewBranchCorrelator(b Branch) *Correlator {
	return NewCorrelator(b.AccessCode(), ACCESS_CODE_BITS, b.Threshold())
}

/*------------------------------------------------------------------
 *
 * Name:	Put
 *
 * Purpose:	Shift in one bit.
 *
 * Returns:	true if this bit completed a match.  The next bit is
 *		the first bit of the PHR.
 *
 *------------------------------------------------------------------*/

func (c *Correlator) Put(bit byte) bool {
	c.reg = (c.reg << 1) | uint64(bit&1)
	if c.count < c.length {
		c.count++
		if c.count < c.length {
			return false
		}
	}
	return bits.OnesCount64((c.reg^c.code)&c.mask) <= c.threshold
}

func (c *Correlator) Reset() {
	c.reg = 0
	c.count = 0
}
