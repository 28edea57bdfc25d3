package mrfsk

/*-------------------------------------------------------------
 *
 * Purpose:	Frame Check Sequence at the end of the PSDU.
 *
 *		The FCS type bit in the PHR selects between
 *
 *		CRC-16	x^16 + x^12 + x^5 + 1, initial value 0,
 *			no final inversion.
 *
 *		CRC-32	x^32 + x^26 + x^23 + ... + 1, initial value
 *			all ones, inverted result.
 *
 *		Both are computed most significant bit first and
 *		appended most significant octet first.
 *
 *		CRC-32 quirk:  When the PSDU carries fewer than 4 data
 *		octets the CRC is computed as if zero octets were
 *		appended to bring it up to 4.  This is what makes the
 *		802.15.4g-2012 example (40 00 56 -> 5d 29 fa 28) work.
 *
 * Reference:	IEEE 802.15.4g-2012, section 5.2.1.9 and Annex O.
 *
 *--------------------------------------------------------------*/

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"math/bits"

	"github.com/sigurn/crc16"
)

type FCSType int

const (
	FCS_CRC32 FCSType = iota
	FCS_CRC16
)

const crc32MinData = 4

var crc16Table = crc16.MakeTable(crc16.CRC16_XMODEM)

func (t FCSType) Len() int {
	if t == FCS_CRC16 {
		return 2
	}
	return 4
}

func (t FCSType) String() string {
	if t == FCS_CRC16 {
		return "crc16"
	}
	return "crc32"
}

func fcs_crc16(data []byte) uint16 {
	return crc16.Checksum(data, crc16Table)
}

// hash/crc32 only does the reflected form.  Feeding it bit reversed
// octets and reversing the result gives the MSB first variant.
func fcs_crc32(data []byte) uint32 {
	var reflected = make([]byte, max(len(data), crc32MinData))
	for i, b := range data {
		reflected[i] = bits.Reverse8(b)
	}
	return bits.Reverse32(crc32.ChecksumIEEE(reflected))
}

/*-------------------------------------------------------------
 *
 * Name:	ComputeFCS
 *
 * Purpose:	Calculate the trailer for a PSDU.
 *
 * Inputs:	t	- FCS type.
 *		data	- PSDU octets without the FCS.
 *
 * Returns:	2 or 4 octets to append.
 *
 *--------------------------------------------------------------*/

func ComputeFCS(t FCSType, data []byte) []byte {
	if t == FCS_CRC16 {
		return binary.BigEndian.AppendUint16(nil, fcs_crc16(data))
	}
	return binary.BigEndian.AppendUint32(nil, fcs_crc32(data))
}

/*-------------------------------------------------------------
 *
 * Name:	VerifyFCS
 *
 * Purpose:	Check the trailing FCS of a received PSDU.
 *
 * Inputs:	t	- FCS type from the PHR.
 *		psdu	- All PSDU octets, FCS included.
 *
 * Returns:	true if the recomputed FCS matches the trailer.
 *
 *--------------------------------------------------------------*/

func VerifyFCS(t FCSType, psdu []byte) bool {
	var n = len(psdu) - t.Len()
	if n < 0 {
		return false
	}
	return bytes.Equal(ComputeFCS(t, psdu[:n]), psdu[n:])
}
