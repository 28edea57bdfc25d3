package mrfsk

/*--------------------------------------------------------------------------------
 *
 * Purpose:	Functions to deal with the MR-FSK PHY header (PHR).
 *
 * Description:	The PHR is two octets, sent most significant bit first.
 *
 *		   15     14..13    12     11     10..0
 *		+------+----------+-----+------+--------------+
 *		|  MS  | reserved | FCS |  DW  | frame length |
 *		+------+----------+-----+------+--------------+
 *
 *		FCS = 1 means 2 octet CRC-16, 0 means 4 octet CRC-32.
 *		The mode switch and reserved bits are carried along
 *		untouched.
 *
 * Reference:	IEEE 802.15.4g-2012, section 18.1.1.3.
 *
 *--------------------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

const PHR_LENGTH = 2 // octets
const PHR_BITS = PHR_LENGTH * 8

// aMaxPHYPacketSize.  Largest value the frame length field can hold.
const MAX_FRAME_LENGTH = 2047

const (
	phrDWBit     = 11
	phrFCSBit    = 12
	phrModeShift = 13
	phrModeMask  = 0x7
)

var ErrInvalidLength = errors.New("frame length exceeds 11 bit field")

type Header struct {
	FrameLength uint16 // PSDU octets, including FCS.
	Whitening   bool
	FCS16       bool  // true for 2 octet CRC-16, false for 4 octet CRC-32.
	Mode        uint8 // Bits 13 - 15, opaque.
}

func set_phr_field(word *uint16, lsb int, width int, value uint16) {
	var mask = uint16(1<<width) - 1
	*word = (*word &^ (mask << lsb)) | ((value & mask) << lsb)
}

func get_phr_field(word uint16, lsb int, width int) uint16 {
	return (word >> lsb) & (uint16(1<<width) - 1)
}

/*-------------------------------------------------------------
 *
 * Name:	DecodeHeader
 *
 * Purpose:	Split a received PHR into its fields.
 *
 * Inputs:	word	- 16 bits, first received bit in the MSB.
 *
 * Returns:	Header fields.  Every bit pattern is acceptable here;
 *		whether the length makes sense depends on context.
 *
 *--------------------------------------------------------------*/

func DecodeHeader(word uint16) Header {
	return Header{
		FrameLength: get_phr_field(word, 0, 11),
		Whitening:   get_phr_field(word, phrDWBit, 1) != 0,
		FCS16:       get_phr_field(word, phrFCSBit, 1) != 0,
		Mode:        uint8(get_phr_field(word, phrModeShift, 3)),
	}
}

/*-------------------------------------------------------------
 *
 * Name:	EncodeHeader
 *
 * Purpose:	Inverse of DecodeHeader.
 *
 * Returns:	16 bit PHR or ErrInvalidLength.
 *
 *--------------------------------------------------------------*/

func EncodeHeader(h Header) (uint16, error) {
	if h.FrameLength > MAX_FRAME_LENGTH {
		return 0, fmt.Errorf("%w: %d > %d", ErrInvalidLength, h.FrameLength, MAX_FRAME_LENGTH)
	}

	var word uint16
	set_phr_field(&word, 0, 11, h.FrameLength)
	set_phr_field(&word, phrDWBit, 1, IfThenElse(h.Whitening, uint16(1), uint16(0)))
	set_phr_field(&word, phrFCSBit, 1, IfThenElse(h.FCS16, uint16(1), uint16(0)))
	set_phr_field(&word, phrModeShift, 3, uint16(h.Mode)&phrModeMask)

	return word, nil
}

func (h Header) FCSType() FCSType {
	return IfThenElse(h.FCS16, FCS_CRC16, FCS_CRC32)
}

// Number of trailing FCS octets in the PSDU.
func (h Header) FCSLen() int {
	return h.FCSType().Len()
}

func (h Header) String() string {
	return fmt.Sprintf("len=%d dw=%t fcs=%s mode=%d", h.FrameLength, h.Whitening, h.FCSType(), h.Mode)
}
