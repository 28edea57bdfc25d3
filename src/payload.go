package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Payload contents for generated test frames.
 *
 *		bytes		Caller supplied octets.
 *
 *		crc-test	40 00 56, the example from section 5.2.1.9
 *				of 802.15.4g-2012.  The PSDU length is
 *				forced to 5 (CRC-16) or 7 (CRC-32).
 *
 *		pn9		PN9 sequence, as used for conformance
 *				testing.
 *
 *		incr		Incrementing octet, bit reversed since the
 *				other end expects LSB first.  Used for
 *				Wi-SUN interop.
 *
 *		pn9-forever	Not a frame at all.  Raw PN9 octets with
 *				no preamble, SFD or PHR, for RF tests.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
	"math/bits"
)

type PayloadType string

const (
	PAYLOAD_BYTES    PayloadType = "bytes"
	PAYLOAD_CRC_TEST PayloadType = "crc-test"
	PAYLOAD_PN9      PayloadType = "pn9"
	PAYLOAD_INCR     PayloadType = "incr"

	PAYLOAD_PN9_FOREVER PayloadType = "pn9-forever"
)

var ErrUnknownPayloadType = errors.New("unknown payload type")

var crcTestPayload = []byte{0x40, 0x00, 0x56}

func ParsePayloadType(s string) (PayloadType, error) {
	switch t := PayloadType(s); t {
	case PAYLOAD_BYTES, PAYLOAD_CRC_TEST, PAYLOAD_PN9, PAYLOAD_INCR, PAYLOAD_PN9_FOREVER:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPayloadType, s)
	}
}

/*------------------------------------------------------------------
 *
 * Name:	payload_data
 *
 * Purpose:	Generate the data part of the PSDU, FCS not included.
 *
 * Inputs:	t		- Payload type.
 *		explicit	- Octets for PAYLOAD_BYTES.
 *		psdu_len	- Requested PSDU length including FCS.
 *				  Ignored for bytes and crc-test.
 *		fcs		- FCS type, for the length arithmetic.
 *
 *------------------------------------------------------------------*/

func payload_data(t PayloadType, explicit []byte, psdu_len int, fcs FCSType) ([]byte, error) {
	switch t {
	case PAYLOAD_BYTES, "":
		return append([]byte(nil), explicit...), nil

	case PAYLOAD_CRC_TEST:
		return append([]byte(nil), crcTestPayload...), nil

	case PAYLOAD_PN9:
		// Make sure length is at least enough to hold the FCS.
		var n = max(psdu_len, fcs.Len()) - fcs.Len()
		var p = NewPN9()
		var data = make([]byte, n)
		for i := range data {
			data[i] = p.Byte()
		}
		return data, nil

	case PAYLOAD_INCR:
		var n = max(psdu_len, fcs.Len()) - fcs.Len()
		var data = make([]byte, n)
		for i := range data {
			data[i] = bits.Reverse8(byte(i))
		}
		return data, nil

	case PAYLOAD_PN9_FOREVER:
		return nil, fmt.Errorf("%w: %s has no frame", ErrInvalidRequest, t)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPayloadType, string(t))
	}
}

/*------------------------------------------------------------------
 *
 * Name:	pn9_stream
 *
 * Purpose:	Unframed PN9 for pn9-forever.
 *
 * Inputs:	n	- Octets wanted.
 *
 * Returns:	One continuous sequence from the seed.  Unlike the pn9
 *		payload it isn't restarted anywhere.
 *
 *------------------------------------------------------------------*/

func pn9_stream(n int) []byte {
	var p = NewPN9()
	var out = make([]byte, n)
	for i := range out {
		out[i] = p.Byte()
	}
	return out
}
