package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Build MR-FSK PPDUs for transmission.
 *
 * Description:	The mirror image of the deframer.  For each frame:
 *
 *		- preamble, 0x55 repeated
 *		- SFD, 0x904e uncoded or 0x6f4e coded
 *		- PHR with length, DW and FCS type
 *		- PSDU: data followed by its FCS, whitened if DW
 *		- with FEC, PHR and PSDU are convolutionally coded and
 *		  interleaved as one span
 *
 *		Output is packed octets, first bit in the MSB, ready for
 *		a modulator.  UnpackBits gives one bit per byte.
 *
 *------------------------------------------------------------------*/

import (
	"errors"
	"fmt"
)

var ErrInvalidRequest = errors.New("invalid encode request")

const IDLE_OCTET = 0x00
const LEAD_IN_OCTET = 0xff

// Gives whatever is on the other end time to start up.
const DEFAULT_LEAD_IN_OCTETS = 50

type EncodeRequest struct {
	Iterations    int         `yaml:"iterations"`
	PreambleBytes int         `yaml:"preamble"`
	FEC           bool        `yaml:"fec"`
	Whitening     bool        `yaml:"whitening"`
	FCS16         bool        `yaml:"fcs16"`
	PayloadType   PayloadType `yaml:"payload_type"`
	Payload       HexBytes    `yaml:"payload"`
	PSDULength    int         `yaml:"psdu_length"` // Including FCS.  Used by pn9 and incr.  Octets per iteration for pn9-forever.
	DelayBytes    int         `yaml:"delay"`       // Idle octets after each frame.
	LeadInBytes   int         `yaml:"lead_in"`     // 0xff octets before the first frame.
	Mode          uint8       `yaml:"mode"`        // PHR bits 13 - 15.
}

func DefaultEncodeRequest() EncodeRequest {
	return EncodeRequest{
		Iterations:    1,
		PreambleBytes: 4,
		PayloadType:   PAYLOAD_CRC_TEST,
		LeadInBytes:   DEFAULT_LEAD_IN_OCTETS,
	}
}

func (r *EncodeRequest) FCSType() FCSType {
	return IfThenElse(r.FCS16, FCS_CRC16, FCS_CRC32)
}

func (r *EncodeRequest) Validate() error {
	switch {
	case r.Iterations < 1:
		return fmt.Errorf("%w: iteration count %d, must be at least 1", ErrInvalidRequest, r.Iterations)
	case r.PreambleBytes < 0:
		return fmt.Errorf("%w: preamble length %d", ErrInvalidRequest, r.PreambleBytes)
	case r.DelayBytes < 0:
		return fmt.Errorf("%w: inter-frame delay %d", ErrInvalidRequest, r.DelayBytes)
	case r.LeadInBytes < 0:
		return fmt.Errorf("%w: lead in %d", ErrInvalidRequest, r.LeadInBytes)
	case r.PSDULength < 0:
		return fmt.Errorf("%w: PSDU length %d", ErrInvalidRequest, r.PSDULength)
	case r.Mode > phrModeMask:
		return fmt.Errorf("%w: mode bits %d", ErrInvalidRequest, r.Mode)
	case r.PayloadType == PAYLOAD_PN9_FOREVER && r.PSDULength < 1:
		return fmt.Errorf("%w: %s needs a length", ErrInvalidRequest, r.PayloadType)
	}
	if _, err := ParsePayloadType(string(r.PayloadType)); err != nil && r.PayloadType != "" {
		return err
	}
	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	BuildPSDU
 *
 * Purpose:	Payload plus FCS, not whitened.
 *
 *------------------------------------------------------------------*/

func BuildPSDU(r EncodeRequest) ([]byte, error) {
	var data, err = payload_data(r.PayloadType, r.Payload, r.PSDULength, r.FCSType())
	if err != nil {
		return nil, err
	}
	return append(data, ComputeFCS(r.FCSType(), data)...), nil
}

/*------------------------------------------------------------------
 *
 * Name:	BuildPPDU
 *
 * Purpose:	One complete frame.
 *
 * Returns:	Packed octets, or ErrInvalidLength if the PSDU won't
 *		fit in the length field.  Nothing is produced on error.
 *
 *------------------------------------------------------------------*/

func BuildPPDU(r EncodeRequest) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var psdu, err = BuildPSDU(r)
	if err != nil {
		return nil, err
	}

	if len(psdu) > MAX_FRAME_LENGTH {
		return nil, fmt.Errorf("%w: PSDU of %d octets", ErrInvalidLength, len(psdu))
	}

	var phr, herr = EncodeHeader(Header{
		FrameLength: uint16(len(psdu)),
		Whitening:   r.Whitening,
		FCS16:       r.FCS16,
		Mode:        r.Mode,
	})
	if herr != nil {
		return nil, herr
	}

	if r.Whitening {
		psdu = WhitenBytes(psdu)
	}

	var span = make([]byte, 0, PHR_LENGTH+len(psdu))
	span = append(span, byte(phr>>8), byte(phr))
	span = append(span, psdu...)

	var branch = IfThenElse(r.FEC, BranchCoded, BranchUncoded)

	var out = make([]byte, 0, r.PreambleBytes+2+CodedSpanBits(len(span))/8)
	for range r.PreambleBytes {
		out = append(out, PREAMBLE_OCTET)
	}
	out = append(out, byte(branch.SFD()>>8), byte(branch.SFD()))

	if r.FEC {
		out = append(out, PackBits(FECEncode(span))...)
	} else {
		out = append(out, span...)
	}

	return out, nil
}

/*------------------------------------------------------------------
 *
 * Name:	GenerateBurst
 *
 * Purpose:	Everything a transmission run would send.
 *
 * Description:	Lead in, then for each iteration the frame, one idle
 *		octet so the last bit isn't clipped, and the requested
 *		inter-frame delay.
 *
 *		pn9-forever is different.  There is no lead in or
 *		framing, just Iterations * PSDULength octets of one
 *		PN9 sequence.
 *
 *------------------------------------------------------------------*/

func GenerateBurst(r EncodeRequest) ([]byte, error) {
	if r.PayloadType == PAYLOAD_PN9_FOREVER {
		if err := r.Validate(); err != nil {
			return nil, err
		}
		return pn9_stream(r.Iterations * r.PSDULength), nil
	}

	var ppdu, err = BuildPPDU(r)
	if err != nil {
		return nil, err
	}

	var out = make([]byte, 0, r.LeadInBytes+r.Iterations*(len(ppdu)+1+r.DelayBytes))
	for range r.LeadInBytes {
		out = append(out, LEAD_IN_OCTET)
	}

	for range r.Iterations {
		out = append(out, ppdu...)
		out = append(out, IDLE_OCTET)
		for range r.DelayBytes {
			out = append(out, IDLE_OCTET)
		}
	}

	logger.Debug("burst", "iterations", r.Iterations, "ppdu_octets", len(ppdu), "total_octets", len(out))

	return out, nil
}
