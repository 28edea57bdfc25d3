package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Extract MR-FSK frames from a synchronized bit stream.
 *
 * Description:	One deframer exists per access code.  The uncoded one
 *		sees frames that followed SFD 0x904e, the coded one
 *		frames that followed SFD 0x6f4e.  The branch is fixed
 *		when the deframer is created and each one owns all of
 *		its state so they can run in separate goroutines.
 *
 *		AwaitingAccessCode
 *			Bits are ignored until Sync is called.
 *
 *		HeaderPending
 *			Uncoded: collect the 16 PHR bits.
 *			Coded: collect the first 64 coded bits, which is
 *			the shortest possible coded span, and run them
 *			through the Viterbi decoder to get the PHR.
 *
 *		PayloadPending
 *			Uncoded: collect frame length octets.
 *			Coded: collect the whole coded span and decode it
 *			in one go with the known termination state.
 *			Dewhiten the PSDU if the DW bit is set, then
 *			check the FCS.
 *
 *		FrameComplete
 *			Hand the packet to the queue, waiting if it is
 *			full, then go back to AwaitingAccessCode.
 *
 *		A packet with a bad FCS is still delivered, marked as
 *		such.  Frames that can't be delimited (length too short
 *		for the FCS, a Sync in the middle, a coded PHR that
 *		decodes differently the second time around) are dropped
 *		with ErrFraming.  The Receiver never calls Sync in the
 *		middle of a frame; other synchronizers might.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
)

type DeframerState int

const (
	StateAwaitingAccessCode DeframerState = iota
	StateHeaderPending
	StatePayloadPending
	StateFrameComplete
)

// Coded bits needed before the PHR can be decoded.
const CODED_HEADER_BITS = 2 * INTERLEAVER_BITS

var ErrFraming = errors.New("framing error")

func (s DeframerState) String() string {
	switch s {
	case StateAwaitingAccessCode:
		return "AwaitingAccessCode"
	case StateHeaderPending:
		return "HeaderPending"
	case StatePayloadPending:
		return "PayloadPending"
	case StateFrameComplete:
		return "FrameComplete"
	default:
		return fmt.Sprintf("DeframerState(%d)", int(s))
	}
}

type Deframer struct {
	branch Branch
	state  DeframerState
	buf    *BitBuffer
	need   int // Bits required to leave the current state.

	phr    uint16
	header Header

	queue *PacketQueue
	stats *Stats
}

/*------------------------------------------------------------------
 *
 * Name:	NewDeframer
 *
 * Inputs:	branch	- Which access code feeds this one.
 *
 *		queue	- Where completed packets go.  May be shared
 *			  with the other branch.
 *
 *		stats	- Counters, or nil.
 *
 *------------------------------------------------------------------*/

func NewDeframer(branch Branch, queue *PacketQueue, stats *Stats) *Deframer {
	Assert(queue != nil)
	return &Deframer{
		branch: branch,
		state:  StateAwaitingAccessCode,
		buf:    NewBitBuffer(),
		queue:  queue,
		stats:  stats,
	}
}

func (d *Deframer) Branch() Branch {
	return d.branch
}

func (d *Deframer) State() DeframerState {
	return d.state
}

// InFrame is true between Sync and the end of the frame.
func (d *Deframer) InFrame() bool {
	return d.state == StateHeaderPending || d.state == StatePayloadPending
}

// Reset throws away any partial frame.
func (d *Deframer) Reset() {
	d.state = StateAwaitingAccessCode
	d.buf.Clear()
	d.need = 0
	d.phr = 0
	d.header = Header{}
}

/*------------------------------------------------------------------
 *
 * Name:	Sync
 *
 * Purpose:	The synchronizer found our access code.  The next bit
 *		is the first bit of the PHR.
 *
 * Returns:	ErrFraming if this cut short a frame in progress.  The
 *		new frame is started regardless.
 *
 *------------------------------------------------------------------*/

func (d *Deframer) Sync() error {
	var err error
	if d.InFrame() {
		err = d.abandon("access code before end of frame")
	}

	d.Reset()
	d.state = StateHeaderPending
	d.need = IfThenElse(d.branch == BranchCoded, CODED_HEADER_BITS, PHR_BITS)

	return err
}

/*------------------------------------------------------------------
 *
 * Name:	PutBit
 *
 * Purpose:	Process one received bit.
 *
 * Inputs:	ctx	- Only used while waiting for room in the queue.
 *
 *		bit	- 0 or 1.
 *
 * Returns:	ErrFraming when a frame had to be dropped, or the
 *		queue error if the packet could not be delivered.
 *
 *------------------------------------------------------------------*/

func (d *Deframer) PutBit(ctx context.Context, bit byte) error {
	if !d.InFrame() {
		return nil
	}

	if !d.buf.Append(bit) {
		return d.abandon("bit buffer overflow")
	}

	if !d.buf.HasAtLeast(d.need) {
		return nil
	}

	if d.state == StateHeaderPending {
		if err := d.headerComplete(); err != nil {
			return err
		}
		if !d.buf.HasAtLeast(d.need) {
			return nil
		}
	}

	return d.frameComplete(ctx)
}

func (d *Deframer) headerComplete() error {
	if d.branch == BranchCoded {
		var bits, _ = ConvDecode(Interleave(d.buf.Bits()[:CODED_HEADER_BITS]), -1)
		var hb = PackBits(bits[:PHR_BITS])
		d.phr = uint16(hb[0])<<8 | uint16(hb[1])
	} else {
		var hb = d.buf.Bytes(0, PHR_LENGTH)
		d.phr = uint16(hb[0])<<8 | uint16(hb[1])
	}

	d.header = DecodeHeader(d.phr)

	logger.Debug("PHR", "branch", d.branch, "phr", fmt.Sprintf("%04x", d.phr), "header", d.header)

	if int(d.header.FrameLength) < d.header.FCSLen() {
		return d.abandon(fmt.Sprintf("frame length %d too short for %s", d.header.FrameLength, d.header.FCSType()))
	}

	if d.branch == BranchCoded {
		d.need = CodedSpanBits(PHR_LENGTH + int(d.header.FrameLength))
	} else {
		d.need = PHR_BITS + 8*int(d.header.FrameLength)
	}
	d.state = StatePayloadPending

	return nil
}

func (d *Deframer) frameComplete(ctx context.Context) error {
	var length = int(d.header.FrameLength)
	var psdu []byte
	var corrected int

	if d.branch == BranchCoded {
		var span []byte
		span, corrected = FECDecode(d.buf.Bits(), PHR_LENGTH+length)
		var phr = uint16(span[0])<<8 | uint16(span[1])
		if phr != d.phr {
			return d.abandon(fmt.Sprintf("PHR %04x decoded as %04x with full span", d.phr, phr))
		}
		psdu = span[PHR_LENGTH:]
	} else {
		psdu = d.buf.Bytes(PHR_BITS, length)
	}

	if d.header.Whitening {
		psdu = WhitenBytes(psdu)
	}

	var p = &Packet{
		PHR:           d.phr,
		Branch:        d.branch,
		CRCValid:      VerifyFCS(d.header.FCSType(), psdu),
		Payload:       psdu,
		CorrectedBits: corrected,
	}

	d.state = StateFrameComplete
	d.stats.packetReceived(p)

	if p.CRCValid {
		logger.Debug("frame", "branch", d.branch, "len", length, "corrected", corrected)
	} else {
		logger.Warn("FCS mismatch", "branch", d.branch, "phr", fmt.Sprintf("%04x", d.phr), "len", length)
	}

	var err = d.queue.Put(ctx, p)
	d.Reset()
	return err
}

func (d *Deframer) abandon(reason string) error {
	d.stats.framingError(d.branch)
	logger.Warn("frame dropped", "branch", d.branch, "state", d.state, "reason", reason)
	d.Reset()
	return fmt.Errorf("%w: %s", ErrFraming, reason)
}
