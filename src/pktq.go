package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:   	Received packet queue.
 *
 * Description: Each deframer runs in its own goroutine.  This queue
 *		collects completed packets from both of them so a single
 *		consumer can process them serially.
 *
 *		The queue is bounded.  A deframer which finds it full
 *		waits for the consumer rather than throwing the packet
 *		away.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Decoded packets held before the deframers have to wait.
const DEFAULT_QUEUE_CAPACITY = 2

var ErrQueueClosed = errors.New("packet queue closed")

/*
 * A decoded frame.  Nobody modifies it after it has been queued.
 */

type Packet struct {
	PHR           uint16
	Branch        Branch
	CRCValid      bool
	Payload       []byte // PSDU, FCS included.
	CorrectedBits int    // Coded bits the FEC decoder had to fix.  Always 0 for uncoded.
}

func (p *Packet) Coded() bool {
	return p.Branch == BranchCoded
}

func (p *Packet) Header() Header {
	return DecodeHeader(p.PHR)
}

// Payload without the trailing FCS.
func (p *Packet) Data() []byte {
	var n = len(p.Payload) - p.Header().FCSLen()
	if n < 0 {
		return nil
	}
	return p.Payload[:n]
}

func (p *Packet) String() string {
	var sb strings.Builder
	if p.Coded() {
		sb.WriteString("FEC ")
	}
	fmt.Fprintf(&sb, "PHR:%04x ", p.PHR)
	var h = p.Header()
	if h.Whitening {
		sb.WriteString("dw ")
	}
	fmt.Fprintf(&sb, "%s-%s ", h.FCSType(), IfThenElse(p.CRCValid, "ok", "fail"))
	sb.WriteString(hex_string(p.Payload))
	return sb.String()
}

type PacketQueue struct {
	ch        chan *Packet
	done      chan struct{}
	closeOnce sync.Once
}

func NewPacketQueue(capacity int) *PacketQueue {
	if capacity < 1 {
		capacity = DEFAULT_QUEUE_CAPACITY
	}
	return &PacketQueue{
		ch:   make(chan *Packet, capacity),
		done: make(chan struct{}),
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Put
 *
 * Purpose:     Add a received packet to the end of the queue.
 *
 * Inputs:	ctx	- Cancels the wait when the queue is full.
 *
 *		p	- Caller should make no further references to it.
 *
 * Returns:	nil, ctx.Err(), or ErrQueueClosed.
 *
 *--------------------------------------------------------------------*/

func (q *PacketQueue) Put(ctx context.Context, p *Packet) error {
	Assert(p != nil)

	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.ch <- p:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

/*-------------------------------------------------------------------
 *
 * Name:        Get
 *
 * Purpose:     Wait for the next packet.
 *
 * Returns:	Packet, or ErrQueueClosed once the queue has been
 *		closed and everything in it has been taken.
 *
 *--------------------------------------------------------------------*/

func (q *PacketQueue) Get(ctx context.Context) (*Packet, error) {
	select {
	case p := <-q.ch:
		return p, nil
	default:
	}

	select {
	case p := <-q.ch:
		return p, nil
	case <-q.done:
		// Anything that was put before the close is still delivered.
		select {
		case p := <-q.ch:
			return p, nil
		default:
			return nil, ErrQueueClosed
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (q *PacketQueue) Len() int {
	return len(q.ch)
}

func (q *PacketQueue) Cap() int {
	return cap(q.ch)
}

// Close stops further Puts.  Safe to call more than once.
func (q *PacketQueue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
}
