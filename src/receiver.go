package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Run both deframer branches over one bit stream.
 *
 * Description:	Every chunk of bits from the source is handed to two
 *		goroutines, one per access code.  Each has its own
 *		correlator and deframer and shares nothing with the
 *		other except the packet queue they both feed.
 *
 *		Chunks are read, never written, by the branches.  The
 *		source must not modify a chunk after sending it.
 *
 *		A correlator match only starts a frame when its deframer
 *		is idle.  Once the PHR has been seen, the frame length
 *		alone decides where the frame ends, so payload or coded
 *		bits that happen to look like the access code can't cut
 *		it short.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Chunks buffered per branch before the fan-out waits.
const RECEIVER_FEED_DEPTH = 4

var ErrReceiverRunning = errors.New("receiver is running")

type branchPipeline struct {
	correlator *Correlator
	deframer   *Deframer
}

type Receiver struct {
	queue    *PacketQueue
	branches [NUM_BRANCHES]*branchPipeline

	// Held for the whole of Run.  The branch state belongs to the
	// Run goroutines until then.
	running sync.Mutex
}

func NewReceiver(queue *PacketQueue, stats *Stats) *Receiver {
	var r = &Receiver{queue: queue}
	for b := range NUM_BRANCHES {
		r.branches[b] = &branchPipeline{
			correlator: NewBranchCorrelator(Branch(b)),
			deframer:   NewDeframer(Branch(b), queue, stats),
		}
	}
	return r
}

// Deframer exposes a branch's state machine, mainly for tests.
func (r *Receiver) Deframer(b Branch) *Deframer {
	return r.branches[b].deframer
}

// Reset drops partial frames in both branches.  Only allowed while
// Run is not active, otherwise ErrReceiverRunning.
func (r *Receiver) Reset() error {
	if !r.running.TryLock() {
		return ErrReceiverRunning
	}
	defer r.running.Unlock()

	for _, bp := range r.branches {
		bp.correlator.Reset()
		bp.deframer.Reset()
	}
	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	put
 *
 * Purpose:	One bit through one branch.
 *
 * Description:	The bit goes to the deframer first.  If it completes
 *		the access code and the deframer isn't already in a
 *		frame, the deframer is told the next bit starts one.
 *
 *		Framing errors have already been logged and counted by
 *		the deframer; they are not a reason to stop.
 *
 *------------------------------------------------------------------*/

func (bp *branchPipeline) put(ctx context.Context, bit byte) error {
	var err = bp.deframer.PutBit(ctx, bit)
	if err != nil && !errors.Is(err, ErrFraming) {
		return err
	}

	if bp.correlator.Put(bit) && !bp.deframer.InFrame() {
		logger.Debug("access code", "branch", bp.deframer.Branch())
		_ = bp.deframer.Sync()
	}
	return nil
}

/*------------------------------------------------------------------
 *
 * Name:	Run
 *
 * Purpose:	Process bits until the source is closed.
 *
 * Inputs:	src	- Chunks of bits, one per byte.
 *
 * Returns:	nil when the source was exhausted, otherwise the
 *		first error (usually context cancellation).
 *
 *		The queue is closed on return either way, so a consumer
 *		blocked in Get will see ErrQueueClosed once it has
 *		drained everything.
 *
 *		ErrReceiverRunning, with the queue left alone, if Run
 *		is already active.
 *
 *------------------------------------------------------------------*/

func (r *Receiver) Run(ctx context.Context, src <-chan []byte) error {
	if !r.running.TryLock() {
		return ErrReceiverRunning
	}
	defer r.running.Unlock()

	defer r.queue.Close()

	var g, gctx = errgroup.WithContext(ctx)

	var feeds [NUM_BRANCHES]chan []byte
	for i := range feeds {
		feeds[i] = make(chan []byte, RECEIVER_FEED_DEPTH)
	}

	g.Go(func() error {
		defer func() {
			for _, f := range feeds {
				close(f)
			}
		}()

		for {
			select {
			case chunk, ok := <-src:
				if !ok {
					return nil
				}
				for _, f := range feeds {
					select {
					case f <- chunk:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	for i, bp := range r.branches {
		var feed = feeds[i]
		g.Go(func() error {
			for chunk := range feed {
				for _, bit := range chunk {
					if err := bp.put(gctx, bit); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}

	return g.Wait()
}

/*------------------------------------------------------------------
 *
 * Name:	DecodeBits
 *
 * Purpose:	Convenience for offline use: run a receiver over a
 *		complete bit stream and collect everything it delivers.
 *
 * Returns:	Packets in delivery order.  Order between the two
 *		branches is not defined.
 *
 *------------------------------------------------------------------*/

func DecodeBits(ctx context.Context, bits []byte, stats *Stats) ([]*Packet, error) {
	var queue = NewPacketQueue(DEFAULT_QUEUE_CAPACITY)
	var r = NewReceiver(queue, stats)

	var src = make(chan []byte, 1)
	src <- bits
	close(src)

	var g, gctx = errgroup.WithContext(ctx)
	var packets []*Packet

	g.Go(func() error {
		return r.Run(gctx, src)
	})

	g.Go(func() error {
		for {
			var p, err = queue.Get(gctx)
			if errors.Is(err, ErrQueueClosed) {
				return nil
			}
			if err != nil {
				return err
			}
			packets = append(packets, p)
		}
	})

	var err = g.Wait()
	return packets, err
}
