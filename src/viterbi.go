package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Hard decision Viterbi decoder for the NRNSC code.
 *
 * Description:	The trellis has 8 states (previous three input bits).
 *		Branch metric is the Hamming distance between the
 *		received symbol and the symbol the branch would have
 *		produced.  The encoder always starts in state 0.
 *
 *		Nothing here can fail.  Bit errors beyond what the code
 *		can correct just produce wrong bits, which the FCS check
 *		will catch later.
 *
 *------------------------------------------------------------------*/

import "math"

const viterbiUnreachable = math.MaxInt32

/*------------------------------------------------------------------
 *
 * Name:	ConvDecode
 *
 * Purpose:	Find the most likely input sequence.
 *
 * Inputs:	coded		- Deinterleaved coded bits, ui1 then ui0.
 *				  An odd trailing bit is ignored.
 *
 *		end_state	- Known final encoder state, or -1 to
 *				  take whichever state has the best metric.
 *
 * Returns:	One decoded bit per coded symbol and the path metric,
 *		i.e. the number of received bits which had to be
 *		"corrected".
 *
 *------------------------------------------------------------------*/

func ConvDecode(coded []byte, end_state int) ([]byte, int) {
	var nsym = len(coded) / 2

	var metric [nrnscNumStates]int
	for s := range metric {
		metric[s] = viterbiUnreachable
	}
	metric[0] = 0

	// survivor[i][s] is the predecessor of state s at step i.
	var survivor = make([][nrnscNumStates]uint8, nsym)

	for i := range nsym {
		var r1, r0 = coded[2*i] & 1, coded[2*i+1] & 1

		var next [nrnscNumStates]int
		for s := range next {
			next[s] = viterbiUnreachable
		}

		for s := range nrnscNumStates {
			if metric[s] == viterbiUnreachable {
				continue
			}
			for bit := byte(0); bit <= 1; bit++ {
				var ui1, ui0 = nrnsc_outputs(s, bit)
				var ns = nrnsc_next_state(s, bit)
				var m = metric[s] + int(ui1^r1) + int(ui0^r0)
				if m < next[ns] {
					next[ns] = m
					survivor[i][ns] = uint8(s)
				}
			}
		}
		metric = next
	}

	var state = end_state
	if state < 0 || state >= nrnscNumStates || metric[state] == viterbiUnreachable {
		state = 0
		for s := range nrnscNumStates {
			if metric[s] < metric[state] {
				state = s
			}
		}
	}

	var corrected = metric[state]

	// Trace back.  The newest input bit is bit 0 of the state.
	var out = make([]byte, nsym)
	for i := nsym - 1; i >= 0; i-- {
		out[i] = byte(state & 1)
		state = int(survivor[i][state])
	}

	return out, corrected
}
