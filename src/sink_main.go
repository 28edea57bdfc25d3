package mrfsk

/*------------------------------------------------------------------
 *
 * Name:	mrfsk-sink
 *
 * Purpose:	Test application which decodes MR-FSK frames from a
 *		recorded bit stream.
 *
 * Description:	Both deframers run over the input at once, as they
 *		would behind a demodulator.  Every frame found is
 *		printed, good FCS or not, followed by totals.
 *
 *		The range options make it usable from test scripts:
 *
 *			mrfsk-source -n 100 -f -o z.bin
 *			mrfsk-sink -L 100 -G 100 z.bin
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

// Octets read from the input at a time.
const SINK_READ_SIZE = 4096

type SinkOptions struct {
	Unpacked        bool
	QueueCapacity   int
	TimestampFormat string // strftime, empty for none.

	PacketLog *PacketLog
	Publisher *PacketPublisher
}

type SinkResult struct {
	Good          int
	Bad           int
	FramingErrors int
}

/*------------------------------------------------------------------
 *
 * Name:	RunSink
 *
 * Purpose:	Decode everything from one input.
 *
 * Inputs:	r	- Packed bits, MSB first, or one bit per
 *			  octet if opts.Unpacked.
 *
 *		stats	- Counters, or nil.
 *
 * Returns:	Totals.  Packets are printed to stdout as they arrive.
 *
 *------------------------------------------------------------------*/

func RunSink(ctx context.Context, r io.Reader, opts SinkOptions, stats *Stats) (SinkResult, error) {
	var result SinkResult

	var queue = NewPacketQueue(opts.QueueCapacity)
	var receiver = NewReceiver(queue, stats)
	var src = make(chan []byte, RECEIVER_FEED_DEPTH)

	var framing_before [NUM_BRANCHES]float64
	if stats != nil {
		for b := range NUM_BRANCHES {
			framing_before[b] = CounterValue(stats.FramingErrors(Branch(b)))
		}
	}

	var g, gctx = errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(src)
		for {
			// Each chunk is owned by the receiver once sent.
			var buf = make([]byte, SINK_READ_SIZE)
			var n, err = r.Read(buf)
			if n > 0 {
				var chunk = buf[:n]
				if !opts.Unpacked {
					chunk = UnpackBits(chunk)
				}
				select {
				case src <- chunk:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		return receiver.Run(gctx, src)
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

			if p.CRCValid {
				result.Good++
			} else {
				result.Bad++
			}

			var now = time.Now()
			if opts.TimestampFormat != "" {
				var ts, terr = strftime.Format(opts.TimestampFormat, now)
				if terr == nil {
					dw_printf("[%s] ", ts)
				}
			}
			dw_printf("%s\n", p)

			if opts.PacketLog != nil {
				if lerr := opts.PacketLog.Write(p, now); lerr != nil {
					logger.Error("packet log", "err", lerr)
				}
			}
			if opts.Publisher != nil {
				if perr := opts.Publisher.Publish(p, now); perr != nil {
					logger.Warn("MQTT", "err", perr)
				}
			}
		}
	})

	var err = g.Wait()

	if stats != nil {
		for b := range NUM_BRANCHES {
			result.FramingErrors += int(CounterValue(stats.FramingErrors(Branch(b))) - framing_before[b])
		}
	}

	return result, err
}

func SinkMain() {
	var unpacked = pflag.BoolP("unpacked", "u", false, "Input is one bit per octet rather than 8.")
	var queueCapacity = pflag.IntP("queue-capacity", "q", DEFAULT_QUEUE_CAPACITY, "Decoded packets held before the deframers wait.")
	var timestampFormat = pflag.StringP("timestamp-format", "T", "", "Precede each packet with a time stamp.  strftime format, e.g. \"%H:%M:%S\".")
	var logDir = pflag.StringP("log-dir", "l", "", "Directory for daily CSV packet logs.")
	var logFile = pflag.String("log-file", "", "Single CSV packet log file.")
	var metricsFile = pflag.StringP("metrics-file", "M", "", "Write Prometheus counters here at the end, textfile collector format.")
	var mqttBroker = pflag.String("mqtt-broker", "", "Publish packets to this MQTT broker, e.g. tcp://localhost:1883.")
	var mqttTopicPrefix = pflag.String("mqtt-topic-prefix", DEFAULT_MQTT_TOPIC_PREFIX, "MQTT topic prefix.")
	var errorIfLessThan = pflag.IntP("error-if-less-than", "L", -1, "Error if fewer than this number of good packets decoded.")
	var errorIfGreaterThan = pflag.IntP("error-if-greater-than", "G", -1, "Error if more than this number of good packets decoded.")
	var logLevel = pflag.String("log-level", "info", "debug, info, warn or error.")
	var version = pflag.CountP("version", "v", "Print version and exit.  Twice for build details.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s decodes IEEE 802.15.4g MR-FSK frames from a recorded bit stream.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]... [FILE]...\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "With no FILE, or when FILE is -, read standard input.\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version > 0 {
		printVersion("mrfsk-sink", *version > 1)
		return
	}

	if err := SetLogLevel(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	if *logDir != "" && *logFile != "" {
		fmt.Fprintf(os.Stderr, "Use --log-dir or --log-file but not both.\n")
		os.Exit(1)
	}

	var opts = SinkOptions{
		Unpacked:        *unpacked,
		QueueCapacity:   *queueCapacity,
		TimestampFormat: *timestampFormat,
	}

	if *logDir != "" || *logFile != "" {
		var l, err = NewPacketLog(*logDir != "", IfThenElse(*logDir != "", *logDir, *logFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
		defer l.Close()
		opts.PacketLog = l
	}

	if *mqttBroker != "" {
		var mp, err = NewPacketPublisher(MQTTConfig{Broker: *mqttBroker, TopicPrefix: *mqttTopicPrefix})
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
		defer mp.Disconnect()
		opts.Publisher = mp
	}

	var registry = prometheus.NewRegistry()
	var stats = NewStats(registry)

	var files = pflag.Args()
	if len(files) == 0 {
		files = []string{"-"}
	}

	var start_time = time.Now()
	var total SinkResult

	for _, name := range files {
		var in io.Reader
		if name == "-" {
			in = os.Stdin
		} else {
			var f, err = os.Open(name)
			if err != nil {
				fmt.Printf("Couldn't open file for read: %s\n", name)
				os.Exit(1)
			}
			defer f.Close()
			in = f
		}

		var result, err = RunSink(context.Background(), in, opts, stats)
		if err != nil {
			fmt.Printf("%s: %s\n", name, err)
			os.Exit(1)
		}

		total.Good += result.Good
		total.Bad += result.Bad
		total.FramingErrors += result.FramingErrors
	}

	var elapsed = time.Since(start_time)

	fmt.Printf("\n")
	fmt.Printf("%d good, %d bad FCS, %d framing errors in %.3f seconds.\n",
		total.Good, total.Bad, total.FramingErrors, elapsed.Seconds())
	fmt.Printf("FEC corrected %.0f bits.\n", CounterValue(stats.CorrectedBits(BranchCoded)))

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, registry); err != nil {
			fmt.Fprintf(os.Stderr, "Can't write metrics: %s\n", err)
		}
	}

	if *errorIfLessThan >= 0 && total.Good < *errorIfLessThan {
		fmt.Printf("\n * * * TOO FEW PACKETS DECODED: %d < %d * * *\n", total.Good, *errorIfLessThan)
		os.Exit(1)
	}
	if *errorIfGreaterThan >= 0 && total.Good > *errorIfGreaterThan {
		fmt.Printf("\n * * * TOO MANY PACKETS DECODED: %d > %d * * *\n", total.Good, *errorIfGreaterThan)
		os.Exit(1)
	}
}
