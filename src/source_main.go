package mrfsk

/*------------------------------------------------------------------
 *
 * Name:	mrfsk-source
 *
 * Purpose:	Test program for generating MR-FSK frames.
 *
 * Description:	Frames are written as a bit stream, packed 8 to an
 *		octet with the first bit in the MSB, or one bit per
 *		octet for tools that want it that way.  Feed the result
 *		to a modulator or straight into mrfsk-sink.
 *
 * Examples:	The CRC test frame, uncoded then coded:
 *
 *			mrfsk-source -o z1.bin
 *			mrfsk-sink z1.bin
 *
 *			mrfsk-source -f -w -o z2.bin
 *			mrfsk-sink z2.bin
 *
 *		User-defined content:
 *
 *			mrfsk-source -x "de ad be ef" -c -n 10 -o z3.bin
 *
 *		Several different bursts in one file:
 *
 *			mrfsk-source -C bursts.yaml -o z4.bin
 *
 *------------------------------------------------------------------*/

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

func SourceMain() {
	var req = DefaultEncodeRequest()

	var iterations = pflag.IntP("iterations", "n", req.Iterations, "Number of times to send each frame.")
	var preamble = pflag.IntP("preamble", "p", req.PreambleBytes, "Preamble length in octets of 0x55.")
	var fec = pflag.BoolP("fec", "f", false, "Convolutional coding and interleaving (SFD 0x6f4e).")
	var whitening = pflag.BoolP("whitening", "w", false, "PN9 data whitening of the PSDU.")
	var fcs16 = pflag.BoolP("fcs16", "c", false, "2 octet CRC-16 FCS rather than 4 octet CRC-32.")
	var payloadType = pflag.StringP("payload-type", "t", string(req.PayloadType), `Frame contents.
crc-test = 40 00 56, the FCS example from 802.15.4g.
pn9 = PN9 sequence, length from --psdu-length.
incr = Incrementing octets, bit reversed, length from --psdu-length.
bytes = Octets from --payload.
pn9-forever = Unframed PN9 sequence for RF tests, --psdu-length octets per iteration.`)
	var payloadHex = pflag.StringP("payload", "x", "", "Payload as hex octets, e.g. \"de ad be ef\".  Implies --payload-type bytes.")
	var psduLength = pflag.IntP("psdu-length", "l", 0, "PSDU length, FCS included, for pn9 and incr.")
	var mode = pflag.Uint8P("mode", "m", 0, "Value for the PHR mode bits, 0 - 7.")
	var delay = pflag.IntP("delay", "d", 0, "Idle octets after each frame.")
	var leadIn = pflag.IntP("lead-in", "L", req.LeadInBytes, "Octets of 0xff before the first frame.")
	var configFile = pflag.StringP("config", "C", "", "YAML file listing bursts.  Frame options on the command line are ignored.")
	var outputFile = pflag.StringP("output-file", "o", "-", "Write bits here.  - for stdout.")
	var unpacked = pflag.BoolP("unpacked", "u", false, "One bit per octet rather than 8.")
	var logLevel = pflag.String("log-level", "info", "debug, info, warn or error.")
	var version = pflag.CountP("version", "v", "Print version and exit.  Twice for build details.")
	var help = pflag.BoolP("help", "h", false, "Display help text.")

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s generates IEEE 802.15.4g MR-FSK frames as a bit stream.\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n", os.Args[0])
		pflag.PrintDefaults()
	}

	pflag.Parse()

	if *help {
		pflag.Usage()
		os.Exit(1)
	}

	if *version > 0 {
		printVersion("mrfsk-source", *version > 1)
		return
	}

	if err := SetLogLevel(*logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	var requests []EncodeRequest

	if *configFile != "" {
		var r, err = LoadBurstConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Can't read %s: %s\n", *configFile, err)
			os.Exit(1)
		}
		requests = r
	} else {
		req.Iterations = *iterations
		req.PreambleBytes = *preamble
		req.FEC = *fec
		req.Whitening = *whitening
		req.FCS16 = *fcs16
		req.PSDULength = *psduLength
		req.Mode = *mode
		req.DelayBytes = *delay
		req.LeadInBytes = *leadIn

		var pt, err = ParsePayloadType(*payloadType)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			pflag.Usage()
			os.Exit(1)
		}
		req.PayloadType = pt

		if *payloadHex != "" {
			var b, herr = hex.DecodeString(strings.NewReplacer(" ", "", ":", "").Replace(*payloadHex))
			if herr != nil {
				fmt.Fprintf(os.Stderr, "Invalid payload \"%s\": %s\n", *payloadHex, herr)
				os.Exit(1)
			}
			req.Payload = b
			req.PayloadType = PAYLOAD_BYTES
		}

		requests = []EncodeRequest{req}
	}

	var out io.Writer
	if *outputFile == "-" {
		out = os.Stdout
	} else {
		var f, err = os.Create(*outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Can't create %s: %s\n", *outputFile, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	var w = bufio.NewWriter(out)

	var n, err = WriteBursts(w, requests, *unpacked)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	logger.Info("done", "bursts", len(requests), "octets", n)
}

/*------------------------------------------------------------------
 *
 * Name:	WriteBursts
 *
 * Purpose:	Generate each request in turn and write the result.
 *
 * Returns:	Number of octets written.  Nothing is written for a
 *		request that fails, or for any after it.
 *
 *------------------------------------------------------------------*/

func WriteBursts(w io.Writer, requests []EncodeRequest, unpacked bool) (int, error) {
	var total = 0
	for i, r := range requests {
		var burst, err = GenerateBurst(r)
		if err != nil {
			return total, fmt.Errorf("burst %d: %w", i+1, err)
		}
		if unpacked {
			burst = UnpackBits(burst)
		}
		var n, werr = w.Write(burst)
		total += n
		if werr != nil {
			return total, werr
		}
	}
	return total, nil
}
