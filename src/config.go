package mrfsk

/*------------------------------------------------------------------
 *
 * Purpose:	Read a burst description file for the frame generator.
 *
 * Description:	YAML, a list of encode requests.  Anything not given
 *		takes the same default as the command line.
 *
 *		bursts:
 *		  - payload_type: crc-test
 *		    preamble: 4
 *		  - payload: "de ad be ef"
 *		    fec: true
 *		    whitening: true
 *		    fcs16: true
 *		    iterations: 3
 *		    delay: 10
 *
 *------------------------------------------------------------------*/

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Octets written in YAML as a hex string.  Spaces and colons are
// allowed between octets.
type HexBytes []byte

func (h *HexBytes) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	var cleaned = strings.NewReplacer(" ", "", ":", "", "\t", "").Replace(s)
	var b, err = hex.DecodeString(cleaned)
	if err != nil {
		return fmt.Errorf("line %d: payload %q: %w", value.Line, s, err)
	}

	*h = b
	return nil
}

func (h HexBytes) String() string {
	return hex.EncodeToString(h)
}

type burstFile struct {
	Bursts []yaml.Node `yaml:"bursts"`
}

/*------------------------------------------------------------------
 *
 * Name:	ParseBurstConfig
 *
 * Inputs:	data	- YAML document.
 *
 * Returns:	Validated requests, in file order.
 *
 *------------------------------------------------------------------*/

func ParseBurstConfig(data []byte) ([]EncodeRequest, error) {
	var f burstFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	var requests = make([]EncodeRequest, 0, len(f.Bursts))
	for i := range f.Bursts {
		var r = DefaultEncodeRequest()
		if err := f.Bursts[i].Decode(&r); err != nil {
			return nil, fmt.Errorf("burst %d: %w", i+1, err)
		}
		if len(r.Payload) > 0 && r.PayloadType == PAYLOAD_CRC_TEST {
			// Giving a payload implies wanting it sent.
			r.PayloadType = PAYLOAD_BYTES
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("burst %d: %w", i+1, err)
		}
		requests = append(requests, r)
	}

	return requests, nil
}

func LoadBurstConfig(path string) ([]EncodeRequest, error) {
	var data, err = os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBurstConfig(data)
}
