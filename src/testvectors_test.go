package mrfsk

import (
	"encoding/hex"
	"strings"
)

// Example input: "55 55 90 4e 10 05 40 00 56 27 9e"
func hexStringToBytes(s string) []byte {
	var data, err = hex.DecodeString(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		panic(err)
	}
	return data
}

// Bits as the demodulator would deliver them: some idle 0xff before and
// after so the correlators see a clean start and the deframer a clean end.
func framedBits(s string) []byte {
	var b = make([]byte, 0, 64)
	b = append(b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	b = append(b, hexStringToBytes(s)...)
	b = append(b, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)
	return UnpackBits(b)
}

// 802.15.4g-2012 example PSDU: 40 00 56 followed by its CRC-32.
const (
	vectorUncodedCRC32    = "55 55 55 55 90 4e 00 07 40 00 56 5d 29 fa 28"
	vectorUncodedCRC16    = "55 55 90 4e 10 05 40 00 56 27 9e"
	vectorUncodedWhitened = "55 55 55 90 4e 08 07 4f 70 e5 32 6a 62 60"
	vectorCoded           = "55 55 55 55 6f 4e bf 7f 3f ff fc fd fc f2 37 aa bc b7 5e 13 a4 5d b2 f0 b4 3c"

	// Coded part of vectorCoded, i.e. what follows the SFD.
	annexCodedSpan = "bf 7f 3f ff fc fd fc f2 37 aa bc b7 5e 13 a4 5d b2 f0 b4 3c"
	annexSpan      = "00 07 40 00 56 5d 29 fa 28"
)

// Bit offset of the first PHR bit in framedBits(vectorCoded).
const codedSpanOffset = 8*8 + 6*8
