package audio

import (
	"encoding/hex"
	"strings"
)

type signature struct {
	prefix string
	format Format
}

// Checked in order against the upper-case hex of the first four bytes.
var signatures = []signature{
	{"52494646", FormatWAV},  // RIFF
	{"494433", FormatMP3},    // ID3
	{"FFFB", FormatMP3},      // MPEG-1 layer III
	{"FFF3", FormatMP3},      // MPEG-2 layer III
	{"664C6143", FormatFLAC}, // fLaC
	{"4F676753", FormatOGG},  // OggS
	{"234F5044", FormatSILK}, // #OPD
	{"4F5044", FormatSILK},
	{"1AE3", FormatM4A},
}

// EBML header, i.e. WebM from MediaRecorder.
const ebmlMagic = "1A45DFA3"

// Classify identifies the format of b from its leading bytes. It is pure and
// never fails.
func Classify(b []byte) Format {
	if len(b) < 4 {
		return DefaultFormat
	}
	head := strings.ToUpper(hex.EncodeToString(b[:4]))
	for _, sig := range signatures {
		if strings.HasPrefix(head, sig.prefix) {
			return sig.format
		}
	}
	lead := b[:min(len(b), 20)]
	if strings.HasPrefix(strings.ToUpper(hex.EncodeToString(lead)), ebmlMagic) {
		return FormatOGGOpus
	}
	return DefaultFormat
}
