// Package haptic delivers the "phase complete" signal: an audible
// two-pulse tone through oto, a terminal bell, or nothing at all.
package haptic

import (
	"encoding/binary"
	"math"
	"time"
)

// Pattern alternates off and on segments, starting with off, the same
// way a vibration waveform is described.
type Pattern []time.Duration

// DefaultPattern is a double pulse: wait 0, buzz 200ms, rest 100ms, buzz 200ms.
var DefaultPattern = Pattern{0, 200 * time.Millisecond, 100 * time.Millisecond, 200 * time.Millisecond}

// Total returns the overall length of the pattern.
func (p Pattern) Total() time.Duration {
	var total time.Duration
	for _, seg := range p {
		total += seg
	}
	return total
}

// Audio parameters for synthesised tones.
const (
	SampleRate   = 44100
	ChannelCount = 1
	toneHz       = 880.0
	amplitude    = 0.35
	rampSamples  = 64 // short fade to avoid clicks at segment edges
)

// synthesize renders p as signed 16-bit little-endian mono PCM, with a
// sine tone in the "on" segments and silence in the "off" ones.
func synthesize(p Pattern, sampleRate int, hz float64) []byte {
	total := int(p.Total().Seconds() * float64(sampleRate))
	pcm := make([]byte, 0, total*2)

	var phase int
	for i, seg := range p {
		n := int(seg.Seconds() * float64(sampleRate))
		on := i%2 == 1
		for s := 0; s < n; s++ {
			var v float64
			if on {
				env := 1.0
				if s < rampSamples {
					env = float64(s) / rampSamples
				} else if n-s < rampSamples {
					env = float64(n-s) / rampSamples
				}
				v = amplitude * env * math.Sin(2*math.Pi*hz*float64(phase)/float64(sampleRate))
			}
			phase++
			pcm = binary.LittleEndian.AppendUint16(pcm, uint16(int16(v*math.MaxInt16)))
		}
	}
	return pcm
}
