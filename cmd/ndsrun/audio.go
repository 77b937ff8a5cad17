// audio.go - oto v3 audio output, pulling from the console's sample ring

package main

import (
	"github.com/ebitengine/oto/v3"

	"github.com/coldsilicon/ndscore/core"
)

const sampleRate = 32768

// audioPlayer adapts core.AudioRing's Pop-driven interface to oto's
// Read-driven io.Reader contract: every Read call pulls as many ready
// samples as the host wants, repeating silence for any the ring can't
// supply yet rather than blocking the audio thread.
type audioPlayer struct {
	ctx    *oto.Context
	player *oto.Player
	ring   *core.AudioRing
}

func newAudioPlayer(ring *core.AudioRing) (*audioPlayer, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	ap := &audioPlayer{ctx: ctx, ring: ring}
	ap.player = ctx.NewPlayer(ap)
	return ap, nil
}

// Read implements io.Reader for oto.Player, emitting one little-endian
// int16 stereo pair (4 bytes) per ring sample popped.
func (ap *audioPlayer) Read(p []byte) (int, error) {
	n := len(p) / 4 * 4
	for i := 0; i < n; i += 4 {
		s, ok := ap.ring.Pop()
		if !ok {
			p[i], p[i+1], p[i+2], p[i+3] = 0, 0, 0, 0
			continue
		}
		p[i] = byte(s.L)
		p[i+1] = byte(s.L >> 8)
		p[i+2] = byte(s.R)
		p[i+3] = byte(s.R >> 8)
	}
	return n, nil
}

func (ap *audioPlayer) Start() { ap.player.Play() }

func (ap *audioPlayer) Close() error {
	return ap.player.Close()
}
