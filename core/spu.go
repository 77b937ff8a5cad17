// spu.go - 16-channel sound register file and sample-tick producer

/*
spu.go implements the documented SOUNDxCNT/SAD/TMR/PNT/LEN register
block for all 16 hardware channels (8 full-featured, 6 also capable of
PSG square-wave generation, 2 also capable of noise generation) plus
the periodic tick that is this core's only audio output path. Actual
sample synthesis — PCM8/PCM16/ADPCM decode, PSG/noise generation, the
volume/panning mixdown into the master output — is out of scope, so
every tick pushes silence into AudioRing exactly as the original's own
generate_sample stub does; the channel registers themselves are fully
modelled so software sees correct readback and busy-bit behaviour.

A channel's busy bit rising edge schedules EventAudioChannelReset,
supplementing the original's own "TODO: Start channel" stub with the
one piece of per-channel state this core actually tracks: a length
countdown in LEN units, reloaded from PNT (loop start) on a Loop
repeat and cleared (clearing busy) on Manual/OneShot exhaustion,
advanced by EventAudioChannelStep at a rate derived from the channel's
own timer reload value — the real register driving real playback rate,
even though nothing here decodes a waveform from it.

Grounded on original_source/core/src/hw/spu/{mod,registers}.rs.
*/

package core

// spuClockRate/spuSampleRate reproduce the original's own
// CLOCK_RATE/sample_rate() derivation of clocks-per-sample; 32768Hz is
// the documented fixed generation rate the original's own TODO leaves
// unresampled to the host device rate.
const (
	spuClockRate       = 33_513_982
	spuSampleRate      = 32_768
	spuClocksPerSample = spuClockRate / spuSampleRate
	spuChannelCount    = 16
)

type repeatMode uint8

const (
	repeatManual repeatMode = iota
	repeatLoop
	repeatOneShot
)

type sampleFormat uint8

const (
	formatPCM8 sampleFormat = iota
	formatPCM16
	formatADPCM
	formatSpecial
)

// channelKind distinguishes the three capability tiers real hardware
// assigns by channel index: 0-7 are base (PCM/ADPCM only), 8-13 also
// support PSG square waves, 14-15 also support noise generation.
type channelKind uint8

const (
	channelBase channelKind = iota
	channelPSG
	channelNoise
)

func kindForChannel(i int) channelKind {
	switch {
	case i >= 14:
		return channelNoise
	case i >= 8:
		return channelPSG
	default:
		return channelBase
	}
}

// soundChannel is one 16-byte hardware channel: SOUNDxCNT plus
// SAD/TMR/PNT/LEN, and the length countdown EventAudioChannelStep
// advances.
type soundChannel struct {
	kind channelKind

	volumeMul uint8
	volumeDiv uint8
	hold      bool
	panning   uint8
	waveDuty  uint8
	repeat    repeatMode
	format    sampleFormat
	busy      bool

	srcAddr   uint32
	timerVal  uint16
	loopStart uint16
	length    uint32

	remaining uint32
}

func (ch *soundChannel) readCNT(byteIdx int) byte {
	switch byteIdx {
	case 0:
		return ch.volumeMul
	case 1:
		v := ch.volumeDiv & 0x3
		if ch.hold {
			v |= 0x80
		}
		return v
	case 2:
		return ch.panning
	case 3:
		v := ch.waveDuty & 0x7
		v |= uint8(ch.repeat) << 3 & 0x18
		v |= uint8(ch.format) << 5 & 0x60
		if ch.busy {
			v |= 0x80
		}
		return v
	default:
		return 0
	}
}

// writeCNT mirrors the original's ChannelControl::write: the busy
// bit's rising edge (byte 3, bit 7) is where real hardware latches
// SAD/TMR/PNT/LEN and starts playback, so that's where startChannel
// fires.
func (ch *soundChannel) writeCNT(sp *SPU, index, byteIdx int, value byte) {
	switch byteIdx {
	case 0:
		ch.volumeMul = value & 0x3F
	case 1:
		ch.volumeDiv = value & 0x3
		ch.hold = value&0x80 != 0
	case 2:
		ch.panning = value & 0x7F
	case 3:
		ch.waveDuty = value & 0x7
		ch.repeat = repeatMode(value >> 3 & 0x3)
		ch.format = sampleFormat(value >> 5 & 0x3)
		wasBusy := ch.busy
		ch.busy = value&0x80 != 0
		if !wasBusy && ch.busy {
			sp.startChannel(index)
		}
	}
}

func (ch *soundChannel) read(byteIdx int) byte {
	shift16 := uint(8 * (byteIdx & 0x1))
	shift32 := uint(8 * (byteIdx & 0x3))
	switch {
	case byteIdx <= 3:
		return ch.readCNT(byteIdx)
	case byteIdx <= 7:
		return byte(ch.srcAddr >> shift32)
	case byteIdx <= 9:
		return byte(ch.timerVal >> shift16)
	case byteIdx <= 11:
		return byte(ch.loopStart >> shift16)
	default:
		return byte(ch.length >> shift32)
	}
}

func (ch *soundChannel) write(sp *SPU, index, byteIdx int, value byte) {
	shift16 := uint(8 * (byteIdx & 0x1))
	shift32 := uint(8 * (byteIdx & 0x3))
	switch {
	case byteIdx <= 3:
		ch.writeCNT(sp, index, byteIdx, value)
	case byteIdx <= 7:
		mask := uint32(0xFF) << shift32
		ch.srcAddr = (ch.srcAddr&^mask | uint32(value)<<shift32) & 0x03FF_FFFF
	case byteIdx <= 9:
		mask := uint16(0xFF) << shift16
		ch.timerVal = ch.timerVal&^mask | uint16(value)<<shift16
	case byteIdx <= 11:
		mask := uint16(0xFF) << shift16
		ch.loopStart = ch.loopStart&^mask | uint16(value)<<shift16
	default:
		mask := uint32(0xFF) << shift32
		ch.length = (ch.length&^mask | uint32(value)<<shift32) & 0x003F_FFFF
	}
}

// SPU owns all 16 channels' register files and the scheduler-driven
// sample tick this core ever pushes to AudioRing.
type SPU struct {
	channels [spuChannelCount]soundChannel
	sched    *Scheduler
	audio    *AudioRing
}

// NewSPU assigns each channel its capability tier and schedules the
// first sample tick.
func NewSPU(sched *Scheduler, audio *AudioRing) *SPU {
	sp := &SPU{sched: sched, audio: audio}
	for i := range sp.channels {
		sp.channels[i].kind = kindForChannel(i)
	}
	sp.scheduleSample()
	return sp
}

// scheduleSample is EventAudioSampleDue's self-rescheduling handler:
// it pushes silence, matching the original's own unfinished mixer, and
// reschedules itself at the fixed 32.768kHz cadence.
func (sp *SPU) scheduleSample() {
	sp.sched.Schedule(EventAudioSampleDue, EventPayload{}, spuClocksPerSample, func(EventPayload) {
		sp.audio.Push(StereoSample{})
		sp.scheduleSample()
	})
}

// startChannel is EventAudioChannelReset's trigger: the busy bit's
// rising edge loads the length countdown from LEN and schedules the
// first step tick, standing in for the sample synthesis this core
// does not perform.
func (sp *SPU) startChannel(index int) {
	sp.sched.Schedule(EventAudioChannelReset, EventPayload{Index: index}, 0, func(EventPayload) {
		ch := &sp.channels[index]
		ch.remaining = ch.length
		sp.scheduleStep(index)
	})
}

func (sp *SPU) scheduleStep(index int) {
	ch := &sp.channels[index]
	period := uint64(0x1_0000 - uint32(ch.timerVal))
	sp.sched.Schedule(EventAudioChannelStep, EventPayload{Index: index}, period, func(EventPayload) {
		sp.step(index)
	})
}

// step is EventAudioChannelStep's handler: it advances one channel's
// length countdown by one tick. A Loop channel reloads from its
// loop-start point and keeps running; a Manual or OneShot channel
// clears its busy bit once exhausted, exactly as real hardware goes
// silent at the end of a non-looping sample.
func (sp *SPU) step(index int) {
	ch := &sp.channels[index]
	if !ch.busy {
		return
	}
	if ch.remaining > 0 {
		ch.remaining--
	}
	if ch.remaining > 0 {
		sp.scheduleStep(index)
		return
	}
	if ch.repeat == repeatLoop && ch.length > uint32(ch.loopStart) {
		ch.remaining = ch.length - uint32(ch.loopStart)
		sp.scheduleStep(index)
		return
	}
	ch.busy = false
}

// ReadByte/WriteByte implement the 16-byte-per-channel register window
// spanning all 16 channels (SOUND0CNT..SOUND15LEN).
func (sp *SPU) ReadByte(reg uint32) byte {
	index := int(reg>>4) & 0xF
	return sp.channels[index].read(int(reg & 0xF))
}

func (sp *SPU) WriteByte(reg uint32, value byte) {
	index := int(reg>>4) & 0xF
	sp.channels[index].write(sp, index, int(reg&0xF), value)
}
