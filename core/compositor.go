// compositor.go - Per-scanline window, sprite, and colour-effect compositing

/*
compositor.go is invoked once per visible scanline (vcount 0..191) at
the start of that line's hblank. It renders every enabled background
according to the engine's BG mode (selecting which of BG0-3 are text,
affine, or bitmap per the documented mode table), computes the two
window regions' per-pixel membership, renders the OBJ layer, then walks
every pixel picking the top two opaque layers by priority (background
index breaks ties, lower index wins) and applies the window's selected
colour-special-effect: alpha blend between the top two layers, or a
brightness fade of the top layer toward white or black. A
semi-transparent sprite always blends regardless of the window's
configured effect. Master brightness is applied last, uniformly, after
all layer compositing.

Grounded on original_source/core/src/hw/gpu/engine2d.rs's line-drawing
and blending routines.
*/

package core

// bgKind classifies a background slot for the current BG mode.
type bgKind int

const (
	bgKindNone bgKind = iota
	bgKindText
	bgKindAffine
	bgKindBitmapDirect
	bgKindBitmapPalette
)

// modeTable[bgMode][bgIndex] selects how that background is rendered,
// following the documented mode 0-5 assignment (mode 6 is the ARM9-only
// large-bitmap direct mode, folded into bitmapDirect here since this
// core treats it identically for compositing purposes).
var modeTable = [7][4]bgKind{
	{bgKindText, bgKindText, bgKindText, bgKindText},                       // mode 0
	{bgKindText, bgKindText, bgKindText, bgKindAffine},                     // mode 1
	{bgKindText, bgKindText, bgKindAffine, bgKindAffine},                   // mode 2
	{bgKindText, bgKindText, bgKindText, bgKindAffine},                     // mode 3 (BG3 extended affine)
	{bgKindText, bgKindText, bgKindAffine, bgKindBitmapPalette},            // mode 4
	{bgKindText, bgKindText, bgKindBitmapDirect, bgKindBitmapDirect},       // mode 5
	{bgKindNone, bgKindNone, bgKindBitmapDirect, bgKindNone},               // mode 6
}

func (e *Engine2D) renderBackground(bg int, vcount int) (bgRow, bool) {
	mode := int(e.bgMode())
	if mode >= len(modeTable) {
		return bgRow{}, false // mode 7 has no table row and renders no background
	}
	kind := modeTable[mode][bg]
	switch kind {
	case bgKindText:
		return e.renderTextRow(bg, vcount), true
	case bgKindAffine:
		if bg < 2 {
			return bgRow{}, false
		}
		return e.renderAffineRow(bg, vcount), true
	case bgKindBitmapDirect:
		return e.renderBitmapRow(bg, vcount, true), true
	case bgKindBitmapPalette:
		return e.renderBitmapRow(bg, vcount, false), true
	default:
		return bgRow{}, false
	}
}

// inRange evaluates a rectangular window's membership for one pixel,
// with the documented wraparound when x1/y1 (the end coordinate) is
// less than x0/y0 (the start).
func inRange(pos, start, end uint8) bool {
	if start <= end {
		return uint8(pos) >= start && uint8(pos) < end
	}
	return uint8(pos) >= start || uint8(pos) < end
}

type windowSet struct {
	win0, win1 [screenWidth]bool
}

func (e *Engine2D) computeWindows(vcount int) windowSet {
	var ws windowSet
	if e.windowEnabled(0) {
		inY := inRange(uint8(vcount), e.win0Y0, e.win0Y1)
		if inY {
			for x := 0; x < screenWidth; x++ {
				ws.win0[x] = inRange(uint8(x), e.win0X0, e.win0X1)
			}
		}
	}
	if e.windowEnabled(1) {
		inY := inRange(uint8(vcount), e.win1Y0, e.win1Y1)
		if inY {
			for x := 0; x < screenWidth; x++ {
				ws.win1[x] = inRange(uint8(x), e.win1X0, e.win1X1)
			}
		}
	}
	return ws
}

// effectiveWinCnt returns the per-pixel enable bits (bg0..bg3, obj,
// effect) for whichever window region wins at this pixel, per the
// documented priority: win0, then win1, then obj-window, then win-out.
func (e *Engine2D) effectiveWinCnt(ws windowSet, sprites *spriteRow, x int) uint16 {
	anyWindow := e.windowEnabled(0) || e.windowEnabled(1) || e.objWindowEnabled()
	if !anyWindow {
		return 0x3F | 0x20 // everything enabled, effects on, no OBJ-window distinction needed
	}
	if e.windowEnabled(0) && ws.win0[x] {
		return e.winIn & 0x3F
	}
	if e.windowEnabled(1) && ws.win1[x] {
		return (e.winIn >> 8) & 0x3F
	}
	if e.objWindowEnabled() && sprites.window[x] {
		return (e.winOut >> 8) & 0x3F
	}
	return e.winOut & 0x3F
}

func clamp31(v int32) uint16 {
	if v < 0 {
		return 0
	}
	if v > 31 {
		return 31
	}
	return uint16(v)
}

func blendChannels(top, bottom uint16, eva, evb uint8) uint16 {
	blend := func(shift uint) uint16 {
		t := int32(top>>shift) & 0x1F
		b := int32(bottom>>shift) & 0x1F
		v := (t*int32(eva) + b*int32(evb)) / 16
		return clamp31(v)
	}
	r := blend(0)
	g := blend(5)
	b := blend(10)
	return r | g<<5 | b<<10
}

func brightnessUp(c uint16, factor int32) uint16 {
	adj := func(shift uint) uint16 {
		v := int32(c>>shift) & 0x1F
		v += ((31 - v) * factor) / 16
		return clamp31(v)
	}
	return adj(0) | adj(5)<<5 | adj(10)<<10
}

func brightnessDown(c uint16, factor int32) uint16 {
	adj := func(shift uint) uint16 {
		v := int32(c>>shift) & 0x1F
		v -= (v * factor) / 16
		return clamp31(v)
	}
	return adj(0) | adj(5)<<5 | adj(10)<<10
}

type layerPixel struct {
	color    uint16
	priority uint8
	index    int // 0-3 = bg index, 4 = obj
	isObj    bool
	semi     bool
}

// RenderScanline composes one visible row into the engine's framebuffer.
func (e *Engine2D) RenderScanline(vcount int) {
	if e.forcedBlank() {
		for x := 0; x < screenWidth; x++ {
			e.Framebuffer[vcount*screenWidth+x] = 0x7FFF
		}
		return
	}

	var rows [4]bgRow
	var active [4]bool
	for bg := 0; bg < 4; bg++ {
		if !e.bgEnabled(bg) {
			continue
		}
		r, ok := e.renderBackground(bg, vcount)
		if ok {
			rows[bg] = r
			active[bg] = true
		}
	}

	sprites := e.renderSprites(vcount)
	windows := e.computeWindows(vcount)

	backdrop := e.readPaletteColor(0, 0)
	bldMode := e.bldcnt >> 6 & 0x3
	target1 := uint8(e.bldcnt & 0x3F)
	target2 := uint8(e.bldcnt >> 8 & 0x3F)
	eva := uint8(e.bldalpha & 0x1F)
	evb := uint8(e.bldalpha >> 8 & 0x1F)
	evy := uint8(e.bldy & 0x1F)

	for x := 0; x < screenWidth; x++ {
		wincnt := e.effectiveWinCnt(windows, &sprites, x)
		var layers [5]layerPixel
		n := 0

		for bg := 0; bg < 4; bg++ {
			if !active[bg] || !rows[bg].opaque[x] {
				continue
			}
			if wincnt&(1<<uint(bg)) == 0 {
				continue
			}
			layers[n] = layerPixel{color: rows[bg].color[x], priority: rows[bg].priority, index: bg}
			n++
		}
		if sprites.pixel[x].opaque && wincnt&0x10 != 0 {
			layers[n] = layerPixel{color: sprites.pixel[x].color, priority: sprites.pixel[x].priority, index: 4, isObj: true, semi: sprites.pixel[x].semiTrans}
			n++
		}

		// selection sort for the top two by (priority, index): OBJ wins
		// ties against a background of equal priority per hardware.
		for i := 0; i < n; i++ {
			best := i
			for j := i + 1; j < n; j++ {
				if layerLess(layers[j], layers[best]) {
					best = j
				}
			}
			layers[i], layers[best] = layers[best], layers[i]
		}

		var top, second layerPixel
		top.color, second.color = backdrop, backdrop
		top.index, second.index = -1, -1
		if n > 0 {
			top = layers[0]
		}
		if n > 1 {
			second = layers[1]
		}

		effectsEnabled := wincnt&0x20 != 0
		out := top.color
		switch {
		case top.isObj && top.semi && targetMatches(target2, second):
			out = blendChannels(top.color, second.color, eva, evb)
		case effectsEnabled && bldMode == 1 && targetMatches(target1, top) && targetMatches(target2, second):
			out = blendChannels(top.color, second.color, eva, evb)
		case effectsEnabled && bldMode == 2 && targetMatches(target1, top):
			out = brightnessUp(top.color, int32(evy))
		case effectsEnabled && bldMode == 3 && targetMatches(target1, top):
			out = brightnessDown(top.color, int32(evy))
		}

		e.Framebuffer[vcount*screenWidth+x] = e.applyMasterBrightness(out)
	}
}

func layerLess(a, b layerPixel) bool {
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.isObj != b.isObj {
		return a.isObj // OBJ wins priority ties against a BG
	}
	return a.index < b.index
}

func targetMatches(targetMask uint8, p layerPixel) bool {
	if p.index < 0 {
		return targetMask&0x20 != 0 // backdrop
	}
	if p.isObj {
		return targetMask&0x10 != 0
	}
	return targetMask&(1<<uint(p.index)) != 0
}

func (e *Engine2D) applyMasterBrightness(c uint16) uint16 {
	mode := e.masterBright >> 14 & 0x3
	factor := int32(e.masterBright & 0x1F)
	if factor > 16 {
		factor = 16
	}
	switch mode {
	case 1:
		return brightnessUp(c, factor)
	case 2:
		return brightnessDown(c, factor)
	default:
		return c
	}
}
