// sprites.go - Object attribute memory: per-scanline sprite rendering

/*
sprites.go iterates the 128 OAM entries once per scanline, skipping any
sprite whose Y band does not intersect the current row (accounting for
the vertical wrap at 256 and the double-size affine case, which doubles
the sprite's bounding box without doubling its source pixels). Entries
that pass are resolved pixel-by-pixel in ascending priority order
(lowest numeric priority wins ties by OAM index, matching hardware's
"first sprite of equal priority wins" rule); an object-window sprite
contributes only to the object-window mask and is otherwise invisible.

Each OAM entry is 8 bytes: attr0 (Y, affine/double-size flags, mode,
mosaic, color depth, shape), attr1 (X, affine parameter group or flip
flags, size), attr2 (tile index, priority, palette). Affine parameters
live in the 32 rotation/scaling groups, each four 16-bit values stored
in the attr3 slot of OAM entries group*4..group*4+3.

Grounded on original_source/core/src/hw/gpu/engine2d.rs's sprite
fetch/line routines.
*/

package core

var spriteShapeSize = [4][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},   // square
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},   // wide
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},   // tall
	{{8, 8}, {8, 8}, {8, 8}, {8, 8}},         // prohibited
}

type objPixel struct {
	opaque     bool
	color      uint16
	priority   uint8
	semiTrans  bool
	isWindow   bool
}

// spriteRow is the composed OBJ layer for one scanline: one resolved
// pixel per column plus a parallel object-window mask.
type spriteRow struct {
	pixel  [screenWidth]objPixel
	window [screenWidth]bool
}

func (e *Engine2D) oamEntry(i int) (attr0, attr1, attr2 uint16) {
	base := i * 8
	attr0 = uint16(e.oam[base]) | uint16(e.oam[base+1])<<8
	attr1 = uint16(e.oam[base+2]) | uint16(e.oam[base+3])<<8
	attr2 = uint16(e.oam[base+4]) | uint16(e.oam[base+5])<<8
	return
}

func (e *Engine2D) affineParam(group, index int) int16 {
	entry := group*4 + index
	base := entry*8 + 6
	return int16(uint16(e.oam[base]) | uint16(e.oam[base+1])<<8)
}

// renderSprites computes the OBJ layer for the current scanline.
func (e *Engine2D) renderSprites(vcount int) spriteRow {
	var row spriteRow
	if !e.objEnabled() {
		return row
	}

	var filled [screenWidth]bool

	for i := 0; i < 128; i++ {
		attr0, attr1, attr2 := e.oamEntry(i)

		affine := attr0&0x100 != 0
		doubleOrDisable := attr0&0x200 != 0
		if !affine && doubleOrDisable {
			continue // disabled (non-affine "disable" bit)
		}
		doubleSize := affine && doubleOrDisable

		mode := attr0 >> 10 & 0x3 // 0 normal, 1 semi-transparent, 2 window, 3 bitmap
		colorMode8 := attr0&0x2000 != 0
		shape := attr0 >> 14 & 0x3

		size := attr1 >> 14 & 0x3
		w, h := spriteShapeSize[shape][size][0], spriteShapeSize[shape][size][1]
		boundW, boundH := w, h
		if doubleSize {
			boundW, boundH = w*2, h*2
		}

		y := int(attr0 & 0xFF)
		if y >= 192 {
			y -= 256
		}
		if vcount < y || vcount >= y+boundH {
			continue
		}

		x := int(attr1 & 0x1FF)
		if x >= 256 {
			x -= 512
		}

		priority := uint8(attr2 >> 10 & 0x3)
		tileIndex := attr2 & 0x3FF
		palette := uint8(attr2 >> 12 & 0xF)

		var pa, pb, pc, pd int32 = 256, 0, 0, 256
		if affine {
			group := int(attr1 >> 9 & 0x1F)
			pa = int32(e.affineParam(group, 0))
			pb = int32(e.affineParam(group, 1))
			pc = int32(e.affineParam(group, 2))
			pd = int32(e.affineParam(group, 3))
		}
		hflip := !affine && attr1&0x1000 != 0
		vflip := !affine && attr1&0x2000 != 0

		centerX, centerY := boundW/2, boundH/2
		rowInBound := vcount - y

		for sx := 0; sx < boundW; sx++ {
			screenX := x + sx
			if screenX < 0 || screenX >= screenWidth {
				continue
			}
			if mode != 2 && filled[screenX] && row.pixel[screenX].priority <= priority {
				continue // a higher-priority sprite already claimed this pixel
			}

			var srcX, srcY int
			if affine {
				relX := int32(sx - centerX)
				relY := int32(rowInBound - centerY)
				tx := (pa*relX + pb*relY) >> 8
				ty := (pc*relX + pd*relY) >> 8
				srcX = int(tx) + w/2
				srcY = int(ty) + h/2
				if srcX < 0 || srcX >= w || srcY < 0 || srcY >= h {
					continue
				}
			} else {
				srcX, srcY = sx, rowInBound
				if hflip {
					srcX = w - 1 - srcX
				}
				if vflip {
					srcY = h - 1 - srcY
				}
			}

			colorIndex := e.objPixelColor(tileIndex, srcX, srcY, colorMode8, w)
			if colorIndex == 0 {
				continue
			}

			if mode == 2 {
				row.window[screenX] = true
				continue
			}

			filled[screenX] = true
			row.pixel[screenX] = objPixel{
				opaque:    true,
				priority:  priority,
				semiTrans: mode == 1,
				color:     e.readObjPaletteColor(palette, colorIndex, colorMode8),
			}
		}
	}
	return row
}

// objPixelColor fetches one pixel's palette index from OBJ tile memory;
// 1D tile mapping lays consecutive rows of a wide sprite across tile
// boundaries, 2D mapping treats each row as wrapping within a fixed
// 32-tile-wide character sheet.
func (e *Engine2D) objPixelColor(tileIndex uint16, x, y int, colorMode8 bool, spriteW int) byte {
	tileX, fineX := x/8, x%8
	tileY, fineY := y/8, y%8
	bytesPerTile := 32
	if colorMode8 {
		bytesPerTile = 64
	}

	var tileNum int
	if e.objTiles1D() {
		tilesPerRow := spriteW / 8
		tileNum = int(tileIndex) + tileY*tilesPerRow + tileX
	} else {
		rowStride := 32
		if colorMode8 {
			rowStride = 16
		}
		tileNum = int(tileIndex) + tileY*rowStride + tileX
	}

	objBase := uint32(0) // tile-mode OBJ character base; bitmap-mode OBJ (modes 3-5) is out of scope
	tileOff := objBase + uint32(tileNum*bytesPerTile)
	bg := e.consumers().obj
	if colorMode8 {
		result, _ := e.vram.readConsumerSlot(bg, tileOff+uint32(fineY*8+fineX), 1)
		return byte(result)
	}
	rawResult, _ := e.vram.readConsumerSlot(bg, tileOff+uint32(fineY*4+fineX/2), 1)
	raw := byte(rawResult)
	if fineX%2 == 0 {
		return raw & 0xF
	}
	return raw >> 4
}

func (e *Engine2D) readObjPaletteColor(palNum, colorIndex uint8, colorMode8 bool) uint16 {
	var offset int
	if colorMode8 {
		offset = int(colorIndex) * 2
	} else {
		offset = int(palNum)*16*2 + int(colorIndex)*2
	}
	if offset+1 >= len(e.objPal) {
		return 0
	}
	lo := uint16(e.objPal[offset])
	hi := uint16(e.objPal[offset+1])
	return (hi<<8 | lo) & 0x7FFF
}
