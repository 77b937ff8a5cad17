// main.go - ndsrun: an ebiten/oto host for the core package

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/coldsilicon/ndscore/core"
)

// keymap binds host keyboard keys to the twelve NDS buttons, in the
// order a player expects (d-pad, A/B/X/Y, shoulders, Start/Select).
var keymap = map[ebiten.Key]core.Key{
	ebiten.KeyArrowUp:    core.KeyUp,
	ebiten.KeyArrowDown:  core.KeyDown,
	ebiten.KeyArrowLeft:  core.KeyLeft,
	ebiten.KeyArrowRight: core.KeyRight,
	ebiten.KeyX:          core.KeyA,
	ebiten.KeyZ:          core.KeyB,
	ebiten.KeyA:          core.KeyX,
	ebiten.KeyS:          core.KeyY,
	ebiten.KeyQ:          core.KeyL,
	ebiten.KeyW:          core.KeyR,
	ebiten.KeyEnter:      core.KeyStart,
	ebiten.KeyBackspace:  core.KeySelect,
}

// game adapts a *core.Console to ebiten.Game: Update drives one emulated
// frame per host frame, Draw blits whichever framebuffer POWCNT1 says is
// "top" into the window.
type game struct {
	console *core.Console
	top     *ebiten.Image
	bottom  *ebiten.Image
	audio   *audioPlayer
}

func newGame(c *core.Console) *game {
	return &game{
		console: c,
		top:     ebiten.NewImage(core.ScreenWidth, core.ScreenHeight),
		bottom:  ebiten.NewImage(core.ScreenWidth, core.ScreenHeight),
	}
}

func (g *game) Update() error {
	for key, ndsKey := range keymap {
		g.console.SetKey(ndsKey, ebiten.IsKeyPressed(key))
	}
	if x, y := ebiten.CursorPosition(); ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.console.PressScreen(x, y-core.ScreenHeight)
	} else {
		g.console.ReleaseScreen()
	}

	if err := g.console.RunFrame(); err != nil {
		return err
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	writeFramebuffer(g.top, g.console.FramebufferA())
	writeFramebuffer(g.bottom, g.console.FramebufferB())

	top, bottom := g.top, g.bottom
	if g.console.DisplaySwapped() {
		top, bottom = bottom, top
	}
	screen.DrawImage(top, nil)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(0, core.ScreenHeight)
	screen.DrawImage(bottom, op)
}

func (g *game) Layout(_, _ int) (int, int) {
	return core.ScreenWidth, core.ScreenHeight * 2
}

// writeFramebuffer converts one whole BGR555 framebuffer into the RGBA
// pixels ebiten.Image.WritePixels wants.
func writeFramebuffer(img *ebiten.Image, src *[core.ScreenWidth * core.ScreenHeight]uint16) {
	var rgba [core.ScreenWidth * core.ScreenHeight * 4]byte
	for i, px := range src {
		r := byte(px&0x1F) << 3
		g := byte((px>>5)&0x1F) << 3
		b := byte((px>>10)&0x1F) << 3
		rgba[i*4+0] = r
		rgba[i*4+1] = g
		rgba[i*4+2] = b
		rgba[i*4+3] = 0xFF
	}
	img.WritePixels(rgba[:])
}

func mustReadFile(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ndsrun: %v\n", err)
		os.Exit(1)
	}
	return data
}

func main() {
	bios9Path := flag.String("bios9", "", "path to the ARM9 BIOS image (16KiB)")
	bios7Path := flag.String("bios7", "", "path to the ARM7 BIOS image (16KiB)")
	firmwarePath := flag.String("firmware", "", "path to the firmware image (128KiB or 256KiB)")
	savePath := flag.String("save", "", "path to a save image; read if it exists, never created or written back")
	scriptPath := flag.String("script", "", "optional Lua script run against the console before the window opens")
	headless := flag.Bool("headless", false, "run without opening a window, for scripted automation")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: ndsrun -bios9 PATH -bios7 PATH -firmware PATH ROM")
		os.Exit(2)
	}

	bios9 := mustReadFile(*bios9Path)
	bios7 := mustReadFile(*bios7Path)
	firmware := mustReadFile(*firmwarePath)
	rom := mustReadFile(flag.Arg(0))

	var save []byte
	if *savePath != "" {
		if data, err := os.ReadFile(*savePath); err == nil {
			save = data
		}
	}

	console, err := core.NewConsole(bios9, bios7, firmware, rom, save)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ndsrun: %v\n", err)
		os.Exit(1)
	}
	console.Boot()

	if *scriptPath != "" {
		if err := runScript(console, *scriptPath); err != nil {
			fmt.Fprintf(os.Stderr, "ndsrun: script error: %v\n", err)
			os.Exit(1)
		}
	}

	player, err := newAudioPlayer(console.Audio)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ndsrun: audio init failed, continuing silent: %v\n", err)
	} else {
		player.Start()
		defer player.Close()
	}

	if *headless {
		for i := 0; i < 60; i++ {
			if err := console.RunFrame(); err != nil {
				fmt.Fprintf(os.Stderr, "ndsrun: %v\n", err)
				os.Exit(1)
			}
		}
		return
	}

	g := newGame(console)
	g.audio = player
	ebiten.SetWindowSize(core.ScreenWidth*2, core.ScreenHeight*2*2)
	ebiten.SetWindowTitle("ndsrun")
	ebiten.SetWindowIcon(buildWindowIcons(console))
	if err := ebiten.RunGame(g); err != nil {
		fmt.Fprintf(os.Stderr, "ndsrun: %v\n", err)
		os.Exit(1)
	}
}
