// Copyright 2021 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Command magtag-demo drives a 2.9" SSD1680 e-paper panel: it draws a
// border, a headline and a few shapes onto a Canvas and pushes a full
// refresh. With -preview it renders the same frame as ANSI block art to
// the terminal instead of touching any hardware, for developing the
// drawing code without a panel attached.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/mauro-lanza/magtag-drivers/bf2font"
	"github.com/mauro-lanza/magtag-drivers/magtag"
	"github.com/mauro-lanza/magtag-drivers/pixbuf"
	"github.com/mauro-lanza/magtag-drivers/ssd1680"
	"github.com/mauro-lanza/magtag-drivers/transport"
)

func main() {
	spiPort := flag.String("spi", "", "SPI port name, empty for the first available")
	dcPin := flag.String("dc", "22", "D/C GPIO pin name")
	csPin := flag.String("cs", "8", "CS GPIO pin name")
	rstPin := flag.String("rst", "27", "RST GPIO pin name")
	busyPin := flag.String("busy", "17", "BUSY GPIO pin name")
	fontPath := flag.String("font", "", "path to a BF2 font file")
	text := flag.String("text", "Hello from magtag", "text to render")
	rotation := flag.Int("rotation", 0, "logical rotation in degrees: 0, 90, 180 or 270")
	preview := flag.Bool("preview", false, "render to the terminal instead of a real panel")
	flag.Parse()

	buf, err := pixbuf.New(ssd1680.Width, ssd1680.Height, pixbuf.Depth1, rotationFromDegrees(*rotation))
	if err != nil {
		log.Fatalf("magtag-demo: allocate buffer: %v", err)
	}

	renderer := bf2font.NewRenderer(64 * 1024)
	if *fontPath != "" {
		if err := renderer.LoadFont(*fontPath); err != nil {
			log.Fatalf("magtag-demo: load font: %v", err)
		}
	}

	drawScene(buf, renderer, *text)

	if *preview {
		previewToTerminal(buf)
		return
	}

	if _, err := host.Init(); err != nil {
		log.Fatalf("magtag-demo: periph init: %v", err)
	}

	port, err := spireg.Open(*spiPort)
	if err != nil {
		log.Fatalf("magtag-demo: open spi: %v", err)
	}
	defer port.Close()

	dc := gpioreg.ByName(*dcPin)
	cs := gpioreg.ByName(*csPin)
	rst := gpioreg.ByName(*rstPin)
	busy := gpioreg.ByName(*busyPin)
	if dc == nil || cs == nil || rst == nil || busy == nil {
		log.Fatalf("magtag-demo: could not resolve one of the gpio pins: dc=%v cs=%v rst=%v busy=%v", dc, cs, rst, busy)
	}

	spi, err := transport.NewSPI(port, 4*physic.MegaHertz, dc, cs, rst, busy)
	if err != nil {
		log.Fatalf("magtag-demo: build transport: %v", err)
	}

	driver := ssd1680.New(spi, true)
	canvas := magtag.New(driver, buf, renderer)

	ctx := context.Background()
	if err := canvas.Init(ctx, false); err != nil {
		log.Fatalf("magtag-demo: init panel: %v", err)
	}
	if err := canvas.FullRefresh(ctx); err != nil {
		log.Fatalf("magtag-demo: full refresh: %v", err)
	}
}

func rotationFromDegrees(deg int) pixbuf.Rotation {
	switch deg {
	case 90:
		return pixbuf.Rotate90
	case 180:
		return pixbuf.Rotate180
	case 270:
		return pixbuf.Rotate270
	default:
		return pixbuf.Rotate0
	}
}

func drawScene(buf *pixbuf.Buffer, renderer *bf2font.Renderer, text string) {
	const black, white = 0, 1
	buf.Clear(white)
	w, h := buf.LogicalWidth(), buf.LogicalHeight()
	buf.Rect(0, 0, w, h, black)
	buf.FillCircle(16, 16, 8, black)
	buf.RoundedRect(w-40, 4, 32, 24, 6, black)
	if err := renderer.Draw(buf, text, w/2, h/2, black, 2, bf2font.AlignCenter); err != nil {
		log.Printf("magtag-demo: draw text: %v", err)
	}
}

// previewToTerminal renders buf as two-tone ANSI block art. It falls
// back to plain ASCII when stdout is not a terminal, since ANSI escapes
// would otherwise corrupt piped output.
func previewToTerminal(buf *pixbuf.Buffer) {
	out := colorable.NewColorableStdout()
	useColor := isatty.IsTerminal(os.Stdout.Fd())
	palette := *ansi256.Default

	w, h := buf.LogicalWidth(), buf.LogicalHeight()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if buf.GetPixel(x, y) == 0 {
				if useColor {
					fmt.Fprint(out, palette.Block(color.NRGBA{A: 255}))
				} else {
					fmt.Fprint(out, "#")
				}
			} else {
				if useColor {
					fmt.Fprint(out, palette.Block(color.NRGBA{R: 255, G: 255, B: 255, A: 255}))
				} else {
					fmt.Fprint(out, " ")
				}
			}
		}
		fmt.Fprintln(out)
	}
	if useColor {
		fmt.Fprint(out, "\033[0m")
	}
}
