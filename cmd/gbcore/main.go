// Command gbcore is a minimal headless driver for the emulation core: it
// loads a ROM (and an optional boot ROM), runs it for a fixed number of
// frames, and reports the cartridge header and final CPU state. It is a
// reference collaborator, not part of the core itself — a real front end
// would drive GameBoy.Frame() on its own render/input loop instead.
package main

import (
	"fmt"
	"os"

	"github.com/Caprini/ViboyColor-sub003/internal/gameboy"
	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "gbcore"
	app.Usage = "run a Game Boy ROM headlessly"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "path to the cartridge ROM image"},
		cli.StringFlag{Name: "boot", Usage: "path to an optional boot ROM image"},
		cli.IntFlag{Name: "frames", Value: 60, Usage: "number of frames to run before exiting"},
		cli.BoolFlag{Name: "debug", Usage: "stop at the LD B,B breakpoint"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gbcore:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		return cli.NewExitError("gbcore: -rom is required", 1)
	}

	rom, err := os.ReadFile(romPath)
	if err != nil {
		return err
	}

	var opts []gameboy.Opt
	if c.Bool("debug") {
		opts = append(opts, gameboy.Debug())
	}
	if bootPath := c.String("boot"); bootPath != "" {
		b, err := os.ReadFile(bootPath)
		if err != nil {
			return err
		}
		opts = append(opts, gameboy.WithBootROM(b))
	}

	gb, err := gameboy.NewGameBoy(rom, opts...)
	if err != nil {
		return err
	}

	header := gb.Cart.Header()
	fmt.Printf("%s\n", header.String())
	fmt.Printf("boot rom: %s\n", bootModel(gb))

	frames := c.Int("frames")
	ran := 0
	for ran < frames {
		gb.Frame()
		ran++
		if gb.CPU.Frozen || gb.CPU.DebugBreakpoint {
			break
		}
	}

	fmt.Printf("ran %d frame(s); PC=0x%04X SP=0x%04X A=0x%02X F=0x%02X\n",
		ran, gb.CPU.PC, gb.CPU.SP, gb.CPU.A, gb.CPU.F)
	if gb.CPU.Frozen {
		fmt.Println("cpu froze on an illegal opcode")
	}
	return nil
}

func bootModel(gb *gameboy.GameBoy) string {
	if m := gb.BootROMModel(); m != "" {
		return m
	}
	return "none"
}
