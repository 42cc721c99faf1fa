package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/willemolding/rgy/disasm"
)

type romReader []byte

func (r romReader) Read8(address uint16) uint8 {
	if int(address) >= len(r) {
		return 0xFF
	}
	return r[address]
}

func main() {
	app := cli.NewApp()
	app.Name = "rgydisasm"
	app.Usage = "rgydisasm [options] <ROM file>"
	app.Description = "Disassembles a Game Boy ROM's entry point"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.IntFlag{Name: "at", Usage: "Address to start disassembling from", Value: 0x0100},
		cli.IntFlag{Name: "count", Usage: "Number of instructions to print", Value: 32},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("rgydisasm failed", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	pc := uint16(c.Int("at"))
	lines := disasm.DisassembleRange(pc, c.Int("count"), romReader(data))
	for _, line := range lines {
		fmt.Println(disasm.Format(line, false))
	}
	return nil
}
