// Package cartridge parses a Game Boy ROM header and dispatches every bus
// access in the 0x0000-0x7FFF and 0xA000-0xBFFF windows to the memory bank
// controller the header declares.
package cartridge

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Cartridge ties a parsed Header to the MBC it selects.
type Cartridge struct {
	header Header
	mbc    MBC
	md5    string
}

// NewCartridge parses rom's header and constructs the matching MBC. An
// undersized or otherwise malformed ROM is a load-time error, never a
// panic.
func NewCartridge(rom []byte) (*Cartridge, error) {
	header, err := parseHeader(rom)
	if err != nil {
		return nil, err
	}
	mbc := newMBC(rom, &header)
	if _, ok := mbc.(*noMBC); ok && header.CartridgeType != ROM {
		return nil, fmt.Errorf("cartridge: unsupported cartridge type 0x%02X", uint8(header.CartridgeType))
	}
	sum := md5.Sum(rom)
	return &Cartridge{
		header: header,
		mbc:    mbc,
		md5:    hex.EncodeToString(sum[:]),
	}, nil
}

// Header returns the cartridge's parsed header.
func (c *Cartridge) Header() Header {
	return c.header
}

// Title returns the cartridge's title as declared in its header.
func (c *Cartridge) Title() string {
	return c.header.Title
}

// Filename returns a stable name for this cartridge's save file, derived
// from the ROM's MD5 sum so two dumps of the same game agree.
func (c *Cartridge) Filename() string {
	return fmt.Sprintf("%s.sav", c.md5)
}

// RAM exposes the battery-backed external RAM for persistence; nil if the
// cartridge carries none.
func (c *Cartridge) RAM() []byte {
	return c.mbc.RAM()
}

// LoadRAM restores previously saved external RAM, truncating or
// zero-extending to fit the cartridge's actual RAM size.
func (c *Cartridge) LoadRAM(data []byte) {
	ram := c.mbc.RAM()
	n := copy(ram, data)
	for i := n; i < len(ram); i++ {
		ram[i] = 0
	}
}

func (c *Cartridge) Read(address uint16) uint8 {
	return c.mbc.Read(address)
}

func (c *Cartridge) Write(address uint16, value uint8) {
	c.mbc.Write(address, value)
}
