package cartridge

import "fmt"

// Flag identifies a cartridge's CGB-compatibility byte (header offset
// 0x0143).
type Flag uint8

const (
	FlagOnlyDMG Flag = iota
	FlagSupportsCGB
	FlagOnlyCGB
)

var ramSizes = map[uint8]uint{
	0x00: 0,
	0x02: 8 * 1024,
	0x03: 32 * 1024,
	0x04: 128 * 1024,
	0x05: 64 * 1024,
}

// Type is the cartridge hardware byte (header offset 0x0147), identifying
// which MBC (if any) the cartridge carries.
type Type uint8

const (
	ROM               Type = 0x00
	MBC1              Type = 0x01
	MBC1RAM           Type = 0x02
	MBC1RAMBATT       Type = 0x03
	MBC3TIMERBATT     Type = 0x0F
	MBC3TIMERRAMBATT  Type = 0x10
	MBC3              Type = 0x11
	MBC3RAM           Type = 0x12
	MBC3RAMBATT       Type = 0x13
	MBC5              Type = 0x19
	MBC5RAM           Type = 0x1A
	MBC5RAMBATT       Type = 0x1B
	MBC5RUMBLE        Type = 0x1C
	MBC5RUMBLERAM     Type = 0x1D
	MBC5RUMBLERAMBATT Type = 0x1E
)

func (t Type) String() string {
	switch t {
	case ROM:
		return "ROM ONLY"
	case MBC1, MBC1RAM, MBC1RAMBATT:
		return "MBC1"
	case MBC3TIMERBATT, MBC3TIMERRAMBATT, MBC3, MBC3RAM, MBC3RAMBATT:
		return "MBC3"
	case MBC5, MBC5RAM, MBC5RAMBATT, MBC5RUMBLE, MBC5RUMBLERAM, MBC5RUMBLERAMBATT:
		return "MBC5"
	default:
		return fmt.Sprintf("unknown (0x%02X)", uint8(t))
	}
}

// Header is the cartridge header, located at 0x0100-0x014F of every ROM.
type Header struct {
	Title            string
	ManufacturerCode string
	CartridgeGBMode  Flag
	NewLicenseeCode  string
	SGBFlag          bool
	CartridgeType    Type
	ROMSize          uint
	RAMSize          uint
	CountryCode      uint8
	OldLicenseeCode  uint8
	MaskROMVersion   uint8
	HeaderChecksum   uint8
	GlobalChecksum   uint16
}

// parseHeader decodes the 0x50-byte header region (0x0100-0x014F). rom must
// be at least 0x150 bytes; shorter ROMs are a load-time error rather than an
// out-of-bounds panic.
func parseHeader(rom []byte) (Header, error) {
	if len(rom) < 0x150 {
		return Header{}, fmt.Errorf("cartridge: rom too short to contain a header: %d bytes", len(rom))
	}
	h := Header{}
	header := rom[0x100:0x150]

	switch header[0x43] {
	case 0x80:
		h.CartridgeGBMode = FlagSupportsCGB
	case 0xC0:
		h.CartridgeGBMode = FlagOnlyCGB
	default:
		h.CartridgeGBMode = FlagOnlyDMG
	}

	if h.CartridgeGBMode == FlagOnlyDMG {
		h.Title = string(header[0x34:0x44])
	} else {
		h.Title = string(header[0x34:0x43])
	}
	h.ManufacturerCode = string(header[0x3F:0x43])
	h.NewLicenseeCode = string(header[0x44:0x46])
	h.SGBFlag = header[0x46] == 0x03
	h.CartridgeType = Type(header[0x47])
	h.ROMSize = (32 * 1024) * (1 << header[0x48])
	h.RAMSize = ramSizes[header[0x49]]
	h.CountryCode = header[0x4A]
	h.OldLicenseeCode = header[0x4B]
	h.MaskROMVersion = header[0x4C]
	h.HeaderChecksum = header[0x4D]
	h.GlobalChecksum = uint16(header[0x4E]) | uint16(header[0x4F])<<8

	return h, nil
}

// GameboyColor reports whether the cartridge declares any CGB support.
func (h *Header) GameboyColor() bool {
	return h.CartridgeGBMode == FlagOnlyCGB || h.CartridgeGBMode == FlagSupportsCGB
}

// Hardware names the hardware revision the cartridge targets ("CGB" or
// "DMG"), as shown by String.
func (h *Header) Hardware() string {
	if h.GameboyColor() {
		return "CGB"
	}
	return "DMG"
}

// TitleChecksum sums the raw title bytes, used by the CGB boot ROM to pick
// a DMG-compatibility colorization palette.
func (h *Header) TitleChecksum() uint8 {
	var sum uint8
	for i := 0; i < len(h.Title); i++ {
		sum += h.Title[i]
	}
	return sum
}

func (h *Header) String() string {
	return fmt.Sprintf("%s (%s) Mode: %s | ROM: %dKiB | RAM: %dKiB", h.Title, h.CartridgeType, h.Hardware(), h.ROMSize/1024, h.RAMSize/1024)
}
