package cartridge

// mbc3 implements the MBC3 memory bank controller: a 7-bit ROM bank
// register (0 treated as 1), 4 RAM banks or 5 RTC registers selected by
// the same 0x4000-0x5FFF write, and a real-time clock latched by writing
// 0x00 then 0x01 to 0x6000-0x7FFF.
type mbc3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    uint8
	ramBank    uint8 // 0x00-0x03 selects RAM; 0x08-0x0C selects an RTC register

	rtc        [5]uint8
	latchedRTC [5]uint8
	latched    bool
	lastLatch  uint8 // last byte written to 0x6000-0x7FFF, to detect the 0->1 sequence

	banks int
}

func newMBC3(rom []byte, h *Header) *mbc3 {
	return &mbc3{
		rom:       rom,
		ram:       make([]byte, h.RAMSize),
		romBank:   1,
		lastLatch: 0xFF,
		banks:     romBankCount(rom),
	}
}

func (m *mbc3) Read(address uint16) uint8 {
	switch {
	case address < 0x4000:
		return m.romAt(0, address)
	case address < 0x8000:
		return m.romAt(int(m.romBank), address-0x4000)
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.ramBank >= 0x08 {
			return m.rtcRegister(m.ramBank)
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		return m.ram[(int(m.ramBank)*0x2000+int(address-0xA000))%len(m.ram)]
	}
	return 0xFF
}

func (m *mbc3) rtcRegister(selector uint8) uint8 {
	idx := selector - 0x08
	if idx > 4 {
		return 0xFF
	}
	if m.latched {
		return m.latchedRTC[idx]
	}
	return m.rtc[idx]
}

func (m *mbc3) romAt(bank int, offset uint16) uint8 {
	idx := bank%m.banks*0x4000 + int(offset)
	if idx >= len(m.rom) {
		return 0xFF
	}
	return m.rom[idx]
}

func (m *mbc3) Write(address uint16, value uint8) {
	switch {
	case address < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case address < 0x4000:
		value &= 0x7F
		if value == 0 {
			value = 1
		}
		m.romBank = value
	case address < 0x6000:
		m.ramBank = value
	case address < 0x8000:
		if m.lastLatch == 0x00 && value == 0x01 {
			m.latched = true
			m.latchedRTC = m.rtc
		}
		m.lastLatch = value
	case address >= 0xA000 && address < 0xC000:
		if !m.ramEnabled {
			return
		}
		if m.ramBank >= 0x08 {
			if idx := m.ramBank - 0x08; idx <= 4 {
				m.rtc[idx] = value
			}
			return
		}
		if len(m.ram) > 0 {
			m.ram[(int(m.ramBank)*0x2000+int(address-0xA000))%len(m.ram)] = value
		}
	}
}

func (m *mbc3) RAM() []byte { return m.ram }
