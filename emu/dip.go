package emu

import "fmt"

// Language selects the text shown by the game.
type Language uint8

const (
	LanguageEnglish Language = iota
	LanguageGerman
	LanguageFrench
	LanguageSpanish
)

func (l Language) String() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageGerman:
		return "German"
	case LanguageFrench:
		return "French"
	case LanguageSpanish:
		return "Spanish"
	}
	return fmt.Sprintf("Language(%d)", uint8(l))
}

// Coinage is the coins/credits setting of switches 7 and 8.
type Coinage uint8

const (
	CoinageFreePlay Coinage = iota
	Coinage1Coin2Credits
	Coinage1Coin1Credit
	Coinage2Coins1Credit
)

func (c Coinage) String() string {
	switch c {
	case CoinageFreePlay:
		return "Free Play"
	case Coinage1Coin2Credits:
		return "1 Coin/2 Credits"
	case Coinage1Coin1Credit:
		return "1 Coin/1 Credit"
	case Coinage2Coins1Credit:
		return "2 Coins/1 Credit"
	}
	return fmt.Sprintf("Coinage(%d)", uint8(c))
}

// DIPSettings is the decoded form of the DSW1 switch bank.
//
//	bits 0-1  language
//	bit  2    ships (1 = 3, 0 = 4)
//	bit  3    center coin multiplier (0 = x1, 1 = x2)
//	bits 4-5  right coin multiplier (x1, x4, x5, x6)
//	bits 6-7  coinage
type DIPSettings struct {
	Language   Language
	Lives      int // 3 or 4
	CenterCoin int // 1 or 2
	RightCoin  int // 1, 4, 5 or 6
	Coinage    Coinage
}

var rightCoinValues = [4]int{1, 4, 5, 6}

// DefaultDIP returns English, 3 ships, 1 coin 1 credit (0x84).
func DefaultDIP() DIPSettings {
	return ParseDIP(0x84)
}

// ParseDIP decodes a raw DSW1 byte.
func ParseDIP(b uint8) DIPSettings {
	s := DIPSettings{
		Language:   Language(b & 0x03),
		Lives:      4,
		CenterCoin: 1,
		RightCoin:  rightCoinValues[(b>>4)&0x03],
		Coinage:    Coinage(b >> 6),
	}
	if b&0x04 != 0 {
		s.Lives = 3
	}
	if b&0x08 != 0 {
		s.CenterCoin = 2
	}
	return s
}

// Byte packs the settings into the DSW1 byte. Out of range values fall
// back to the factory setting of that field.
func (s DIPSettings) Byte() uint8 {
	b := uint8(s.Language & 0x03)
	if s.Lives != 4 {
		b |= 0x04
	}
	if s.CenterCoin == 2 {
		b |= 0x08
	}
	for i, v := range rightCoinValues {
		if v == s.RightCoin {
			b |= uint8(i) << 4
		}
	}
	return b | uint8(s.Coinage&0x03)<<6
}

func (s DIPSettings) String() string {
	return fmt.Sprintf("%s, %d ships, %s", s.Language, s.Lives, s.Coinage)
}
