package main

import (
	"fmt"
	"strings"

	"github.com/Andretti1967/asteroidino/emu"
)

var languages = map[string]emu.Language{
	"english": emu.LanguageEnglish,
	"german":  emu.LanguageGerman,
	"french":  emu.LanguageFrench,
	"spanish": emu.LanguageSpanish,
}

var coinages = map[string]emu.Coinage{
	"free": emu.CoinageFreePlay,
	"1c2":  emu.Coinage1Coin2Credits,
	"1c1":  emu.Coinage1Coin1Credit,
	"2c1":  emu.Coinage2Coins1Credit,
}

// dipFromFlags applies the switch flags to the default settings.
func dipFromFlags(lives int, coinage, language string) (emu.DIPSettings, error) {
	dip := emu.DefaultDIP()

	switch lives {
	case 3, 4:
		dip.Lives = lives
	default:
		return dip, fmt.Errorf("invalid lives: %d (use 3 or 4)", lives)
	}

	c, ok := coinages[strings.ToLower(coinage)]
	if !ok {
		return dip, fmt.Errorf("invalid coinage: %s (use free, 1c2, 1c1 or 2c1)", coinage)
	}
	dip.Coinage = c

	l, ok := languages[strings.ToLower(language)]
	if !ok {
		return dip, fmt.Errorf("invalid language: %s (use english, german, french or spanish)", language)
	}
	dip.Language = l
	return dip, nil
}
