// Package effects runs animated color sequences against the device sink,
// guaranteeing at most one live generator at a time.
package effects

import (
	"strings"

	"github.com/rotisserie/eris"
)

// Category separates generators the host animates from patterns the
// controller firmware animates by itself.
type Category int

const (
	// CategoryAnimated effects are driven step by step by this process.
	CategoryAnimated Category = iota
	// CategoryBuiltin effects select a firmware pattern and park.
	CategoryBuiltin
)

// Effect identifies one playable effect.
type Effect int

const (
	RainbowFade Effect = iota
	Breathe
	Strobe
	Candle
	Pulse
	ColorCycle
	BuiltinJump
	BuiltinCrossfade
	BuiltinStrobe
)

type effectInfo struct {
	name       string
	category   Category
	hardwareID byte
}

var effectTable = map[Effect]effectInfo{
	RainbowFade:      {name: "rainbow", category: CategoryAnimated},
	Breathe:          {name: "breathe", category: CategoryAnimated},
	Strobe:           {name: "strobe", category: CategoryAnimated},
	Candle:           {name: "candle", category: CategoryAnimated},
	Pulse:            {name: "pulse", category: CategoryAnimated},
	ColorCycle:       {name: "cycle", category: CategoryAnimated},
	BuiltinJump:      {name: "hw-jump", category: CategoryBuiltin, hardwareID: 0x88},
	BuiltinCrossfade: {name: "hw-crossfade", category: CategoryBuiltin, hardwareID: 0x8A},
	BuiltinStrobe:    {name: "hw-strobe", category: CategoryBuiltin, hardwareID: 0x95},
}

// String returns the effect's user-facing name.
func (e Effect) String() string {
	if info, ok := effectTable[e]; ok {
		return info.name
	}
	return "unknown"
}

// Category returns how the effect is driven.
func (e Effect) Category() Category {
	return effectTable[e].category
}

func (e Effect) hardware() byte {
	return effectTable[e].hardwareID
}

// All lists every effect in a stable order.
func All() []Effect {
	return []Effect{
		RainbowFade, Breathe, Strobe, Candle, Pulse, ColorCycle,
		BuiltinJump, BuiltinCrossfade, BuiltinStrobe,
	}
}

// Parse resolves a user-supplied effect name.
func Parse(name string) (Effect, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, e := range All() {
		if e.String() == name {
			return e, nil
		}
	}
	return 0, eris.Errorf("unknown effect %q", name)
}
