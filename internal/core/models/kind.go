package models

import "fmt"

// Kind is the closed set of entity categories.
type Kind uint8

const (
	KindToad Kind = iota
	KindDragon
	KindKnight
)

// Kinds lists every kind in table order.
var Kinds = [...]Kind{KindToad, KindDragon, KindKnight}

// KindSpec holds the fixed per-kind constants.
type KindSpec struct {
	Name      string
	Glyph     byte
	MoveRange int
	KillRange int
}

var kindSpecs = [...]KindSpec{
	KindToad:   {Name: "Toad", Glyph: 'T', MoveRange: 1, KillRange: 10},
	KindDragon: {Name: "Dragon", Glyph: 'D', MoveRange: 50, KillRange: 30},
	KindKnight: {Name: "Knight", Glyph: 'K', MoveRange: 30, KillRange: 10},
}

func (k Kind) Valid() bool { return int(k) < len(kindSpecs) }

// Spec returns the constants for k. It panics on an invalid kind.
func (k Kind) Spec() KindSpec {
	if !k.Valid() {
		panic(fmt.Sprintf("models: invalid kind %d", k))
	}
	return kindSpecs[k]
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", k)
	}
	return kindSpecs[k].Name
}

func (k Kind) MoveRange() int { return k.Spec().MoveRange }
func (k Kind) KillRange() int { return k.Spec().KillRange }
func (k Kind) Glyph() byte    { return k.Spec().Glyph }

// ParseKind resolves a kind by its exact name.
func ParseKind(name string) (Kind, bool) {
	for _, k := range Kinds {
		if kindSpecs[k].Name == name {
			return k, true
		}
	}
	return 0, false
}
