// Package combat decides and resolves fights between entities.
package combat

import (
	"github.com/zeusync/arena/internal/core/models"
	"github.com/zeusync/arena/internal/core/random"
)

// canAttack[attacker][defender]. Toads beat everything, dragons and knights
// only beat each other, every other pairing is a draw.
var canAttack = [len(models.Kinds)][len(models.Kinds)]bool{
	models.KindToad:   {models.KindToad: true, models.KindDragon: true, models.KindKnight: true},
	models.KindDragon: {models.KindKnight: true},
	models.KindKnight: {models.KindDragon: true},
}

// CanAttack reports whether attacker is capable of attacking defender.
func CanAttack(attacker, defender models.Kind) bool {
	if !attacker.Valid() || !defender.Valid() {
		return false
	}
	return canAttack[attacker][defender]
}

// DieSides is the size of the attack and defense dice.
const DieSides = 6

// Dice rolls one attack and one defense value, each in [1, DieSides].
type Dice interface {
	Roll() (attack, defense int)
}

type sourceDice struct {
	src random.Source
}

// NewDice builds Dice over src. A nil src uses the global generator.
func NewDice(src random.Source) Dice {
	if src == nil {
		src = random.Global()
	}
	return sourceDice{src: src}
}

func (d sourceDice) Roll() (int, int) {
	return d.src.IntN(DieSides) + 1, d.src.IntN(DieSides) + 1
}

// Outcome is the result of one combat attempt. Rolls are zero when the
// attacker was not capable.
type Outcome struct {
	Capable bool
	Attack  int
	Defense int
	Success bool
}

// Resolve decides a fight. It succeeds only if the attacker is capable and
// its roll strictly beats the defense roll.
func Resolve(attacker, defender models.Kind, dice Dice) Outcome {
	if !CanAttack(attacker, defender) {
		return Outcome{}
	}
	attack, defense := dice.Roll()
	return Outcome{
		Capable: true,
		Attack:  attack,
		Defense: defense,
		Success: attack > defense,
	}
}
