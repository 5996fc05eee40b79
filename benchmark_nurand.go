package chainbench

import "math/rand"

// lastNameSyllables composes customer last names per the classic
// transaction profile tables.
var lastNameSyllables = [10]string{
	"BAR", "OUGHT", "ABLE", "PRI", "PRES",
	"ESE", "ANTI", "CALLY", "ATION", "EING",
}

// NURand returns a non-uniform random value in [x, y], concentrating
// accesses on a subset of the range while still touching every value.
// The constant c decorrelates otherwise identical runs.
func NURand(r *rand.Rand, a, x, y, c int) int {
	return (((randInt(r, 0, a) | randInt(r, x, y)) + c) % (y - x + 1)) + x
}

// randInt returns a uniform random value in [lo, hi].
func randInt(r *rand.Rand, lo, hi int) int {
	return lo + r.Intn(hi-lo+1)
}

// LastName maps a number in [0, 999] to a syllable composed last name.
func LastName(num int) string {
	return lastNameSyllables[num/100] + lastNameSyllables[(num/10)%10] + lastNameSyllables[num%10]
}
