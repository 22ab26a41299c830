package murmursdk

import (
	"fmt"
	"math/rand/v2"
)

var (
	aliasAdjectives = []string{
		"Anon", "Silent", "Hidden", "Ghost", "Mysterious",
		"Shadow", "Quiet", "Secret", "Invisible", "Masked",
	}
	aliasAnimals = []string{
		"Fox", "Owl", "Wolf", "Bear", "Tiger",
		"Falcon", "Raven", "Eagle", "Hawk", "Panther",
	}
)

// GenerateAlias produces an anonymous display alias like "SilentFox4821":
// adjective + animal + a 4-digit number.
func GenerateAlias() string {
	return fmt.Sprintf("%s%s%d",
		aliasAdjectives[rand.IntN(len(aliasAdjectives))],
		aliasAnimals[rand.IntN(len(aliasAnimals))],
		1000+rand.IntN(9000),
	)
}
