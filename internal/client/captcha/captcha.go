// Package captcha is the small arithmetic challenge asked before any
// credential check.
package captcha

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
)

const maxOperand = 10

// Source supplies random numbers; *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Problem is "A + B".
type Problem struct {
	A, B int
}

// New draws both operands from [1, 10]. A nil src uses the global generator.
func New(src Source) Problem {
	if src == nil {
		src = globalSource{}
	}
	return Problem{A: src.IntN(maxOperand) + 1, B: src.IntN(maxOperand) + 1}
}

func (p Problem) Question() string {
	return fmt.Sprintf("%d + %d = ?", p.A, p.B)
}

// Check reports whether answer is the sum. Surrounding whitespace is ignored;
// anything that is not an integer is wrong.
func (p Problem) Check(answer string) bool {
	n, err := strconv.Atoi(strings.TrimSpace(answer))
	return err == nil && n == p.A+p.B
}
