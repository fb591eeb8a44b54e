package registry

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"

	kerrors "github.com/PolarWolf314/ssaidctl/internal/errors"
)

// TokenLength is the number of hex characters in an SSAID.
const TokenLength = 16

const hexAlphabet = "0123456789abcdef"

var tokenPattern = regexp.MustCompile(`^[0-9a-fA-F]{16}$`)

// ValidateToken checks that token is exactly 16 hex characters and returns
// it in lowercase.
func ValidateToken(token string) (string, error) {
	if !tokenPattern.MatchString(token) {
		return "", fmt.Errorf("%w: %q must be %d hexadecimal characters", kerrors.ErrValidation, token, TokenLength)
	}
	return strings.ToLower(token), nil
}

// TokenGenerator draws random tokens. SSAIDs are device-local
// pseudo-identifiers, so a non-cryptographic source is sufficient.
type TokenGenerator struct {
	intN func(n int) int
}

// NewTokenGenerator returns a generator drawing from src, or from the
// automatically seeded global source when src is nil.
func NewTokenGenerator(src rand.Source) *TokenGenerator {
	if src == nil {
		return &TokenGenerator{intN: rand.IntN}
	}
	return &TokenGenerator{intN: rand.New(src).IntN}
}

// Token returns 16 nibbles, each drawn independently and uniformly.
func (g *TokenGenerator) Token() string {
	var b strings.Builder
	b.Grow(TokenLength)
	for range TokenLength {
		b.WriteByte(hexAlphabet[g.intN(len(hexAlphabet))])
	}
	return b.String()
}

var defaultGenerator = NewTokenGenerator(nil)

// RandomToken returns a random token from the global source.
func RandomToken() string {
	return defaultGenerator.Token()
}
