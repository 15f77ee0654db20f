// Package refcode mints agent referral codes of the form PREFIX-HEX6.
package refcode

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	prefixLen       = 3
	randomBytes     = 3
	DefaultAttempts = 10
)

var (
	ErrEmptyName = errors.New("refcode: empty name")
	ErrExhausted = errors.New("refcode: no unique code found within attempt limit")
)

// ExistsFunc reports whether a code is already assigned.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

type Generator struct {
	rand        io.Reader
	exists      ExistsFunc
	maxAttempts int
}

// NewGenerator builds a generator reading from crypto/rand. maxAttempts <= 0
// falls back to DefaultAttempts.
func NewGenerator(exists ExistsFunc, maxAttempts int) *Generator {
	return NewGeneratorWithRand(rand.Reader, exists, maxAttempts)
}

func NewGeneratorWithRand(r io.Reader, exists ExistsFunc, maxAttempts int) *Generator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultAttempts
	}
	return &Generator{rand: r, exists: exists, maxAttempts: maxAttempts}
}

// Prefix is the uppercased first three characters of name.
func Prefix(name string) string {
	runes := []rune(name)
	if len(runes) > prefixLen {
		runes = runes[:prefixLen]
	}
	return strings.ToUpper(string(runes))
}

// Draw returns one candidate code without checking uniqueness.
func (g *Generator) Draw(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyName
	}
	buf := make([]byte, randomBytes)
	if _, err := io.ReadFull(g.rand, buf); err != nil {
		return "", fmt.Errorf("refcode: read random bytes: %w", err)
	}
	return Prefix(name) + "-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Generate draws candidates until one is not taken. The result is unique only
// as of the check; callers must still rely on a unique index when persisting.
// It also returns how many draws were needed.
func (g *Generator) Generate(ctx context.Context, name string) (string, int, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", attempt - 1, err
		}

		code, err := g.Draw(name)
		if err != nil {
			return "", attempt, err
		}

		taken, err := g.exists(ctx, code)
		if err != nil {
			return "", attempt, fmt.Errorf("refcode: check code: %w", err)
		}
		if !taken {
			return code, attempt, nil
		}
	}
	return "", g.maxAttempts, ErrExhausted
}
