package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"strings"
)

const (
	CodeAlphabet       = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	CodeSeparator      = "-"
	DefaultCodeLength  = 10
	DefaultGenerateMax = 10000
)

// NormalizeCode uppercases and trims raw input and drops every character that
// cannot appear in a stored code. An empty result means the input held no code.
func NormalizeCode(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(upper))
	for _, r := range upper {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type CodeGenerator struct {
	length int
	max    int
	random io.Reader
}

func NewCodeGenerator(length, max int) *CodeGenerator {
	return NewCodeGeneratorWithReader(length, max, rand.Reader)
}

func NewCodeGeneratorWithReader(length, max int, random io.Reader) *CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	if max <= 0 {
		max = DefaultGenerateMax
	}
	if random == nil {
		random = rand.Reader
	}
	return &CodeGenerator{length: length, max: max, random: random}
}

func (g *CodeGenerator) Max() int { return g.max }

// ClampCount bounds a requested batch size to [0, max].
func (g *CodeGenerator) ClampCount(count int) int {
	if count < 0 {
		return 0
	}
	if count > g.max {
		return g.max
	}
	return count
}

// Generate returns up to count distinct candidate codes. Persistence and
// collision handling against stored codes belong to the caller.
func (g *CodeGenerator) Generate(count int, prefix string) ([]string, error) {
	count = g.ClampCount(count)
	codes := make([]string, 0, count)
	if count == 0 {
		return codes, nil
	}
	head := normalizePrefix(prefix)
	seen := make(map[string]struct{}, count)
	// Bound the attempts so a broken entropy source cannot spin forever.
	for attempts := 0; len(codes) < count && attempts < count*4; attempts++ {
		body, err := g.randomBody()
		if err != nil {
			return nil, err
		}
		code := head + body
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes, nil
}

func (g *CodeGenerator) randomBody() (string, error) {
	buf := make([]byte, g.length)
	limit := big.NewInt(int64(len(CodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(g.random, limit)
		if err != nil {
			return "", fmt.Errorf("random int: %w", err)
		}
		buf[i] = CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}

func normalizePrefix(prefix string) string {
	p := strings.Trim(NormalizeCode(prefix), CodeSeparator)
	if p == "" {
		return ""
	}
	return p + CodeSeparator
}
