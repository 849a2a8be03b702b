package orders

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DefaultReferencePrefix is used when prefixing is enabled without a configured prefix.
const DefaultReferencePrefix = "REF"

const (
	referenceSuffixLen = 4
	base36Alphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// ReferenceGenerator derives order reference numbers from the recipient mobile.
type ReferenceGenerator struct {
	now    func() time.Time
	random func(n int) string
}

// NewReferenceGenerator returns a generator using the wall clock and crypto/rand.
func NewReferenceGenerator() *ReferenceGenerator {
	return &ReferenceGenerator{now: time.Now, random: randomBase36}
}

// Generate returns [<prefix>-]<mobile>-<value>. A non-blank userSupplied value is
// sanitised and used verbatim so equal inputs give equal references; otherwise
// the value is a base36 timestamp with a random suffix.
func (g *ReferenceGenerator) Generate(mobile, userSupplied string, prefixEnabled bool, prefix string) string {
	parts := make([]string, 0, 3)
	if prefixEnabled {
		p := sanitizeReference(prefix)
		if p == "" {
			p = DefaultReferencePrefix
		}
		parts = append(parts, p)
	}
	if digits := mobileDigits(mobile); digits != "" {
		parts = append(parts, digits)
	}

	if value := sanitizeReference(userSupplied); value != "" {
		parts = append(parts, value)
	} else {
		parts = append(parts, g.autoValue())
	}
	return strings.Join(parts, "-")
}

// IsUserSupplied reports whether Generate would use the caller's value.
func IsUserSupplied(userSupplied string) bool {
	return sanitizeReference(userSupplied) != ""
}

func (g *ReferenceGenerator) autoValue() string {
	now := time.Now
	if g.now != nil {
		now = g.now
	}
	random := randomBase36
	if g.random != nil {
		random = g.random
	}
	stamp := strings.ToUpper(strconv.FormatInt(now().UnixMilli(), 36))
	return stamp + random(referenceSuffixLen)
}

// mobileDigits keeps the last ten digits, dropping any country code.
func mobileDigits(mobile string) string {
	var b strings.Builder
	for _, r := range mobile {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		digits = digits[len(digits)-10:]
	}
	return digits
}

func sanitizeReference(value string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(value)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_")
}

func randomBase36(n int) string {
	max := big.NewInt(int64(len(base36Alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			out[i] = base36Alphabet[time.Now().UnixNano()%int64(len(base36Alphabet))]
			continue
		}
		out[i] = base36Alphabet[idx.Int64()]
	}
	return string(out)
}
