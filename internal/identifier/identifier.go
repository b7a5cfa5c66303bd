// Package identifier mints the EAN-13 codes and numeric item ids assigned to
// newly synthesized records.
package identifier

import (
	"errors"
	"strconv"
	"strings"
)

// EANPrefix marks the internally reserved code range.
const EANPrefix = "623"

const (
	DefaultItemIDMin   = 1
	DefaultItemIDMax   = 9999
	DefaultMaxAttempts = 10000
)

var ErrCapacityExhausted = errors.New("identifier space exhausted")

// Source is the random source used for minting. *rand.Rand from math/rand/v2
// satisfies it.
type Source interface {
	IntN(n int) int
}

// Checksum computes the EAN-13 check digit of a 12 digit string.
func Checksum(first12 string) int {
	sum := 0
	for i := 0; i < 12 && i < len(first12); i++ {
		d := int(first12[i] - '0')
		if i%2 == 0 {
			sum += d
		} else {
			sum += d * 3
		}
	}
	return (10 - sum%10) % 10
}

// Valid reports whether ean is 13 digits with a correct check digit.
func Valid(ean string) bool {
	if len(ean) != 13 {
		return false
	}
	for i := 0; i < 13; i++ {
		if ean[i] < '0' || ean[i] > '9' {
			return false
		}
	}
	return Checksum(ean[:12]) == int(ean[12]-'0')
}

func GenerateEAN13(r Source) string {
	var b strings.Builder
	b.Grow(13)
	b.WriteString(EANPrefix)
	for i := 0; i < 12-len(EANPrefix); i++ {
		b.WriteByte(byte('0' + r.IntN(10)))
	}
	first12 := b.String()
	return first12 + strconv.Itoa(Checksum(first12))
}

// UniqueEAN13 draws codes until one is not in used, records it in used and
// returns it.
func UniqueEAN13(r Source, used map[string]struct{}, maxAttempts int) (string, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	for range maxAttempts {
		ean := GenerateEAN13(r)
		if _, taken := used[ean]; taken {
			continue
		}
		used[ean] = struct{}{}
		return ean, nil
	}
	return "", ErrCapacityExhausted
}

// UniqueItemID samples [min, max] until it finds a value missing from used.
// After maxAttempts misses it probes linearly from a random offset, so the
// call only fails when the whole range is taken.
func UniqueItemID(r Source, used map[int]struct{}, min, max, maxAttempts int) (int, error) {
	if max < min {
		return 0, ErrCapacityExhausted
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	size := max - min + 1

	taken := 0
	for id := range used {
		if id >= min && id <= max {
			taken++
		}
	}
	if taken >= size {
		return 0, ErrCapacityExhausted
	}

	for range maxAttempts {
		id := min + r.IntN(size)
		if _, ok := used[id]; ok {
			continue
		}
		used[id] = struct{}{}
		return id, nil
	}

	start := r.IntN(size)
	for i := range size {
		id := min + (start+i)%size
		if _, ok := used[id]; !ok {
			used[id] = struct{}{}
			return id, nil
		}
	}
	return 0, ErrCapacityExhausted
}
