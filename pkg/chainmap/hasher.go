package chainmap

import (
	"unicode/utf16"

	"github.com/pierrec/xxHash/xxHash64"
	"github.com/zeebo/xxh3"
)

// Hasher hashes keys to a non-negative 64-bit value
// that is reduced to a bucket index by the map.
type Hasher interface{ Hash(key string) uint64 }

// HasherPolynomial is the default hasher computing the rolling hash
// h = h*31 + c over the UTF-16 code units of the key
// with 32-bit two's complement wraparound.
// The absolute value of the signed result is returned, which makes
// bucket indexes equal to |String.hashCode| mod capacity.
type HasherPolynomial struct{}

// Hash hashes k to a value in [0, 2^31].
func (HasherPolynomial) Hash(k string) uint64 {
	var h int32
	for i := 0; i < len(k); i++ {
		if c := k[i]; c < 0x80 {
			// ASCII fast path
			h = h*31 + int32(c)
			continue
		}
		for _, u := range utf16.Encode([]rune(k[i:])) {
			h = h*31 + int32(u)
		}
		break
	}
	a := int64(h)
	if a < 0 {
		a = -a
	}
	return uint64(a)
}

// HasherXXH3 can be used to provide custom seeds during initialization.
type HasherXXH3 struct {
	Seed uint64
}

// Hash hashes k to a 64-bit hash value.
func (h *HasherXXH3) Hash(k string) uint64 {
	return xxh3.HashStringSeed(k, h.Seed)
}

// HasherXXH64 hashes keys with XXH64.
type HasherXXH64 struct {
	Seed uint64
}

// Hash hashes k to a 64-bit hash value.
func (h *HasherXXH64) Hash(k string) uint64 {
	return xxHash64.Checksum([]byte(k), h.Seed)
}

// Hasher names accepted by HasherByName.
const (
	HasherNamePolynomial = "polynomial"
	HasherNameXXH3       = "xxh3"
	HasherNameXXH64      = "xxh64"
)

// HasherByName returns the hasher registered under name,
// or nil if there is none.
func HasherByName(name string) Hasher {
	switch name {
	case HasherNamePolynomial:
		return HasherPolynomial{}
	case HasherNameXXH3:
		return &HasherXXH3{}
	case HasherNameXXH64:
		return &HasherXXH64{}
	}
	return nil
}
