package richtext

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
)

const keyLength = 12

// keyGen hands out _key values that are unique within one document and
// stable across runs for the same seed and input.
type keyGen struct {
	seed string
	n    int
}

func newKeyGen(seed string) *keyGen {
	return &keyGen{seed: seed}
}

func (g *keyGen) next() string {
	g.n++
	sum := sha1.Sum([]byte(g.seed + ":" + strconv.Itoa(g.n)))
	return hex.EncodeToString(sum[:])[:keyLength]
}
