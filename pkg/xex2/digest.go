package xex2

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Digest pairs a SHA-1 sum with a short label naming what was hashed —
// a compressed block's offset, an embedded resource's name — so every
// hash-bearing diagnostic gets a stable "prefix:hex" string for
// xex2tool's --verbose output instead of each call site re-implementing
// hex formatting over a raw [20]byte.
type Digest struct {
	Prefix string
	Sum    [sha1.Size]byte
}

// sumBlock hashes data and labels the result prefix.
func sumBlock(prefix string, data []byte) Digest {
	return Digest{Prefix: prefix, Sum: sha1.Sum(data)}
}

// String renders the digest as "prefix:hex", the format spec.md's
// verbose diagnostics use.
func (d Digest) String() string {
	return fmt.Sprintf("%s:%s", d.Prefix, hex.EncodeToString(d.Sum[:]))
}

// Matches reports whether this digest's sum equals want.
func (d Digest) Matches(want [sha1.Size]byte) bool {
	return d.Sum == want
}
