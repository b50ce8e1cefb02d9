package xex2

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// aesECBDecryptBlock decrypts exactly one 16-byte AES block under key in
// ECB mode. Go's stdlib deliberately omits an ECB cipher.BlockMode (it is
// unsafe as a general-purpose mode), so the session key — a single block,
// never chained — is decrypted by driving cipher.Block.Decrypt directly.
func aesECBDecryptBlock(key, block []byte) ([]byte, error) {
	if len(block) != aes.BlockSize {
		return nil, fmt.Errorf("xex2: session key block must be %d bytes, got %d", aes.BlockSize, len(block))
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, aes.BlockSize)
	c.Decrypt(out, block)
	return out, nil
}

// cbcState is the persistent AES-CBC decryption state threaded across an
// entire extraction. The IV starts at all-zero per extraction and
// advances with each decrypted block (CBC chaining is continuous over
// the whole compressed or raw payload, never reset mid-stream).
type cbcState struct {
	block cipher.Block
	iv    [aes.BlockSize]byte
}

func newCBCState(key []byte) (*cbcState, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return &cbcState{block: block}, nil
}

// decryptAligned decrypts every fully-aligned 16-byte run of data in
// place using CBC chaining continued from the previous call; any
// trailing sub-block remainder is left untouched, matching the raw
// extractor's "trailing sub-block bytes are passed through untransformed"
// rule. data is modified and also returned for convenience.
func (s *cbcState) decryptAligned(data []byte) []byte {
	n := len(data) - (len(data) % aes.BlockSize)
	if n == 0 {
		return data
	}
	mode := cipher.NewCBCDecrypter(s.block, s.iv[:])
	out := make([]byte, n)
	mode.CryptBlocks(out, data[:n])
	copy(s.iv[:], data[n-aes.BlockSize:n])
	copy(data[:n], out)
	return data
}

// decryptAll is a convenience for buffers whose length is guaranteed to
// be a multiple of the AES block size (well-formed compressed blocks per
// §4.F).
func (s *cbcState) decryptAll(data []byte) ([]byte, error) {
	if len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("xex2: block length %d is not a multiple of %d", len(data), aes.BlockSize)
	}
	return s.decryptAligned(bytes.Clone(data)), nil
}
