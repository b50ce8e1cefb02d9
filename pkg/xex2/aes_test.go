package xex2

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"testing"
)

func TestAESECBDecryptBlockRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)
	plain := bytes.Repeat([]byte{0x07}, 16)

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	cipherText := make([]byte, 16)
	block.Encrypt(cipherText, plain)

	got, err := aesECBDecryptBlock(key, cipherText)
	if err != nil {
		t.Fatalf("aesECBDecryptBlock: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("decrypted block = %x, want %x", got, plain)
	}
}

func TestAESECBDecryptBlockRejectsWrongSize(t *testing.T) {
	key := make([]byte, 16)
	if _, err := aesECBDecryptBlock(key, make([]byte, 15)); err == nil {
		t.Error("expected an error for a non-block-sized input")
	}
}

func TestCBCStateChainsAcrossCalls(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 16)
	plain := bytes.Repeat([]byte{0xAA}, 64)

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	var iv [16]byte
	cipherText := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(cipherText, plain)

	// Feed the ciphertext through decryptAligned in two separate calls,
	// split mid-stream, to exercise the persistent IV across calls.
	s, err := newCBCState(key)
	if err != nil {
		t.Fatalf("newCBCState: %v", err)
	}
	first := append([]byte(nil), cipherText[:32]...)
	second := append([]byte(nil), cipherText[32:]...)

	got1 := s.decryptAligned(first)
	got2 := s.decryptAligned(second)

	got := append(append([]byte{}, got1...), got2...)
	if !bytes.Equal(got, plain) {
		t.Errorf("chained decryptAligned = %x, want %x", got, plain)
	}
}

func TestCBCStateDecryptAllMatchesAligned(t *testing.T) {
	key := bytes.Repeat([]byte{0x33}, 16)
	plain := bytes.Repeat([]byte{0x5A}, 32)

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("aes.NewCipher: %v", err)
	}
	var iv [16]byte
	cipherText := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv[:]).CryptBlocks(cipherText, plain)

	s, err := newCBCState(key)
	if err != nil {
		t.Fatalf("newCBCState: %v", err)
	}
	got, err := s.decryptAll(cipherText)
	if err != nil {
		t.Fatalf("decryptAll: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("decryptAll = %x, want %x", got, plain)
	}
}

func TestCBCStateDecryptAllRejectsUnalignedLength(t *testing.T) {
	s, err := newCBCState(make([]byte, 16))
	if err != nil {
		t.Fatalf("newCBCState: %v", err)
	}
	if _, err := s.decryptAll(make([]byte, 17)); err == nil {
		t.Error("expected an error for a block length that isn't a multiple of 16")
	}
}

func TestCBCStateLeavesTrailingRemainderUntouched(t *testing.T) {
	key := make([]byte, 16)
	s, err := newCBCState(key)
	if err != nil {
		t.Fatalf("newCBCState: %v", err)
	}
	data := append(bytes.Repeat([]byte{0x00}, 16), 0x01, 0x02, 0x03)
	out := s.decryptAligned(append([]byte{}, data...))
	if !bytes.Equal(out[16:], []byte{0x01, 0x02, 0x03}) {
		t.Errorf("trailing remainder = %x, want untouched %x", out[16:], data[16:])
	}
}
