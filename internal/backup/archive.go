package backup

import (
	"bytes"
	"compress/gzip"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

// Archive layout: 4-byte magic, 1-byte version, 16-byte salt, 12-byte
// nonce, then AES-256-GCM ciphertext of the gzipped database. The magic
// and version are bound into the GCM additional data, so a rewritten
// header fails authentication instead of decrypting garbage.
const (
	archiveMagic   = "FVBK"
	archiveVersion = 1

	saltSize   = 16
	nonceSize  = 12
	keySize    = 32
	headerSize = len(archiveMagic) + 1 + saltSize + nonceSize

	argonTime = 3
	argonMem  = 64 * 1024
	argonPar  = 4
)

func deriveKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argonTime, argonMem, argonPar, keySize)
}

// SealFile compresses and encrypts srcPath into a backup archive at
// dstPath. Every archive carries its own fresh salt and nonce, so a
// restore needs nothing but the archive and the passphrase.
func SealFile(srcPath, dstPath, passphrase string) error {
	plaintext, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	if _, err := zw.Write(plaintext); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("create gcm: %w", err)
	}

	ad := append([]byte(archiveMagic), archiveVersion)
	header := make([]byte, 0, headerSize)
	header = append(header, ad...)
	header = append(header, salt...)
	header = append(header, nonce...)

	out := gcm.Seal(header, nonce, compressed.Bytes(), ad)

	if err := os.WriteFile(dstPath, out, 0600); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// OpenFile decrypts the backup archive at srcPath and writes the restored
// database to dstPath.
func OpenFile(srcPath, dstPath, passphrase string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	if len(data) < headerSize || string(data[:len(archiveMagic)]) != archiveMagic {
		return fmt.Errorf("not a foodvault backup archive")
	}
	if v := data[len(archiveMagic)]; v != archiveVersion {
		return fmt.Errorf("unsupported archive version %d", v)
	}

	ad := data[:len(archiveMagic)+1]
	salt := data[len(archiveMagic)+1 : len(archiveMagic)+1+saltSize]
	nonce := data[len(archiveMagic)+1+saltSize : headerSize]
	ciphertext := data[headerSize:]

	block, err := aes.NewCipher(deriveKey(passphrase, salt))
	if err != nil {
		return fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("create gcm: %w", err)
	}

	compressed, err := gcm.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return fmt.Errorf("wrong passphrase or corrupted archive: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	plaintext, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if err := zr.Close(); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}

	if err := os.WriteFile(dstPath, plaintext, 0600); err != nil {
		return fmt.Errorf("write restored file: %w", err)
	}
	return nil
}
