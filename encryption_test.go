package parquet

import (
	"bytes"
	"testing"
)

func TestModuleAADFooterIgnoresOrdinals(t *testing.T) {
	prefix := []byte("file-prefix")
	a := ModuleAAD(prefix, ModuleFooter, 7, 9, 3)
	b := ModuleAAD(prefix, ModuleFooter, 0, 0, 0)
	if !bytes.Equal(a, b) {
		t.Fatalf("footer AAD must not depend on ordinals: %x vs %x", a, b)
	}
	want := append(append([]byte{}, prefix...), byte(ModuleFooter))
	if !bytes.Equal(a, want) {
		t.Fatalf("footer AAD = %x, want %x", a, want)
	}
}

func TestModuleAADDistinguishesPageOrdinal(t *testing.T) {
	prefix := []byte("p")
	a := ModuleAAD(prefix, ModuleDataPage, 0, 0, 0)
	b := ModuleAAD(prefix, ModuleDataPage, 0, 0, 1)
	if bytes.Equal(a, b) {
		t.Fatalf("AAD for distinct page ordinals must differ")
	}
}

func TestModuleAADDictionaryPageOmitsPageOrdinal(t *testing.T) {
	prefix := []byte("p")
	// Dictionary pages are not page-ordinal-scoped per §4.8: the ordinal
	// argument must not change the derived AAD.
	a := ModuleAAD(prefix, ModuleDictionaryPage, 1, 2, 0)
	b := ModuleAAD(prefix, ModuleDictionaryPage, 1, 2, 99)
	if !bytes.Equal(a, b) {
		t.Fatalf("dictionary page AAD must ignore page ordinal: %x vs %x", a, b)
	}
}

func TestEncryptGCMRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 16)
	aad := []byte("some-aad")
	plaintext := []byte("hello parquet encrypted page payload")

	ct, err := encryptGCM(key, plaintext, aad)
	if err != nil {
		t.Fatalf("encryptGCM: %v", err)
	}
	if len(ct) != nonceSize+len(plaintext)+tagSize {
		t.Fatalf("ciphertext length = %d, want %d", len(ct), nonceSize+len(plaintext)+tagSize)
	}
	pt, err := decryptGCM(key, ct, aad)
	if err != nil {
		t.Fatalf("decryptGCM: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round-tripped plaintext = %q, want %q", pt, plaintext)
	}
}

func TestEncryptGCMWrongAadFails(t *testing.T) {
	key := bytes.Repeat([]byte{0x7}, 16)
	plaintext := []byte("page bytes")
	ct, err := encryptGCM(key, plaintext, []byte("aad-a"))
	if err != nil {
		t.Fatalf("encryptGCM: %v", err)
	}
	if _, err := decryptGCM(key, ct, []byte("aad-b")); err != ErrTagMismatch {
		t.Fatalf("decrypt with wrong AAD = %v, want ErrTagMismatch", err)
	}
}

func TestEncryptGCMWrongKeyFails(t *testing.T) {
	aad := []byte("aad")
	plaintext := []byte("page bytes")
	ct, err := encryptGCM(bytes.Repeat([]byte{0x1}, 16), plaintext, aad)
	if err != nil {
		t.Fatalf("encryptGCM: %v", err)
	}
	if _, err := decryptGCM(bytes.Repeat([]byte{0x2}, 16), ct, aad); err != ErrTagMismatch {
		t.Fatalf("decrypt with wrong key = %v, want ErrTagMismatch", err)
	}
}

func TestEncryptGCMCorruptedCiphertextDetected(t *testing.T) {
	key := bytes.Repeat([]byte{0x9}, 16)
	aad := []byte("aad")
	ct, err := encryptGCM(key, []byte("abcdefgh"), aad)
	if err != nil {
		t.Fatalf("encryptGCM: %v", err)
	}
	corrupted := append([]byte{}, ct...)
	corrupted[len(corrupted)-1] ^= 0x01 // flip one bit in the tag
	if _, err := decryptGCM(key, corrupted, aad); err != ErrTagMismatch {
		t.Fatalf("decrypt of corrupted ciphertext = %v, want ErrTagMismatch", err)
	}
}

func TestEncryptCTRRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 32)
	plaintext := []byte("counter mode page bytes, no authentication tag")
	ct, err := encryptCTR(key, plaintext, nil)
	if err != nil {
		t.Fatalf("encryptCTR: %v", err)
	}
	if len(ct) != nonceSize+len(plaintext) {
		t.Fatalf("ciphertext length = %d, want %d (no tag in CTR mode)", len(ct), nonceSize+len(plaintext))
	}
	pt, err := decryptCTR(key, ct)
	if err != nil {
		t.Fatalf("decryptCTR: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round-tripped plaintext = %q, want %q", pt, plaintext)
	}
}

func TestFileEncryptorEncryptFooterRoundTrip(t *testing.T) {
	footerKey := bytes.Repeat([]byte{0xAB}, 16)
	enc, err := NewFileEncryptor(AesGcmV1, footerKey, []byte("prefix"), false)
	if err != nil {
		t.Fatalf("NewFileEncryptor: %v", err)
	}
	plaintext := []byte("thrift-encoded file metadata bytes")
	ct, err := enc.EncryptFooter(plaintext)
	if err != nil {
		t.Fatalf("EncryptFooter: %v", err)
	}
	aad := ModuleAAD(enc.prefixAndUnique(), ModuleFooter, -1, -1, -1)
	pt, err := decryptGCM(footerKey, ct, aad)
	if err != nil {
		t.Fatalf("decryptGCM: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("footer round-trip = %q, want %q", pt, plaintext)
	}
}

func TestFileEncryptorFooterAlwaysGCMUnderCTRAlgorithm(t *testing.T) {
	// §4.8: AES_GCM_CTR_V1 still authenticates the footer with GCM even
	// though pages/headers use unauthenticated CTR.
	footerKey := bytes.Repeat([]byte{0xCD}, 16)
	enc, err := NewFileEncryptor(AesGcmCtrV1, footerKey, nil, false)
	if err != nil {
		t.Fatalf("NewFileEncryptor: %v", err)
	}
	ct, err := enc.EncryptFooter([]byte("footer"))
	if err != nil {
		t.Fatalf("EncryptFooter: %v", err)
	}
	if len(ct) != nonceSize+len("footer")+tagSize {
		t.Fatalf("footer ciphertext length = %d, want a GCM-tagged length", len(ct))
	}
}

func TestFileEncryptorPerColumnKeys(t *testing.T) {
	footerKey := bytes.Repeat([]byte{0x01}, 16)
	colKey := bytes.Repeat([]byte{0x02}, 16)
	enc, err := NewFileEncryptor(AesGcmV1, footerKey, nil, false)
	if err != nil {
		t.Fatalf("NewFileEncryptor: %v", err)
	}
	enc.SetColumnKey("a.b", colKey)

	pe := enc.PageEncryptorFor("a.b", 0, 2, true)
	if pe == nil {
		t.Fatalf("PageEncryptorFor returned nil for an encrypted column")
	}
	plaintext := []byte("column a.b page payload")
	ct, err := pe.EncryptDataPage(plaintext, 0)
	if err != nil {
		t.Fatalf("EncryptDataPage: %v", err)
	}
	aad := ModuleAAD(enc.prefixAndUnique(), ModuleDataPage, 0, 2, 0)
	pt, err := decryptGCM(colKey, ct, aad)
	if err != nil {
		t.Fatalf("decryptGCM with the column's own key: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round-tripped = %q, want %q", pt, plaintext)
	}
	// The footer key must NOT decrypt a page encrypted under the
	// column's own key.
	if _, err := decryptGCM(footerKey, ct, aad); err != ErrTagMismatch {
		t.Fatalf("decrypt with the wrong (footer) key = %v, want ErrTagMismatch", err)
	}
}

func TestFileEncryptorUnencryptedColumnHasNoPageEncryptor(t *testing.T) {
	enc, err := NewFileEncryptor(AesGcmV1, bytes.Repeat([]byte{0x5}, 16), nil, true)
	if err != nil {
		t.Fatalf("NewFileEncryptor: %v", err)
	}
	if pe := enc.PageEncryptorFor("plain.column", 0, 0, false); pe != nil {
		t.Fatalf("PageEncryptorFor for an unencrypted column = %v, want nil", pe)
	}
}

func TestEncryptColumnMetaDataUsesCTRUnderCtrAlgorithm(t *testing.T) {
	footerKey := bytes.Repeat([]byte{0x3}, 16)
	enc, err := NewFileEncryptor(AesGcmCtrV1, footerKey, nil, true)
	if err != nil {
		t.Fatalf("NewFileEncryptor: %v", err)
	}
	plaintext := []byte("thrift-encoded ColumnMetaData")
	ct, err := enc.EncryptColumnMetaData(plaintext, 0, 1, "x.y")
	if err != nil {
		t.Fatalf("EncryptColumnMetaData: %v", err)
	}
	if len(ct) != nonceSize+len(plaintext) {
		t.Fatalf("ColumnMetaData ciphertext under CTR algorithm carries a tag, want none")
	}
	pt, err := decryptCTR(footerKey, ct)
	if err != nil {
		t.Fatalf("decryptCTR: %v", err)
	}
	if !bytes.Equal(pt, plaintext) {
		t.Fatalf("round-tripped = %q, want %q", pt, plaintext)
	}
}
