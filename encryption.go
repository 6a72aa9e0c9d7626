package parquet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/pqwriter/parquet/format"
)

// EncryptionAlgorithm selects one of the two Parquet modular-encryption
// algorithms (§4.8).
type EncryptionAlgorithm int8

const (
	// AesGcmV1 encrypts the footer, column metadata and pages with
	// AES-GCM. Page headers are written unencrypted.
	AesGcmV1 EncryptionAlgorithm = iota
	// AesGcmCtrV1 authenticates only the footer with AES-GCM; pages and
	// column metadata are encrypted with AES-CTR and carry no tag. Page
	// headers are written unencrypted.
	AesGcmCtrV1
)

// ModuleType tags which part of the file a per-module AAD suffix refers
// to, per §4.8.
type ModuleType byte

const (
	ModuleFooter               ModuleType = 0
	ModuleColumnMetaData       ModuleType = 1
	ModuleDataPage             ModuleType = 2
	ModuleDictionaryPage       ModuleType = 3
	ModuleDataPageHeader       ModuleType = 4
	ModuleDictionaryPageHeader ModuleType = 5
	ModuleColumnIndex          ModuleType = 6
	ModuleOffsetIndex          ModuleType = 7
)

// ModuleAAD derives the per-module AAD: aadPrefix || suffix, where suffix
// encodes the module type and, for row-group-scoped modules, the row
// group/column/page ordinals (§4.8). Footer AAD passes -1 for all three
// ordinals.
func ModuleAAD(aadPrefix []byte, module ModuleType, rowGroupOrdinal, columnOrdinal, pageOrdinal int) []byte {
	suffix := []byte{byte(module)}
	if module == ModuleFooter {
		return append(append([]byte{}, aadPrefix...), suffix...)
	}
	suffix = binary.LittleEndian.AppendUint16(suffix, uint16(rowGroupOrdinal))
	suffix = binary.LittleEndian.AppendUint16(suffix, uint16(columnOrdinal))
	if module == ModuleDataPage || module == ModuleDataPageHeader {
		suffix = binary.LittleEndian.AppendUint16(suffix, uint16(pageOrdinal))
	}
	return append(append([]byte{}, aadPrefix...), suffix...)
}

const (
	nonceSize = 12
	tagSize   = 16
)

// KeyRetriever resolves an opaque key identifier (as stored in a file's
// key_metadata) to the raw key bytes. Implementations are external
// collaborators (e.g. a KMS-backed client); this module only depends on
// the interface (§4.8, DESIGN NOTES).
type KeyRetriever interface {
	GetKey(keyIdentifier []byte) ([]byte, error)
}

// KmsClientFactory constructs a KeyRetriever identified by a short string
// key, replacing the source's reflective "class name in config" KMS
// client instantiation (§9 DESIGN NOTES).
type KmsClientFactory interface {
	NewKeyRetriever(kmsInstanceID string, config map[string]string) (KeyRetriever, error)
}

var kmsClientFactories = make(map[string]KmsClientFactory)

// RegisterKmsClientFactory installs factory under name in the process-wide
// registry.
func RegisterKmsClientFactory(name string, factory KmsClientFactory) {
	kmsClientFactories[name] = factory
}

// LookupKmsClientFactory returns the factory registered under name.
func LookupKmsClientFactory(name string) (KmsClientFactory, bool) {
	f, ok := kmsClientFactories[name]
	return f, ok
}

// KeyMaterial is the envelope-encryption metadata persisted (inline or by
// reference) alongside an encrypted file: the master key id and the data
// key wrapped under it (§4.8). It is serialized as JSON, matching the
// Parquet encryption key-management tools' convention.
type KeyMaterial struct {
	MasterKeyID    string `json:"masterKeyId"`
	WrappedDataKey []byte `json:"wrappedDataKey"`
	Algorithm      string `json:"algorithm"`
	IsFooterKey    bool   `json:"isFooterKey"`
	KeyReference   string `json:"keyReference,omitempty"`
}

// NewMasterKeyID returns a fresh random identifier suitable as a
// KeyMaterial.MasterKeyID when the caller has no existing KMS key id of
// its own; a UUID is the conventional format envelope-encryption tooling
// uses for master key identifiers (§4.8).
func NewMasterKeyID() string { return uuid.New().String() }

// FileEncryptor owns the keys and AAD-prefix state needed to encrypt one
// file's footer, column metadata and pages.
type FileEncryptor struct {
	algorithm     EncryptionAlgorithm
	footerKey     []byte
	columnKeys    map[string][]byte // dotted column path -> key; absent means footer key
	aadPrefix     []byte
	aadFileUnique []byte
	plaintextFooter bool
	footerKeyMetadata []byte
}

// SetFooterKeyMetadata records the opaque key_metadata a reader's
// KeyRetriever needs to resolve the footer key (§4.8).
func (f *FileEncryptor) SetFooterKeyMetadata(metadata []byte) {
	f.footerKeyMetadata = metadata
}

// thriftAlgorithm builds the footer's encryption_algorithm union member
// for this encryptor's algorithm choice.
func (f *FileEncryptor) thriftAlgorithm() *format.EncryptionAlgorithm {
	supplyPrefix := len(f.aadPrefix) == 0
	if f.algorithm == AesGcmCtrV1 {
		return &format.EncryptionAlgorithm{AesGcmCtrV1: &format.AesGcmCtrV1{
			AadPrefix:       f.aadPrefix,
			AadFileUnique:   f.aadFileUnique,
			SupplyAadPrefix: supplyPrefix,
		}}
	}
	return &format.EncryptionAlgorithm{AesGcmV1: &format.AesGcmV1{
		AadPrefix:       f.aadPrefix,
		AadFileUnique:   f.aadFileUnique,
		SupplyAadPrefix: supplyPrefix,
	}}
}

// EncryptColumnMetaData encrypts a column chunk's Thrift-serialized
// ColumnMetaData for plaintext-footer mode (§4.8, §4.9): the footer
// itself stays readable, but each encrypted column's metadata is opaque
// without its key.
func (f *FileEncryptor) EncryptColumnMetaData(plaintext []byte, rowGroupOrdinal, columnOrdinal int, columnPath string) ([]byte, error) {
	aad := ModuleAAD(f.prefixAndUnique(), ModuleColumnMetaData, rowGroupOrdinal, columnOrdinal, 0)
	key := f.keyFor(columnPath)
	if f.algorithm == AesGcmCtrV1 {
		return encryptCTR(key, plaintext, aad)
	}
	return encryptGCM(key, plaintext, aad)
}

// NewFileEncryptor returns a FileEncryptor using footerKey as the uniform
// key (mode (i), §4.8); per-column keys may be added with SetColumnKey
// to switch individual columns to mode (ii).
func NewFileEncryptor(algorithm EncryptionAlgorithm, footerKey []byte, aadPrefix []byte, plaintextFooter bool) (*FileEncryptor, error) {
	unique := make([]byte, 8)
	if _, err := rand.Read(unique); err != nil {
		return nil, err
	}
	return &FileEncryptor{
		algorithm:       algorithm,
		footerKey:       footerKey,
		columnKeys:      make(map[string][]byte),
		aadPrefix:       aadPrefix,
		aadFileUnique:   unique,
		plaintextFooter: plaintextFooter,
	}, nil
}

// SetColumnKey assigns columnPath its own encryption key (per-column key
// management mode (ii), §4.8).
func (f *FileEncryptor) SetColumnKey(columnPath string, key []byte) {
	f.columnKeys[columnPath] = key
}

func (f *FileEncryptor) keyFor(columnPath string) []byte {
	if k, ok := f.columnKeys[columnPath]; ok {
		return k
	}
	return f.footerKey
}

// PageEncryptorFor returns a PageEncryptor for the given column path and
// ordinals, or nil when encryptThisColumn is false. A column without its
// own key set by SetColumnKey is encrypted with the footer key.
func (f *FileEncryptor) PageEncryptorFor(columnPath string, rowGroupOrdinal, columnOrdinal int, encryptThisColumn bool) *PageEncryptor {
	if !encryptThisColumn {
		return nil
	}
	return &PageEncryptor{
		key:             f.keyFor(columnPath),
		algorithm:       f.algorithm,
		aad:             f.prefixAndUnique(),
		rowGroupOrdinal: rowGroupOrdinal,
		columnOrdinal:   columnOrdinal,
	}
}

func (f *FileEncryptor) prefixAndUnique() []byte {
	return append(append([]byte{}, f.aadPrefix...), f.aadFileUnique...)
}

// EncryptFooter encrypts plaintext (the Thrift-serialized FileMetaData)
// with the footer key under the AES_GCM_V1 algorithm (footers are always
// GCM-authenticated, even under AES_GCM_CTR_V1, per §4.8).
func (f *FileEncryptor) EncryptFooter(plaintext []byte) ([]byte, error) {
	aad := ModuleAAD(f.prefixAndUnique(), ModuleFooter, -1, -1, -1)
	return encryptGCM(f.footerKey, plaintext, aad)
}

// PageEncryptor encrypts the pages and page headers of one column chunk.
type PageEncryptor struct {
	key             []byte
	algorithm       EncryptionAlgorithm
	aad             []byte
	rowGroupOrdinal int
	columnOrdinal   int
}

// EncryptDictionaryPage encrypts a dictionary page payload.
func (e *PageEncryptor) EncryptDictionaryPage(plaintext []byte) ([]byte, error) {
	aad := ModuleAAD(e.aad, ModuleDictionaryPage, e.rowGroupOrdinal, e.columnOrdinal, 0)
	return e.encryptModule(plaintext, aad)
}

// EncryptDataPage encrypts a data page payload for the given page
// ordinal within this column chunk.
func (e *PageEncryptor) EncryptDataPage(plaintext []byte, pageOrdinal int) ([]byte, error) {
	aad := ModuleAAD(e.aad, ModuleDataPage, e.rowGroupOrdinal, e.columnOrdinal, pageOrdinal)
	return e.encryptModule(plaintext, aad)
}

func (e *PageEncryptor) encryptModule(plaintext, aad []byte) ([]byte, error) {
	if e.algorithm == AesGcmCtrV1 {
		return encryptCTR(e.key, plaintext, aad)
	}
	return encryptGCM(e.key, plaintext, aad)
}

// encryptGCM returns nonce || ciphertext || 16-byte tag.
func encryptGCM(key, plaintext, aad []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := gcm.Seal(nil, nonce, plaintext, aad)
	return append(nonce, out...), nil
}

// decryptGCM reverses encryptGCM; aad must match exactly or the tag check
// fails with ErrTagMismatch.
func decryptGCM(key, ciphertext, aad []byte) ([]byte, error) {
	if len(ciphertext) < nonceSize+tagSize {
		return nil, ErrTagMismatch
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, nonceSize)
	if err != nil {
		return nil, err
	}
	nonce, rest := ciphertext[:nonceSize], ciphertext[nonceSize:]
	pt, err := gcm.Open(nil, nonce, rest, aad)
	if err != nil {
		return nil, ErrTagMismatch
	}
	return pt, nil
}

// encryptCTR returns nonce || ciphertext, with no authentication tag
// (AES_GCM_CTR_V1 page/header modules, §4.8).
func encryptCTR(key, plaintext, _ []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, nonce)
	stream := cipher.NewCTR(block, iv)
	ciphertext := make([]byte, len(plaintext))
	stream.XORKeyStream(ciphertext, plaintext)
	return append(nonce, ciphertext...), nil
}

func decryptCTR(key, data []byte) ([]byte, error) {
	if len(data) < nonceSize {
		return nil, ErrAadMismatch
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	copy(iv, data[:nonceSize])
	stream := cipher.NewCTR(block, iv)
	out := make([]byte, len(data)-nonceSize)
	stream.XORKeyStream(out, data[nonceSize:])
	return out, nil
}
