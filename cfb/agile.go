package cfb

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/beevik/etree"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding/unicode"
)

// Agile encryption parameters (MS-OFFCRYPTO 2.3.4): AES-256 in CBC mode
// keyed through SHA-512 with a hundred thousand spins.
const (
	keyBits     = 256
	blockSize   = 16
	saltSize    = 16
	hashSize    = sha512.Size
	spinCount   = 100000
	segmentSize = 4096
)

// Block keys appended to the password hash to derive each purpose-bound key.
var (
	blockKeyVerifierInput = []byte{0xfe, 0xa7, 0xd2, 0x76, 0x3b, 0x4b, 0x9e, 0x79}
	blockKeyVerifierHash  = []byte{0xd7, 0xaa, 0x0f, 0x6d, 0x30, 0x61, 0x34, 0x4e}
	blockKeyKeyValue      = []byte{0x14, 0x6e, 0x0b, 0xe7, 0xab, 0xac, 0xd0, 0xd6}
	blockKeyIntegrityKey  = []byte{0x5f, 0xb2, 0xad, 0x01, 0x0c, 0xb9, 0xe1, 0xf6}
	blockKeyIntegrityVal  = []byte{0xa0, 0x67, 0x7f, 0x02, 0xb2, 0x2c, 0x84, 0x33}
)

const (
	nsEncryption  = "http://schemas.microsoft.com/office/2006/encryption"
	nsKeyPassword = "http://schemas.microsoft.com/office/2006/keyEncryptor/password"
	nsKeyCert     = "http://schemas.microsoft.com/office/2006/keyEncryptor/certificate"
)

// hashPassword iterates the spinned password hash: H_0 = H(salt + pw),
// H_i = H(LE32(i) + H_{i-1}).
func hashPassword(password string, salt []byte) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	pw, err := enc.Bytes([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("unable to encode password: %w", err)
	}

	h := sha512.New()
	h.Write(salt)
	h.Write(pw)
	cur := h.Sum(nil)

	var counter [4]byte
	for i := 0; i < spinCount; i++ {
		binary.LittleEndian.PutUint32(counter[:], uint32(i))
		h.Reset()
		h.Write(counter[:])
		h.Write(cur)
		cur = h.Sum(cur[:0])
	}
	return cur, nil
}

// deriveKey binds the password hash to one purpose via its block key and
// trims the digest to the cipher key size.
func deriveKey(hashBase, blockKey []byte) []byte {
	h := sha512.New()
	h.Write(hashBase)
	h.Write(blockKey)
	return fitTo(h.Sum(nil), keyBits/8)
}

// deriveIV produces a block-sized IV from the salt, optionally mixed with a
// block key.
func deriveIV(salt, blockKey []byte) []byte {
	if blockKey == nil {
		return fitTo(salt, blockSize)
	}
	h := sha512.New()
	h.Write(salt)
	h.Write(blockKey)
	return fitTo(h.Sum(nil), blockSize)
}

// fitTo truncates or pads with 0x36 to exactly n bytes.
func fitTo(b []byte, n int) []byte {
	if len(b) >= n {
		return b[:n:n]
	}
	out := make([]byte, n)
	copy(out, b)
	for i := len(b); i < n; i++ {
		out[i] = 0x36
	}
	return out
}

func padToBlock(data []byte) []byte {
	if rem := len(data) % blockSize; rem != 0 {
		return append(data[:len(data):len(data)], make([]byte, blockSize-rem)...)
	}
	return data
}

func cbcEncrypt(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

func cbcDecrypt(key, iv, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(data)%blockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not block aligned", len(data))
	}
	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, data)
	return out, nil
}

// cryptSegments runs the package payload through AES-CBC in 4096-byte
// segments, each with an IV derived from the segment index.
func cryptSegments(data, key, salt []byte, encrypt bool) ([]byte, error) {
	out := make([]byte, 0, len(data)+blockSize)
	var blockKey [4]byte
	for seg := 0; seg*segmentSize < len(data); seg++ {
		lo := seg * segmentSize
		hi := lo + segmentSize
		if hi > len(data) {
			hi = len(data)
		}
		binary.LittleEndian.PutUint32(blockKey[:], uint32(seg))
		iv := deriveIV(salt, blockKey[:])

		var chunk, res []byte
		var err error
		if encrypt {
			chunk = padToBlock(data[lo:hi])
			res, err = cbcEncrypt(key, iv, chunk)
		} else {
			res, err = cbcDecrypt(key, iv, data[lo:hi])
		}
		if err != nil {
			return nil, err
		}
		out = append(out, res...)
	}
	return out, nil
}

// EncryptPackage wraps a finished package in an encrypted compound file
// container with agile encryption.
func EncryptPackage(pkg []byte, password string) ([]byte, error) {
	keySalt := make([]byte, saltSize)
	pkgSalt := make([]byte, saltSize)
	verifierInput := make([]byte, 16)
	keyValue := make([]byte, keyBits/8)
	hmacKey := make([]byte, hashSize)
	for _, b := range [][]byte{keySalt, pkgSalt, verifierInput, keyValue, hmacKey} {
		if _, err := rand.Read(b); err != nil {
			return nil, fmt.Errorf("unable to generate random material: %w", err)
		}
	}

	hashBase, err := hashPassword(password, keySalt)
	if err != nil {
		return nil, err
	}
	iv := deriveIV(keySalt, nil)

	verifierHash := sha512.Sum512(verifierInput)
	encVerifier, err := cbcEncrypt(deriveKey(hashBase, blockKeyVerifierInput), iv, verifierInput)
	if err != nil {
		return nil, err
	}
	encVerifierHash, err := cbcEncrypt(deriveKey(hashBase, blockKeyVerifierHash), iv, padToBlock(verifierHash[:]))
	if err != nil {
		return nil, err
	}
	encKeyValue, err := cbcEncrypt(deriveKey(hashBase, blockKeyKeyValue), iv, keyValue)
	if err != nil {
		return nil, err
	}

	encrypted, err := cryptSegments(pkg, keyValue, pkgSalt, true)
	if err != nil {
		return nil, fmt.Errorf("unable to encrypt package payload: %w", err)
	}

	// integrity HMAC covers the size prefix plus ciphertext
	var sizePrefix [8]byte
	binary.LittleEndian.PutUint64(sizePrefix[:], uint64(len(pkg)))
	mac := hmac.New(sha512.New, hmacKey)
	mac.Write(sizePrefix[:])
	mac.Write(encrypted)
	hmacValue := mac.Sum(nil)

	encHmacKey, err := cbcEncrypt(keyValue, deriveIV(pkgSalt, blockKeyIntegrityKey), padToBlock(hmacKey))
	if err != nil {
		return nil, err
	}
	encHmacValue, err := cbcEncrypt(keyValue, deriveIV(pkgSalt, blockKeyIntegrityVal), padToBlock(hmacValue))
	if err != nil {
		return nil, err
	}

	infoXML := buildEncryptionInfo(pkgSalt, keySalt, encVerifier, encVerifierHash, encKeyValue, encHmacKey, encHmacValue)

	// EncryptionInfo stream: version 4.4 plus agile flags, then the XML
	info := make([]byte, 8, 8+len(infoXML))
	binary.LittleEndian.PutUint16(info[0:2], 4)
	binary.LittleEndian.PutUint16(info[2:4], 4)
	binary.LittleEndian.PutUint32(info[4:8], 0x40)
	info = append(info, infoXML...)

	pkgStream := make([]byte, 8, 8+len(encrypted))
	copy(pkgStream, sizePrefix[:])
	pkgStream = append(pkgStream, encrypted...)

	streams := []stream{
		{path: "EncryptionInfo", data: info},
		{path: "EncryptedPackage", data: pkgStream},
	}
	streams = append(streams, dataSpacesStreams()...)
	return writeContainer(streams)
}

// DecryptPackage opens an encrypted container, verifies the password and
// integrity, and returns the plain package bytes.
func DecryptPackage(data []byte, password string) ([]byte, error) {
	c, err := openContainer(data)
	if err != nil {
		return nil, err
	}

	infoData, err := c.readStream("EncryptionInfo")
	if err != nil {
		return nil, fmt.Errorf("unable to read encryption descriptor: %w", err)
	}
	pkgData, err := c.readStream("EncryptedPackage")
	if err != nil {
		return nil, fmt.Errorf("unable to read encrypted package: %w", err)
	}
	if len(infoData) < 8 || len(pkgData) < 8 {
		return nil, fmt.Errorf("encrypted package streams are truncated")
	}

	major := binary.LittleEndian.Uint16(infoData[0:2])
	minor := binary.LittleEndian.Uint16(infoData[2:4])
	if major != 4 || minor != 4 {
		return nil, fmt.Errorf("unsupported encryption version %d.%d", major, minor)
	}

	info, err := parseEncryptionInfo(infoData[8:])
	if err != nil {
		return nil, err
	}
	if err := info.validate(); err != nil {
		return nil, err
	}

	hashBase, err := hashPassword(password, info.keySalt)
	if err != nil {
		return nil, err
	}
	iv := deriveIV(info.keySalt, nil)

	verifierInput, err := cbcDecrypt(deriveKey(hashBase, blockKeyVerifierInput), iv, info.encVerifier)
	if err != nil {
		return nil, err
	}
	wantHash, err := cbcDecrypt(deriveKey(hashBase, blockKeyVerifierHash), iv, info.encVerifierHash)
	if err != nil {
		return nil, err
	}
	gotHash := sha512.Sum512(verifierInput)
	if !hmac.Equal(gotHash[:], wantHash[:len(gotHash)]) {
		return nil, fmt.Errorf("incorrect password")
	}

	keyValue, err := cbcDecrypt(deriveKey(hashBase, blockKeyKeyValue), iv, info.encKeyValue)
	if err != nil {
		return nil, err
	}
	keyValue = keyValue[:keyBits/8]

	size := binary.LittleEndian.Uint64(pkgData[:8])
	encrypted := pkgData[8:]

	if len(info.encHmacKey) > 0 && len(info.encHmacValue) > 0 {
		hmacKey, err := cbcDecrypt(keyValue, deriveIV(info.pkgSalt, blockKeyIntegrityKey), info.encHmacKey)
		if err != nil {
			return nil, err
		}
		hmacValue, err := cbcDecrypt(keyValue, deriveIV(info.pkgSalt, blockKeyIntegrityVal), info.encHmacValue)
		if err != nil {
			return nil, err
		}
		mac := hmac.New(sha512.New, hmacKey[:hashSize])
		mac.Write(pkgData)
		if !hmac.Equal(mac.Sum(nil), hmacValue[:hashSize]) {
			return nil, fmt.Errorf("package integrity check failed")
		}
	}

	plain, err := cryptSegments(encrypted, keyValue, info.pkgSalt, false)
	if err != nil {
		return nil, fmt.Errorf("unable to decrypt package payload: %w", err)
	}
	if size > uint64(len(plain)) {
		return nil, fmt.Errorf("declared package size %d exceeds payload", size)
	}
	return plain[:size], nil
}

// encryptionInfo carries the parsed agile descriptor fields.
type encryptionInfo struct {
	pkgSalt         []byte
	keySalt         []byte
	spinCount       int
	keyBits         int
	hashAlgorithm   string
	cipherAlgorithm string
	encVerifier     []byte
	encVerifierHash []byte
	encKeyValue     []byte
	encHmacKey      []byte
	encHmacValue    []byte
}

func (i *encryptionInfo) validate() error {
	var err error
	if i.cipherAlgorithm != "AES" {
		err = multierr.Append(err, fmt.Errorf("unsupported cipher %q", i.cipherAlgorithm))
	}
	if i.keyBits != keyBits {
		err = multierr.Append(err, fmt.Errorf("unsupported key size %d", i.keyBits))
	}
	if i.hashAlgorithm != "SHA512" {
		err = multierr.Append(err, fmt.Errorf("unsupported hash %q", i.hashAlgorithm))
	}
	if i.spinCount != spinCount {
		err = multierr.Append(err, fmt.Errorf("unsupported spin count %d", i.spinCount))
	}
	return err
}

func buildEncryptionInfo(pkgSalt, keySalt, encVerifier, encVerifierHash, encKeyValue, encHmacKey, encHmacValue []byte) []byte {
	b64 := base64.StdEncoding.EncodeToString

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	root := doc.CreateElement("encryption")
	root.CreateAttr("xmlns", nsEncryption)
	root.CreateAttr("xmlns:p", nsKeyPassword)
	root.CreateAttr("xmlns:c", nsKeyCert)

	cipherAttrs := func(el *etree.Element, salt []byte) {
		el.CreateAttr("saltSize", strconv.Itoa(saltSize))
		el.CreateAttr("blockSize", strconv.Itoa(blockSize))
		el.CreateAttr("keyBits", strconv.Itoa(keyBits))
		el.CreateAttr("hashSize", strconv.Itoa(hashSize))
		el.CreateAttr("cipherAlgorithm", "AES")
		el.CreateAttr("cipherChaining", "ChainingModeCBC")
		el.CreateAttr("hashAlgorithm", "SHA512")
		el.CreateAttr("saltValue", b64(salt))
	}

	cipherAttrs(root.CreateElement("keyData"), pkgSalt)

	integrity := root.CreateElement("dataIntegrity")
	integrity.CreateAttr("encryptedHmacKey", b64(encHmacKey))
	integrity.CreateAttr("encryptedHmacValue", b64(encHmacValue))

	encryptors := root.CreateElement("keyEncryptors")
	encryptor := encryptors.CreateElement("keyEncryptor")
	encryptor.CreateAttr("uri", nsKeyPassword)

	key := encryptor.CreateElement("p:encryptedKey")
	key.CreateAttr("spinCount", strconv.Itoa(spinCount))
	cipherAttrs(key, keySalt)
	key.CreateAttr("encryptedVerifierHashInput", b64(encVerifier))
	key.CreateAttr("encryptedVerifierHashValue", b64(encVerifierHash))
	key.CreateAttr("encryptedKeyValue", b64(encKeyValue))

	out, _ := doc.WriteToBytes()
	return out
}

func parseEncryptionInfo(data []byte) (*encryptionInfo, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("malformed encryption descriptor: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty encryption descriptor")
	}

	b64attr := func(el *etree.Element, name string) []byte {
		v, err := base64.StdEncoding.DecodeString(el.SelectAttrValue(name, ""))
		if err != nil {
			return nil
		}
		return v
	}

	info := &encryptionInfo{}
	keyData := root.SelectElement("keyData")
	if keyData == nil {
		return nil, fmt.Errorf("encryption descriptor has no keyData element")
	}
	info.pkgSalt = b64attr(keyData, "saltValue")
	info.cipherAlgorithm = keyData.SelectAttrValue("cipherAlgorithm", "AES")
	info.hashAlgorithm = keyData.SelectAttrValue("hashAlgorithm", "SHA512")
	info.keyBits, _ = strconv.Atoi(keyData.SelectAttrValue("keyBits", "256"))

	if integrity := root.SelectElement("dataIntegrity"); integrity != nil {
		info.encHmacKey = b64attr(integrity, "encryptedHmacKey")
		info.encHmacValue = b64attr(integrity, "encryptedHmacValue")
	}

	var encKey *etree.Element
	if encryptors := root.SelectElement("keyEncryptors"); encryptors != nil {
		for _, ke := range encryptors.SelectElements("keyEncryptor") {
			for _, child := range ke.ChildElements() {
				if child.Tag == "encryptedKey" {
					encKey = child
				}
			}
		}
	}
	if encKey == nil {
		return nil, fmt.Errorf("encryption descriptor has no password key encryptor")
	}
	info.spinCount, _ = strconv.Atoi(encKey.SelectAttrValue("spinCount", "100000"))
	info.keySalt = b64attr(encKey, "saltValue")
	info.encVerifier = b64attr(encKey, "encryptedVerifierHashInput")
	info.encVerifierHash = b64attr(encKey, "encryptedVerifierHashValue")
	info.encKeyValue = b64attr(encKey, "encryptedKeyValue")

	if len(info.pkgSalt) == 0 || len(info.keySalt) == 0 || len(info.encVerifier) == 0 ||
		len(info.encVerifierHash) == 0 || len(info.encKeyValue) == 0 {
		return nil, fmt.Errorf("encryption descriptor is missing key material")
	}
	return info, nil
}
