// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"errors"
)

// fPKCS5Padding pads plaintext to the cipher block size. With snmp=true an
// exact block multiple is left unpadded, the lenient behavior agents expect
// for scoped PDUs.
func fPKCS5Padding(src []byte, blockSize int, snmp bool) (data []byte, err error) {
	if len(src) == 0 {
		return nil, errors.New("Zero data length")
	}
	if snmp {
		if len(src)%blockSize == 0 {
			return src, nil
		}
	}

	padding := blockSize - len(src)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(src, padtext...), nil
}

// fPKCS5UnPadding removes block padding. With snmp=true an invalid padding
// tail is returned as-is rather than treated as an error, since an agent may
// have sent an unpadded block-aligned PDU.
func fPKCS5UnPadding(src []byte, blockSize int, snmp bool) (data []byte, err error) {
	if len(src) == 0 {
		return nil, errors.New("Zero data length")
	}

	unpadding := int(src[len(src)-1])

	if unpadding > blockSize || unpadding <= 0 || unpadding > len(src) {
		if snmp {
			return src, nil
		}
		return nil, errors.New("UnPadding Error")
	}

	for i := 0; i < unpadding; i++ {
		if src[len(src)-1-i] != byte(unpadding) {
			if snmp {
				return src, nil
			}
			return nil, errors.New("UnPadding Error")
		}
	}
	return src[:(len(src) - unpadding)], nil
}

// encryptAESCFB performs AES-CFB128 encryption (RFC 3826).
// Accepts 16/24/32-byte keys for AES128/192/256.
func encryptAESCFB(src, key, iv []byte) (EncryptedData []byte, err error) {
	if len(src) == 0 {
		return nil, errors.New("Source data length error")
	}
	if len(iv) != 16 {
		return nil, errors.New("IV length error")
	}
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, errors.New("Key length error")
	}
	dst := make([]byte, len(src))
	aesBlockEncrypter, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesEncrypter := cipher.NewCFBEncrypter(aesBlockEncrypter, iv)
	aesEncrypter.XORKeyStream(dst, src)
	return dst, nil
}

// decryptAESCFB performs AES-CFB128 decryption (RFC 3826).
func decryptAESCFB(src, key, iv []byte) (DecryptedData []byte, err error) {
	if len(src) == 0 {
		return nil, errors.New("Source data length error")
	}
	if len(iv) != 16 {
		return nil, errors.New("IV length error")
	}
	if len(key) != 16 && len(key) != 24 && len(key) != 32 {
		return nil, errors.New("Key length error")
	}
	dst := make([]byte, len(src))
	aesBlockDecrypter, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesDecrypter := cipher.NewCFBDecrypter(aesBlockDecrypter, iv)
	aesDecrypter.XORKeyStream(dst, src)
	return dst, nil
}

// encryptDES performs DES-CBC encryption (RFC 3414 legacy privacy).
// Key is the first 8 localized bytes, IV is preIV XOR salt.
func encryptDES(src, key, iv []byte) (EncryptedData []byte, err error) {
	if len(iv) != 8 {
		return nil, errors.New("IV length error")
	}
	if len(key) != 8 {
		return nil, errors.New("Key length error")
	}
	desBlockEncrypter, err := des.NewCipher(key)
	if err != nil {
		return nil, err
	}
	PaddedData, PadingErr := fPKCS5Padding(src, desBlockEncrypter.BlockSize(), true)
	if PadingErr != nil {
		return nil, PadingErr
	}
	ReturnData := make([]byte, len(PaddedData))
	desEncrypter := cipher.NewCBCEncrypter(desBlockEncrypter, iv)
	desEncrypter.CryptBlocks(ReturnData, PaddedData)
	return ReturnData, nil
}

// decryptDES performs DES-CBC decryption with lenient unpadding.
func decryptDES(src, key, iv []byte) (DecryptedData []byte, err error) {
	if len(iv) != 8 {
		return nil, errors.New("IV length error")
	}
	if len(key) != 8 {
		return nil, errors.New("Key length error")
	}
	if len(src) == 0 || len(src)%8 != 0 {
		return nil, errors.New("Source length error")
	}
	desBlockDecrypter, err := des.NewCipher(key)
	if err != nil {
		return nil, err
	}
	ReturnData := make([]byte, len(src))
	desDecrypter := cipher.NewCBCDecrypter(desBlockDecrypter, iv)
	desDecrypter.CryptBlocks(ReturnData, src)
	ReturnData, UnpadingErr := fPKCS5UnPadding(ReturnData, desBlockDecrypter.BlockSize(), true)
	if UnpadingErr != nil {
		return ReturnData, UnpadingErr
	}
	return ReturnData, nil
}

// encrypt3DES performs Triple DES CBC encryption. Key is the first 24
// localized bytes, IV is preIV XOR salt as with single DES.
func encrypt3DES(src, key, iv []byte) (EncryptedData []byte, err error) {
	if len(iv) != 8 {
		return nil, errors.New("IV length error")
	}
	if len(key) != 24 {
		return nil, errors.New("Key length error")
	}
	tdesBlockEncrypter, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, err
	}
	PaddedData, PadingErr := fPKCS5Padding(src, tdesBlockEncrypter.BlockSize(), true)
	if PadingErr != nil {
		return nil, PadingErr
	}
	ReturnData := make([]byte, len(PaddedData))
	tdesEncrypter := cipher.NewCBCEncrypter(tdesBlockEncrypter, iv)
	tdesEncrypter.CryptBlocks(ReturnData, PaddedData)
	return ReturnData, nil
}

// decrypt3DES performs Triple DES CBC decryption with lenient unpadding.
func decrypt3DES(src, key, iv []byte) (DecryptedData []byte, err error) {
	if len(iv) != 8 {
		return nil, errors.New("IV length error")
	}
	if len(key) != 24 {
		return nil, errors.New("Key length error")
	}
	if len(src) == 0 || len(src)%8 != 0 {
		return nil, errors.New("Source length error")
	}
	tdesBlockDecrypter, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, err
	}
	ReturnData := make([]byte, len(src))
	tdesDecrypter := cipher.NewCBCDecrypter(tdesBlockDecrypter, iv)
	tdesDecrypter.CryptBlocks(ReturnData, src)
	ReturnData, UnpadingErr := fPKCS5UnPadding(ReturnData, tdesBlockDecrypter.BlockSize(), true)
	if UnpadingErr != nil {
		return ReturnData, UnpadingErr
	}
	return ReturnData, nil
}
