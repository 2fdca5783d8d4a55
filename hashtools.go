// SNMPSetv3 - SNMPv3 USM SET client library for Go
// License: MIT
package SNMPSetv3

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"errors"
	"hash"

	ASNber "github.com/OlegPowerC/asn1modsnmp"
)

func newAuthHash(AuthProtocol int) hash.Hash {
	switch AuthProtocol {
	case AUTH_PROTOCOL_MD5:
		return md5.New()
	default:
		return sha1.New()
	}
}

// makeLocalizedKeyFromBytes generates the USM localized key per RFC 3414.
//
// The password is repeated into 64-byte blocks until 1,048,576 bytes have
// been hashed, then the intermediate key is bound to the engine:
// localized = hash(K1 | EngineID | K1).
func makeLocalizedKeyFromBytes(keyBytes []byte, EngineID []byte, AuthProtocol int) []byte {
	hasf := newAuthHash(AuthProtocol)

	PassBuf := make([]byte, 64)
	count := 0
	passwordIndex := 0

	passwordlen := len(keyBytes)
	for count < 1048576 {
		for i := 0; i < 64; i++ {
			bind := passwordIndex % passwordlen
			passwordIndex++
			PassBuf[i] = keyBytes[bind]
		}
		hasf.Write(PassBuf)
		count += 64
	}
	finalykey := hasf.Sum(nil)

	PmKey := make([]byte, (len(finalykey)*2)+len(EngineID))
	copy(PmKey[0:len(finalykey)], finalykey)
	copy(PmKey[len(finalykey):len(finalykey)+len(EngineID)], EngineID)
	copy(PmKey[len(finalykey)+len(EngineID):], finalykey)

	hasf.Reset()
	hasf.Write(PmKey)
	AuthKeyComplete := hasf.Sum(nil)
	return AuthKeyComplete
}

func makeLocalizedKey(InKey string, EngineID []byte, AuthProtocol int) (LocalizedKey []byte) {
	return makeLocalizedKeyFromBytes([]byte(InKey), EngineID, AuthProtocol)
}

// expandPrivKey fits the localized key to the privacy protocol.
//
// AES128 truncates to 16 bytes. DES keeps 16: 8 key bytes plus 8 pre-IV
// bytes (MD5 yields exactly 16, SHA1 20). When the hash output is too short
// for the protocol (AES192/AES256/3DES over MD5 or SHA1) the key is
// extended by localizing the intermediate key again and appending the
// prefix of the result, the standard recursive extension.
func expandPrivKey(ku []byte, privProto int, authProto int, engineID []byte) []byte {
	var want int
	switch privProto {
	case PRIV_PROTOCOL_AES128:
		want = 16
	case PRIV_PROTOCOL_DES:
		want = 16
	case PRIV_PROTOCOL_AES192:
		want = 24
	case PRIV_PROTOCOL_AES256:
		want = 32
	case PRIV_PROTOCOL_3DES:
		// 24 cipher key bytes plus 8 pre-IV bytes
		want = 32
	default:
		if len(ku) >= 16 {
			return ku[:16]
		}
		return ku
	}

	if len(ku) >= want {
		return ku[:want]
	}

	result := make([]byte, want)
	copy(result, ku)
	have := len(ku)
	for have < want {
		ext := makeLocalizedKeyFromBytes(result[:have], engineID, authProto)
		n := copy(result[have:], ext)
		have += n
	}
	return result
}

// makeDigest computes the truncated HMAC over a complete message (RFC 3414
// §6/§7). MD5 and SHA1 both truncate to 12 bytes.
func makeDigest(Wmsg []byte, LocalizedKey []byte, AuthProtocol int) (digest []byte) {
	mac := newAuthHash(AuthProtocol)
	digestLen := 12

	extendedAuthKey := bytes.Repeat([]byte{0x00}, 64)
	ipad := bytes.Repeat([]byte{0x36}, 64)
	opad := bytes.Repeat([]byte{0x5c}, 64)
	copy(extendedAuthKey[:len(LocalizedKey)], LocalizedKey)
	k1 := make([]byte, 64)
	k2 := make([]byte, 64)
	for i := 0; i < 64; i++ {
		k1[i] = extendedAuthKey[i] ^ ipad[i]
		k2[i] = extendedAuthKey[i] ^ opad[i]
	}

	mac.Reset()
	mac.Write(append(k1, Wmsg...))
	mdigest := mac.Sum(nil)
	mac.Reset()
	mac.Write(append(k2, mdigest...))
	mdigestfull := mac.Sum(nil)

	return mdigestfull[:digestLen]
}

// verifyDigestRAW validates the auth digest on raw packet bytes: find the
// AuthParams offset, zero-fill it, recompute the HMAC and compare.
func verifyDigestRAW(SNMPv3Packet []byte, digest []byte, LocalizedKey []byte, AuthProtocol int) (Verified bool, err error) {
	offset, aplen, ferr := ASNber.FindSNMPv3AuthParamsOffset(SNMPv3Packet)
	if ferr != nil {
		return false, ferr
	}

	if offset == 0 || offset+aplen > len(SNMPv3Packet) {
		return false, errors.New("AuthParam not found")
	}

	DataCopy := make([]byte, len(SNMPv3Packet))
	copy(DataCopy, SNMPv3Packet)

	for i := 0; i < aplen; i++ {
		DataCopy[offset+i] = 0x00
	}

	DigestCalc := makeDigest(DataCopy, LocalizedKey, AuthProtocol)
	if bytes.Equal(DigestCalc, digest) {
		return true, nil
	}
	return false, nil
}
