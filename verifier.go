package pdfverify

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
)

// VerifyAttributeSignature checks that signature was made over the encoded
// attribute set with the key of cert. The certificate itself is not validated.
func VerifyAttributeSignature(cert *x509.Certificate, scheme asn1.ObjectIdentifier, digest DigestAlgorithm, attrSet, signature []byte) error {
	if cert == nil {
		return newError(KindInvalidAttributeSignature, "no signer certificate", nil)
	}

	if err := checkSignature(cert.PublicKey, scheme, digest, attrSet, signature); err != nil {
		return newError(KindInvalidAttributeSignature, "authenticated attributes signature does not verify", err)
	}

	return nil
}

func checkSignature(pub crypto.PublicKey, schemeOID asn1.ObjectIdentifier, digest DigestAlgorithm, message, signature []byte) error {
	scheme, name, _ := lookupSignatureScheme(schemeOID)

	switch scheme {
	case schemePKCS1v15, schemePSS:
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("%s signature with %T key", name, pub)
		}
		hashed := digest.Sum(message)
		if scheme == schemePSS {
			return rsa.VerifyPSS(key, digest.Hash, hashed, signature, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthAuto})
		}
		if !hasPKCS1Prefix(digest.Hash) {
			return verifyDigestInfo(key, digest, hashed, signature)
		}
		return rsa.VerifyPKCS1v15(key, digest.Hash, hashed, signature)

	case schemeECDSA:
		key, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("%s signature with %T key", name, pub)
		}
		if !ecdsa.VerifyASN1(key, digest.Sum(message), signature) {
			return errors.New("ecdsa verification failure")
		}
		return nil

	case schemeEd25519:
		key, ok := pub.(ed25519.PublicKey)
		if !ok {
			return fmt.Errorf("%s signature with %T key", name, pub)
		}
		if !ed25519.Verify(key, message, signature) {
			return errors.New("ed25519 verification failure")
		}
		return nil
	}

	return fmt.Errorf("signature algorithm %s not supported", name)
}

// hasPKCS1Prefix reports whether crypto/rsa knows the DigestInfo prefix of h.
func hasPKCS1Prefix(h crypto.Hash) bool {
	switch h {
	case crypto.SHA3_256, crypto.SHA3_384, crypto.SHA3_512:
		return false
	}

	return true
}

type digestInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	Digest    []byte
}

// verifyDigestInfo checks a PKCS#1 v1.5 signature over a DigestInfo built
// here. Signers differ on whether the algorithm parameters are NULL or absent,
// both are accepted.
func verifyDigestInfo(key *rsa.PublicKey, digest DigestAlgorithm, hashed, signature []byte) error {
	var err error
	for _, params := range []asn1.RawValue{asn1.NullRawValue, {}} {
		var encoded []byte
		encoded, err = asn1.Marshal(digestInfo{
			Algorithm: pkix.AlgorithmIdentifier{Algorithm: digest.OID, Parameters: params},
			Digest:    hashed,
		})
		if err != nil {
			return err
		}
		if err = rsa.VerifyPKCS1v15(key, crypto.Hash(0), encoded, signature); err == nil {
			return nil
		}
	}

	return err
}

// VerifyContentDigest hashes content and compares it with the messageDigest
// attribute.
func VerifyContentDigest(content []byte, digest DigestAlgorithm, attrs []Attribute) error {
	claimed, err := MessageDigest(attrs)
	if err != nil {
		return err
	}

	computed := digest.Sum(content)
	if !bytes.Equal(computed, claimed) {
		return newError(KindContentDigestMismatch,
			fmt.Sprintf("%s of signed content is %x, signer claims %x", digest.Name, computed, claimed), nil)
	}

	return nil
}
