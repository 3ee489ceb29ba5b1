package pdfverify_test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509/pkix"
	"encoding/asn1"
	"testing"

	pdfverify "github.com/RichardBray/pdf-verify"
	"github.com/RichardBray/pdf-verify/internal/testpdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mozilla.org/pkcs7"
)

var (
	oidRSA     = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}
	oidRSAPSS  = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}
	oidECDSA   = asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}
	oidEd25519 = asn1.ObjectIdentifier{1, 3, 101, 112}
)

func sha256Digest(t *testing.T) pdfverify.DigestAlgorithm {
	d, err := pdfverify.DefaultResolver.Resolve(pkcs7.OIDDigestAlgorithmSHA256)
	require.NoError(t, err)

	return d
}

func TestVerifyAttributeSignature(t *testing.T) {
	digest := sha256Digest(t)
	attrSet, err := pdfverify.EncodeAttributeSet([]pdfverify.Attribute{setAttribute(t, messageDigestOID, []byte{1, 2, 3})})
	require.NoError(t, err)
	hashed := digest.Sum(attrSet)

	t.Run("rsa pkcs1v15, it should ok", func(t *testing.T) {
		s := testpdf.RSA(t)
		signature, err := rsa.SignPKCS1v15(rand.Reader, s.Key.(*rsa.PrivateKey), crypto.SHA256, hashed)
		require.NoError(t, err)

		require.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSA, digest, attrSet, signature))

		// any flipped bit breaks it
		for _, bit := range []int{0, 7, 100, 8*len(signature) - 1} {
			flipped := append([]byte{}, signature...)
			flipped[bit/8] ^= 1 << (bit % 8)
			err := pdfverify.VerifyAttributeSignature(s.Certificate, oidRSA, digest, attrSet, flipped)
			assert.ErrorIs(t, err, pdfverify.ErrInvalidAttributeSignature, "bit %d", bit)
		}

		changed := append([]byte{}, attrSet...)
		changed[len(changed)-1] ^= 0x01
		err = pdfverify.VerifyAttributeSignature(s.Certificate, oidRSA, digest, changed, signature)
		assert.ErrorIs(t, err, pdfverify.ErrInvalidAttributeSignature)
	})

	t.Run("rsa pss, it should ok", func(t *testing.T) {
		s := testpdf.RSA(t)
		signature, err := rsa.SignPSS(rand.Reader, s.Key.(*rsa.PrivateKey), crypto.SHA256, hashed, nil)
		require.NoError(t, err)

		assert.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSAPSS, digest, attrSet, signature))
		assert.Error(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSA, digest, attrSet, signature))
	})

	t.Run("ecdsa, it should ok", func(t *testing.T) {
		s := testpdf.ECDSA(t)
		signature, err := ecdsa.SignASN1(rand.Reader, s.Key.(*ecdsa.PrivateKey), hashed)
		require.NoError(t, err)

		assert.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidECDSA, digest, attrSet, signature))
	})

	t.Run("ed25519, it should ok", func(t *testing.T) {
		_, key, err := ed25519.GenerateKey(rand.Reader)
		require.NoError(t, err)
		s := testpdf.NewSigner(t, key, "Ed25519 Test Signer")

		signature := ed25519.Sign(key, attrSet)
		assert.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidEd25519, digest, attrSet, signature))
	})

	t.Run("ecdsa with sha384 and sha512, it should ok", func(t *testing.T) {
		s := testpdf.ECDSA(t)
		for _, oid := range []asn1.ObjectIdentifier{pkcs7.OIDDigestAlgorithmSHA384, pkcs7.OIDDigestAlgorithmSHA512} {
			other, err := pdfverify.DefaultResolver.Resolve(oid)
			require.NoError(t, err)

			signature, err := ecdsa.SignASN1(rand.Reader, s.Key.(*ecdsa.PrivateKey), other.Sum(attrSet))
			require.NoError(t, err)

			assert.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidECDSA, other, attrSet, signature), other.Name)
			// the same signature checked against another digest
			assert.ErrorIs(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidECDSA, digest, attrSet, signature),
				pdfverify.ErrInvalidAttributeSignature, other.Name)
		}
	})

	t.Run("rsa pss with sha512, it should ok", func(t *testing.T) {
		s := testpdf.RSA(t)
		sha512, err := pdfverify.DefaultResolver.Resolve(pkcs7.OIDDigestAlgorithmSHA512)
		require.NoError(t, err)

		signature, err := rsa.SignPSS(rand.Reader, s.Key.(*rsa.PrivateKey), crypto.SHA512, sha512.Sum(attrSet), nil)
		require.NoError(t, err)

		assert.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSAPSS, sha512, attrSet, signature))
		assert.ErrorIs(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSAPSS, digest, attrSet, signature),
			pdfverify.ErrInvalidAttributeSignature)
	})

	t.Run("rsa with sha3, it should ok", func(t *testing.T) {
		s := testpdf.RSA(t)
		for _, oid := range []asn1.ObjectIdentifier{
			{2, 16, 840, 1, 101, 3, 4, 2, 8},
			{2, 16, 840, 1, 101, 3, 4, 2, 9},
			{2, 16, 840, 1, 101, 3, 4, 2, 10},
		} {
			sha3, err := pdfverify.DefaultResolver.Resolve(oid)
			require.NoError(t, err)

			for _, params := range []asn1.RawValue{asn1.NullRawValue, {}} {
				info, err := asn1.Marshal(struct {
					Algorithm pkix.AlgorithmIdentifier
					Digest    []byte
				}{pkix.AlgorithmIdentifier{Algorithm: oid, Parameters: params}, sha3.Sum(attrSet)})
				require.NoError(t, err)

				signature, err := rsa.SignPKCS1v15(rand.Reader, s.Key.(*rsa.PrivateKey), crypto.Hash(0), info)
				require.NoError(t, err)

				assert.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSA, sha3, attrSet, signature), sha3.Name)

				changed := append([]byte{}, attrSet...)
				changed[len(changed)-1] ^= 0x01
				assert.ErrorIs(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSA, sha3, changed, signature),
					pdfverify.ErrInvalidAttributeSignature, sha3.Name)
			}
		}
	})

	t.Run("rsa pss with sha3, it should ok", func(t *testing.T) {
		s := testpdf.RSA(t)
		sha3, err := pdfverify.DefaultResolver.Resolve(asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 8})
		require.NoError(t, err)

		signature, err := rsa.SignPSS(rand.Reader, s.Key.(*rsa.PrivateKey), crypto.SHA3_256, sha3.Sum(attrSet), nil)
		require.NoError(t, err)

		assert.NoError(t, pdfverify.VerifyAttributeSignature(s.Certificate, oidRSAPSS, sha3, attrSet, signature))
	})

	t.Run("key does not match the scheme, it should not ok", func(t *testing.T) {
		s := testpdf.ECDSA(t)
		signature, err := ecdsa.SignASN1(rand.Reader, s.Key.(*ecdsa.PrivateKey), hashed)
		require.NoError(t, err)

		err = pdfverify.VerifyAttributeSignature(s.Certificate, oidRSA, digest, attrSet, signature)
		assert.ErrorIs(t, err, pdfverify.ErrInvalidAttributeSignature)
	})

	t.Run("unknown scheme, it should not ok", func(t *testing.T) {
		s := testpdf.RSA(t)
		err := pdfverify.VerifyAttributeSignature(s.Certificate, asn1.ObjectIdentifier{1, 2, 3}, digest, attrSet, []byte{1})
		assert.ErrorIs(t, err, pdfverify.ErrInvalidAttributeSignature)
	})

	t.Run("no certificate, it should not ok", func(t *testing.T) {
		err := pdfverify.VerifyAttributeSignature(nil, oidRSA, digest, attrSet, []byte{1})
		assert.ErrorIs(t, err, pdfverify.ErrInvalidAttributeSignature)
	})
}

func TestVerifyContentDigest(t *testing.T) {
	digest := sha256Digest(t)
	content := []byte("signed bytes")
	attrs := []pdfverify.Attribute{setAttribute(t, messageDigestOID, digest.Sum(content))}

	t.Run("it should ok", func(t *testing.T) {
		assert.NoError(t, pdfverify.VerifyContentDigest(content, digest, attrs))
	})

	t.Run("changed content, it should not ok", func(t *testing.T) {
		err := pdfverify.VerifyContentDigest([]byte("signed bytez"), digest, attrs)
		assert.ErrorIs(t, err, pdfverify.ErrContentDigestMismatch)
	})

	t.Run("other algorithm, it should not ok", func(t *testing.T) {
		sha512, err := pdfverify.DefaultResolver.Resolve(pkcs7.OIDDigestAlgorithmSHA512)
		require.NoError(t, err)

		err = pdfverify.VerifyContentDigest(content, sha512, attrs)
		assert.ErrorIs(t, err, pdfverify.ErrContentDigestMismatch)
	})

	t.Run("missing attribute, it should not ok", func(t *testing.T) {
		err := pdfverify.VerifyContentDigest(content, digest, nil)
		assert.ErrorIs(t, err, pdfverify.ErrMissingMessageDigestAttribute)
	})
}
