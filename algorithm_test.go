package pdfverify_test

import (
	"crypto"
	"encoding/asn1"
	"encoding/hex"
	"testing"

	pdfverify "github.com/RichardBray/pdf-verify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mozilla.org/pkcs7"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		oid  asn1.ObjectIdentifier
		name string
		hash crypto.Hash
	}{
		{pkcs7.OIDDigestAlgorithmSHA1, "SHA1", crypto.SHA1},
		{asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 4}, "SHA224", crypto.SHA224},
		{pkcs7.OIDDigestAlgorithmSHA256, "SHA256", crypto.SHA256},
		{pkcs7.OIDDigestAlgorithmSHA384, "SHA384", crypto.SHA384},
		{pkcs7.OIDDigestAlgorithmSHA512, "SHA512", crypto.SHA512},
		{asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 8}, "SHA3-256", crypto.SHA3_256},
	}

	for _, tt := range tests {
		t.Run(tt.name+", it should ok", func(t *testing.T) {
			d, err := pdfverify.DefaultResolver.Resolve(tt.oid)
			require.NoError(t, err)
			assert.Equal(t, tt.name, d.Name)
			assert.Equal(t, tt.hash, d.Hash)
			assert.Len(t, d.Sum([]byte("abc")), tt.hash.Size())
		})
	}

	t.Run("md5, it should not ok", func(t *testing.T) {
		_, err := pdfverify.DefaultResolver.Resolve(asn1.ObjectIdentifier{1, 2, 840, 113549, 2, 5})
		assert.ErrorIs(t, err, pdfverify.ErrUnsupportedDigestAlgorithm)
	})

	t.Run("known answer", func(t *testing.T) {
		d, err := pdfverify.DefaultResolver.Resolve(pkcs7.OIDDigestAlgorithmSHA256)
		require.NoError(t, err)
		assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(d.Sum([]byte("abc"))))
	})
}

func TestRestrict(t *testing.T) {
	r, err := pdfverify.DefaultResolver.Restrict("sha256", "SHA3-512")
	require.NoError(t, err)

	_, err = r.Resolve(pkcs7.OIDDigestAlgorithmSHA256)
	assert.NoError(t, err)
	_, err = r.Resolve(pkcs7.OIDDigestAlgorithmSHA1)
	assert.ErrorIs(t, err, pdfverify.ErrUnsupportedDigestAlgorithm)

	_, err = pdfverify.DefaultResolver.Restrict("MD5")
	assert.Error(t, err)

	// a restricted resolver cannot widen itself again
	_, err = r.Restrict("SHA1")
	assert.Error(t, err)

	assert.Contains(t, pdfverify.DigestAlgorithmNames(), "SHA384")
	assert.NotContains(t, pdfverify.DigestAlgorithmNames(), "MD5")
}
