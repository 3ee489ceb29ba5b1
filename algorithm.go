package pdfverify

import (
	"crypto"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"encoding/asn1"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/sha3"
)

// DigestAlgorithm is a hash the resolver knows how to compute.
type DigestAlgorithm struct {
	Name string
	OID  asn1.ObjectIdentifier
	Hash crypto.Hash
	New  func() hash.Hash
}

// Sum hashes data in one go.
func (d DigestAlgorithm) Sum(data []byte) []byte {
	h := d.New()
	h.Write(data)

	return h.Sum(nil)
}

// digestAlgorithms is every digest this package will ever accept. MD5 and
// MD2 are left out on purpose.
var digestAlgorithms = []DigestAlgorithm{
	{"SHA1", asn1.ObjectIdentifier{1, 3, 14, 3, 2, 26}, crypto.SHA1, sha1.New},
	{"SHA224", asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 4}, crypto.SHA224, sha256.New224},
	{"SHA256", asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 1}, crypto.SHA256, sha256.New},
	{"SHA384", asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 2}, crypto.SHA384, sha512.New384},
	{"SHA512", asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 3}, crypto.SHA512, sha512.New},
	{"SHA3-256", asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 8}, crypto.SHA3_256, sha3.New256},
	{"SHA3-384", asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 9}, crypto.SHA3_384, sha3.New384},
	{"SHA3-512", asn1.ObjectIdentifier{2, 16, 840, 1, 101, 3, 4, 2, 10}, crypto.SHA3_512, sha3.New512},
}

// DigestAlgorithmNames lists the names accepted by Resolver.Restrict.
func DigestAlgorithmNames() []string {
	names := make([]string, len(digestAlgorithms))
	for i, d := range digestAlgorithms {
		names[i] = d.Name
	}

	return names
}

// Resolver maps digest algorithm identifiers to hash implementations.
// An OID missing from the table is an error, never a guess.
type Resolver struct {
	table []DigestAlgorithm
}

// DefaultResolver accepts every algorithm in the table.
var DefaultResolver = &Resolver{table: digestAlgorithms}

// Resolve returns the algorithm registered for oid.
func (r *Resolver) Resolve(oid asn1.ObjectIdentifier) (DigestAlgorithm, error) {
	for _, d := range r.table {
		if d.OID.Equal(oid) {
			return d, nil
		}
	}

	return DigestAlgorithm{}, newError(KindUnsupportedDigestAlgorithm,
		fmt.Sprintf("digest algorithm %s unknown", oid), nil)
}

// Restrict returns a resolver that only accepts the named algorithms.
// Names are matched case-insensitively; an unknown name is an error.
func (r *Resolver) Restrict(names ...string) (*Resolver, error) {
	restricted := &Resolver{}
	for _, name := range names {
		d, ok := r.lookup(name)
		if !ok {
			return nil, fmt.Errorf("digest algorithm %q not supported", name)
		}
		restricted.table = append(restricted.table, d)
	}

	return restricted, nil
}

func (r *Resolver) lookup(name string) (DigestAlgorithm, bool) {
	for _, d := range r.table {
		if strings.EqualFold(d.Name, name) {
			return d, true
		}
	}

	return DigestAlgorithm{}, false
}

// signatureScheme is the padding or algorithm a signer declared in the
// SignerInfo digestEncryptionAlgorithm field.
type signatureScheme int

const (
	schemeUnknown signatureScheme = iota
	schemePKCS1v15
	schemePSS
	schemeECDSA
	schemeEd25519
)

var signatureSchemes = []struct {
	oid        asn1.ObjectIdentifier
	name       string
	scheme     signatureScheme
	pubKeyAlgo x509.PublicKeyAlgorithm
}{
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 1}, "RSA", schemePKCS1v15, x509.RSA},
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 5}, "SHA1-RSA", schemePKCS1v15, x509.RSA},
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 14}, "SHA224-RSA", schemePKCS1v15, x509.RSA},
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 11}, "SHA256-RSA", schemePKCS1v15, x509.RSA},
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 12}, "SHA384-RSA", schemePKCS1v15, x509.RSA},
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 13}, "SHA512-RSA", schemePKCS1v15, x509.RSA},
	{asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 1, 10}, "RSAPSS", schemePSS, x509.RSA},
	{asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}, "ECDSA", schemeECDSA, x509.ECDSA},
	{asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 1}, "ECDSA-SHA1", schemeECDSA, x509.ECDSA},
	{asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 1}, "ECDSA-SHA224", schemeECDSA, x509.ECDSA},
	{asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 2}, "ECDSA-SHA256", schemeECDSA, x509.ECDSA},
	{asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 3}, "ECDSA-SHA384", schemeECDSA, x509.ECDSA},
	{asn1.ObjectIdentifier{1, 2, 840, 10045, 4, 3, 4}, "ECDSA-SHA512", schemeECDSA, x509.ECDSA},
	{asn1.ObjectIdentifier{1, 3, 101, 112}, "Ed25519", schemeEd25519, x509.Ed25519},
}

func lookupSignatureScheme(oid asn1.ObjectIdentifier) (signatureScheme, string, x509.PublicKeyAlgorithm) {
	for _, s := range signatureSchemes {
		if s.oid.Equal(oid) {
			return s.scheme, s.name, s.pubKeyAlgo
		}
	}

	return schemeUnknown, oid.String(), x509.UnknownPublicKeyAlgorithm
}

var publicKeyAlgoName = [...]string{
	x509.RSA:     "RSA",
	x509.DSA:     "DSA",
	x509.ECDSA:   "ECDSA",
	x509.Ed25519: "Ed25519",
}
