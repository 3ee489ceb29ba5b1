// Package testpdf builds signed PDF documents for tests.
package testpdf

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mozilla.org/pkcs7"
)

// PlaceholderSize is the number of bytes reserved for the signature container.
const PlaceholderSize = 8192

// Signer is a key and its self-signed certificate.
type Signer struct {
	Certificate *x509.Certificate
	Key         crypto.Signer
}

var (
	rsaOnce   sync.Once
	rsaSigner *Signer
	ecOnce    sync.Once
	ecSigner  *Signer
)

// RSA returns a shared 2048 bit RSA signer.
func RSA(t testing.TB) *Signer {
	rsaOnce.Do(func() {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		rsaSigner = NewSigner(t, key, "RSA Test Signer")
	})

	return rsaSigner
}

// ECDSA returns a shared P-256 signer.
func ECDSA(t testing.TB) *Signer {
	ecOnce.Do(func() {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		require.NoError(t, err)
		ecSigner = NewSigner(t, key, "ECDSA Test Signer")
	})

	return ecSigner
}

// NewSigner creates a self-signed certificate for key.
func NewSigner(t testing.TB, key crypto.Signer, commonName string) *Signer {
	template := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: commonName, Organization: []string{"pdfverify"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	return &Signer{Certificate: cert, Key: key}
}

// Document is an unsigned PDF with a zero filled signature placeholder.
type Document struct {
	Bytes                      []byte
	Start1, Len1, Start2, Len2 int
}

// Fields written into the signature dictionary.
const (
	FieldName = "Signature1"
	Reason    = "test"
	Location  = "Jakarta"
	SigningM  = "D:20260102150405+07'00'"
)

type layout struct {
	certified bool
	decoy     bool
}

// DocumentOption changes the layout of a Document.
type DocumentOption func(l *layout)

// Certified adds a DocMDP reference to the signature dictionary.
func Certified() DocumentOption {
	return func(l *layout) {
		l.certified = true
	}
}

// WithDecoyField lists a second, unsigned signature field after the real
// one. Its dictionary sits earlier in the file and carries another /ByteRange.
func WithDecoyField() DocumentOption {
	return func(l *layout) {
		l.decoy = true
	}
}

type object struct {
	num  int
	text string
}

// NewDocument lays out a one page PDF whose content stream is body, with a
// complete xref table and an AcroForm pointing at the signature field. The
// /ByteRange written into the document describes the placeholder exactly.
func NewDocument(body string, opts ...DocumentOption) *Document {
	var l layout
	for _, opt := range opts {
		opt(&l)
	}

	fields := "[4 0 R]"
	if l.decoy {
		fields = "[4 0 R 7 0 R]"
	}

	objects := []object{
		{1, "<< /Type /Catalog /Pages 2 0 R /AcroForm << /Fields " + fields + " /SigFlags 3 >> >>"},
		{2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>"},
		{3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 6 0 R /Annots " + fields + " >>"},
		{4, "<< /Type /Annot /Subtype /Widget /FT /Sig /T (" + FieldName + ") /Rect [0 0 0 0] /P 3 0 R /V 5 0 R >>"},
		{6, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(body), body)},
	}
	if l.decoy {
		objects = append(objects,
			object{7, "<< /Type /Annot /Subtype /Widget /FT /Sig /T (Decoy) /Rect [0 0 0 0] /P 3 0 R /V 8 0 R >>"},
			object{8, "<< /Type /Sig /Filter /Adobe.PPKLite /SubFilter /adbe.pkcs7.detached /ByteRange [0 1 2 3] /Contents <00> >>"},
		)
	}

	reference := ""
	if l.certified {
		reference = " /Reference [<< /Type /SigRef /TransformMethod /DocMDP >>]"
	}

	var sb strings.Builder
	sb.WriteString("%PDF-1.7\n")

	// object 5, the signature dictionary, comes last
	offsets := make(map[int]int, len(objects)+1)
	for _, o := range objects {
		offsets[o.num] = sb.Len()
		fmt.Fprintf(&sb, "%d 0 obj\n%s\nendobj\n", o.num, o.text)
	}
	offsets[5] = sb.Len()

	sigHead := "5 0 obj\n<< /Type /Sig /Filter /Adobe.PPKLite /SubFilter /adbe.pkcs7.detached" + reference + " /ByteRange "
	const byteRangeFormat = "[%010d %010d %010d %010d]"
	mid := " /Contents "
	sigTail := fmt.Sprintf(" /Reason (%s) /Location (%s) /M (%s) >>\nendobj\n", Reason, Location, SigningM)

	byteRangeLen := len(fmt.Sprintf(byteRangeFormat, 0, 0, 0, 0))
	len1 := sb.Len() + len(sigHead) + byteRangeLen + len(mid)
	start2 := len1 + 2 + 2*PlaceholderSize

	size := len(objects) + 2
	var tail strings.Builder
	tail.WriteString(sigTail)
	fmt.Fprintf(&tail, "xref\n0 %d\n0000000000 65535 f \n", size)
	for num := 1; num < size; num++ {
		fmt.Fprintf(&tail, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&tail, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n", size, start2+len(sigTail))
	tail.WriteString("%%EOF\n")

	sb.WriteString(sigHead)
	fmt.Fprintf(&sb, byteRangeFormat, 0, len1, start2, tail.Len())
	sb.WriteString(mid)
	sb.WriteString("<")
	sb.WriteString(strings.Repeat("0", 2*PlaceholderSize))
	sb.WriteString(">")
	sb.WriteString(tail.String())

	return &Document{
		Bytes:  []byte(sb.String()),
		Start1: 0,
		Len1:   len1,
		Start2: start2,
		Len2:   tail.Len(),
	}
}

// Content returns the bytes covered by the byte range.
func (d *Document) Content() []byte {
	content := append([]byte{}, d.Bytes[d.Start1:d.Start1+d.Len1]...)
	return append(content, d.Bytes[d.Start2:d.Start2+d.Len2]...)
}

// Embed writes container as hex into the placeholder.
func (d *Document) Embed(t testing.TB, container []byte) []byte {
	encoded := hex.EncodeToString(container)
	require.LessOrEqual(t, len(encoded), 2*PlaceholderSize, "signature does not fit the placeholder")

	doc := append([]byte{}, d.Bytes...)
	copy(doc[d.Start1+d.Len1+1:], encoded)

	return doc
}

// Config tunes the generated signature. The digest defaults to SHA-256.
type Config struct {
	Digest           asn1.ObjectIdentifier
	SignedAttributes []pkcs7.Attribute
	UnsignedAttrs    []pkcs7.Attribute
}

// Sign returns a detached PKCS#7 signature over content.
func Sign(t testing.TB, s *Signer, content []byte, cfg Config) []byte {
	sd, err := pkcs7.NewSignedData(content)
	require.NoError(t, err)

	digest := cfg.Digest
	if digest == nil {
		digest = pkcs7.OIDDigestAlgorithmSHA256
	}
	sd.SetDigestAlgorithm(digest)

	err = sd.AddSigner(s.Certificate, s.Key, pkcs7.SignerInfoConfig{
		ExtraSignedAttributes:   cfg.SignedAttributes,
		ExtraUnsignedAttributes: cfg.UnsignedAttrs,
	})
	require.NoError(t, err)

	sd.Detach()
	der, err := sd.Finish()
	require.NoError(t, err)

	return der
}

// SignedPDF returns a PDF around body signed by s.
func SignedPDF(t testing.TB, s *Signer, body string, cfg Config, opts ...DocumentOption) []byte {
	d := NewDocument(body, opts...)

	return d.Embed(t, Sign(t, s, d.Content(), cfg))
}
