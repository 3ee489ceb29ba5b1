package pdfverify

import (
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"fmt"

	"go.mozilla.org/pkcs7"
)

// SignedMessage is the part of a PKCS#7 SignedData the verifier works on.
type SignedMessage struct {
	// Certificates in the order they were embedded. The first one is the signer's.
	Certificates []*x509.Certificate

	DigestAlgorithm    asn1.ObjectIdentifier
	SignatureAlgorithm asn1.ObjectIdentifier
	Signature          []byte

	// AuthenticatedAttributes keep the order of the encoded SignerInfo.
	AuthenticatedAttributes   []Attribute
	UnauthenticatedAttributes []Attribute
}

// Signer returns the certificate whose key produced the signature.
func (m *SignedMessage) Signer() *x509.Certificate {
	if len(m.Certificates) == 0 {
		return nil
	}

	return m.Certificates[0]
}

// Decoder turns a signature container into a SignedMessage.
type Decoder interface {
	Decode(container []byte) (*SignedMessage, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(container []byte) (*SignedMessage, error)

// Decode calls f(container).
func (f DecoderFunc) Decode(container []byte) (*SignedMessage, error) {
	return f(container)
}

// PKCS7Decoder decodes containers with go.mozilla.org/pkcs7.
type PKCS7Decoder struct{}

// Decode parses container and checks that it holds exactly one signer and at
// least one certificate. Every failure is a KindMalformedSignedMessage error.
func (PKCS7Decoder) Decode(container []byte) (msg *SignedMessage, err error) {
	defer func() {
		if r := recover(); r != nil {
			msg = nil
			err = newError(KindMalformedSignedMessage, "cannot parse pkcs7", fmt.Errorf("%v", r))
		}
	}()

	p7, err := pkcs7.Parse(container)
	if err != nil {
		return nil, newError(KindMalformedSignedMessage, "cannot parse pkcs7", err)
	}

	if len(p7.Signers) != 1 {
		return nil, newError(KindMalformedSignedMessage,
			fmt.Sprintf("the number of signers must be exactly 1, got %d", len(p7.Signers)), nil)
	}
	if len(p7.Certificates) == 0 {
		return nil, newError(KindMalformedSignedMessage, "no certificate embedded", nil)
	}

	signer := p7.Signers[0]
	msg = &SignedMessage{
		Certificates:       p7.Certificates,
		DigestAlgorithm:    signer.DigestAlgorithm.Algorithm,
		SignatureAlgorithm: signer.DigestEncryptionAlgorithm.Algorithm,
		Signature:          signer.EncryptedDigest,
	}
	for _, attr := range signer.AuthenticatedAttributes {
		msg.AuthenticatedAttributes = append(msg.AuthenticatedAttributes, Attribute{Type: attr.Type, Value: attr.Value})
	}
	for _, attr := range signer.UnauthenticatedAttributes {
		msg.UnauthenticatedAttributes = append(msg.UnauthenticatedAttributes, Attribute{Type: attr.Type, Value: attr.Value})
	}

	return msg, nil
}

// decode runs d and makes sure whatever it returns carries a kind.
func decode(d Decoder, container []byte) (*SignedMessage, error) {
	msg, err := d.Decode(container)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, newError(KindMalformedSignedMessage, "cannot decode signature container", err)
	}
	if msg == nil || msg.Signer() == nil {
		return nil, newError(KindMalformedSignedMessage, "no signer certificate", nil)
	}

	return msg, nil
}
