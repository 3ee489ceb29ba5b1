package pdfverify

import (
	"encoding/asn1"
	"fmt"
	"time"
)

var (
	oidAttributeContentType   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 3}
	oidAttributeMessageDigest = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 4}
	oidAttributeSigningTime   = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 5}

	// RFC 3161 timestamp token, carried as an unauthenticated attribute
	oidAttributeTimestampToken = asn1.ObjectIdentifier{1, 2, 840, 113549, 1, 9, 16, 2, 14}

	// Adobe revocationInfoArchival
	oidAttributeRevocationInfo = asn1.ObjectIdentifier{1, 2, 840, 113583, 1, 1, 8}
)

// Attribute is one signer attribute. Value holds the raw SET of values.
type Attribute struct {
	Type  asn1.ObjectIdentifier
	Value asn1.RawValue `asn1:"set"`
}

// EncodeAttributeSet rebuilds the DER SET OF the signer signed. Attributes
// keep their order and their values are written back byte for byte.
func EncodeAttributeSet(attrs []Attribute) ([]byte, error) {
	// a SEQUENCE OF keeps the order, a SET OF would be sorted by encoding/asn1
	encoded, err := asn1.Marshal(attrs)
	if err != nil {
		return nil, newError(KindMalformedSignedMessage, "cannot encode authenticated attributes", err)
	}
	encoded[0] = 0x31

	return encoded, nil
}

// findAttribute returns the attributes of the given type.
func findAttribute(attrs []Attribute, oid asn1.ObjectIdentifier) []Attribute {
	var found []Attribute
	for _, attr := range attrs {
		if attr.Type.Equal(oid) {
			found = append(found, attr)
		}
	}

	return found
}

// singleValue unmarshals the only value of attr into out.
func singleValue(attr Attribute, out interface{}) error {
	rest, err := asn1.Unmarshal(attr.Value.Bytes, out)
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return fmt.Errorf("attribute %s holds more than one value", attr.Type)
	}

	return nil
}

// MessageDigest returns the digest the signer claims to have computed over
// the signed content.
func MessageDigest(attrs []Attribute) ([]byte, error) {
	found := findAttribute(attrs, oidAttributeMessageDigest)
	switch len(found) {
	case 0:
		return nil, newError(KindMissingMessageDigestAttribute, "message digest not found among authenticated attributes", nil)
	case 1:
	default:
		return nil, newError(KindMalformedSignedMessage,
			fmt.Sprintf("%d message digest attributes", len(found)), nil)
	}

	var digest []byte
	if err := singleValue(found[0], &digest); err != nil {
		return nil, newError(KindMalformedSignedMessage, "cannot unwrap message digest", err)
	}

	return digest, nil
}

// signingTime returns the signer-asserted signing time, if any.
func signingTime(attrs []Attribute) (time.Time, bool) {
	var t time.Time
	found := findAttribute(attrs, oidAttributeSigningTime)
	if len(found) != 1 {
		return t, false
	}
	if err := singleValue(found[0], &t); err != nil {
		return t, false
	}

	return t, true
}
