package pdfverify

import (
	"crypto/x509"
	"encoding/asn1"
	"errors"
	"math/big"
	"time"

	"go.mozilla.org/pkcs7"
	"golang.org/x/crypto/ocsp"
)

// RevocationInfo is a struct holds ocsps and crls embedded by the signer.
// They are decoded for reporting only.
type RevocationInfo struct {
	CRLs  []*x509.RevocationList
	OCSPs []*ocsp.Response
}

// revocationInfoArchival is a struct for unmarshal of signed attribute RevocationInfoArchival.
type revocationInfoArchival struct {
	CRL          []asn1.RawValue `asn1:"optional,explicit,tag:0"`
	OCSP         []asn1.RawValue `asn1:"optional,explicit,tag:1"`
	OtherRevInfo []asn1.RawValue `asn1:"optional,explicit,tag:2"`
}

func signatureRevocationInfo(attrs []Attribute) (RevocationInfo, error) {
	var revocationInfo RevocationInfo

	found := findAttribute(attrs, oidAttributeRevocationInfo)
	if len(found) == 0 {
		return revocationInfo, nil
	}

	var ri revocationInfoArchival
	if err := singleValue(found[0], &ri); err != nil {
		return revocationInfo, err
	}

	// either the CRL or the OCSP might be empty, but not both of them
	if len(ri.OCSP) == 0 && len(ri.CRL) == 0 {
		return revocationInfo, errors.New("ocsp array and crl array are empty")
	}

	for _, raw := range ri.OCSP {
		response, err := ocsp.ParseResponse(raw.FullBytes, nil)
		if err != nil {
			return revocationInfo, err
		}
		revocationInfo.OCSPs = append(revocationInfo.OCSPs, response)
	}

	for _, raw := range ri.CRL {
		crl, err := x509.ParseRevocationList(raw.FullBytes)
		if err != nil {
			return revocationInfo, err
		}
		revocationInfo.CRLs = append(revocationInfo.CRLs, crl)
	}

	return revocationInfo, nil
}

// tstInfo is the leading part of an RFC 3161 TSTInfo; later fields are ignored.
type tstInfo struct {
	Version        int
	Policy         asn1.ObjectIdentifier
	MessageImprint asn1.RawValue
	SerialNumber   *big.Int
	GenTime        time.Time `asn1:"generalized"`
}

// signatureTimestamp returns the time of the RFC 3161 token the signer
// attached as an unauthenticated attribute.
func signatureTimestamp(attrs []Attribute) (time.Time, bool, error) {
	var timestamp time.Time

	found := findAttribute(attrs, oidAttributeTimestampToken)
	if len(found) == 0 {
		return timestamp, false, nil
	}

	token, err := pkcs7.Parse(found[0].Value.Bytes)
	if err != nil {
		return timestamp, false, err
	}

	var info tstInfo
	if _, err := asn1.Unmarshal(token.Content, &info); err == nil {
		return info.GenTime, true, nil
	}

	// some authorities only leave the signing time of the token signer
	if len(token.Signers) != 1 {
		return timestamp, false, errors.New("the number of signers must be exactly 1")
	}
	var signerAttrs []Attribute
	for _, attr := range token.Signers[0].AuthenticatedAttributes {
		signerAttrs = append(signerAttrs, Attribute{Type: attr.Type, Value: attr.Value})
	}
	if t, ok := signingTime(signerAttrs); ok {
		return t, true, nil
	}

	return timestamp, false, errors.New("no signing time in timestamp token")
}
