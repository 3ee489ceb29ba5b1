package pdfverify

import (
	"log"
	"time"

	"github.com/tribodiproblem/fvckpdf/pkg/pdfcpu"
)

const (
	// TypeSigned represent type of digital signature field is signature.
	TypeSigned Type = iota

	// TypeCertified represent type of digital signature field is certify.
	TypeCertified
)

// PDFCertifyFlag is a TransformMethod value in the PDF signature reference
// which is represented that PDF is certified.
const PDFCertifyFlag pdfcpu.Name = "DocMDP"

// Type represent type of digital signature.
type Type int

// SignatureInfo is a struct holds detailed information about digital signature.
// None of it is used to decide validity.
type SignatureInfo struct {
	Field              string              `json:"field,omitempty"`
	Name               string              `json:"name,omitempty"`
	Location           string              `json:"location,omitempty"`
	Reason             string              `json:"reason,omitempty"`
	SignedAt           string              `json:"signed_at,omitempty"`
	SubFilter          string              `json:"sub_filter,omitempty"`
	Type               Type                `json:"type"`
	ByteRange          ByteRange           `json:"byte_range"`
	DigestAlgorithm    string              `json:"digest_algorithm"`
	SignatureAlgorithm string              `json:"signature_algorithm"`
	SigningTime        time.Time           `json:"signing_time"`
	Timestamp          time.Time           `json:"timestamp"`
	Timestamped        bool                `json:"timestamped,omitempty"`
	LTVSupport         bool                `json:"ltv_support,omitempty"`
	Revocation         RevocationInfo      `json:"-"`
	Issuer             string              `json:"issuer,omitempty"`
	Certificates       CertificateInfoList `json:"certificates,omitempty"`
}

func (v *Verifier) describe(extraction *Extraction, msg *SignedMessage, digest DigestAlgorithm) *SignatureInfo {
	_, schemeName, _ := lookupSignatureScheme(msg.SignatureAlgorithm)

	info := &SignatureInfo{
		Type:               TypeSigned,
		ByteRange:          extraction.ByteRange,
		DigestAlgorithm:    digest.Name,
		SignatureAlgorithm: schemeName,
		Issuer:             msg.Signer().Issuer.CommonName,
		Certificates:       Certificates(msg.Certificates).GetInfo(),
	}

	if t, ok := signingTime(msg.AuthenticatedAttributes); ok {
		info.SigningTime = t
	}

	timestamp, found, err := signatureTimestamp(msg.UnauthenticatedAttributes)
	if err != nil {
		v.logger.Println("cannot read signature timestamp, err: ", err)
	}
	info.Timestamp, info.Timestamped = timestamp, found

	revocationInfo, err := signatureRevocationInfo(msg.AuthenticatedAttributes)
	if err != nil {
		v.logger.Println("cannot read revocation info, err: ", err)
	}
	info.Revocation = revocationInfo
	info.LTVSupport = len(revocationInfo.OCSPs) > 0 || len(revocationInfo.CRLs) > 0

	return info
}

// merge copies the dictionary entries into info.
func (info *SignatureInfo) merge(dict *dictionaryInfo, logger *log.Logger) {
	info.Field = dict.Field
	info.Name = dict.Name
	info.Location = dict.Location
	info.Reason = dict.Reason
	info.SignedAt = dict.SignedAt
	info.SubFilter = dict.SubFilter
	info.Type = dict.Type

	if dict.ByteRange != nil && *dict.ByteRange != info.ByteRange {
		logger.Println("signature dictionary byte range", dict.ByteRange, "differs from", info.ByteRange)
	}
}
