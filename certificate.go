package pdfverify

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CertificateInfo is a struct holds the certificate information.
type CertificateInfo struct {
	IsCA               bool      `json:"is_ca"`
	Version            int       `json:"version"`
	SerialNumber       string    `json:"serial_number"`
	ValidAfter         time.Time `json:"valid_after"`
	ValidBefore        time.Time `json:"valid_before"`
	Subject            string    `json:"subject"`
	Issuer             string    `json:"issuer"`
	PublicKeyAlgorithm string    `json:"public_key_algorithm"`
	SignatureAlgorithm string    `json:"signature_algorithm"`
	SHA1Fingerprint    string    `json:"sha1_fingerprint"`

	// SelfSigned status is defined by comparing Subject with Issuer.
	SelfSigned bool `json:"self_signed"`

	// Valid status is defined by comparing time.Now with ValidAfter and ValidBefore.
	// It is informational, an expired certificate does not invalidate a signature.
	Valid bool `json:"valid"`
}

// CertificateInfoList represent multiple CertificateInfo.
type CertificateInfoList []*CertificateInfo

// Certificates represent multiple x509.Certificate.
type Certificates []*x509.Certificate

// GetInfo is a method uses to get certificate information of each certificate.
func (c Certificates) GetInfo() CertificateInfoList {
	var certificateInfoList CertificateInfoList
	for _, certificate := range c {
		certificateInfoList = append(certificateInfoList, getCertificateInfo(certificate, time.Now()))
	}

	return certificateInfoList
}

func getCertificateInfo(certificate *x509.Certificate, now time.Time) *CertificateInfo {
	return &CertificateInfo{
		IsCA:               certificate.IsCA,
		Version:            certificate.Version,
		SerialNumber:       fmt.Sprintf("%X", certificate.SerialNumber),
		ValidAfter:         certificate.NotBefore,
		ValidBefore:        certificate.NotAfter,
		Subject:            certificate.Subject.String(),
		Issuer:             certificate.Issuer.String(),
		PublicKeyAlgorithm: getCertificatePublicKeyAlgorithm(certificate),
		SignatureAlgorithm: certificate.SignatureAlgorithm.String(),
		SHA1Fingerprint:    fingerprint(certificate.Raw),
		SelfSigned:         certificate.Issuer.String() == certificate.Subject.String(),
		Valid:              now.After(certificate.NotBefore) && now.Before(certificate.NotAfter),
	}
}

func getCertificatePublicKeyAlgorithm(certificate *x509.Certificate) string {
	var keyLen string
	switch key := certificate.PublicKey.(type) {
	case *rsa.PublicKey:
		keyLen = fmt.Sprintf(" (%d bit)", key.N.BitLen())
	case *ecdsa.PublicKey:
		keyLen = fmt.Sprintf(" (%d bit)", key.Params().BitSize)
	}

	if 0 < certificate.PublicKeyAlgorithm && int(certificate.PublicKeyAlgorithm) < len(publicKeyAlgoName) {
		return publicKeyAlgoName[certificate.PublicKeyAlgorithm] + keyLen
	}

	return strconv.Itoa(int(certificate.PublicKeyAlgorithm))
}

// fingerprint is the colon separated upper case SHA-1 of der.
func fingerprint(der []byte) string {
	sum := sha1.Sum(der)
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}

	return strings.Join(parts, ":")
}
