// Package pdfverify checks the PKCS#7 signature embedded in a PDF document.
//
// A document is valid when the signature over the signer's authenticated
// attributes verifies with the key of the embedded certificate and the
// messageDigest attribute matches the hash of the bytes named by /ByteRange.
// Certificate trust, expiry and revocation are not evaluated.
package pdfverify

import (
	"log"
	"os"
	"sync"

	"github.com/tribodiproblem/fvckpdf/pkg/pdfcpu"
)

// Status is the verdict of a verification.
type Status int

const (
	// StatusInvalid is the zero value so an unset result never reads as valid.
	StatusInvalid Status = iota
	StatusValid
)

func (s Status) String() string {
	if s == StatusValid {
		return "VALID"
	}

	return "INVALID"
}

// Result is the outcome of verifying one document.
type Result struct {
	Status Status

	// Reason is KindNone for a valid document, otherwise the kind of Err.
	Reason Kind
	Err    error

	// Signature describes the signature when the container could be decoded.
	Signature *SignatureInfo
}

// Valid reports whether every check passed.
func (r *Result) Valid() bool {
	return r.Status == StatusValid
}

func invalid(err error, info *SignatureInfo) *Result {
	return &Result{Status: StatusInvalid, Reason: KindOf(err), Err: err, Signature: info}
}

// Verifier runs the verification pipeline. It holds no per-document state and
// may be shared between goroutines.
type Verifier struct {
	strict        bool
	details       bool
	resolver      *Resolver
	decoder       Decoder
	logger        *log.Logger
	configuration *pdfcpu.Configuration
}

var defaultConfiguration = pdfcpu.NewDefaultConfiguration()

// NewVerifier returns a Verifier configured by opts.
func NewVerifier(opts ...Option) *Verifier {
	v := &Verifier{
		resolver:      DefaultResolver,
		decoder:       PKCS7Decoder{},
		logger:        log.Default(),
		configuration: defaultConfiguration,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify checks doc with the default settings.
func Verify(doc []byte) *Result {
	return NewVerifier().Verify(doc)
}

// Verify checks the signature of doc. Every failure is reported as an
// invalid result carrying the kind of the first failing step.
func (v *Verifier) Verify(doc []byte) *Result {
	extraction, err := Extract(doc, v.strict)
	if err != nil {
		return invalid(err, nil)
	}

	msg, err := decode(v.decoder, extraction.Container)
	if err != nil {
		return invalid(err, nil)
	}

	// resolved before anything is hashed
	digest, err := v.resolver.Resolve(msg.DigestAlgorithm)
	if err != nil {
		return invalid(err, nil)
	}

	info := v.describe(extraction, msg, digest)

	attrSet, err := EncodeAttributeSet(msg.AuthenticatedAttributes)
	if err != nil {
		return invalid(err, info)
	}

	var (
		wg        sync.WaitGroup
		digestErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		digestErr = VerifyContentDigest(extraction.Content, digest, msg.AuthenticatedAttributes)
	}()
	sigErr := VerifyAttributeSignature(msg.Signer(), msg.SignatureAlgorithm, digest, attrSet, msg.Signature)
	wg.Wait()

	if sigErr != nil {
		return invalid(sigErr, info)
	}
	if digestErr != nil {
		return invalid(digestErr, info)
	}

	return &Result{Status: StatusValid, Signature: info}
}

// PDFSignature verifies the signature of a PDF file on disk.
type PDFSignature struct {
	inputFilePath string
	verifier      *Verifier
}

// New is a constructor will initialize PDFSignature.
func New(filePath string, opts ...Option) *PDFSignature {
	return &PDFSignature{
		inputFilePath: filePath,
		verifier:      NewVerifier(opts...),
	}
}

// Verify reads the file and verifies it. The error is only set when the file
// cannot be read; verification failures are reported in the result.
func (p *PDFSignature) Verify() (*Result, error) {
	doc, err := os.ReadFile(p.inputFilePath)
	if err != nil {
		return nil, err
	}

	result := p.verifier.Verify(doc)

	if p.verifier.details && result.Signature != nil {
		dict, err := readSignatureDictionary(p.inputFilePath, p.verifier.configuration)
		if err != nil {
			p.verifier.logger.Println("cannot read signature dictionary, err: ", err)
		} else if dict != nil {
			result.Signature.merge(dict, p.verifier.logger)
		}
	}

	return result, nil
}
