package pdfverify

import "errors"

// Kind identifies why a document failed verification.
type Kind int

const (
	// KindNone is the reason carried by a valid result.
	KindNone Kind = iota

	// KindMalformedByteRange means the /ByteRange marker is missing, unparsable
	// or describes spans outside the document.
	KindMalformedByteRange

	// KindInvalidHexEncoding means the /Contents placeholder is not a hex string.
	KindInvalidHexEncoding

	// KindEmptySignature means the placeholder holds nothing but padding.
	KindEmptySignature

	// KindMalformedSignedMessage means the container is not a usable PKCS#7 SignedData.
	KindMalformedSignedMessage

	// KindUnsupportedDigestAlgorithm means the digest OID is not in the resolver table.
	KindUnsupportedDigestAlgorithm

	// KindInvalidAttributeSignature means the signature over the authenticated
	// attributes does not verify with the embedded certificate's key.
	KindInvalidAttributeSignature

	// KindMissingMessageDigestAttribute means no messageDigest attribute was signed.
	KindMissingMessageDigestAttribute

	// KindContentDigestMismatch means the signed bytes were altered after signing.
	KindContentDigestMismatch
)

var kindNames = [...]string{
	KindNone:                          "none",
	KindMalformedByteRange:            "malformed byte range",
	KindInvalidHexEncoding:            "invalid hex encoding",
	KindEmptySignature:                "empty signature",
	KindMalformedSignedMessage:        "malformed signed message",
	KindUnsupportedDigestAlgorithm:    "unsupported digest algorithm",
	KindInvalidAttributeSignature:     "invalid attribute signature",
	KindMissingMessageDigestAttribute: "missing message digest attribute",
	KindContentDigestMismatch:         "content digest mismatch",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return "unknown"
}

// Error is returned by every step of the pipeline. Two errors are equal under
// errors.Is when their kinds match, so callers compare against the sentinels below.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}

	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind
}

// Sentinels for errors.Is.
var (
	ErrMalformedByteRange            = &Error{Kind: KindMalformedByteRange}
	ErrInvalidHexEncoding            = &Error{Kind: KindInvalidHexEncoding}
	ErrEmptySignature                = &Error{Kind: KindEmptySignature}
	ErrMalformedSignedMessage        = &Error{Kind: KindMalformedSignedMessage}
	ErrUnsupportedDigestAlgorithm    = &Error{Kind: KindUnsupportedDigestAlgorithm}
	ErrInvalidAttributeSignature     = &Error{Kind: KindInvalidAttributeSignature}
	ErrMissingMessageDigestAttribute = &Error{Kind: KindMissingMessageDigestAttribute}
	ErrContentDigestMismatch         = &Error{Kind: KindContentDigestMismatch}
)

func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf returns the kind carried by err, or KindNone when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindNone
}
