package pdfverify

import (
	"io"
	"log"
)

// Option configures a Verifier.
type Option func(v *Verifier)

// WithPassword is a function uses to set user password for reading the
// signature dictionary of an encrypted file.
func WithPassword(password string) Option {
	return func(v *Verifier) {
		configuration := *v.configuration
		configuration.UserPW = password
		v.configuration = &configuration
	}
}

// WithStrictByteRange requires the byte range to cover the whole file, which
// rejects documents with bytes appended after signing.
func WithStrictByteRange() Option {
	return func(v *Verifier) {
		v.strict = true
	}
}

// WithDetails reads field name, reason, location and certification type from
// the signature dictionary when verifying a file.
func WithDetails() Option {
	return func(v *Verifier) {
		v.details = true
	}
}

// WithResolver replaces the digest algorithm table.
func WithResolver(resolver *Resolver) Option {
	return func(v *Verifier) {
		v.resolver = resolver
	}
}

// WithDecoder replaces the PKCS#7 decoder.
func WithDecoder(decoder Decoder) Option {
	return func(v *Verifier) {
		v.decoder = decoder
	}
}

// WithLogger sets where soft failures are logged. A nil logger discards them.
func WithLogger(logger *log.Logger) Option {
	return func(v *Verifier) {
		if logger == nil {
			logger = log.New(io.Discard, "", 0)
		}
		v.logger = logger
	}
}
