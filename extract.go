package pdfverify

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// SignedContent returns the bytes the signer hashed: the first span followed
// by the second span. Whatever lies between the spans is ignored.
func SignedContent(doc []byte, br ByteRange) []byte {
	content := make([]byte, 0, br.Len1+br.Len2)
	content = append(content, doc[br.Start1:br.Start1+br.Len1]...)
	content = append(content, doc[br.Start2:br.Start2+br.Len2]...)

	return content
}

// ExtractContainer decodes the hex string stored between the two spans and
// removes the zero padding reserved for the signature.
func ExtractContainer(doc []byte, br ByteRange) ([]byte, error) {
	if err := br.check(len(doc)); err != nil {
		return nil, err
	}

	from, to := br.Placeholder()
	if to-from < 2 || doc[from] != '<' || doc[to-1] != '>' {
		return nil, newError(KindMalformedByteRange,
			fmt.Sprintf("byte range %s does not frame a hex string", br), nil)
	}

	text := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n', '\f', 0:
			return -1
		}
		return r
	}, doc[from+1:to-1])

	raw := make([]byte, hex.DecodedLen(len(text)))
	if _, err := hex.Decode(raw, text); err != nil {
		return nil, newError(KindInvalidHexEncoding, "signature placeholder is not hex", err)
	}

	container := trimPadding(raw)
	if len(container) == 0 {
		return nil, newError(KindEmptySignature, "signature placeholder holds only padding", nil)
	}

	return container, nil
}

// trimPadding drops the zero bytes that follow the signature container. When
// the container is a single ASN.1 element its own length decides where it
// ends, which keeps a trailing 0x00 that belongs to the signature and the
// end-of-contents octets of an indefinite length encoding. Anything else loses
// every trailing zero.
func trimPadding(raw []byte) []byte {
	s := cryptobyte.String(raw)
	var (
		element cryptobyte.String
		tag     cbasn1.Tag
	)
	if s.ReadAnyASN1Element(&element, &tag) && tag == cbasn1.SEQUENCE && isZero(s) {
		return raw[:len(element)]
	}

	// cryptobyte rejects indefinite lengths
	if len(raw) > 1 && raw[0] == byte(cbasn1.SEQUENCE) && raw[1] == 0x80 {
		if n, ok := berElementLen(raw, 0); ok && isZero(raw[n:]) {
			return raw[:n]
		}
	}

	end := len(raw)
	for end > 0 && raw[end-1] == 0 {
		end--
	}

	return raw[:end]
}

// maxBERDepth bounds the nesting berElementLen follows.
const maxBERDepth = 64

// berElementLen returns the encoded size of the BER element at the start of
// b, following indefinite lengths down to their end-of-contents octets.
func berElementLen(b []byte, depth int) (int, bool) {
	if depth > maxBERDepth || len(b) < 2 {
		return 0, false
	}

	i := 1
	if b[0]&0x1f == 0x1f {
		// high tag number form
		for {
			if i >= len(b) {
				return 0, false
			}
			c := b[i]
			i++
			if c&0x80 == 0 {
				break
			}
		}
	}
	if i >= len(b) {
		return 0, false
	}

	l := b[i]
	i++
	switch {
	case l < 0x80:
		if int(l) > len(b)-i {
			return 0, false
		}
		return i + int(l), true

	case l == 0x80:
		if b[0]&0x20 == 0 {
			// only constructed encodings may be indefinite
			return 0, false
		}
		for {
			if len(b)-i < 2 {
				return 0, false
			}
			if b[i] == 0 && b[i+1] == 0 {
				return i + 2, true
			}
			n, ok := berElementLen(b[i:], depth+1)
			if !ok {
				return 0, false
			}
			i += n
		}

	default:
		k := int(l & 0x7f)
		if k > 4 || k > len(b)-i {
			return 0, false
		}
		n := 0
		for _, c := range b[i : i+k] {
			n = n<<8 | int(c)
		}
		i += k
		if n < 0 || n > len(b)-i {
			return 0, false
		}
		return i + n, true
	}
}

func isZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}

	return true
}

// Extraction is what the extractor hands to the rest of the pipeline.
type Extraction struct {
	ByteRange ByteRange
	Content   []byte
	Container []byte
}

// Extract locates the byte range and slices out the signed content and the
// signature container. When strict is set the range must cover the whole file.
func Extract(doc []byte, strict bool) (*Extraction, error) {
	br, err := LocateByteRange(doc)
	if err != nil {
		return nil, err
	}

	if strict && !br.Covers(len(doc)) {
		return nil, newError(KindMalformedByteRange,
			fmt.Sprintf("byte range %s does not cover the %d bytes of the document", br, len(doc)), nil)
	}

	container, err := ExtractContainer(doc, br)
	if err != nil {
		return nil, err
	}

	return &Extraction{
		ByteRange: br,
		Content:   SignedContent(doc, br),
		Container: container,
	}, nil
}
