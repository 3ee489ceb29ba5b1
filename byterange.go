package pdfverify

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// ByteRange holds the two spans of the document covered by the signature.
// The signature placeholder sits between them.
type ByteRange struct {
	Start1 int `json:"start1"`
	Len1   int `json:"len1"`
	Start2 int `json:"start2"`
	Len2   int `json:"len2"`
}

// PDF writers differ on whether a space follows the key.
var byteRangeMarkers = [][]byte{
	[]byte("/ByteRange["),
	[]byte("/ByteRange ["),
}

// byteRangeArray matches the whole array from the marker to the closing
// bracket. Exactly four unsigned integers are accepted.
var byteRangeArray = regexp.MustCompile(`^/ByteRange\s*\[\s*(-?\d+)\s+(-?\d+)\s+(-?\d+)\s+(-?\d+)\s*\]$`)

// LocateByteRange finds the last /ByteRange array in doc and parses its four
// integers. The returned range always lies inside doc.
func LocateByteRange(doc []byte) (ByteRange, error) {
	var br ByteRange

	pos := -1
	for _, marker := range byteRangeMarkers {
		if i := bytes.LastIndex(doc, marker); i > pos {
			pos = i
		}
	}
	if pos < 0 {
		return br, newError(KindMalformedByteRange, "byte range marker not found", nil)
	}

	end := bytes.IndexByte(doc[pos:], ']')
	if end < 0 {
		return br, newError(KindMalformedByteRange, "byte range array is not closed", nil)
	}

	match := byteRangeArray.FindSubmatch(doc[pos : pos+end+1])
	if match == nil {
		return br, newError(KindMalformedByteRange,
			fmt.Sprintf("byte range %q does not hold four integers", doc[pos:pos+end+1]), nil)
	}

	values := make([]int, 4)
	for i := range values {
		if match[i+1][0] == '-' {
			return br, newError(KindMalformedByteRange, fmt.Sprintf("negative byte range integer %s", match[i+1]), nil)
		}
		n, err := strconv.Atoi(string(match[i+1]))
		if err != nil {
			return br, newError(KindMalformedByteRange, "byte range integer out of range", err)
		}
		values[i] = n
	}

	br = ByteRange{Start1: values[0], Len1: values[1], Start2: values[2], Len2: values[3]}
	if err := br.check(len(doc)); err != nil {
		return ByteRange{}, err
	}

	return br, nil
}

func (br ByteRange) check(size int) error {
	// each sum is bounded by size before the next one is formed, so none of
	// them can overflow
	if br.Start1 > size || br.Len1 > size-br.Start1 {
		return newError(KindMalformedByteRange, fmt.Sprintf("first span %s exceeds document of %d bytes", br, size), nil)
	}
	if br.Start2 < br.Start1+br.Len1 {
		return newError(KindMalformedByteRange, fmt.Sprintf("spans of %s overlap", br), nil)
	}
	if br.Start2 > size || br.Len2 > size-br.Start2 {
		return newError(KindMalformedByteRange, fmt.Sprintf("second span %s exceeds document of %d bytes", br, size), nil)
	}

	return nil
}

// Placeholder returns the half-open interval between the two spans, delimiters included.
func (br ByteRange) Placeholder() (from, to int) {
	return br.Start1 + br.Len1, br.Start2
}

// Covers reports whether the two spans reach from the first byte to the last
// byte of a document of the given size.
func (br ByteRange) Covers(size int) bool {
	return br.Start1 == 0 && br.Start2+br.Len2 == size
}

func (br ByteRange) String() string {
	return fmt.Sprintf("[%d %d %d %d]", br.Start1, br.Len1, br.Start2, br.Len2)
}
