package pdfverify_test

import (
	"bytes"
	"strings"
	"testing"

	pdfverify "github.com/RichardBray/pdf-verify"
	"github.com/RichardBray/pdf-verify/internal/testpdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func padded(prefix string, size int) []byte {
	return []byte(prefix + strings.Repeat(" ", size-len(prefix)))
}

func TestLocateByteRange(t *testing.T) {
	t.Run("marker without space, it should ok", func(t *testing.T) {
		doc := padded("/ByteRange[0 10 20 30]", 60)

		br, err := pdfverify.LocateByteRange(doc)
		require.NoError(t, err)
		assert.Equal(t, pdfverify.ByteRange{Start1: 0, Len1: 10, Start2: 20, Len2: 30}, br)
	})

	t.Run("marker with space and several blanks, it should ok", func(t *testing.T) {
		doc := padded("<< /ByteRange [ 0   10\n20  30 ] >>", 60)

		br, err := pdfverify.LocateByteRange(doc)
		require.NoError(t, err)
		assert.Equal(t, pdfverify.ByteRange{Start1: 0, Len1: 10, Start2: 20, Len2: 30}, br)
	})

	t.Run("last occurrence wins across both variants", func(t *testing.T) {
		doc := padded("/ByteRange [0 1 2 3] /ByteRange[0 4 5 6] /ByteRange [0 7 8 9]", 100)

		br, err := pdfverify.LocateByteRange(doc)
		require.NoError(t, err)
		assert.Equal(t, 7, br.Len1)

		doc = padded("/ByteRange [0 1 2 3] /ByteRange[0 4 5 6]", 100)
		br, err = pdfverify.LocateByteRange(doc)
		require.NoError(t, err)
		assert.Equal(t, 4, br.Len1)
	})

	t.Run("missing marker, it should not ok", func(t *testing.T) {
		_, err := pdfverify.LocateByteRange([]byte("%PDF-1.7 no signature here"))
		assert.ErrorIs(t, err, pdfverify.ErrMalformedByteRange)
	})

	t.Run("unclosed array, it should not ok", func(t *testing.T) {
		_, err := pdfverify.LocateByteRange(padded("/ByteRange [0 10 20 30", 60))
		assert.ErrorIs(t, err, pdfverify.ErrMalformedByteRange)
	})

	t.Run("three integers, it should not ok", func(t *testing.T) {
		_, err := pdfverify.LocateByteRange(padded("/ByteRange [0 10 20]", 60))
		assert.ErrorIs(t, err, pdfverify.ErrMalformedByteRange)
	})

	t.Run("integers after the closing bracket are ignored", func(t *testing.T) {
		_, err := pdfverify.LocateByteRange(padded("/ByteRange [0 10] 20 30", 60))
		assert.ErrorIs(t, err, pdfverify.ErrMalformedByteRange)
	})

	t.Run("negative integers, it should not ok", func(t *testing.T) {
		for _, text := range []string{
			"/ByteRange [-1 10 20 30]",
			"/ByteRange [0 -10 20 30]",
			"/ByteRange[0 10 20 -0]",
		} {
			_, err := pdfverify.LocateByteRange(padded(text, 60))
			assert.ErrorIs(t, err, pdfverify.ErrMalformedByteRange, text)
		}
	})

	t.Run("anything but four integers, it should not ok", func(t *testing.T) {
		for _, text := range []string{
			"/ByteRange [0 10 20 30 40]",
			"/ByteRange [+0 10 20 30]",
			"/ByteRange [0 10 20 3.5]",
			"/ByteRange [0 10 20 30 R]",
			"/ByteRange [x 0 10 20 30]",
		} {
			_, err := pdfverify.LocateByteRange(padded(text, 60))
			assert.ErrorIs(t, err, pdfverify.ErrMalformedByteRange, text)
		}
	})

	t.Run("out of bounds, it should not ok", func(t *testing.T) {
		for _, text := range []string{
			"/ByteRange [0 10 20 41]",
			"/ByteRange [0 70 80 1]",
			"/ByteRange [0 30 20 5]",
			"/ByteRange [0 10 99999999999999999999999 5]",
		} {
			_, err := pdfverify.LocateByteRange(padded(text, 60))
			assert.ErrorIs(t, err, pdfverify.ErrMalformedByteRange, text)
		}
	})

	t.Run("generated document", func(t *testing.T) {
		d := testpdf.NewDocument("BT (hello) Tj ET")

		br, err := pdfverify.LocateByteRange(d.Bytes)
		require.NoError(t, err)
		assert.Equal(t, pdfverify.ByteRange{Start1: d.Start1, Len1: d.Len1, Start2: d.Start2, Len2: d.Len2}, br)
		assert.True(t, br.Covers(len(d.Bytes)))
		assert.False(t, br.Covers(len(d.Bytes)+1))
	})
}

func TestSignedContent(t *testing.T) {
	doc := make([]byte, 250)
	for i := range doc {
		doc[i] = byte(i)
	}
	br := pdfverify.ByteRange{Start1: 0, Len1: 100, Start2: 200, Len2: 50}

	expected := append(append([]byte{}, doc[0:100]...), doc[200:250]...)
	assert.Equal(t, expected, pdfverify.SignedContent(doc, br))

	// the gap does not matter
	copy(doc[100:200], bytes.Repeat([]byte{0xff}, 100))
	assert.Equal(t, expected, pdfverify.SignedContent(doc, br))
}
