package pdfverify

import (
	"fmt"
	"strings"
	"time"

	"github.com/tribodiproblem/fvckpdf/pkg/pdfcpu"
)

// dictionaryInfo is what the signature dictionary says about the signature.
type dictionaryInfo struct {
	Field     string
	Name      string
	Location  string
	Reason    string
	SignedAt  string
	SubFilter string
	Type      Type
	ByteRange *ByteRange
}

// readSignatureDictionary returns the last signature field of the AcroForm,
// the one whose /ByteRange the raw scan picks. It returns nil when the file has
// no signature field.
func readSignatureDictionary(inputFilePath string, conf *pdfcpu.Configuration) (info *dictionaryInfo, err error) {
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("cannot parse pdf: %v", r)
		}
	}()

	pdfContext, err := pdfcpu.ReadFile(inputFilePath, conf)
	if err != nil {
		return nil, err
	}

	fields, err := getSignatureFieldsArray(pdfContext)
	if err != nil {
		return nil, err
	}

	var last *dictionaryInfo
	for _, field := range fields {
		annotationDict, err := pdfContext.DereferenceDict(field)
		if err != nil || annotationDict == nil {
			continue
		}

		v, found := annotationDict.Find("V")
		if !found {
			continue
		}

		signatureDict, err := pdfContext.DereferenceDict(v)
		if err != nil || signatureDict == nil {
			continue
		}

		// only signature dictionaries carry the signature contents
		if _, found := signatureDict.Find("Contents"); !found {
			continue
		}

		last = getSignatureInformation(pdfContext, annotationDict, signatureDict)
	}

	return last, nil
}

func getSignatureFieldsArray(pdfContext *pdfcpu.Context) (pdfcpu.Array, error) {
	pdfAcroFormObj, found := pdfContext.RootDict.Find("AcroForm")
	if !found {
		return nil, nil
	}

	pdfAcroFormDict, err := pdfContext.DereferenceDict(pdfAcroFormObj)
	if err != nil {
		return nil, err
	}

	pdfAcroFormFields, found := pdfAcroFormDict.Find("Fields")
	if !found {
		return nil, nil
	}

	return pdfContext.DereferenceArray(pdfAcroFormFields)
}

func getSignatureInformation(pdfContext *pdfcpu.Context, annotationDict, signatureDict pdfcpu.Dict) *dictionaryInfo {
	info := &dictionaryInfo{Type: TypeSigned}

	text := func(dict pdfcpu.Dict, key string) string {
		obj, found := dict.Find(key)
		if !found {
			return ""
		}
		s, _ := pdfContext.DereferenceText(obj)
		return s
	}

	info.Field = text(annotationDict, "T")
	info.Name = text(signatureDict, "Name")
	info.Location = text(signatureDict, "Location")
	info.Reason = text(signatureDict, "Reason")

	if m := text(signatureDict, "M"); m != "" {
		if t, ok := parsePDFDate(m); ok {
			info.SignedAt = t.Format(time.RFC3339)
		}
	}

	if subFilter, found := signatureDict.Find("SubFilter"); found {
		if name, ok := subFilter.(pdfcpu.Name); ok {
			info.SubFilter = string(name)
		}
	}

	if isCertified(pdfContext, signatureDict) {
		info.Type = TypeCertified
	}

	info.ByteRange = getByteRange(pdfContext, signatureDict)

	return info
}

// isCertified looks for a DocMDP transform in the signature references.
func isCertified(pdfContext *pdfcpu.Context, signatureDict pdfcpu.Dict) bool {
	reference, found := signatureDict.Find("Reference")
	if !found {
		return false
	}

	references, err := pdfContext.DereferenceArray(reference)
	if err != nil {
		return false
	}

	for _, ref := range references {
		refDict, err := pdfContext.DereferenceDict(ref)
		if err != nil || refDict == nil {
			continue
		}
		method, found := refDict.Find("TransformMethod")
		if !found {
			continue
		}
		if name, ok := method.(pdfcpu.Name); ok && name == PDFCertifyFlag {
			return true
		}
	}

	return false
}

func getByteRange(pdfContext *pdfcpu.Context, signatureDict pdfcpu.Dict) *ByteRange {
	obj, found := signatureDict.Find("ByteRange")
	if !found {
		return nil
	}

	byteRangeArray, err := pdfContext.DereferenceArray(obj)
	if err != nil || len(byteRangeArray) != 4 {
		return nil
	}

	values := make([]int, 4)
	for i, element := range byteRangeArray {
		n, ok := element.(pdfcpu.Integer)
		if !ok {
			return nil
		}
		values[i] = int(n)
	}

	return &ByteRange{Start1: values[0], Len1: values[1], Start2: values[2], Len2: values[3]}
}

// parsePDFDate parses a PDF date string such as D:20230102150405+01'00'.
func parsePDFDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(s, "D:")
	s = strings.ReplaceAll(s, "'", "")
	if strings.HasSuffix(s, "Z0000") {
		s = strings.TrimSuffix(s, "0000")
	}

	for _, layout := range []string{"20060102150405-0700", "20060102150405Z0700", "20060102150405Z", "20060102150405", "20060102"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
