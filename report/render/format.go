package render

import "strings"

// Format identifies an output encoding by its request token.
type Format string

const (
	FormatPDF   Format = "pdf"
	FormatWord  Format = "word"
	FormatExcel Format = "excel"
)

// Formats lists every supported output format in a stable order.
var Formats = []Format{FormatPDF, FormatWord, FormatExcel}

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseFormat maps a request token to a Format.
func ParseFormat(token string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(token))) {
	case FormatPDF:
		return FormatPDF, nil
	case FormatWord:
		return FormatWord, nil
	case FormatExcel:
		return FormatExcel, nil
	default:
		return "", &UnsupportedFormatError{Token: token}
	}
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatWord:
		return "docx"
	case FormatExcel:
		return "xlsx"
	default:
		return ""
	}
}

// ContentType returns the MIME type of the encoded artifact.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return mimePDF
	case FormatWord:
		return mimeDOCX
	case FormatExcel:
		return mimeXLSX
	default:
		return "application/octet-stream"
	}
}
