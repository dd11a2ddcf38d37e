package domain

import "strings"

// ParseStatus represents the lifecycle of a document parse.
type ParseStatus string

const (
	ParseStatusQueued     ParseStatus = "queued"
	ParseStatusProcessing ParseStatus = "processing"
	ParseStatusParsed     ParseStatus = "parsed"
	ParseStatusFailed     ParseStatus = "failed"
)

// ValidParseStatuses is the set of statuses accepted as a list filter.
var ValidParseStatuses = map[ParseStatus]bool{
	ParseStatusQueued:     true,
	ParseStatusProcessing: true,
	ParseStatusParsed:     true,
	ParseStatusFailed:     true,
}

// ExportFormat is an output format of the document export.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
)

// ParseExportFormat validates a user supplied export format. Empty means CSV.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", ExportFormatCSV:
		return ExportFormatCSV, nil
	case ExportFormatXLSX:
		return ExportFormatXLSX, nil
	default:
		return "", ErrInvalidExportFormat
	}
}

// AllowedExtensions maps accepted file extensions (without dot) to the
// content type stored with the object.
var AllowedExtensions = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"odt":  "application/vnd.oasis.opendocument.text",
	"ods":  "application/vnd.oasis.opendocument.spreadsheet",
	"odp":  "application/vnd.oasis.opendocument.presentation",
	"rtf":  "application/rtf",
	"txt":  "text/plain",
	"csv":  "text/csv",
	"md":   "text/markdown",
	"html": "text/html",
	"htm":  "text/html",
	"xml":  "application/xml",
	"json": "application/json",
	"eml":  "message/rfc822",
	"msg":  "application/vnd.ms-outlook",
	"epub": "application/epub+zip",
	"zip":  "application/zip",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"bmp":  "image/bmp",
}

// ContentTypeFor returns the content type registered for the extension of
// fileName, or ErrUnsupportedFileType.
func ContentTypeFor(fileName string) (string, error) {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return "", ErrUnsupportedFileType
	}
	ct, ok := AllowedExtensions[strings.ToLower(fileName[idx+1:])]
	if !ok {
		return "", ErrUnsupportedFileType
	}
	return ct, nil
}
