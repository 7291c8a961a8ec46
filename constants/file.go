package constants

import "strings"

// File types stored in documents.file_type.
const (
	FileTypePDF   = "PDF"
	FileTypeDOCX  = "DOCX"
	FileTypeImage = "IMAGE"
	FileTypeTXT   = "TXT"
)

// FileTypes holds the allowed values for the file_type column.
var FileTypes = []string{FileTypePDF, FileTypeDOCX, FileTypeImage, FileTypeTXT}

// AllowedExtensions holds the file extensions accepted for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"docx": {},
	"txt":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
	"bmp":  {},
	"gif":  {},
	"heic": {},
	"heif": {},
}

var imageExtensions = map[string]struct{}{
	"jpg": {}, "jpeg": {}, "png": {}, "tif": {}, "tiff": {}, "bmp": {}, "gif": {}, "heic": {}, "heif": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) can be ingested.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// FileTypeForExt maps an extension to a file type, or "" when unsupported.
func FileTypeForExt(ext string) string {
	e := NormalizeExt(ext)
	if _, ok := imageExtensions[e]; ok {
		return FileTypeImage
	}
	switch e {
	case "pdf":
		return FileTypePDF
	case "docx":
		return FileTypeDOCX
	case "txt":
		return FileTypeTXT
	}
	return ""
}

// IsHEIC reports whether ext needs conversion before OCR.
func IsHEIC(ext string) bool {
	e := NormalizeExt(ext)
	return e == "heic" || e == "heif"
}
