package depot

import (
	"path/filepath"
	"strings"
)

// MIMEOctetStream is the fallback MIME type for unknown extensions.
const MIMEOctetStream = "application/octet-stream"

// Content categories used in statistics. PDF is deliberately its own
// category: reports and invoices dominate most client namespaces and
// lumping them under Document hides that.
const (
	CategoryImage       = "Image"
	CategoryVideo       = "Video"
	CategoryAudio       = "Audio"
	CategoryPDF         = "PDF"
	CategoryDocument    = "Document"
	CategorySpreadsheet = "Spreadsheet"
	CategoryArchive     = "Archive"
	CategoryOther       = "Other"
)

// fileKind pairs the MIME type and statistics category for an extension.
type fileKind struct {
	mime     string
	category string
}

// extKinds maps lowercase file extensions to their MIME type and category.
var extKinds = map[string]fileKind{
	// Images
	".jpg":  {"image/jpeg", CategoryImage},
	".jpeg": {"image/jpeg", CategoryImage},
	".png":  {"image/png", CategoryImage},
	".gif":  {"image/gif", CategoryImage},
	".webp": {"image/webp", CategoryImage},
	".svg":  {"image/svg+xml", CategoryImage},
	".bmp":  {"image/bmp", CategoryImage},
	".tiff": {"image/tiff", CategoryImage},
	".ico":  {"image/x-icon", CategoryImage},
	".heic": {"image/heic", CategoryImage},
	".heif": {"image/heif", CategoryImage},
	".avif": {"image/avif", CategoryImage},
	// Video
	".mp4":  {"video/mp4", CategoryVideo},
	".webm": {"video/webm", CategoryVideo},
	".ogv":  {"video/ogg", CategoryVideo},
	".mov":  {"video/quicktime", CategoryVideo},
	".avi":  {"video/x-msvideo", CategoryVideo},
	".mkv":  {"video/x-matroska", CategoryVideo},
	// Audio
	".mp3":  {"audio/mpeg", CategoryAudio},
	".wav":  {"audio/wav", CategoryAudio},
	".ogg":  {"audio/ogg", CategoryAudio},
	".weba": {"audio/webm", CategoryAudio},
	".aac":  {"audio/aac", CategoryAudio},
	".flac": {"audio/flac", CategoryAudio},
	".m4a":  {"audio/mp4", CategoryAudio},
	// PDF
	".pdf": {"application/pdf", CategoryPDF},
	// Documents
	".doc":  {"application/msword", CategoryDocument},
	".docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", CategoryDocument},
	".ppt":  {"application/vnd.ms-powerpoint", CategoryDocument},
	".pptx": {"application/vnd.openxmlformats-officedocument.presentationml.presentation", CategoryDocument},
	".txt":  {"text/plain", CategoryDocument},
	".rtf":  {"application/rtf", CategoryDocument},
	".md":   {"text/markdown", CategoryDocument},
	".html": {"text/html", CategoryDocument},
	// Spreadsheets
	".xls":  {"application/vnd.ms-excel", CategorySpreadsheet},
	".xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", CategorySpreadsheet},
	".csv":  {"text/csv", CategorySpreadsheet},
	".ods":  {"application/vnd.oasis.opendocument.spreadsheet", CategorySpreadsheet},
	// Archives
	".zip": {"application/zip", CategoryArchive},
	".gz":  {"application/gzip", CategoryArchive},
	".tar": {"application/x-tar", CategoryArchive},
	".7z":  {"application/x-7z-compressed", CategoryArchive},
	".rar": {"application/x-rar-compressed", CategoryArchive},
	// Data
	".json": {"application/json", CategoryOther},
	".xml":  {"application/xml", CategoryOther},
	".js":   {"application/javascript", CategoryOther},
	".css":  {"text/css", CategoryOther},
}

// MIMEFromName returns the MIME type for a filename based on its extension.
// Unknown extensions return "application/octet-stream".
func MIMEFromName(name string) string {
	if k, ok := extKinds[normalizeExt(name)]; ok {
		return k.mime
	}
	return MIMEOctetStream
}

// CategoryFromName returns the statistics category for a filename.
// Unknown extensions return CategoryOther.
func CategoryFromName(name string) string {
	if k, ok := extKinds[normalizeExt(name)]; ok {
		return k.category
	}
	return CategoryOther
}

// normalizeExt extracts the lowercase extension, including the dot.
func normalizeExt(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// normalizeMIME extracts the base MIME type, removing parameters like charset.
// Returns the lowercase MIME type.
func normalizeMIME(mimeType string) string {
	mimeType, _, _ = strings.Cut(mimeType, ";")
	return strings.TrimSpace(strings.ToLower(mimeType))
}

// matchesMIME checks if a MIME type matches any of the allowed patterns.
// Supports wildcards like "image/*".
func matchesMIME(mimeType string, allowed []string) bool {
	mimeType = normalizeMIME(mimeType)

	for _, pattern := range allowed {
		pattern = strings.TrimSpace(strings.ToLower(pattern))

		if mimeType == pattern {
			return true
		}

		if strings.HasSuffix(pattern, "/*") {
			prefix := strings.TrimSuffix(pattern, "*")
			if strings.HasPrefix(mimeType, prefix) {
				return true
			}
		}
	}

	return false
}
