package fs

import (
	"mime"
	"path"
	"strings"

	"github.com/pkg/errors"
)

// DefaultMimeType is used when nothing better is known about a file
const DefaultMimeType = "application/octet-stream"

// JavaScriptMimeType is served for every .js file whatever the host
// mime database says.
const JavaScriptMimeType = "application/javascript"

// builtinMimeTypes covers the common web types so the answer does not
// depend on the mime.types files installed on the host.
var builtinMimeTypes = map[string]string{
	".avif":  "image/avif",
	".css":   "text/css",
	".csv":   "text/csv",
	".gif":   "image/gif",
	".htm":   "text/html",
	".html":  "text/html",
	".ico":   "image/vnd.microsoft.icon",
	".jpeg":  "image/jpeg",
	".jpg":   "image/jpeg",
	".json":  "application/json",
	".map":   "application/json",
	".md":    "text/markdown",
	".mjs":   "application/javascript",
	".mp3":   "audio/mpeg",
	".mp4":   "video/mp4",
	".otf":   "font/otf",
	".pdf":   "application/pdf",
	".png":   "image/png",
	".svg":   "image/svg+xml",
	".ttf":   "font/ttf",
	".txt":   "text/plain",
	".wasm":  "application/wasm",
	".webm":  "video/webm",
	".webp":  "image/webp",
	".woff":  "font/woff",
	".woff2": "font/woff2",
	".xml":   "text/xml",
	".zip":   "application/zip",
}

// MimeTable maps file extensions to MIME types.
//
// A MimeTable is immutable once made so it can be shared between
// requests without locking.
type MimeTable struct {
	types map[string]string
}

// normaliseExt returns ext in lower case with a leading "."
func normaliseExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// NewMimeTable makes a MimeTable from the builtin types with extra
// added on top.
//
// The .js mapping is always applied last so it can't be changed.
func NewMimeTable(extra map[string]string) (MimeTable, error) {
	t := MimeTable{types: make(map[string]string, len(builtinMimeTypes)+len(extra)+1)}
	for ext, mimeType := range builtinMimeTypes {
		t.types[ext] = mimeType
	}
	for ext, mimeType := range extra {
		normalised := normaliseExt(ext)
		if normalised == "" || normalised == "." {
			return MimeTable{}, errors.Errorf("empty extension in mime type %q", mimeType)
		}
		mimeType = strings.TrimSpace(mimeType)
		if !strings.ContainsRune(mimeType, '/') {
			return MimeTable{}, errors.Errorf("invalid mime type %q for extension %q", mimeType, ext)
		}
		if normalised == ".js" && mimeType != JavaScriptMimeType {
			Logf(nil, "Ignoring mime type %q for .js - always using %q", mimeType, JavaScriptMimeType)
		}
		t.types[normalised] = mimeType
	}
	t.types[".js"] = JavaScriptMimeType
	return t, nil
}

// TypeByExtension returns the MIME type for ext which should include
// the leading dot.
//
// The table is consulted first, then the platform mime database,
// falling back to DefaultMimeType.
func (t MimeTable) TypeByExtension(ext string) string {
	ext = normaliseExt(ext)
	if ext == "" {
		return DefaultMimeType
	}
	if mimeType, ok := t.types[ext]; ok {
		return mimeType
	}
	mimeType := mime.TypeByExtension(ext)
	if !strings.ContainsRune(mimeType, '/') {
		return DefaultMimeType
	}
	return mimeType
}

// TypeFromName returns the MIME type for the file name passed in
func (t MimeTable) TypeFromName(name string) string {
	return t.TypeByExtension(path.Ext(name))
}

// Len returns the number of extensions in the table
func (t MimeTable) Len() int {
	return len(t.types)
}
