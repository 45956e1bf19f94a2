// Package mimetype implements the stat facade's extension-to-MIME lookup
// table. It resolves a file extension to a MIME type string; it does not
// sniff file contents.
package mimetype

import (
	"mime"
	"strings"
)

// staticTable covers the extensions most commonly seen in source trees,
// where the standard library's mime.TypeByExtension (which consults the
// host's registered MIME types, e.g. /etc/mime.types) is either absent or
// inconsistent across platforms.
var staticTable = map[string]string{
	".go":   "text/x-go",
	".rs":   "text/rust",
	".py":   "text/x-python",
	".rb":   "text/x-ruby",
	".java": "text/x-java-source",
	".c":    "text/x-c",
	".h":    "text/x-c",
	".cpp":  "text/x-c++",
	".ts":   "text/typescript",
	".tsx":  "text/typescript-jsx",
	".jsx":  "text/jsx",
	".json": "application/json",
	".yaml": "application/x-yaml",
	".yml":  "application/x-yaml",
	".toml": "application/toml",
	".md":   "text/markdown",
	".sh":   "application/x-sh",
	".sql":  "application/sql",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
}

// Lookup resolves ext (including the leading dot, e.g. ".go") to a MIME
// type. The static table is checked first; failing that, the standard
// library's registered extension table is consulted. ok is false when
// neither source recognizes ext.
func Lookup(ext string) (string, bool) {
	ext = strings.ToLower(ext)
	if mt, ok := staticTable[ext]; ok {
		return mt, true
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		return strings.TrimSpace(mt), true
	}
	return "", false
}
