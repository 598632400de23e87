package utils

import (
	"encoding/base64"
	"net/url"
	"strings"
)

func EncodeURIComponent(str string) string {
	return strings.ReplaceAll(url.QueryEscape(str), "+", "%20")
}

// ============================================================
// DATA URL
// ============================================================

// DataURL wraps raw bytes as "data:<mime>;base64,<payload>", the format
// the auth service expects for frames.
func DataURL(mimeType string, data []byte) string {
	var b strings.Builder
	b.Grow(len("data:;base64,") + len(mimeType) + base64.StdEncoding.EncodedLen(len(data)))
	b.WriteString("data:")
	b.WriteString(mimeType)
	b.WriteString(";base64,")
	b.WriteString(base64.StdEncoding.EncodeToString(data))
	return b.String()
}

// ============================================================
// PHOTO URL
// ============================================================

// ResolveAssetURL turns a server-relative asset path (e.g. a face image path
// stored with the record) into an absolute URL on baseURL, escaping each
// path segment. Absolute URLs and data URLs are returned unchanged.
func ResolveAssetURL(baseURL, assetPath string) string {
	if assetPath == "" {
		return ""
	}
	if strings.HasPrefix(assetPath, "http://") || strings.HasPrefix(assetPath, "https://") ||
		strings.HasPrefix(assetPath, "data:") {
		return assetPath
	}

	segments := strings.Split(strings.ReplaceAll(assetPath, "\\", "/"), "/")
	escaped := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" || seg == "." {
			continue
		}
		escaped = append(escaped, EncodeURIComponent(seg))
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.Join(escaped, "/")
}
