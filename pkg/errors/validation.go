package errors

import (
	"encoding/base64"
	"regexp"
	"strings"
	"unicode"
)

// MaxKeyLength bounds storage keys and node ids.
const MaxKeyLength = 256

// ValidateStorageKey validates a storage key for safety.
// Keys become file names and database keys, so the rules are conservative:
//   - No empty keys
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of MaxKeyLength bytes
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidKey, "storage key cannot be empty")
	}

	if len(key) > MaxKeyLength {
		return New(ErrCodeInvalidKey, "storage key too long (max %d characters)", MaxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidKey, "storage key contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"/",    // Path separator
		"\\",   // Backslash (Windows path)
		"\x00", // Null byte
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(key, pattern) {
			return New(ErrCodeInvalidKey, "storage key contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateNodeID validates a node or edge id.
// Ids are opaque, but must be non-empty, printable and bounded.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	if len(id) > MaxKeyLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", MaxKeyLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidNodeID, "node id contains whitespace or control characters")
		}
	}
	return nil
}

// dataURIRegex matches base64 data URIs with a type/subtype media type.
var dataURIRegex = regexp.MustCompile(`^data:([a-zA-Z0-9!#$&^_.+-]+/[a-zA-Z0-9!#$&^_.+-]+)(;[a-zA-Z0-9-]+=[^;,]+)*;base64,(.*)$`)

// ValidateDataURI validates a base64 data URI and returns its media type.
// Only image media types are accepted.
func ValidateDataURI(uri string) (string, error) {
	if uri == "" {
		return "", New(ErrCodeInvalidDataURI, "data URI cannot be empty")
	}

	m := dataURIRegex.FindStringSubmatch(uri)
	if m == nil {
		return "", New(ErrCodeInvalidDataURI, "not a base64 data URI")
	}

	mediaType := strings.ToLower(m[1])
	if !strings.HasPrefix(mediaType, "image/") {
		return "", New(ErrCodeInvalidDataURI, "unsupported media type %q (want image/*)", mediaType)
	}

	if _, err := base64.StdEncoding.DecodeString(m[3]); err != nil {
		return "", Wrap(ErrCodeInvalidDataURI, err, "invalid base64 payload")
	}

	return mediaType, nil
}
