package imagegen

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDataURL is returned when a string is not a base64 data URL.
var ErrInvalidDataURL = errors.New("invalid data URL")

const (
	dataURLScheme = "data:"
	base64Marker  = ";base64,"
)

// EncodeDataURL builds "data:<mime>;base64,<payload>".
func EncodeDataURL(mimeType string, data []byte) string {
	return dataURLScheme + mimeType + base64Marker + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL splits a base64 data URL into its media type and decoded bytes.
func DecodeDataURL(url string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(url, dataURLScheme)
	if !ok {
		return "", nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDataURL, dataURLScheme)
	}
	mimeType, payload, ok := strings.Cut(rest, base64Marker)
	if !ok {
		return "", nil, fmt.Errorf("%w: not base64 encoded", ErrInvalidDataURL)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	return mimeType, data, nil
}
