// Package filex reads local files the CLI uploads.
package filex

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MaxAvatarSize bounds profile picture uploads.
const MaxAvatarSize = 5 << 20

var (
	ErrTooLarge = errors.New("file too large")
	ErrNotImage = errors.New("not an image")
)

// ReadImage loads an image of at most max bytes and sniffs its MIME type.
func ReadImage(path string, max int64) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	if int64(len(data)) > max {
		return nil, "", fmt.Errorf("%w: limit is %d bytes", ErrTooLarge, max)
	}

	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return nil, "", fmt.Errorf("%w: %s", ErrNotImage, ct)
	}
	return data, ct, nil
}
