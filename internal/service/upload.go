package service

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/transport"
)

const MaxUploadSize = 5 << 20

type UploadService struct{}

// EncodeImage validates an uploaded image and returns it as a data URL.
// The content type is sniffed from the bytes, not taken from the client.
func (s *UploadService) EncodeImage(r io.Reader, filename string) (*transport.UploadResponse, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, invalid("file is empty")
	}
	if len(data) > MaxUploadSize {
		return nil, invalid("file is larger than 5MB")
	}

	mime := http.DetectContentType(data)
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	if !strings.HasPrefix(mime, "image/") {
		return nil, invalid("only image files are allowed")
	}

	var buf bytes.Buffer
	buf.Grow(len("data:;base64,") + len(mime) + base64.StdEncoding.EncodedLen(len(data)))
	buf.WriteString("data:" + mime + ";base64,")
	buf.WriteString(base64.StdEncoding.EncodeToString(data))

	return &transport.UploadResponse{
		URL:      buf.String(),
		Filename: uuid.NewString() + strings.ToLower(filepath.Ext(filename)),
		Size:     int64(len(data)),
	}, nil
}
