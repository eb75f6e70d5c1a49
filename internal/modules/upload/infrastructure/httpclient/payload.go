package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodePayload writes the payload as a multipart/form-data body and returns
// it together with the matching Content-Type header value.
func EncodePayload(payload domain.Payload) (*bytes.Buffer, string, error) {
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)

	field := payload.Field
	if field == "" {
		field = domain.ImageField
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(payload.File.Name)))
	h.Set("Content-Type", payload.File.PartContentType())

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form part: %w", err)
	}
	if payload.File.Content != nil {
		if _, err := io.Copy(part, payload.File.Content); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", payload.File.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}

	return body, w.FormDataContentType(), nil
}
