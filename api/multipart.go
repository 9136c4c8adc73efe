package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/go-faster/errors"

	"github.com/aluiziolira/cosmetics-storefront/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartBuilder accumulates form parts and keeps the first error.
type multipartBuilder struct {
	buf bytes.Buffer
	w   *multipart.Writer
	err error
}

func newMultipartBuilder() *multipartBuilder {
	b := &multipartBuilder{}
	b.w = multipart.NewWriter(&b.buf)
	return b
}

func (b *multipartBuilder) field(name, value string) {
	if b.err != nil {
		return
	}
	b.err = b.w.WriteField(name, value)
}

func (b *multipartBuilder) jsonField(name string, value any) {
	if b.err != nil {
		return
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		b.err = errors.Wrapf(err, "encode %s", name)
		return
	}
	b.err = b.w.WriteField(name, string(encoded))
}

func (b *multipartBuilder) file(name string, u models.Upload) {
	if b.err != nil {
		return
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(name), quoteEscaper.Replace(u.Filename)))
	h.Set("Content-Type", u.ContentType)
	part, err := b.w.CreatePart(h)
	if err != nil {
		b.err = err
		return
	}
	_, b.err = part.Write(u.Data)
}

// request closes the form and returns it as a request body.
func (b *multipartBuilder) request(method, path string) (request, error) {
	if b.err == nil {
		b.err = b.w.Close()
	}
	if b.err != nil {
		return request{}, errors.Wrap(b.err, "build multipart body")
	}
	return request{
		method:      method,
		path:        path,
		body:        b.buf.Bytes(),
		contentType: b.w.FormDataContentType(),
	}, nil
}
