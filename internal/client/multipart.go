package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
)

// File is an upload attached to a multipart form
type File struct {
	Name   string
	Reader io.Reader
}

// OpenFile opens the file at path for upload. The caller closes the returned
// file once the request completes.
func OpenFile(path string) (File, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Reader: f}, f, nil
}

// formField is a text or file part of a multipart body, in send order
type formField struct {
	name  string
	value string
	file  *File
}

func textField(name, value string) formField {
	return formField{name: name, value: value}
}

func fileField(name string, f File) formField {
	return formField{name: name, file: &f}
}

// requireFile rejects an upload with no content before any request is made
func requireFile(field string, f File) error {
	if f.Reader == nil {
		return &ValidationError{Fields: []FieldError{{Field: field, Rule: "required"}}}
	}
	return nil
}

// postForm streams fields as multipart/form-data. The content type carries
// the boundary, so no JSON content type is set.
func (c *Client) postForm(ctx context.Context, endpoint string, fields []formField, out any) error {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	written := make(chan error, 1)
	go func() {
		err := writeForm(writer, fields)
		pw.CloseWithError(err)
		written <- err
	}()

	err := c.send(ctx, http.MethodPost, endpoint, pr, writer.FormDataContentType(), out)

	// Unblocks the writer if the request ended before the body was consumed
	_ = pr.Close()
	writeErr := <-written

	if writeErr != nil && !errors.Is(writeErr, io.ErrClosedPipe) {
		return writeErr
	}
	return err
}

func writeForm(writer *multipart.Writer, fields []formField) error {
	for _, field := range fields {
		if field.file == nil {
			if err := writer.WriteField(field.name, field.value); err != nil {
				return fmt.Errorf("failed to write form field %s: %w", field.name, err)
			}
			continue
		}

		if err := writeFilePart(writer, field.name, *field.file); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish form: %w", err)
	}
	return nil
}

// sniffLen is how much of a file http.DetectContentType looks at
const sniffLen = 512

func writeFilePart(writer *multipart.Writer, field string, f File) error {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f.Reader, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("failed to read %s: %w", field, err)
	}
	head = head[:n]

	name := f.Name
	if name == "" {
		name = field
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, name))
	header.Set("Content-Type", http.DetectContentType(head))

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", field, err)
	}
	if _, err := part.Write(head); err != nil {
		return fmt.Errorf("failed to write form file %s: %w", field, err)
	}
	if _, err := io.Copy(part, f.Reader); err != nil {
		return fmt.Errorf("failed to write form file %s: %w", field, err)
	}
	return nil
}
