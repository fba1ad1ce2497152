package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
)

// MultipartForm is a multipart/form-data request body: plain fields plus
// file parts read from disk.
type MultipartForm struct {
	Fields map[string]string
	// Files maps a part name to the local paths attached under it.
	Files map[string][]string
}

func (f MultipartForm) bodyFunc() func() (io.Reader, string, error) {
	return func() (io.Reader, string, error) {
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)

		for _, name := range sortedKeys(f.Fields) {
			if err := writer.WriteField(name, f.Fields[name]); err != nil {
				return nil, "", fmt.Errorf("write form field %q: %w", name, err)
			}
		}

		for _, name := range sortedKeys(f.Files) {
			for _, path := range f.Files[name] {
				if err := writeFilePart(writer, name, path); err != nil {
					return nil, "", err
				}
			}
		}

		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("finish multipart body: %w", err)
		}

		return buf, writer.FormDataContentType(), nil
	}
}

func writeFilePart(writer *multipart.Writer, name, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open attachment %q: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	part, err := writer.CreateFormFile(name, filepath.Base(path))
	if err != nil {
		return fmt.Errorf("create file part %q: %w", name, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy attachment %q: %w", path, err)
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
