package engine

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// archiveExts — расширения, файлы с которыми передаются как есть.
var archiveExts = map[string]bool{
	".zip": true,
	".jar": true,
	".war": true,
}

// IsArchive проверяет, является ли путь готовым архивом.
func IsArchive(path string) bool {
	return archiveExts[strings.ToLower(filepath.Ext(path))]
}

// loadPayload материализует бинарную подстановку.
//
// Один путь к архиву — содержимое файла как есть.
// Несколько путей или один не-архив — новый zip-архив в памяти.
// Каталоги добавляются рекурсивно, пути внутри архива — относительно каталога.
func (r *Resolver) loadPayload(d Directive) ([]byte, error) {
	if len(d.Paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyPayload, d.Raw)
	}

	if len(d.Paths) == 1 && IsArchive(d.Paths[0]) {
		data, err := os.ReadFile(r.path(d.Paths[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayloadFile, err)
		}
		return data, nil
	}

	return r.buildArchive(d.Paths)
}

func (r *Resolver) path(p string) string {
	if filepath.IsAbs(p) || r.baseDir == "" {
		return p
	}
	return filepath.Join(r.baseDir, p)
}

// buildArchive упаковывает файлы и каталоги в zip.
func (r *Resolver) buildArchive(paths []string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]bool)

	for _, p := range paths {
		full := r.path(p)
		info, err := os.Stat(full)
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("%w: %v", ErrPayloadFile, err)
		}

		if !info.IsDir() {
			if err := addFile(zw, full, filepath.Base(full), seen); err != nil {
				_ = zw.Close()
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(full, func(path string, de fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPayloadFile, err)
			}
			if de.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(full, path)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrPayloadFile, err)
			}
			return addFile(zw, path, filepath.ToSlash(rel), seen)
		})
		if err != nil {
			_ = zw.Close()
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// addFile добавляет один файл в архив под именем name.
func addFile(zw *zip.Writer, path, name string, seen map[string]bool) error {
	if seen[name] {
		return fmt.Errorf("%w: duplicate archive entry %q", ErrPayloadFile, name)
	}
	seen[name] = true

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadFile, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadFile, err)
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPayloadFile, err)
	}
	hdr.Name = name
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("add %s to archive: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrPayloadFile, path, err)
	}
	return nil
}
