package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// zipTree archives the rootName directory under baseDir, keeping entry
// paths relative to baseDir so the tree unpacks under its own folder.
func zipTree(zipPath, baseDir, rootName string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("creating archive: %v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	root := filepath.Join(baseDir, rootName)
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(baseDir, path)
		if err != nil {
			return err
		}
		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(entry, f)
		return err
	})
}

// zipDocument archives a single document at the root of a new archive.
func zipDocument(zipPath, entryName string, content []byte) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("creating archive: %v", err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	entry, err := zw.Create(entryName)
	if err != nil {
		return err
	}
	if _, err := entry.Write(content); err != nil {
		return err
	}
	return zw.Close()
}

// ReadManifest returns the manifest document from a package archive or
// a bare document path. Inside an archive it looks for the
// conventional dict/PackOut.xml entry first, then falls back to any
// root-level XML entry.
func ReadManifest(path string) ([]byte, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".zip") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading document: %v", err)
		}
		return data, nil
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %v", err)
	}
	defer zr.Close()

	var fallback *zip.File
	for _, f := range zr.File {
		name := strings.ToLower(f.Name)
		if strings.HasSuffix(name, "/dict/packout.xml") || name == "dict/packout.xml" {
			return readEntry(f)
		}
		if fallback == nil && strings.HasSuffix(name, ".xml") && !strings.Contains(name, "/") {
			fallback = f
		}
	}
	if fallback != nil {
		return readEntry(fallback)
	}
	return nil, fmt.Errorf("no manifest document found in %s", filepath.Base(path))
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening archive entry %s: %v", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading archive entry %s: %v", f.Name, err)
	}
	return data, nil
}
