package retrieve

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// unpack decodes the zip payload and extracts it into a fresh scratch directory.  The directory
// is returned even when extraction fails part way, so the caller can remove it.
func (r *Retriever) unpack(ctx context.Context, payload string) (string, []string, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return "", nil, &UnpackError{Err: fmt.Errorf("couldn't decode zip payload: %w", err)}
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", nil, &UnpackError{Err: fmt.Errorf("couldn't open zip: %w", err)}
	}

	base, err := homedir.Expand(r.ScratchBase)
	if err != nil {
		return "", nil, &UnpackError{Err: fmt.Errorf("unable to expand homedir: %w", err)}
	}
	if base != "" {
		if err := os.MkdirAll(base, 0o755); err != nil {
			return "", nil, &UnpackError{Dir: base, Err: err}
		}
	}
	dir, err := os.MkdirTemp(base, "metadata-dump-")
	if err != nil {
		return "", nil, &UnpackError{Dir: base, Err: err}
	}

	files := []string{}
	for _, file := range zr.File {
		if err := ctx.Err(); err != nil {
			return dir, files, &UnpackError{Dir: dir, Err: context.Cause(ctx)}
		}

		destPath := filepath.Join(dir, filepath.FromSlash(file.Name))
		relPath, relErr := filepath.Rel(dir, destPath)
		if relErr != nil || relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
			return dir, files, &UnpackError{Dir: dir, Err: fmt.Errorf("invalid path in zip: %s", file.Name)}
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o755); err != nil {
				return dir, files, &UnpackError{Dir: dir, Err: err}
			}
			continue
		}
		if !file.Mode().IsRegular() {
			return dir, files, &UnpackError{Dir: dir, Err: fmt.Errorf("%s in zip isn't a regular file (%s)", file.Name, file.Mode().Type())}
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
			return dir, files, &UnpackError{Dir: dir, Err: err}
		}
		if err := extractFile(file, destPath); err != nil {
			return dir, files, &UnpackError{Dir: dir, Err: fmt.Errorf("couldn't extract %s: %w", file.Name, err)}
		}
		files = append(files, filepath.ToSlash(relPath))
	}

	r.logger().Debug("unpacked", "dir", dir, "files", len(files))
	return dir, files, nil
}

func extractFile(file *zip.File, destPath string) (err error) {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := rc.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	// the server's zips carry no permissions
	mode := file.Mode().Perm() & 0o755
	if mode == 0 {
		mode = 0o644
	}
	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := destFile.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	_, err = io.Copy(destFile, rc)
	return err
}
