// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package generator

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/mdstudio/mdstudio/internal/assembler"
)

// CodeWriteOutput is the oops code of output write failures.
const CodeWriteOutput = "WRITE_OUTPUT"

const (
	renameAttempts = 4
	renameBackoff  = 10 * time.Millisecond
)

// rename is swapped in tests.
var rename = os.Rename

// Written lists the files WriteOutput produced.
type Written struct {
	Main string
	Decl string
}

// WriteOutput writes both units into dir, creating it if needed. Each file is
// replaced atomically, so readers never observe a partial unit.
func (g *Generator) WriteOutput(ctx context.Context, dir string, u *assembler.Units) (Written, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Written{}, oops.Code(CodeWriteOutput).With("dir", dir).Wrapf(err, "create output directory")
	}

	w := Written{
		Main: filepath.Join(dir, g.mainFile),
		Decl: filepath.Join(dir, g.declFile),
	}
	if err := writeAtomic(ctx, w.Decl, u.Decl); err != nil {
		return Written{}, err
	}
	if err := writeAtomic(ctx, w.Main, u.Main); err != nil {
		return Written{}, err
	}
	g.logger.DebugContext(ctx, "wrote units", "main", w.Main, "decl", w.Decl)
	return w, nil
}

// writeAtomic writes content to a temp file beside path and renames it into
// place, retrying the rename with exponential backoff.
func writeAtomic(ctx context.Context, path, content string) (err error) {
	errb := oops.Code(CodeWriteOutput).With("path", path)

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errb.Wrapf(err, "create temp file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		return errb.Wrapf(err, "write temp file")
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return errb.Wrapf(err, "sync temp file")
	}
	if err = tmp.Close(); err != nil {
		return errb.Wrapf(err, "close temp file")
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil { //nolint:gosec // generated sources are world-readable
		return errb.Wrapf(err, "chmod temp file")
	}

	backoff := retry.WithMaxRetries(renameAttempts-1, retry.NewExponential(renameBackoff))
	err = retry.Do(ctx, backoff, func(_ context.Context) error {
		if renameErr := rename(tmp.Name(), path); renameErr != nil {
			return retry.RetryableError(renameErr)
		}
		return nil
	})
	if err != nil {
		return errb.Wrapf(err, "rename into place")
	}
	return nil
}
