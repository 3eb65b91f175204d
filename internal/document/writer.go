package document

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
)

const (
	FormatDOCX     = "docx"
	FormatMarkdown = "md"
	FormatHTML     = "html"

	CollisionSuffix    = "suffix"
	CollisionOverwrite = "overwrite"

	DefaultDir = "posts"

	dirPerm  = 0o755
	filePerm = 0o644

	maxCollisionSuffix = 1000
)

var ErrNoFreeName = errors.New("no free file name")

type Options struct {
	Dir         string
	Format      string
	OnCollision string
}

// Writer stores one document per variation under Dir.
type Writer struct {
	dir         string
	ext         string
	render      renderFunc
	onCollision string
	log         *slog.Logger
}

func NewWriter(opts Options, log *slog.Logger) (*Writer, error) {
	dir := opts.Dir
	if dir == "" {
		dir = DefaultDir
	}

	format := opts.Format
	if format == "" {
		format = FormatDOCX
	}

	var render renderFunc
	switch format {
	case FormatDOCX:
		render = renderDOCX
	case FormatMarkdown:
		render = renderMarkdown
	case FormatHTML:
		render = renderHTML
	default:
		return nil, fmt.Errorf("unsupported format (format = %q)", format)
	}

	onCollision := opts.OnCollision
	if onCollision == "" {
		onCollision = CollisionSuffix
	}
	if onCollision != CollisionSuffix && onCollision != CollisionOverwrite {
		return nil, fmt.Errorf("unsupported collision policy (onCollision = %q)", onCollision)
	}

	return &Writer{
		dir:         dir,
		ext:         "." + format,
		render:      render,
		onCollision: onCollision,
		log:         log,
	}, nil
}

// Write stores a heading with title followed by body and returns the path.
// index is zero-based; the file is named <title>_variation_<index+1>.
func (w *Writer) Write(ctx context.Context, title, body string, index int) (string, error) {
	if index < 0 {
		return "", fmt.Errorf("index must not be negative (index = %d)", index)
	}

	var buf bytes.Buffer
	if err := w.render(&buf, title, body); err != nil {
		return "", fmt.Errorf("render document: %w", err)
	}

	if err := os.MkdirAll(w.dir, dirPerm); err != nil {
		return "", fmt.Errorf("create directory: %w", err)
	}

	base := filepath.Join(w.dir, fileStem(title)+"_variation_"+strconv.Itoa(index+1))

	path, err := w.store(base, buf.Bytes())
	if err != nil {
		return "", err
	}

	w.log.DebugContext(ctx, "Wrote document",
		"path", path,
		"bytes", buf.Len())

	return path, nil
}

func (w *Writer) store(base string, data []byte) (string, error) {
	if w.onCollision == CollisionOverwrite {
		path := base + w.ext
		if err := os.WriteFile(path, data, filePerm); err != nil {
			return "", fmt.Errorf("write file: %w", err)
		}

		return path, nil
	}

	for n := 1; n <= maxCollisionSuffix; n++ {
		path := base + w.ext
		if n > 1 {
			path = base + "_" + strconv.Itoa(n) + w.ext
		}

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create file: %w", err)
		}

		if _, err = f.Write(data); err != nil {
			return "", errors.Join(fmt.Errorf("write file: %w", err), f.Close())
		}
		if err = f.Close(); err != nil {
			return "", fmt.Errorf("close file: %w", err)
		}

		return path, nil
	}

	return "", fmt.Errorf("%w (base = %s)", ErrNoFreeName, base)
}
