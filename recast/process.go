package recast

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/recast/internal/syntax"
)

var desiredExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
}

func hasDesiredExtension(path string) bool {
	return desiredExtensions[filepath.Ext(path)]
}

// LoadFile decodes every unit in the tree file at path. Units of a
// multi-document file are named "path#index".
func LoadFile(path string) ([]Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoadUnits(path, f)
}

// LoadUnits decodes every unit in r, naming them after name.
func LoadUnits(name string, r io.Reader) ([]Unit, error) {
	trees, err := syntax.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	units := make([]Unit, len(trees))
	for i, t := range trees {
		units[i] = Unit{Name: name, Tree: t}
		if len(trees) > 1 {
			units[i].Name = fmt.Sprintf("%s#%d", name, i)
		}
	}
	return units, nil
}

// ExpandPaths replaces every directory in paths by the tree files below
// it, in lexical order. Files given explicitly are kept regardless of
// their extension.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && hasDesiredExtension(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", path, err)
		}
	}
	return files, nil
}

// ProcessPaths loads the tree files under paths in parallel and calls fn
// for every unit they hold. fn may run concurrently. A file that fails to
// load or process is logged and skipped; the failures are returned
// together once every file has been tried. When progress is not nil a
// progress bar is drawn on it.
func ProcessPaths(
	ctx context.Context,
	logger *zap.Logger,
	paths []string,
	progress io.Writer,
	fn func(Unit) error,
) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	files, err := ExpandPaths(paths)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if progress != nil && len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(progress),
			progressbar.OptionSetDescription("recast"),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}))
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, file := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := processFile(file, fn); err != nil {
				logger.Error("Error processing file", zap.String("file", file), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			if bar != nil {
				_ = bar.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return errors.Join(errs...)
}

func processFile(path string, fn func(Unit) error) error {
	units, err := LoadFile(path)
	if err != nil {
		return err
	}
	for _, u := range units {
		if err := fn(u); err != nil {
			return fmt.Errorf("%s: %w", u.Name, err)
		}
	}
	return nil
}
