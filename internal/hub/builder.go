// Package hub builds the static hub site from hub/ into output/.
package hub

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"github.com/Fullex26/hubnotify/internal/logging"
)

const (
	LogFile  = "_build.log"
	lockFile = ".build.lock"
)

// Options control a build
type Options struct {
	Base    string // project root, "." when empty
	Test    bool   // build under Base/test and start from an empty output
	Verbose bool
}

// Builder turns hub/ into output/
type Builder struct {
	hubDir string
	outDir string
	test   bool
	level  slog.Level
	base   *slog.Logger
}

// NewBuilder resolves directories; log is the console logger, slog.Default when nil
func NewBuilder(opts Options, log *slog.Logger) *Builder {
	base := opts.Base
	if base == "" {
		base = "."
	}
	if opts.Test {
		base = filepath.Join(base, "test")
	}
	if log == nil {
		log = slog.Default()
	}
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return &Builder{
		hubDir: filepath.Join(base, "hub"),
		outDir: filepath.Join(base, "output"),
		test:   opts.Test,
		level:  level,
		base:   log,
	}
}

// OutputDir is where the site is written
func (b *Builder) OutputDir() string { return b.outDir }

// Build renders the root page and one index per language
func (b *Builder) Build() (err error) {
	if b.test {
		if _, statErr := os.Stat(b.outDir); statErr == nil {
			b.base.Debug("removing existing output directory", "dir", b.outDir)
			if err := os.RemoveAll(b.outDir); err != nil {
				return fmt.Errorf("cleaning output: %w", err)
			}
		}
	}
	if err := createDirectory(b.base, b.outDir); err != nil {
		return err
	}

	lock := flock.New(filepath.Join(b.outDir, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking output: %w", err)
	}
	if !locked {
		return fmt.Errorf("another build is using %s", b.outDir)
	}
	defer func() {
		err = errors.Join(err, lock.Unlock())
	}()

	logPath := filepath.Join(b.outDir, LogFile)
	lf, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("opening build log: %w", err)
	}
	defer lf.Close()
	log := logging.TeeLogger(b.base, logging.NewHandler(lf, b.level.String(), "text"))

	cfg, err := LoadConfig(b.hubDir)
	if err != nil {
		return err
	}
	langs, err := cfg.ResolveLanguages()
	if err != nil {
		return err
	}

	root := filepath.Join(b.hubDir, "hub-root")
	var total int64

	n, err := b.copy(log, filepath.Join(root, "index.html"), filepath.Join(b.outDir, "index.html"), MainReplacer(langs))
	if err != nil {
		return err
	}
	total += n

	for _, l := range langs {
		dst := filepath.Join(b.outDir, l.Tag, "index.html")
		n, err := b.copy(log, filepath.Join(root, "gamelist.html"), dst, nil)
		if err != nil {
			return err
		}
		total += n
	}

	log.Info("hub built",
		"output", b.outDir,
		"languages", len(langs),
		"size", humanize.Bytes(uint64(total)),
	)
	return nil
}

func (b *Builder) copy(log *slog.Logger, src, dst string, replace ReplaceFunc) (int64, error) {
	log.Debug("copying", "from", src, "to", dst)
	n, err := CopyWithReplace(src, dst, replace)
	if err != nil {
		return n, fmt.Errorf("building %s: %w", dst, err)
	}
	log.Debug("wrote page", "file", dst, "size", humanize.Bytes(uint64(n)))
	return n, nil
}

func createDirectory(log *slog.Logger, dir string) error {
	if _, err := os.Stat(dir); err == nil {
		log.Debug("directory already exists", "dir", dir)
		return nil
	}
	log.Debug("creating directory", "dir", dir)
	return os.MkdirAll(dir, 0755)
}

// ListContents returns every file under dir, skipping dot-files and dot-directories
func ListContents(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != dir
		if d.IsDir() {
			if hidden {
				return filepath.SkipDir
			}
			return nil
		}
		if !hidden {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
