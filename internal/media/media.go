package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
)

// Category selects the directory an asset lives in.
type Category string

const (
	Images Category = "images"
	Videos Category = "videos"
)

const (
	videoPrefix   = "video-"
	tempPattern   = ".upload-*"
	maxExtLen     = 10
	nameAttempts  = 5
	sniffLen      = 512
	suffixModulus = 1_000_000_000
)

var (
	ErrTooLarge        = errors.New("upload too large")
	ErrInvalidImage    = errors.New("invalid image")
	ErrWrongType       = errors.New("unexpected content type")
	ErrInvalidName     = errors.New("invalid asset name")
	ErrUnknownCategory = errors.New("unknown asset category")
)

// Store owns the asset files on disk. Images live directly under root,
// videos under root/videos, both served under publicPrefix.
type Store struct {
	root         string
	publicPrefix string
	now          func() time.Time
	suffix       func() uint32
}

func NewStore(root, publicPrefix string) *Store {
	return &Store{
		root:         root,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
		now:          time.Now,
		suffix:       func() uint32 { return uuid.New().ID() % suffixModulus },
	}
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) Dir(c Category) string {
	if c == Videos {
		return filepath.Join(s.root, "videos")
	}
	return s.root
}

// EnsureDirs creates the category directories.
func (s *Store) EnsureDirs() error {
	for _, c := range []Category{Images, Videos} {
		if err := os.MkdirAll(s.Dir(c), 0o755); err != nil {
			return err
		}
	}
	return nil
}

// Upload is a staged file that has been fully received and validated but
// not yet given its final name.
type Upload struct {
	store    *Store
	category Category
	tmpPath  string
	done     bool

	Ext    string
	Bytes  int64
	Mime   string
	SHA256 string
	Width  int
	Height int
	Name   string
}

// Stage streams r into a temporary file inside the category directory.
// Nothing is visible under a final name until Commit. Streams longer than
// maxBytes fail with ErrTooLarge and leave no file behind.
func (s *Store) Stage(ctx context.Context, r io.Reader, originalName string, c Category, maxBytes int64) (*Upload, error) {
	if c != Images && c != Videos {
		return nil, ErrUnknownCategory
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir := s.Dir(c)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, err
	}
	keep := false
	defer func() {
		tmp.Close()
		if !keep {
			os.Remove(tmp.Name())
		}
	}()

	lim := &io.LimitedReader{R: r, N: maxBytes + 1}
	hash := sha256.New()
	written, err := io.Copy(io.MultiWriter(tmp, hash), lim)
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, ErrTooLarge
		}
		return nil, err
	}
	if written > maxBytes {
		return nil, ErrTooLarge
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	up := &Upload{
		store:    s,
		category: c,
		tmpPath:  tmp.Name(),
		Bytes:    written,
		SHA256:   hex.EncodeToString(hash.Sum(nil)),
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	head := make([]byte, sniffLen)
	n, _ := io.ReadFull(tmp, head)
	up.Mime = http.DetectContentType(head[:n])

	format := ""
	if c == Images {
		if _, err := tmp.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		cfg, f, err := image.DecodeConfig(tmp)
		if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
			return nil, ErrInvalidImage
		}
		up.Width, up.Height, format = cfg.Width, cfg.Height, f
	}

	up.Ext = extension(originalName, up.Mime, format)
	if err := tmp.Chmod(0o644); err != nil {
		return nil, err
	}
	keep = true
	return up, nil
}

// Commit moves the staged file to a fresh name and returns that name.
func (u *Upload) Commit() (string, error) {
	if u.done {
		return "", fmt.Errorf("upload already finalized")
	}
	dir := u.store.Dir(u.category)
	for attempt := 0; attempt < nameAttempts; attempt++ {
		name := u.store.newName(u.category, u.Ext)
		final := filepath.Join(dir, name)
		// reserve the name so concurrent commits cannot pick it too
		f, err := os.OpenFile(final, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		f.Close()
		if err := os.Rename(u.tmpPath, final); err != nil {
			os.Remove(final)
			return "", err
		}
		u.done = true
		u.Name = name
		return name, nil
	}
	return "", fmt.Errorf("no unique asset name after %d attempts", nameAttempts)
}

// Discard drops a staged upload. It is a no-op after Commit.
func (u *Upload) Discard() error {
	if u == nil || u.done {
		return nil
	}
	u.done = true
	if err := os.Remove(u.tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) newName(c Category, ext string) string {
	prefix := ""
	if c == Videos {
		prefix = videoPrefix
	}
	return fmt.Sprintf("%s%d-%d%s", prefix, s.now().UnixMilli(), s.suffix(), ext)
}

// Remove deletes a stored asset. A missing file is not an error.
func (s *Store) Remove(name string, c Category) error {
	p, err := s.Path(name, c)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Path resolves a stored name to its location on disk.
func (s *Store) Path(name string, c Category) (string, error) {
	if c != Images && c != Videos {
		return "", ErrUnknownCategory
	}
	if !validName(name) {
		return "", ErrInvalidName
	}
	return filepath.Join(s.Dir(c), name), nil
}

// URLFor is the public path of a stored name. It does no I/O.
func (s *Store) URLFor(name string, c Category) string {
	if name == "" {
		return ""
	}
	if c == Videos {
		return s.publicPrefix + "/videos/" + url.PathEscape(name)
	}
	return s.publicPrefix + "/" + url.PathEscape(name)
}

func (s *Store) IsWritable() error {
	testPath := filepath.Join(s.root, ".writetest")
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(testPath, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(testPath)
}

// CheckContentType rejects declared content types outside the category.
func CheckContentType(contentType string, c Category) error {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrWrongType, contentType)
	}
	want := "image/"
	if c == Videos {
		want = "video/"
	}
	if !strings.HasPrefix(mediaType, want) {
		return fmt.Errorf("%w: %s, expected %s*", ErrWrongType, mediaType, want)
	}
	return nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return false
	}
	return filepath.Base(name) == name
}

func extension(filename, mimeType, format string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !cleanExt(ext) {
		ext = ""
	}
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	if ext == "" && format != "" {
		ext = "." + format
	}
	if ext == "" {
		ext = ".bin"
	}
	return ext
}

func cleanExt(ext string) bool {
	if len(ext) < 2 || len(ext) > maxExtLen || ext[0] != '.' {
		return false
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
