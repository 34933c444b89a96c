// Package fontcat resolves font descriptors to loadable font sources.
//
// A Catalog maps font family names to font files. It is built lazily: the
// system font directories are scanned (through go-text's fontscan index) the
// first time a name lookup needs them, not when the catalog is created.
// Fonts downloaded by URL are added to the same tables.
//
// A descriptor passed to Resolve is tried, in order, as:
//  1. an http or https URL, downloaded into the catalog's download directory
//  2. an existing file path
//  3. a registered family name (case and spaces are ignored)
//
// Anything else fails with ErrInvalidFontFace.
//
// The embedded Go fonts are always registered as "goregular", "gobold",
// "goitalic" and "gomono", so a catalog can serve labels on hosts with no
// system fonts installed.
//
// Catalog is safe for concurrent use.
package fontcat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/fontscan"
	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/ironsheep/image-label-mcp/internal/label"
)

// ErrInvalidFontFace is returned when a descriptor is neither a URL, an
// existing file, nor a registered font name.
var ErrInvalidFontFace = errors.New("invalid font face")

// DefaultFont is the built-in font used when no descriptor is configured.
const DefaultFont = "goregular"

// Source is a resolved font: either a file on disk or embedded data.
type Source struct {
	// Name is the normalized family name, or the built-in name.
	Name string `json:"name"`

	// Path is the absolute font file path. Empty for built-in fonts.
	Path string `json:"path,omitempty"`

	// Index is the face index inside a font collection.
	Index int `json:"index"`

	// Builtin reports whether the font is embedded in the binary.
	Builtin bool `json:"builtin"`

	data []byte
}

// scanFunc enumerates system fonts. It matches fontscan.SystemFonts.
type scanFunc func(logger fontscan.Logger, cacheDir string) ([]fontscan.Footprint, error)

// Option configures a Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger. The default discards output.
func WithLogger(logger hclog.Logger) Option {
	return func(c *Catalog) {
		c.logger = logger
	}
}

// WithCacheDir sets where fontscan keeps its system font index.
// Empty uses the user cache directory.
func WithCacheDir(dir string) Option {
	return func(c *Catalog) {
		c.cacheDir = dir
	}
}

// WithDownloadDir sets where fonts fetched by URL are stored.
// Empty creates a fresh temporary directory on first download.
func WithDownloadDir(dir string) Option {
	return func(c *Catalog) {
		c.downloadDir = dir
	}
}

// WithHTTPClient replaces the download client.
func WithHTTPClient(client *retryablehttp.Client) Option {
	return func(c *Catalog) {
		c.client = client
	}
}

// WithoutSystemFonts skips the system font scan entirely.
func WithoutSystemFonts() Option {
	return func(c *Catalog) {
		c.scan = func(fontscan.Logger, string) ([]fontscan.Footprint, error) { return nil, nil }
	}
}

// Catalog resolves font descriptors. Create one with New.
type Catalog struct {
	logger      hclog.Logger
	cacheDir    string
	downloadDir string
	client      *retryablehttp.Client
	scan        scanFunc

	scanOnce sync.Once

	mu         sync.RWMutex
	byName     map[string]Source
	weights    map[string]float64
	pathToName map[string]string
	byURL      map[string]Source
}

// New creates a catalog with the built-in fonts registered.
// System fonts are not scanned until they are needed.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		logger:     hclog.NewNullLogger(),
		scan:       fontscan.SystemFonts,
		byName:     make(map[string]Source),
		weights:    make(map[string]float64),
		pathToName: make(map[string]string),
		byURL:      make(map[string]Source),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = retryablehttp.NewClient()
		c.client.RetryMax = 2
		c.client.HTTPClient.Timeout = 30 * time.Second
		c.client.Logger = c.logger
	}

	for name, data := range map[string][]byte{
		"goregular": goregular.TTF,
		"gobold":    gobold.TTF,
		"goitalic":  goitalic.TTF,
		"gomono":    gomono.TTF,
	} {
		c.byName[name] = Source{Name: name, Builtin: true, data: data}
	}

	return c
}

// loadSystemFonts scans the system fonts once. A failed scan is logged and
// leaves only built-in and downloaded fonts available.
func (c *Catalog) loadSystemFonts() {
	c.scanOnce.Do(func() {
		stdLogger := c.logger.StandardLogger(&hclog.StandardLoggerOptions{InferLevels: true})

		footprints, err := c.scan(stdLogger, c.cacheDir)
		if err != nil {
			c.logger.Warn("system font scan failed", "error", err)
			return
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		for _, fp := range footprints {
			c.registerLocked(fp.Family, fp.Location.File, int(fp.Location.Index), aspectDistance(fp.Aspect))
		}
		c.logger.Debug("system fonts scanned", "files", len(footprints), "families", len(c.byName))
	})
}

// aspectDistance scores how far an aspect is from upright regular; lower is better.
func aspectDistance(a font.Aspect) float64 {
	d := math.Abs(float64(a.Weight - font.WeightNormal))
	d += 100 * math.Abs(float64(a.Stretch-font.StretchNormal))
	if a.Style != font.StyleNormal {
		d += 1000
	}
	return d
}

// registerLocked records a font file under a family. When a family has
// several files the one closest to regular weight and upright style wins.
// c.mu must be held for writing.
func (c *Catalog) registerLocked(family, file string, index int, distance float64) {
	name := font.NormalizeFamily(family)
	if name == "" || file == "" {
		return
	}

	if _, seen := c.pathToName[file]; !seen {
		c.pathToName[file] = name
	}

	if prev, ok := c.byName[name]; ok {
		if prev.Builtin {
			return
		}
		if best, ok := c.weights[name]; ok && best <= distance {
			return
		}
	}
	c.byName[name] = Source{Name: name, Path: file, Index: index}
	c.weights[name] = distance
}

// Resolve maps a descriptor to a font source.
//
// Parameters:
//   - ctx: bounds the download when descriptor is a URL.
//   - descriptor: a URL, a file path, or a font family name.
//
// Returns ErrInvalidFontFace (wrapped) when nothing matches.
func (c *Catalog) Resolve(ctx context.Context, descriptor string) (Source, error) {
	if u, err := url.Parse(descriptor); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return c.ResolveByURL(ctx, descriptor)
	}
	if info, err := os.Stat(descriptor); err == nil && !info.IsDir() {
		return c.ResolveByPath(descriptor)
	}
	return c.ResolveByName(descriptor)
}

// ResolveByName looks a family name up in the catalog.
func (c *Catalog) ResolveByName(name string) (Source, error) {
	key := font.NormalizeFamily(name)

	c.mu.RLock()
	src, ok := c.byName[key]
	c.mu.RUnlock()
	if ok && src.Builtin {
		return src, nil
	}

	c.loadSystemFonts()

	c.mu.RLock()
	src, ok = c.byName[key]
	c.mu.RUnlock()
	if !ok {
		return Source{}, fmt.Errorf("%w: %s", ErrInvalidFontFace, name)
	}
	return src, nil
}

// ResolveByPath resolves an existing font file to its absolute, symlink-free path.
func (c *Catalog) ResolveByPath(p string) (Source, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return Source{}, fmt.Errorf("failed to resolve font path: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		return Source{}, fmt.Errorf("%w: %s", ErrInvalidFontFace, p)
	}

	if name, ok := c.NameForPath(abs); ok {
		return Source{Name: name, Path: abs}, nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read font file: %w", err)
	}
	family, err := describeFamily(data)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %v", ErrInvalidFontFace, p, err)
	}

	c.mu.Lock()
	c.registerLocked(family, abs, 0, math.Inf(1))
	name := c.pathToName[abs]
	c.mu.Unlock()

	return Source{Name: name, Path: abs}, nil
}

// ResolveByURL downloads a font and registers it under its family name.
// Repeated calls with the same URL reuse the earlier download.
func (c *Catalog) ResolveByURL(ctx context.Context, rawURL string) (Source, error) {
	c.mu.RLock()
	src, ok := c.byURL[rawURL]
	c.mu.RUnlock()
	if ok {
		return src, nil
	}

	dst, err := c.download(ctx, rawURL)
	if err != nil {
		return Source{}, err
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		return Source{}, fmt.Errorf("failed to read downloaded font: %w", err)
	}
	family, err := describeFamily(data)
	if err != nil {
		os.Remove(dst)
		return Source{}, fmt.Errorf("%w: %s: %v", ErrInvalidFontFace, rawURL, err)
	}

	c.mu.Lock()
	c.registerLocked(family, dst, 0, 0)
	src = Source{Name: c.pathToName[dst], Path: dst}
	c.byURL[rawURL] = src
	c.mu.Unlock()

	c.logger.Info("font downloaded", "url", rawURL, "path", dst, "family", src.Name)
	return src, nil
}

// download fetches rawURL into a new file in the download directory and
// returns its path. The file name ends with the URL's basename.
func (c *Catalog) download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid font URL: %w", err)
	}

	dir, err := c.ensureDownloadDir()
	if err != nil {
		return "", err
	}

	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		name = "font.ttf"
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download font: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download font: %s returned %s", rawURL, resp.Status)
	}

	// URLs sharing a basename each get their own file.
	f, err := os.CreateTemp(dir, "*-"+name)
	if err != nil {
		return "", fmt.Errorf("failed to create font file: %w", err)
	}
	dst := f.Name()
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write font file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write font file: %w", err)
	}

	return dst, nil
}

func (c *Catalog) ensureDownloadDir() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.downloadDir == "" {
		dir, err := os.MkdirTemp("", "image-label-fonts-")
		if err != nil {
			return "", fmt.Errorf("failed to create download directory: %w", err)
		}
		c.downloadDir = dir
		return dir, nil
	}
	if err := os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}
	return c.downloadDir, nil
}

// describeFamily reads the family name from font data.
func describeFamily(data []byte) (string, error) {
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		faces, errTTC := font.ParseTTC(bytes.NewReader(data))
		if errTTC != nil || len(faces) == 0 {
			return "", err
		}
		face = faces[0]
	}
	family := face.Describe().Family
	if family == "" {
		return "", fmt.Errorf("font has no family name")
	}
	return family, nil
}

// Open resolves descriptor and loads it at size pixels.
func (c *Catalog) Open(ctx context.Context, descriptor string, size float64) (*label.FontHandle, error) {
	src, err := c.Resolve(ctx, descriptor)
	if err != nil {
		return nil, err
	}
	return src.Open(size)
}

// Open loads the source at size pixels.
func (s Source) Open(size float64) (*label.FontHandle, error) {
	data := s.data
	if data == nil {
		var err error
		data, err = os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read font file: %w", err)
		}
	}
	return label.ParseFont(data, s.Index, size, s.Name)
}

// Names returns every registered family name, sorted. It triggers the system scan.
func (c *Catalog) Names() []string {
	c.loadSystemFonts()

	c.mu.RLock()
	names := make([]string, 0, len(c.byName))
	for name := range c.byName {
		names = append(names, name)
	}
	c.mu.RUnlock()

	sort.Strings(names)
	return names
}

// PathForName returns the font file registered for a family name.
// Built-in fonts have no path.
func (c *Catalog) PathForName(name string) (string, bool) {
	src, err := c.ResolveByName(name)
	if err != nil || src.Builtin {
		return "", false
	}
	return src.Path, true
}

// NameForPath returns the family name registered for a font file path.
func (c *Catalog) NameForPath(p string) (string, bool) {
	c.loadSystemFonts()

	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.pathToName[p]
	return name, ok
}

// DownloadDir returns the directory downloads are written to, or "" if none
// has been chosen yet.
func (c *Catalog) DownloadDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.downloadDir
}
