// Package assets resolves logical asset names to content-hashed filenames
// using the build pipeline's manifest.json.
package assets

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"sync"
)

// AssetResolver resolves logical asset names to hashed filenames using manifest.json.
// A zero-value resolver resolves every name to itself, which is what dev
// builds without a manifest want.
type AssetResolver struct {
	mu           sync.RWMutex
	manifest     map[string]string
	manifestPath string
	fsys         fs.FS
	logger       *slog.Logger
}

// NewAssetResolverFromDisk creates an asset resolver that reads the manifest from the local filesystem.
func NewAssetResolverFromDisk(manifestPath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		manifest:     make(map[string]string),
		manifestPath: manifestPath,
		logger:       slog.Default(),
	}
	return resolver, resolver.Reload()
}

// NewAssetResolverFromFS creates an asset resolver that reads the manifest from an fs.FS implementation.
func NewAssetResolverFromFS(fsys fs.FS, manifestPath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		manifest:     make(map[string]string),
		manifestPath: manifestPath,
		fsys:         fsys,
		logger:       slog.Default(),
	}
	return resolver, resolver.Reload()
}

// Reload re-reads the manifest. A missing manifest file empties the mapping
// rather than failing, so logical names pass through untouched.
func (ar *AssetResolver) Reload() error {
	data, err := ar.readManifest()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			ar.mu.Lock()
			ar.manifest = make(map[string]string)
			ar.mu.Unlock()
			return nil
		}
		return err
	}

	var manifest map[string]string
	if err := json.Unmarshal(data, &manifest); err != nil {
		ar.loggerOrDefault().Error("failed to parse asset manifest",
			slog.String("manifest", ar.manifestPath),
			slog.Any("error", err),
		)
		manifest = make(map[string]string)
	}

	ar.mu.Lock()
	ar.manifest = manifest
	ar.mu.Unlock()
	return nil
}

func (ar *AssetResolver) readManifest() ([]byte, error) {
	if ar.fsys != nil {
		return fs.ReadFile(ar.fsys, ar.manifestPath)
	}
	if ar.manifestPath == "" {
		return nil, fs.ErrNotExist
	}
	return os.ReadFile(ar.manifestPath)
}

// Resolve returns the static URL for a logical asset name, substituting the
// hashed filename when the manifest knows one.
func (ar *AssetResolver) Resolve(logicalName string) string {
	if ar == nil {
		return "/static/" + logicalName
	}

	ar.mu.RLock()
	defer ar.mu.RUnlock()

	if hashedName, exists := ar.manifest[logicalName]; exists {
		return "/static/" + hashedName
	}

	// Fallback to logical name if not in manifest (dev mode)
	return "/static/" + logicalName
}

// SetLogger updates the resolver's logger. If logger is nil, slog.Default() is used.
func (ar *AssetResolver) SetLogger(logger *slog.Logger) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	if logger == nil {
		ar.logger = slog.Default()
		return
	}
	ar.logger = logger
}

func (ar *AssetResolver) loggerOrDefault() *slog.Logger {
	if ar != nil && ar.logger != nil {
		return ar.logger
	}
	return slog.Default()
}
