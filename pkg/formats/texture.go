package formats

import (
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"math/bits"
	"os"
	"path/filepath"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/drydock/pkg/encoding"
	"github.com/Faultbox/drydock/pkg/issues"
	"github.com/Faultbox/drydock/pkg/mesh"
)

// Texture issue keys.
const (
	KeyTextureMissing    = "texture.missing"
	KeyTextureUnreadable = "texture.unreadable"
	KeyTextureSize       = "texture.notPowerOfTwo"
)

// TextureInfo describes a texture file referenced by a material.
type TextureInfo struct {
	Material string
	Path     string
	Format   string
	Width    int
	Height   int
}

// TextureLocator maps a texture reference, a slash-separated path relative
// to some texture root, to a file. Missing files are reported with an error
// wrapping fs.ErrNotExist.
type TextureLocator interface {
	Locate(ref string) (string, error)
}

// DirLocator resolves references against a single directory.
type DirLocator string

// Locate joins ref to the directory. Absolute references are used as is.
func (d DirLocator) Locate(ref string) (string, error) {
	path := filepath.FromSlash(ref)
	if !filepath.IsAbs(path) {
		path = filepath.Join(string(d), path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// CheckTextures looks up the diffuse map of every material of m relative to
// baseDir and reports textures that are missing, unreadable or not a power
// of two in size. It returns the textures that could be read.
func CheckTextures(m *mesh.Mesh, baseDir string, sink issues.Sink) []TextureInfo {
	return CheckTexturesWith(m, DirLocator(baseDir), sink)
}

// CheckTexturesWith is CheckTextures with a custom lookup.
func CheckTexturesWith(m *mesh.Mesh, loc TextureLocator, sink issues.Sink) []TextureInfo {
	var found []TextureInfo
	seen := make(map[string]bool)
	for _, mat := range m.Materials() {
		ref := mat.DiffuseMap
		if ref == "" {
			ref = mat.Name
		}
		ref = encoding.NormalizePath(ref)
		if ref == "" || seen[ref] {
			continue
		}
		seen[ref] = true

		var tex TextureInfo
		path, err := loc.Locate(ref)
		if err == nil {
			tex, err = readTextureInfo(path)
		}
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				issues.Warnf(sink, KeyTextureMissing, "Texture %s of material %q was not found.", ref, mat.Name)
			} else {
				issues.Warnf(sink, KeyTextureUnreadable, "Texture %s of material %q could not be read: %v.", ref, mat.Name, err)
			}
			continue
		}
		tex.Material = mat.Name
		if !isPowerOfTwo(tex.Width) || !isPowerOfTwo(tex.Height) {
			issues.Warnf(sink, KeyTextureSize, "Texture %s is %dx%d; Oolite expects power-of-two sizes.", ref, tex.Width, tex.Height)
		}
		found = append(found, tex)
	}
	return found
}

func readTextureInfo(path string) (TextureInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return TextureInfo{}, err
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return TextureInfo{}, err
	}
	return TextureInfo{Path: path, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && bits.OnesCount(uint(n)) == 1
}
