package maptile

import (
	"fmt"

	"github.com/Faultbox/adtconv/pkg/pathname"
)

// StripNames returns the file names of paths, keeping order and duplicates
// so that source indices stay valid.
func StripNames(paths []string) []string {
	return pathname.StripAll(paths)
}

// LayerTexture resolves a layer's texture index against the stripped texture
// list and returns the normalized path under dir.
func LayerTexture(textures []string, id uint32, dir string) (string, error) {
	if int(id) >= len(textures) {
		return "", fmt.Errorf("%w: %d of %d", ErrTextureIndex, id, len(textures))
	}
	return dir + pathname.Normalize(textures[id]), nil
}

// ModelPath resolves a doodad's model index against the stripped model list,
// rewrites its 3-character extension to ext and returns the path under dir.
func ModelPath(models []string, id uint32, dir, ext string) (string, error) {
	if int(id) >= len(models) {
		return "", fmt.Errorf("%w: %d of %d", ErrModelIndex, id, len(models))
	}
	name, err := ReplaceSuffix(pathname.Normalize(pathname.FileName(models[id])), 3, ext)
	if err != nil {
		return "", err
	}
	return dir + name, nil
}

// ReplaceSuffix replaces the last n characters of s with suffix.
func ReplaceSuffix(s string, n int, suffix string) (string, error) {
	r := []rune(s)
	if len(r) < n {
		return "", fmt.Errorf("%w: %q", ErrShortModelName, s)
	}
	return string(r[:len(r)-n]) + suffix, nil
}
