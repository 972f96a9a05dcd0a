package render

import (
	"os"
	"path/filepath"

	"github.com/nabeel-w/ButterCut-Assignment/internal/pkg/errors"
)

// AssetResolver maps an overlay's content reference to a concrete file on
// disk. Resolution is a fresh filesystem check per render; assets may change
// between renders of different jobs, so nothing is cached.
type AssetResolver struct {
	assetsRoot string
}

func NewAssetResolver(assetsRoot string) *AssetResolver {
	return &AssetResolver{assetsRoot: assetsRoot}
}

// Resolve returns the path for reference. An absolute path that exists wins;
// otherwise the reference is joined under the assets root. Failure carries
// every path that was tried.
func (r *AssetResolver) Resolve(reference string) (string, error) {
	tried := make([]string, 0, 2)

	if filepath.IsAbs(reference) {
		if _, err := os.Stat(reference); err == nil {
			return reference, nil
		}
		tried = append(tried, reference)
	}

	candidate := filepath.Join(r.assetsRoot, reference)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	tried = append(tried, candidate)

	return "", errors.AssetNotFound(reference, tried)
}
