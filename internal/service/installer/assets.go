package installer

import (
	"context"
	"fmt"
	"os"

	"github.com/oshokin/craftstage/internal/domain/release"
	"github.com/oshokin/craftstage/internal/download"
	"github.com/oshokin/craftstage/internal/logger"
)

// installAssets stores the asset index and every object it references.
// Objects are keyed by hash only, so names sharing a hash share one file.
func (in *Installer) installAssets(ctx context.Context, d *release.Descriptor) error {
	indexPath, err := in.layout.AssetIndexPath(d.Assets)
	if err != nil {
		return fmt.Errorf("asset index: %w", err)
	}

	_, err = in.downloads.FetchIfAbsent(ctx, d.AssetIndex.URL, indexPath,
		download.WithSHA1(d.AssetIndex.SHA1),
		download.WithKind(kindAssetIndex))
	if err != nil {
		return fmt.Errorf("asset index: %w", err)
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return fmt.Errorf("read asset index: %w", err)
	}

	index, err := release.DecodeAssetIndex(data)
	if err != nil {
		return err
	}

	var (
		seen = make(map[string]struct{}, len(index.Objects))
		p    = in.newPool(ctx)
	)

	for name, object := range index.Objects {
		if _, dup := seen[object.Hash]; dup {
			continue
		}

		seen[object.Hash] = struct{}{}

		p.Go(func(ctx context.Context) error {
			key := release.ObjectKey(object.Hash)

			_, err := in.downloads.FetchIfAbsent(ctx, joinURL(in.settings.AssetsURL, key), in.layout.AssetObjectPath(object.Hash),
				download.WithSHA1(object.Hash),
				download.WithKind(kindAsset))
			if err != nil {
				return fmt.Errorf("asset %s: %w", name, err)
			}

			return nil
		})
	}

	if err = p.Wait(); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Assets installed", "names", len(index.Objects), "objects", len(seen))

	return nil
}
