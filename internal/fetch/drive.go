package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/model"
	"github.com/signagekit/tv-player/internal/platform"
)

// Temp file suffix used during download
const tempSuffix = ".tmp"

// Copy buffer size for streaming downloads
const copyChunkSize = 64 * 1024

// DriveFetcher downloads Drive files into a single destination directory.
// Finals are named after the descriptor id so idempotence holds across
// remote renames; temporaries live next to them as <id><ext>.tmp.
type DriveFetcher struct {
	cfg    config.DriveConfig
	client *http.Client
	log    *logrus.Entry
}

// NewDriveFetcher creates a fetcher writing into cfg.DownloadDir.
func NewDriveFetcher(cfg config.DriveConfig, log *logrus.Logger) *DriveFetcher {
	return &DriveFetcher{
		cfg: cfg,
		// Downloads are long; rely on request context rather than a client
		// deadline to bound them.
		client: &http.Client{},
		log:    log.WithField("component", "fetch"),
	}
}

// AssetPath returns the final on-disk path for a descriptor.
func (f *DriveFetcher) AssetPath(desc *model.ContentDescriptor) string {
	return filepath.Join(f.cfg.DownloadDir, desc.ID+desc.Ext())
}

// Fetch implements Fetcher.
func (f *DriveFetcher) Fetch(ctx context.Context, desc *model.ContentDescriptor) (*model.LocalAsset, error) {
	finalPath := f.AssetPath(desc)

	// Idempotence: a file at the final path only ever appears via the atomic
	// rename below, so its presence means the download completed.
	if info, err := os.Stat(finalPath); err == nil {
		f.log.WithFields(logrus.Fields{
			"video": desc.DisplayName,
			"path":  finalPath,
		}).Info("Asset already downloaded")
		return &model.LocalAsset{
			DescriptorID:     desc.ID,
			Path:             finalPath,
			Size:             info.Size(),
			VerifiedComplete: true,
		}, nil
	}

	if err := platform.EnsureDir(f.cfg.DownloadDir); err != nil {
		return nil, &model.FetchError{Kind: model.FetchStorage, Err: err}
	}

	asset, err := f.download(ctx, desc, finalPath)
	if err != nil {
		return nil, err
	}

	f.log.WithFields(logrus.Fields{
		"video": desc.DisplayName,
		"path":  asset.Path,
		"bytes": asset.Size,
	}).Info("Download complete")
	return asset, nil
}

// download streams the file to a temporary path and renames it into place
// once the byte count checks out. The temporary is removed on every failure
// path, including context cancellation mid-transfer.
func (f *DriveFetcher) download(ctx context.Context, desc *model.ContentDescriptor, finalPath string) (*model.LocalAsset, error) {
	endpoint := fmt.Sprintf("%s/files/%s?alt=media&key=%s", f.cfg.BaseURL, desc.ID, f.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchNetwork, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchNetwork, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &model.FetchError{
			Kind: model.FetchNetwork,
			Err:  fmt.Errorf("download request failed: HTTP %d", resp.StatusCode),
		}
	}

	tempPath := finalPath + tempSuffix
	tmp, err := os.Create(tempPath)
	if err != nil {
		return nil, &model.FetchError{Kind: model.FetchStorage, Err: err}
	}

	start := time.Now()
	written, copyErr := io.CopyBuffer(tmp, resp.Body, make([]byte, copyChunkSize))
	closeErr := tmp.Close()

	fail := func(kind model.FetchErrorKind, err error) (*model.LocalAsset, error) {
		os.Remove(tempPath)
		return nil, &model.FetchError{Kind: kind, Err: err}
	}

	if copyErr != nil {
		return fail(model.FetchNetwork, copyErr)
	}
	if closeErr != nil {
		return fail(model.FetchStorage, closeErr)
	}

	// The declared length is the completeness check; with no declared length
	// a cleanly closed stream is taken as complete.
	if resp.ContentLength > 0 && written != resp.ContentLength {
		return fail(model.FetchSizeMismatch,
			fmt.Errorf("received %d of %d declared bytes", written, resp.ContentLength))
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		return fail(model.FetchStorage, err)
	}

	elapsed := time.Since(start).Seconds()
	if elapsed > 0 {
		f.log.Debugf("Transferred %d bytes at %.2f MB/s", written, float64(written)/elapsed/1024/1024)
	}

	return &model.LocalAsset{
		DescriptorID:     desc.ID,
		Path:             finalPath,
		Size:             written,
		VerifiedComplete: true,
	}, nil
}
