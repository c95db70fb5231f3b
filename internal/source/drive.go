package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/signagekit/tv-player/internal/config"
	"github.com/signagekit/tv-player/internal/identity"
	"github.com/signagekit/tv-player/internal/model"
	"github.com/signagekit/tv-player/internal/platform"
)

// Request timeout for listing calls
const driveListTimeout = 15 * time.Second

// DriveSource resolves content from a Google Drive folder tree laid out as
// one subfolder per screen, named after the screen's external IP. The newest
// video inside the matching subfolder is the assigned content.
type DriveSource struct {
	cfg    config.DriveConfig
	client *http.Client
	log    *logrus.Entry
}

// NewDriveSource creates a Drive-backed content source.
func NewDriveSource(cfg config.DriveConfig, log *logrus.Logger) *DriveSource {
	return &DriveSource{
		cfg:    cfg,
		client: &http.Client{Timeout: driveListTimeout},
		log:    log.WithField("component", "source"),
	}
}

type driveFile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	MimeType    string    `json:"mimeType"`
	CreatedTime time.Time `json:"createdTime"`
	Size        string    `json:"size"`
}

func (f driveFile) isVideo() bool {
	return strings.HasPrefix(f.MimeType, "video/") || platform.IsVideoFile(f.Name)
}

type driveFileList struct {
	Files []driveFile `json:"files"`
}

// ResolveLatest implements Source.
func (s *DriveSource) ResolveLatest(ctx context.Context, id identity.Identity) (*model.ContentDescriptor, error) {
	folder, err := s.findIdentityFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	videos, err := s.listVideos(ctx, folder.ID)
	if err != nil {
		return nil, err
	}
	if len(videos) == 0 {
		// Affirmative empty result: the folder exists but holds no video.
		s.log.WithField("folder", folder.Name).Debug("Assigned folder is empty")
		return nil, nil
	}

	latest := videos[0]
	size, _ := strconv.ParseInt(latest.Size, 10, 64)
	return &model.ContentDescriptor{
		ID:          latest.ID,
		DisplayName: latest.Name,
		CreatedAt:   latest.CreatedTime,
		Size:        size,
	}, nil
}

// findIdentityFolder lists the subfolders of the main folder and matches one
// against the node's external IP, exactly or by containment.
func (s *DriveSource) findIdentityFolder(ctx context.Context, id identity.Identity) (*driveFile, error) {
	query := fmt.Sprintf(
		"'%s' in parents and mimeType='application/vnd.google-apps.folder' and trashed=false",
		s.cfg.MainFolderID,
	)

	folders, err := s.listFiles(ctx, query, "", "files(id, name)")
	if err != nil {
		return nil, err
	}

	ip := id.ExternalIP
	for i := range folders {
		name := strings.TrimSpace(folders[i].Name)
		if name == ip || strings.Contains(name, ip) || (name != "" && strings.Contains(ip, name)) {
			return &folders[i], nil
		}
	}

	return nil, &model.ResolutionError{
		Transient: false,
		Err:       fmt.Errorf("no content folder assigned to identity %s", ip),
	}
}

// listVideos returns the video files of a folder, newest first. The server
// query casts a wide net; isVideo filters out anything else that slipped in,
// like thumbnails dropped next to the uploads.
func (s *DriveSource) listVideos(ctx context.Context, folderID string) ([]driveFile, error) {
	query := fmt.Sprintf(
		"'%s' in parents and trashed=false and (mimeType contains 'video/'"+
			" or name contains '.mp4' or name contains '.avi' or name contains '.mkv')",
		folderID,
	)
	files, err := s.listFiles(ctx, query, "createdTime desc", "files(id, name, mimeType, createdTime, size)")
	if err != nil {
		return nil, err
	}

	videos := files[:0]
	for _, f := range files {
		if f.isVideo() {
			videos = append(videos, f)
		}
	}
	return videos, nil
}

// listFiles performs one Drive files.list call.
func (s *DriveSource) listFiles(ctx context.Context, query, orderBy, fields string) ([]driveFile, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", fields)
	params.Set("key", s.cfg.APIKey)
	if orderBy != "" {
		params.Set("orderBy", orderBy)
	}

	endpoint := s.cfg.BaseURL + "/files?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &model.ResolutionError{Transient: false, Err: err}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &model.ResolutionError{Transient: true, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyListStatus(resp.StatusCode)
	}

	var list driveFileList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, &model.ResolutionError{Transient: true, Err: fmt.Errorf("malformed list response: %w", err)}
	}

	return list.Files, nil
}

// classifyListStatus maps an HTTP status to the resolution error taxonomy.
// Rate limits and server errors are expected to clear on their own; auth and
// configuration errors are not.
func classifyListStatus(status int) *model.ResolutionError {
	transient := status == http.StatusTooManyRequests || status >= 500
	return &model.ResolutionError{
		Transient: transient,
		Err:       fmt.Errorf("drive list request failed: HTTP %d", status),
	}
}
