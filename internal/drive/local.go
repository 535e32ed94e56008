// Package drive lists folders of a file tree for the drive browser game.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"

	"github.com/rocketscienceinc/chatgames-backend/internal/apperror"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

// Local - drive backed by a file system. Folder ids are slash separated paths relative to its root.
type Local struct {
	fsys    fs.FS
	baseURL string
}

// NewLocal - links of listed files are baseURL joined with the file id.
func NewLocal(fsys fs.FS, baseURL string) *Local {
	return &Local{
		fsys:    fsys,
		baseURL: baseURL,
	}
}

func (that *Local) List(ctx context.Context, folderID string) ([]entity.DriveItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to list folder: %w", err)
	}

	name := folderID
	if name == "" {
		name = "."
	}

	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrFolderNotFound, folderID)
	}

	entries, err := fs.ReadDir(that.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", apperror.ErrFolderNotFound, folderID)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperror.ErrDriveUnavailable, err)
	}

	items := make([]entity.DriveItem, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		id := path.Join(folderID, entry.Name())
		item := entity.DriveItem{
			ID:     id,
			Title:  entry.Name(),
			Folder: entry.IsDir(),
		}

		if !entry.IsDir() {
			info, err := entry.Info()
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", id, err)
			}
			item.Size = info.Size()
			item.Link = that.link(id)
		}

		items = append(items, item)
	}

	return items, nil
}

func (that *Local) link(id string) string {
	if that.baseURL == "" {
		return id
	}

	link, err := url.JoinPath(that.baseURL, strings.Split(id, "/")...)
	if err != nil {
		return id
	}

	return link
}
