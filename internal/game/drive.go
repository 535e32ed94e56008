package game

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rocketscienceinc/chatgames-backend/internal/entity"
)

// HomeFolder - id of the top folder of a drive.
const HomeFolder = ""

const (
	cmdHome = "/home"
	cmdHelp = "/help"
)

const msgDriveHelp = "Send the number of an item to open it. /home goes back to the top folder, /help shows this message."

type Drive interface {
	List(ctx context.Context, folderID string) ([]entity.DriveItem, error)
}

// DriveBrowser - numbered folder navigation over a Drive. Unrecognized input is ignored.
type DriveBrowser struct {
	drive Drive

	state    State
	folderID string
	items    []entity.DriveItem
}

type driveSnapshot struct {
	State    State              `json:"state"`
	FolderID string             `json:"folder_id"`
	Items    []entity.DriveItem `json:"items"`
}

func NewDriveBrowser(drive Drive) *DriveBrowser {
	return &DriveBrowser{
		drive: drive,
		state: StateDormant,
	}
}

func (that *DriveBrowser) Kind() string {
	return KindDrive
}

func (that *DriveBrowser) State() State {
	return that.state
}

func (that *DriveBrowser) Start(ctx context.Context) entity.Result {
	that.state = StateBrowsing
	that.folderID = HomeFolder
	that.items = nil

	result := entity.NewResult(entity.NewText("The drive browser is open! " + msgDriveHelp))
	result.Merge(that.open(ctx, HomeFolder))

	return result
}

func (that *DriveBrowser) End() entity.Result {
	that.state = StateDormant

	result := entity.NewResult(entity.NewText("The drive browser is closed."))
	result.EndGame = true

	return result
}

func (that *DriveBrowser) HandleRestartChoice(ctx context.Context, text string) entity.Result {
	return restartChoice(ctx, text, that.Start, that.End)
}

func (that *DriveBrowser) ParseAndReply(ctx context.Context, in entity.Input) entity.Result {
	if that.state != StateBrowsing {
		return entity.Result{}
	}

	text := strings.TrimSpace(in.Text)

	switch strings.ToLower(text) {
	case cmdHome:
		return that.open(ctx, HomeFolder)
	case cmdHelp:
		return entity.NewResult(entity.NewText(msgDriveHelp))
	}

	number, err := strconv.Atoi(text)
	if err != nil || number < 1 || number > len(that.items) {
		return entity.Result{}
	}

	item := that.items[number-1]
	if item.Folder {
		return that.open(ctx, item.ID)
	}

	return entity.NewResult(entity.NewText(fmt.Sprintf("%s\n%s\nSize: %s", item.Title, item.Link, humanize.Bytes(uint64(max(item.Size, 0))))))
}

func (that *DriveBrowser) open(ctx context.Context, folderID string) entity.Result {
	items, err := that.drive.List(ctx, folderID)
	if err != nil {
		return entity.NewResult(entity.NewText("Unable to open the folder right now, please try again later."))
	}

	// folders first, then files, each by title
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Folder != items[j].Folder {
			return items[i].Folder
		}
		return strings.ToLower(items[i].Title) < strings.ToLower(items[j].Title)
	})

	that.folderID = folderID
	that.items = items

	return entity.NewResult(entity.NewText(that.listing()))
}

func (that *DriveBrowser) listing() string {
	if len(that.items) == 0 {
		return "This folder is empty. Send /home to go back."
	}

	var folders, files strings.Builder
	for i, item := range that.items {
		line := fmt.Sprintf("\n%d. %s", i+1, item.Title)
		if item.Folder {
			folders.WriteString(line)
		} else {
			files.WriteString(line)
		}
	}

	var sb strings.Builder
	if folders.Len() > 0 {
		sb.WriteString("Folders:")
		sb.WriteString(folders.String())
	}
	if files.Len() > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString("Files:")
		sb.WriteString(files.String())
	}

	return sb.String()
}

func (that *DriveBrowser) MarshalJSON() ([]byte, error) {
	return marshalSnapshot(KindDrive, driveSnapshot{
		State:    that.state,
		FolderID: that.folderID,
		Items:    that.items,
	})
}

func (that *DriveBrowser) UnmarshalJSON(data []byte) error {
	var snapshot driveSnapshot
	if err := unmarshalSnapshot(KindDrive, data, &snapshot); err != nil {
		return err
	}

	that.state = snapshot.State
	that.folderID = snapshot.FolderID
	that.items = snapshot.Items

	return nil
}
