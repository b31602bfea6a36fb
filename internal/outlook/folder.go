package outlook

import (
	"context"
	"net/http"
	"net/url"
)

// WellKnownFolder is one of the fixed set of canonical mailbox folders
// addressable by name instead of id.
type WellKnownFolder string

const (
	Inbox        WellKnownFolder = "Inbox"
	Drafts       WellKnownFolder = "Drafts"
	SentItems    WellKnownFolder = "SentItems"
	DeletedItems WellKnownFolder = "DeletedItems"
)

var wellKnownSegments = map[WellKnownFolder]string{
	Inbox:        "inbox",
	Drafts:       "drafts",
	SentItems:    "sentitems",
	DeletedItems: "deleteditems",
}

// FolderRef identifies a remote folder. The three implementations are
// FolderID (an opaque remote id), WellKnownFolder (a canonical name)
// and Folder (an entity previously fetched from the store); all resolve
// to the same remote resource.
type FolderRef interface {
	folderSegment() string
}

// FolderID is an opaque remote folder id used as a FolderRef.
type FolderID string

func (id FolderID) folderSegment() string { return string(id) }

func (w WellKnownFolder) folderSegment() string { return ResolveFolderName(string(w)) }

func (f Folder) folderSegment() string { return f.ID }

// ResolveFolderName maps a well-known folder name to its API path
// segment. Any other string is treated as an opaque remote id and
// returned unchanged, which makes resolution idempotent: resolving an
// already-resolved segment is a no-op. No network access is performed
// and unknown names are not validated client-side.
func ResolveFolderName(name string) string {
	if segment, ok := wellKnownSegments[WellKnownFolder(name)]; ok {
		return segment
	}
	return name
}

// ParseFolderRef interprets a caller-supplied string as a FolderRef:
// the four canonical folder names become WellKnownFolder references,
// anything else is an opaque FolderID.
func ParseFolderRef(s string) FolderRef {
	if _, ok := wellKnownSegments[WellKnownFolder(s)]; ok {
		return WellKnownFolder(s)
	}
	return FolderID(s)
}

// FolderService provides access to the account's mail folders. All
// methods return fresh snapshots; no Folder value is ever mutated in
// place.
type FolderService struct {
	account *Account
}

// All returns the account's top-level folders. Deeper levels are
// reached with Subfolders per folder.
func (s *FolderService) All(ctx context.Context) ([]Folder, error) {
	var list folderListResource
	if err := s.account.do(ctx, "folders.all", http.MethodGet, "/me/mailFolders", nil, &list); err != nil {
		return nil, err
	}
	return toFolders(list.Value), nil
}

// Get returns the folder identified by ref.
func (s *FolderService) Get(ctx context.Context, ref FolderRef) (*Folder, error) {
	var r folderResource
	path := "/me/mailFolders/" + url.PathEscape(ref.folderSegment())
	if err := s.account.do(ctx, "folders.get", http.MethodGet, path, nil, &r); err != nil {
		return nil, err
	}
	folder := toFolder(r)
	return &folder, nil
}

// Create creates a folder named name under parent. A nil parent creates
// the folder at the top level of the mailbox.
func (s *FolderService) Create(ctx context.Context, parent FolderRef, name string) (*Folder, error) {
	if name == "" {
		return nil, validationError("folders.create", "folder name must not be empty")
	}

	path := "/me/mailFolders"
	if parent != nil {
		path = "/me/mailFolders/" + url.PathEscape(parent.folderSegment()) + "/childFolders"
	}

	payload := struct {
		DisplayName string `json:"displayName"`
	}{DisplayName: name}

	var r folderResource
	if err := s.account.do(ctx, "folders.create", http.MethodPost, path, payload, &r); err != nil {
		return nil, err
	}
	folder := toFolder(r)
	return &folder, nil
}

// Rename changes the folder's display name and returns the updated
// snapshot.
func (s *FolderService) Rename(ctx context.Context, ref FolderRef, newName string) (*Folder, error) {
	if newName == "" {
		return nil, validationError("folders.rename", "folder name must not be empty")
	}

	payload := struct {
		DisplayName string `json:"displayName"`
	}{DisplayName: newName}

	var r folderResource
	path := "/me/mailFolders/" + url.PathEscape(ref.folderSegment())
	if err := s.account.do(ctx, "folders.rename", http.MethodPatch, path, payload, &r); err != nil {
		return nil, err
	}
	folder := toFolder(r)
	return &folder, nil
}

// MoveInto moves the folder into destination and returns the moved
// folder's new snapshot.
func (s *FolderService) MoveInto(ctx context.Context, ref, destination FolderRef) (*Folder, error) {
	return s.relocate(ctx, "folders.move", ref, destination, "/move")
}

// CopyInto copies the folder (and its contents) into destination and
// returns the new copy.
func (s *FolderService) CopyInto(ctx context.Context, ref, destination FolderRef) (*Folder, error) {
	return s.relocate(ctx, "folders.copy", ref, destination, "/copy")
}

func (s *FolderService) relocate(ctx context.Context, op string, ref, destination FolderRef, action string) (*Folder, error) {
	payload := struct {
		DestinationID string `json:"destinationId"`
	}{DestinationID: destination.folderSegment()}

	var r folderResource
	path := "/me/mailFolders/" + url.PathEscape(ref.folderSegment()) + action
	if err := s.account.do(ctx, op, http.MethodPost, path, payload, &r); err != nil {
		return nil, err
	}
	folder := toFolder(r)
	return &folder, nil
}

// Delete removes the folder from the remote store. Deleting an
// already-deleted folder surfaces ErrNotFound; callers treating the
// delete as idempotent can match it with errors.Is.
func (s *FolderService) Delete(ctx context.Context, ref FolderRef) error {
	path := "/me/mailFolders/" + url.PathEscape(ref.folderSegment())
	return s.account.do(ctx, "folders.delete", http.MethodDelete, path, nil, nil)
}

// Subfolders returns the folder's direct children.
func (s *FolderService) Subfolders(ctx context.Context, ref FolderRef) ([]Folder, error) {
	var list folderListResource
	path := "/me/mailFolders/" + url.PathEscape(ref.folderSegment()) + "/childFolders"
	if err := s.account.do(ctx, "folders.subfolders", http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	return toFolders(list.Value), nil
}
