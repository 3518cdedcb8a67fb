package sharing

import (
	"errors"
	"fmt"
	"strings"
)

type TargetKind string

const (
	TargetFile   TargetKind = "file"
	TargetFolder TargetKind = "folder"
)

// TargetRef names exactly one file or folder. The zero value names nothing.
type TargetRef struct {
	kind TargetKind
	id   int64
}

func File(id int64) TargetRef {
	return TargetRef{kind: TargetFile, id: id}
}

func Folder(id int64) TargetRef {
	return TargetRef{kind: TargetFolder, id: id}
}

// ParseTarget builds a reference from a transport-level kind string.
func ParseTarget(kind string, id int64) (TargetRef, error) {
	if id <= 0 {
		return TargetRef{}, ErrInvalidTarget
	}
	switch TargetKind(strings.ToLower(strings.TrimSpace(kind))) {
	case TargetFile:
		return File(id), nil
	case TargetFolder:
		return Folder(id), nil
	default:
		return TargetRef{}, ErrInvalidTarget
	}
}

// TargetFromColumns rebuilds a reference from the file_id / folder_id storage columns.
func TargetFromColumns(fileID, folderID *int64) (TargetRef, error) {
	switch {
	case fileID != nil && folderID != nil:
		return TargetRef{}, errors.New("grant references both a file and a folder")
	case fileID != nil:
		return File(*fileID), nil
	case folderID != nil:
		return Folder(*folderID), nil
	default:
		return TargetRef{}, errors.New("grant references neither a file nor a folder")
	}
}

func (t TargetRef) Kind() TargetKind {
	return t.kind
}

func (t TargetRef) ID() int64 {
	return t.id
}

func (t TargetRef) IsZero() bool {
	return t.kind == "" || t.id <= 0
}

// Columns returns the storage columns for the reference; exactly one is non-nil.
func (t TargetRef) Columns() (fileID, folderID *int64) {
	id := t.id
	if t.kind == TargetFolder {
		return nil, &id
	}
	return &id, nil
}

func (t TargetRef) String() string {
	return fmt.Sprintf("%s:%d", t.kind, t.id)
}
