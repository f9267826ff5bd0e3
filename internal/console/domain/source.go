package domain

import (
	"errors"
	"regexp"
	"time"
)

// Content source kinds.
const (
	SourceKindWebsite = "website"
	SourceKindDrive   = "drive"
)

var (
	ErrInvalidDriveLink = errors.New("domain: invalid Google Drive link format")

	driveFileID = regexp.MustCompile(`[-\w]{25,}`)
)

// ContentSource is a per-client ingestion source: a website URL or a
// Google Drive link, re-crawled every RefreshRate days.
type ContentSource struct {
	ID          string
	ClientID    string
	Kind        string
	URL         string
	RefreshRate int // days between re-crawls; 0 means crawl once
	CreatedAt   time.Time
}

// DriveFileID extracts the file id from a Google Drive share link.
func DriveFileID(link string) (string, error) {
	id := driveFileID.FindString(link)
	if id == "" {
		return "", ErrInvalidDriveLink
	}
	return id, nil
}
