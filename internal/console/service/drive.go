package service

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// GoogleDriveChecker verifies Drive link access using an API key, which can
// only read files shared as "anyone with the link". That is exactly the
// sharing level the ingestion pipeline needs, so a failed read doubles as a
// sharing check.
type GoogleDriveChecker struct {
	svc *drive.Service
}

func NewGoogleDriveChecker(ctx context.Context, apiKey string) (*GoogleDriveChecker, error) {
	svc, err := drive.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("drive service init: %w", err)
	}
	return &GoogleDriveChecker{svc: svc}, nil
}

func (c *GoogleDriveChecker) CheckAccess(ctx context.Context, fileID string) error {
	_, err := c.svc.Files.Get(fileID).
		SupportsAllDrives(true).
		Fields("id", "mimeType").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("drive file %s not readable: %w", fileID, err)
	}
	return nil
}
