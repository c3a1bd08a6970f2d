package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/tnqbao/gau-box-service/infra"
)

// DatabaseIDCommentPrefix marks the sentinel comment on the parent page that
// records which database holds box records.
const DatabaseIDCommentPrefix = "MOVING_BOXES_DATABASE_ID:"

// CommentStore is the slice of the record store the locator needs.
type CommentStore interface {
	ListComments(ctx context.Context, blockID string) ([]infra.Comment, error)
	CreateComment(ctx context.Context, pageID, content string) error
}

// DatabaseLocator resolves the boxes database id from a sentinel comment on
// a fixed parent page. The comment acts as a lightweight key-value cell:
// first writer wins, later registrations are no-ops.
type DatabaseLocator struct {
	comments     CommentStore
	parentPageID string
}

func NewDatabaseLocator(comments CommentStore, parentPageID string) *DatabaseLocator {
	return &DatabaseLocator{
		comments:     comments,
		parentPageID: parentPageID,
	}
}

func (l *DatabaseLocator) findMarker(comments []infra.Comment) (string, bool) {
	for _, comment := range comments {
		if len(comment.RichText) == 0 {
			continue
		}
		text := comment.RichText[0].PlainText
		if strings.HasPrefix(text, DatabaseIDCommentPrefix) {
			return text, true
		}
	}
	return "", false
}

// Locate returns the registered database id, or empty string when no marker
// exists yet.
func (l *DatabaseLocator) Locate(ctx context.Context) (string, error) {
	if l.parentPageID == "" {
		return "", fmt.Errorf("NOTION_PARENT_PAGE_ID is not set")
	}

	comments, err := l.comments.ListComments(ctx, l.parentPageID)
	if err != nil {
		return "", fmt.Errorf("failed to get database ID: %w", err)
	}

	marker, ok := l.findMarker(comments)
	if !ok {
		return "", nil
	}
	return strings.TrimSpace(strings.TrimPrefix(marker, DatabaseIDCommentPrefix)), nil
}

// Register records the database id on the parent page. If a marker already
// exists the call is a silent no-op, even when databaseID differs from the
// registered one.
func (l *DatabaseLocator) Register(ctx context.Context, databaseID string) error {
	if l.parentPageID == "" {
		return fmt.Errorf("NOTION_PARENT_PAGE_ID is not set")
	}

	comments, err := l.comments.ListComments(ctx, l.parentPageID)
	if err != nil {
		return fmt.Errorf("failed to set database ID: %w", err)
	}

	if _, ok := l.findMarker(comments); ok {
		return nil
	}

	if err := l.comments.CreateComment(ctx, l.parentPageID, DatabaseIDCommentPrefix+databaseID); err != nil {
		return fmt.Errorf("failed to set database ID: %w", err)
	}
	return nil
}
