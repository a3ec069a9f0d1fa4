package service

import (
	"context"

	"github.com/joescharf/simplejira/internal/tracker"
	"github.com/joescharf/simplejira/internal/validate"
)

const msgTargetNotFound = "Target issue not found."

// Link relates two issues in both directions. Linking a pair that is already
// related, in either order, succeeds without writing anything.
func (s *Service) Link(ctx context.Context, sourceID, targetID string) error {
	if sourceID == targetID {
		return tracker.Validation(validate.MsgSelfLink)
	}
	if err := s.requireIssue(ctx, sourceID, msgIssueNotFound); err != nil {
		return err
	}
	if err := s.requireIssue(ctx, targetID, msgTargetNotFound); err != nil {
		return err
	}
	_, err := s.store.LinkIssues(ctx, sourceID, targetID)
	return err
}
