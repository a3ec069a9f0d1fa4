package validate

import (
	"strings"
	"unicode/utf8"

	"github.com/joescharf/simplejira/internal/models"
	"github.com/joescharf/simplejira/internal/tracker"
)

// Field limits, counted in runes.
const (
	MaxProjectName = 200
	MaxProjectType = 100
	MaxAvatar      = 500
	MinKeyLength   = 2
	MaxTitle       = 200
	MaxSummary     = 4000
	MaxComment     = 4000
)

// Rule messages.
const (
	MsgProjectNameRequired = "Project name is required."
	MsgProjectNameTooLong  = "Project name too long (max 200)."
	MsgProjectKeyLength    = "Project key must be 2-10 characters."
	MsgProjectKeyExists    = "Project key already exists."
	MsgProjectTypeTooLong  = "Project type too long (max 100)."
	MsgAvatarTooLong       = "Avatar URL too long (max 500)."
	MsgTitleRequired       = "Title is required."
	MsgTitleTooLong        = "Title too long (max 200)."
	MsgSummaryTooLong      = "Summary too long (max 4000)."
	MsgNegativePoints      = "Story points cannot be negative."
	MsgCommentRequired     = "Comment body is required."
	MsgCommentTooLong      = "Comment too long (max 4000)."
	MsgCategoryRequired    = "Category name is required."
	MsgUsernameRequired    = "Username is required."
	MsgInvalidStatus       = "Invalid status."
	MsgSelfLink            = "Cannot link an issue to itself."
)

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func tooLong(s string, max int) bool { return utf8.RuneCountInString(s) > max }

// ProjectName checks that a project name is present and short enough.
func ProjectName(name string) error {
	if blank(name) {
		return tracker.Validation(MsgProjectNameRequired)
	}
	if tooLong(name, MaxProjectName) {
		return tracker.Validation(MsgProjectNameTooLong)
	}
	return nil
}

// ProjectKey checks the length of an already normalized key.
func ProjectKey(key string) error {
	n := utf8.RuneCountInString(key)
	if blank(key) || n < MinKeyLength || n > MaxKeyLength {
		return tracker.Validation(MsgProjectKeyLength)
	}
	return nil
}

// ProjectType checks an optional project type. Blank passes.
func ProjectType(typ string) error {
	if !blank(typ) && tooLong(typ, MaxProjectType) {
		return tracker.Validation(MsgProjectTypeTooLong)
	}
	return nil
}

// Avatar checks an optional avatar URL. Blank passes.
func Avatar(avatar string) error {
	if !blank(avatar) && tooLong(avatar, MaxAvatar) {
		return tracker.Validation(MsgAvatarTooLong)
	}
	return nil
}

// Issue applies the issue rules in order: title present, title length,
// summary length, story points sign.
func Issue(title, summary string, storyPoints *int) error {
	if blank(title) {
		return tracker.Validation(MsgTitleRequired)
	}
	if tooLong(title, MaxTitle) {
		return tracker.Validation(MsgTitleTooLong)
	}
	if tooLong(summary, MaxSummary) {
		return tracker.Validation(MsgSummaryTooLong)
	}
	if storyPoints != nil && *storyPoints < 0 {
		return tracker.Validation(MsgNegativePoints)
	}
	return nil
}

// CommentBody checks that a comment has content and fits.
func CommentBody(body string) error {
	if blank(body) {
		return tracker.Validation(MsgCommentRequired)
	}
	if tooLong(strings.TrimSpace(body), MaxComment) {
		return tracker.Validation(MsgCommentTooLong)
	}
	return nil
}

// CategoryName checks that a category name is present.
func CategoryName(name string) error {
	if blank(name) {
		return tracker.Validation(MsgCategoryRequired)
	}
	return nil
}

// Username checks the display name used to request a token.
func Username(name string) error {
	if blank(name) {
		return tracker.Validation(MsgUsernameRequired)
	}
	return nil
}

// Status checks that s is a known issue status.
func Status(s models.IssueStatus) error {
	if !s.Valid() {
		return tracker.Validation(MsgInvalidStatus)
	}
	return nil
}
