// Package domain defines the entitlement domain models.
// Implements capability-based feature gating with signed capabilities,
// consent records, and audit logging of every decision.
package domain

// Action identifies a tool feature that a capability can unlock.
// The set is closed: values outside it are rejected at the boundary by
// ParseAction instead of being matched against stored capabilities.
type Action string

const (
	// ActionSaveModify allows writing changes back into a game save.
	ActionSaveModify Action = "save.modify"

	// ActionSaveInspect allows read-only browsing of save contents.
	ActionSaveInspect Action = "save.inspect"

	// ActionBackupManage allows creating, restoring, and deleting save backups.
	ActionBackupManage Action = "backup.manage"

	// ActionUIThemes allows premium UI themes.
	ActionUIThemes Action = "ui.themes"

	// ActionSaveExport allows exporting saves to external formats.
	ActionSaveExport Action = "save.export"
)

// ParseAction converts a raw string into an Action.
// Returns ErrUnknownAction for anything outside the closed set, so an
// unrecognized action always denies instead of silently matching nothing.
func ParseAction(value string) (Action, error) {
	switch Action(value) {
	case ActionSaveModify, ActionSaveInspect, ActionBackupManage, ActionUIThemes, ActionSaveExport:
		return Action(value), nil
	}
	return "", ErrUnknownAction
}

// IsModifying reports whether the action rewrites user data and therefore
// requires a recorded consent before an entitlement check can succeed.
func (a Action) IsModifying() bool {
	switch a {
	case ActionSaveModify, ActionBackupManage:
		return true
	}
	return false
}
