package sharing

import "github.com/frahmantamala/drive-sharing/internal"

var (
	ErrUserNotFound       = internal.NewNotFoundError("No user is registered with that email", internal.ErrCodeUserNotFound)
	ErrDuplicateGrant     = internal.NewConflictError("Item is already shared with this user", internal.ErrCodeDuplicateGrant)
	ErrGrantNotFound      = internal.NewNotFoundError("Grant not found", internal.ErrCodeGrantNotFound)
	ErrInvalidAccessLevel = internal.NewValidationError("Unknown access level", internal.ErrCodeInvalidAccessLevel)
	ErrInvalidTarget      = internal.NewValidationError("Target must be a file or folder with a positive id", internal.ErrCodeInvalidTarget)
	ErrNotGrantOwner      = internal.NewForbiddenError("Only the owner can change this grant", internal.ErrCodeNotGrantOwner)
)
