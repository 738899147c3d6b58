package core

import "errors"

// Precondition and domain-guard sentinels. All are detected against the
// current mirror before any remote call and leave state untouched.
var (
	// ErrNotAdmin rejects a role-gated operation from a non-admin actor.
	ErrNotAdmin = errors.New("acting user is not an admin")
	// ErrLastAdmin rejects demoting or removing the only remaining admin.
	ErrLastAdmin = errors.New("cannot remove the last admin")
	// ErrSelfTarget rejects an admin demoting or removing themself.
	ErrSelfTarget = errors.New("admins cannot demote or remove themselves")
	// ErrDuplicateEmail rejects creating a staff record with an email already in use.
	ErrDuplicateEmail = errors.New("email already in use")
	// ErrEventFull rejects joining an event at capacity.
	ErrEventFull = errors.New("event is at capacity")
	// ErrNotMessageOwner rejects deleting a message by anyone but its author or an admin.
	ErrNotMessageOwner = errors.New("only the author or an admin may delete a message")
	// ErrPhotoApprovalPending blocks completing a photo-gated task whose photo
	// is missing or unapproved. Distinguishable from generic failures so the
	// UI can show an actionable message.
	ErrPhotoApprovalPending = errors.New("completion blocked, photo approval pending")
	// ErrPhotoNotRequired rejects uploading a photo to a task without a photo requirement.
	ErrPhotoNotRequired = errors.New("task does not require a photo")
	// ErrTaskNotFound rejects a photo upload naming an absent task. Unlike the
	// tolerated no-op updates, a silent success here would leave the caller
	// believing a photo was attached.
	ErrTaskNotFound = errors.New("task not found")
	// ErrNoPhoto rejects approving or rejecting a task that holds no photo.
	ErrNoPhoto = errors.New("task has no photo")
	// ErrConfirmationRequired suspends a shift assignment that would exceed
	// the weekly-load threshold until the caller confirms it.
	ErrConfirmationRequired = errors.New("weekly shift limit reached, confirmation required")
	// ErrUnknownSlot rejects schedule operations naming a slot outside the fixed table.
	ErrUnknownSlot = errors.New("unknown shift slot")
	// ErrNegativePoints rejects creating a task with a negative reward.
	ErrNegativePoints = errors.New("task points must be non-negative")
)
