package apperr

var (
	ErrUsernameTaken        = AlreadyExists("Sorry, that username is already taken.")
	ErrEmailTaken           = AlreadyExists("Sorry, that email address is already taken.")
	ErrGroupNameTaken       = AlreadyExists("a group with that name already exists")
	ErrGroupNameRequired    = InvalidArg("group name is required")
	ErrInvalidCredentials   = Unauthorized("Invalid username or password")
	ErrNotAuthenticated     = Unauthorized("User not authenticated")
	ErrNotGroupMember       = Forbidden("Sorry, you are not a member of that group")
	ErrUserNotFound         = NotFound("user not found")
	ErrGroupNotFound        = NotFound("group not found")
	ErrPostNotFound         = NotFound("post not found")
	ErrCommentGroupMismatch = InvalidArg("comment group does not match the post's group")
)
