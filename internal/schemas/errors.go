package schemas

// CustomError is the wire representation of every failure the API reports.
// Code is stable and machine-readable, Message is safe to show to users.
type CustomError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var (
	// BadRequest covers malformed bodies and failed field validation alike.
	BadRequest = &CustomError{
		Code:    "ERR-001",
		Message: "The request body is invalid. Please check the request body and try again.",
	}
	UsernameTaken = &CustomError{
		Code:    "ERR-002",
		Message: "The username is already taken. Please try another username.",
	}
	EmailTaken = &CustomError{
		Code:    "ERR-003",
		Message: "The email is already registered. Please try another email.",
	}
	UserNotFound = &CustomError{
		Code:    "ERR-004",
		Message: "The user was not found.",
	}
	// InvalidActivationLink is returned for a bad uid, a tampered or expired
	// token, and an already consumed token alike. Callers must not be able to
	// tell these apart.
	InvalidActivationLink = &CustomError{
		Code:    "ERR-005",
		Message: "Activation link is invalid",
	}
	// InvalidCredentials never reveals whether the account exists.
	InvalidCredentials = &CustomError{
		Code:    "ERR-006",
		Message: "The credentials are invalid. Please check the credentials and try again.",
	}
	Unauthorized = &CustomError{
		Code:    "ERR-007",
		Message: "The request is unauthorized. Please login to your account.",
	}
	UserNotActivated = &CustomError{
		Code:    "ERR-008",
		Message: "The account is not activated yet. Please activate your account first.",
	}
	EntryNotFound = &CustomError{
		Code:    "ERR-009",
		Message: "The blog entry was not found.",
	}
	EditEntryForbidden = &CustomError{
		Code:    "ERR-010",
		Message: "You don't have permission to edit this entry",
	}
	DeleteEntryForbidden = &CustomError{
		Code:    "ERR-011",
		Message: "You don't have permission to delete this entry",
	}
	DatabaseError = &CustomError{
		Code:    "ERR-012",
		Message: "A database error occurred. Please try again later.",
	}
	InternalServerError = &CustomError{
		Code:    "ERR-013",
		Message: "An internal error occurred. Please try again later.",
	}
	EmailNotSent = &CustomError{
		Code:    "ERR-014",
		Message: "The email could not be sent. Please try again later.",
	}
	EmailUnreachable = &CustomError{
		Code:    "ERR-015",
		Message: "The email address seems to be unreachable.",
	}
	CategoryInvalid = &CustomError{
		Code:    "ERR-016",
		Message: "The category is invalid. Please choose an existing category.",
	}
	UserAlreadyActivated = &CustomError{
		Code:    "ERR-017",
		Message: "The account is already activated.",
	}
)
