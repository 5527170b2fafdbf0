// Package schemas defines the request structures for the various operations of the application.
package schemas

// RegistrationRequest is a struct that represents a registration request
// Username is required, 3 to 20 characters
// Email is required and must be a valid email
// Password is required and must be at least 8 characters
type RegistrationRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=20,username_validation"`
	Email     string `json:"email" validate:"required,email,max=128"`
	Password  string `json:"password" validate:"required,min=8,password_validation"`
	FirstName string `json:"firstName" validate:"max=50"`
	LastName  string `json:"lastName" validate:"max=50"`
}

// ResendActivationRequest is a struct that represents a resend-activation request
type ResendActivationRequest struct {
	Email string `json:"email" validate:"required,email,max=128"`
}

// LoginRequest is a struct that represents a login request
// UsernameOrEmail accepts either identifier of the account
type LoginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail" validate:"required,max=128"`
	Password        string `json:"password" validate:"required,min=8"`
}

// SubscribeRequest is a struct that represents a newsletter opt-in request
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,email,max=128"`
}

// CreateEntryRequest is a struct that represents a create or edit entry request
// CategoryId must reference an existing category
type CreateEntryRequest struct {
	Title      string `json:"title" validate:"required,max=120"`
	CategoryId string `json:"categoryId" validate:"required,uuid4"`
	Content    string `json:"content" validate:"required"`
}

// CreateCommentRequest is a struct that represents a comment submission
// Stars is required and must be between 1 and 5
type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=512"`
	Stars   int    `json:"stars" validate:"required,min=1,max=5"`
}

// UpdateProfileRequest is a struct that represents a profile update request.
// It is decoded by hand in the handler because the endpoint keeps the
// legacy field-tagged {success, error} response contract instead of the
// CustomError taxonomy.
type UpdateProfileRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Bio       string `json:"bio"`
}
