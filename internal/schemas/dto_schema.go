package schemas

// ErrorDTO is a struct that represents an error response
// Error is the custom error, see CustomError
type ErrorDTO struct {
	Error CustomError `json:"error"`
}

// MessageDTO is a struct that represents a plain informational response
type MessageDTO struct {
	Message string `json:"message"`
}

// UserDTO is a struct that represents a user response
type UserDTO struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// TokenDTO is a struct that represents a login token response
// Token is the JWT token bound to the freshly created session
type TokenDTO struct {
	Token string `json:"token"`
}

// AuthorDTO is a struct that represents the author of an entry or comment
type AuthorDTO struct {
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// CategoryDTO is a struct that represents a blog category
type CategoryDTO struct {
	CategoryId string `json:"categoryId"`
	Title      string `json:"title"`
}

// EntryDTO is a struct that represents a blog entry response
// Rating is the mean of the stars across all comments of the entry
type EntryDTO struct {
	EntryId      string      `json:"entryId"`
	Title        string      `json:"title"`
	Content      string      `json:"content"`
	Rating       float64     `json:"rating"`
	CreationDate string      `json:"creationDate"`
	Author       AuthorDTO   `json:"author"`
	Category     CategoryDTO `json:"category"`
}

// CommentDTO is a struct that represents a comment response
type CommentDTO struct {
	CommentId    string    `json:"commentId"`
	Content      string    `json:"content"`
	Stars        int       `json:"stars"`
	CreationDate string    `json:"creationDate"`
	Author       AuthorDTO `json:"author"`
}

// HomeFeedDTO is a struct that represents the home page feed
// Posts are the latest entries, TopRatedPosts the highest rated ones
type HomeFeedDTO struct {
	Posts         []EntryDTO `json:"posts"`
	TopRatedPosts []EntryDTO `json:"topRatedPosts"`
}

// EntryListDTO is a struct that represents the entry listing response
type EntryListDTO struct {
	Entries    []EntryDTO    `json:"entries"`
	Categories []CategoryDTO `json:"categories"`
}

// EntryDetailDTO is a struct that represents the entry detail response
// RecommendedEntries holds up to four entries of the same category
// IsSaved reports whether the viewer has bookmarked the entry
type EntryDetailDTO struct {
	Entry              EntryDTO     `json:"entry"`
	Comments           []CommentDTO `json:"comments"`
	RecommendedEntries []EntryDTO   `json:"recommendedEntries"`
	IsSaved            bool         `json:"isSaved"`
}

// CommentListDTO is the response to a comment submission: the recomputed
// rating plus the updated comment list of the entry
type CommentListDTO struct {
	Rating   float64      `json:"rating"`
	Comments []CommentDTO `json:"comments"`
}

// ToggleSaveDTO is a struct that represents the toggle-save response
type ToggleSaveDTO struct {
	IsSaved    bool   `json:"isSaved"`
	Message    string `json:"message"`
	SavedCount int    `json:"savedCount"`
}

// ProfileDTO is a struct that represents a profile page response
type ProfileDTO struct {
	Username               string     `json:"username"`
	Email                  string     `json:"email"`
	FirstName              string     `json:"firstName"`
	LastName               string     `json:"lastName"`
	Bio                    string     `json:"bio"`
	NewsletterSubscription bool       `json:"newsletterSubscription"`
	Entries                []EntryDTO `json:"entries"`
	SavedPosts             []EntryDTO `json:"savedPosts"`
}

// ProfileUpdateUserDTO is the user snapshot embedded in the profile-update
// response, mirroring the request field names
type ProfileUpdateUserDTO struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Bio       string `json:"bio"`
}

// ProfileUpdateResponse keeps the legacy contract of the profile-update
// endpoint: {success, message|error, user?}
type ProfileUpdateResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Err     string                `json:"error,omitempty"`
	User    *ProfileUpdateUserDTO `json:"user,omitempty"`
}
