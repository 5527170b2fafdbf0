// Package handlers contains the HTTP handlers of the server. Each handler
// group is constructed with the managers it collaborates with and runs its
// queries inside a transaction on the shared pool.
package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"blogserver/internal/managers"
	"blogserver/internal/schemas"
	"blogserver/internal/utils"
)

// UserHdl defines the account, session and profile operations.
type UserHdl interface {
	RegisterUser(c *gin.Context)
	ActivateUser(c *gin.Context)
	ResendActivation(c *gin.Context)
	LoginUser(c *gin.Context)
	LogoutUser(c *gin.Context)
	GetOwnProfile(c *gin.Context)
	GetProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	SubscribeNewsletter(c *gin.Context)
}

// UserHandler provides methods to handle user-specific HTTP requests.
type UserHandler struct {
	databaseManager managers.DatabaseMgr
	jwtManager      managers.JWTMgr
	mailManager     managers.MailMgr
	validator       *utils.Validator
}

// NewUserHandler returns a new UserHandler with the provided managers.
func NewUserHandler(databaseManager managers.DatabaseMgr, jwtManager managers.JWTMgr, mailManager managers.MailMgr) UserHdl {
	return &UserHandler{
		databaseManager: databaseManager,
		jwtManager:      jwtManager,
		mailManager:     mailManager,
		validator:       utils.GetValidator(),
	}
}

const sessionLifetime = 24 * time.Hour

// serverURL is the external base address used when building activation links.
func serverURL() string {
	url := os.Getenv("SERVER_URL")
	if url == "" {
		url = "http://localhost:8080"
	}

	return strings.TrimSuffix(url, "/")
}

// mxVerificationEnabled gates the live MX lookup on registration.
// Development and offline environments leave it off.
func mxVerificationEnabled() bool {
	return os.Getenv("VERIFY_EMAIL_MX") == "true"
}

// RegisterUser creates a dormant account plus its profile and sends the
// activation mail. The account cannot log in until the link is used.
func (handler *UserHandler) RegisterUser(c *gin.Context) {
	registrationRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.RegistrationRequest)

	if mxVerificationEnabled() && !handler.validator.VerifyEmail(registrationRequest.Email) {
		utils.WriteAndLogError(c, schemas.EmailUnreachable, http.StatusUnprocessableEntity, errors.New("email unreachable"))
		return
	}

	tx := utils.BeginTransaction(c, handler.databaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	// Username and email are both unique identifiers of an account.
	var taken bool
	if err = tx.QueryRow(c, "SELECT EXISTS(SELECT 1 FROM blog_schema.users WHERE username = $1)", registrationRequest.Username).Scan(&taken); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if taken {
		err = errors.New("username taken")
		utils.WriteAndLogError(c, schemas.UsernameTaken, http.StatusConflict, err)
		return
	}

	if err = tx.QueryRow(c, "SELECT EXISTS(SELECT 1 FROM blog_schema.users WHERE email = $1)", registrationRequest.Email).Scan(&taken); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if taken {
		err = errors.New("email taken")
		utils.WriteAndLogError(c, schemas.EmailTaken, http.StatusConflict, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registrationRequest.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	user := schemas.User{
		ID:        uuid.NewString(),
		Username:  registrationRequest.Username,
		Email:     registrationRequest.Email,
		FirstName: registrationRequest.FirstName,
		LastName:  registrationRequest.LastName,
		Password:  string(hashedPassword),
		CreatedAt: time.Now(),
	}
	profile := schemas.Profile{UserID: user.ID}

	if _, err = tx.Exec(c, "INSERT INTO blog_schema.users (user_id, username, email, first_name, last_name, password, created_at, activated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, NULL)",
		user.ID, user.Username, user.Email, user.FirstName, user.LastName, user.Password, user.CreatedAt); err != nil {
		// A concurrent registration can slip between the existence checks
		// and this insert; the unique constraints are the final arbiter.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			if strings.Contains(pgErr.ConstraintName, "email") {
				utils.WriteAndLogError(c, schemas.EmailTaken, http.StatusConflict, err)
			} else {
				utils.WriteAndLogError(c, schemas.UsernameTaken, http.StatusConflict, err)
			}
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if _, err = tx.Exec(c, "INSERT INTO blog_schema.profiles (user_id, bio, newsletter_subscription) VALUES ($1, $2, $3)",
		profile.UserID, profile.Bio, profile.NewsletterSubscription); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = handler.sendActivationLink(c, user.ID, user.Username, user.Email, user.Password, nil); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.UserDTO{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	}, http.StatusCreated)
}

// sendActivationLink signs an activation token bound to the account state
// and mails the resulting link.
func (handler *UserHandler) sendActivationLink(c *gin.Context, userId, username, email, passwordHash string, activatedAt *time.Time) error {
	fingerprint := managers.ActivationFingerprint(passwordHash, email, activatedAt)
	token, err := handler.jwtManager.GenerateActivationToken(userId, fingerprint)
	if err != nil {
		return err
	}

	uid := base64.RawURLEncoding.EncodeToString([]byte(userId))
	activationLink := serverURL() + "/activate/" + uid + "/" + token + "/"

	utils.LogMessageWithFields(c, "info", "Sending activation mail")
	return handler.mailManager.SendActivationMail(email, username, activationLink)
}

// ActivateUser consumes an activation link. A bad uid, a tampered token, an
// expired token and an already used token all produce the identical
// response, so the endpoint leaks nothing about existing accounts.
func (handler *UserHandler) ActivateUser(c *gin.Context) {
	uidParam := strings.TrimRight(c.Param(utils.UidKey), "=")
	tokenParam := c.Param(utils.TokenKey)

	uidBytes, err := base64.RawURLEncoding.DecodeString(uidParam)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InvalidActivationLink, http.StatusUnauthorized, err)
		return
	}

	tokenUserId, fingerprint, err := handler.jwtManager.ValidateActivationToken(tokenParam)
	if err != nil || tokenUserId != string(uidBytes) {
		utils.WriteAndLogError(c, schemas.InvalidActivationLink, http.StatusUnauthorized, err)
		return
	}

	pool := handler.databaseManager.GetPool()

	var username, email, passwordHash string
	var activatedAt *time.Time
	queryString := "SELECT username, email, password, activated_at FROM blog_schema.users WHERE user_id = $1"
	if err = pool.QueryRow(c, queryString, tokenUserId).Scan(&username, &email, &passwordHash, &activatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidActivationLink, http.StatusUnauthorized, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	// The fingerprint covers activated_at, so a consumed link stops matching.
	if fingerprint != managers.ActivationFingerprint(passwordHash, email, activatedAt) {
		utils.WriteAndLogError(c, schemas.InvalidActivationLink, http.StatusUnauthorized, errors.New("stale activation token"))
		return
	}

	if _, err = pool.Exec(c, "UPDATE blog_schema.users SET activated_at = NOW() WHERE user_id = $1", tokenUserId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if mailErr := handler.mailManager.SendConfirmationMail(email, username); mailErr != nil {
		utils.LogMessageWithFieldsAndError(c, "warn", "Could not send confirmation mail", mailErr)
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Account activated successfully"}, http.StatusOK)
}

// ResendActivation mails a fresh activation link to a dormant account.
func (handler *UserHandler) ResendActivation(c *gin.Context) {
	resendRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.ResendActivationRequest)

	pool := handler.databaseManager.GetPool()

	var userId, username, passwordHash string
	var activatedAt *time.Time
	queryString := "SELECT user_id, username, password, activated_at FROM blog_schema.users WHERE email = $1"
	err := pool.QueryRow(c, queryString, resendRequest.Email).Scan(&userId, &username, &passwordHash, &activatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if activatedAt != nil {
		utils.WriteAndLogError(c, schemas.UserAlreadyActivated, http.StatusConflict, errors.New("user already activated"))
		return
	}

	if err = handler.sendActivationLink(c, userId, username, resendRequest.Email, passwordHash, nil); err != nil {
		utils.WriteAndLogError(c, schemas.EmailNotSent, http.StatusInternalServerError, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LoginUser verifies the credentials and opens a session. The response for
// an unknown account and a wrong password is identical.
func (handler *UserHandler) LoginUser(c *gin.Context) {
	loginRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.LoginRequest)

	pool := handler.databaseManager.GetPool()

	var userId, username, passwordHash string
	var activatedAt *time.Time
	queryString := "SELECT user_id, username, password, activated_at FROM blog_schema.users WHERE username = $1 OR email = $1"
	err := pool.QueryRow(c, queryString, loginRequest.UsernameOrEmail).Scan(&userId, &username, &passwordHash, &activatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if activatedAt == nil {
		utils.WriteAndLogError(c, schemas.UserNotActivated, http.StatusForbidden, errors.New("user not activated"))
		return
	}

	if err = bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(loginRequest.Password)); err != nil {
		utils.WriteAndLogError(c, schemas.InvalidCredentials, http.StatusUnauthorized, err)
		return
	}

	now := time.Now()
	session := schemas.Session{
		ID:        uuid.NewString(),
		UserID:    userId,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionLifetime),
	}
	if _, err = pool.Exec(c, "INSERT INTO blog_schema.sessions (session_id, user_id, created_at, expires_at) VALUES ($1, $2, $3, $4)",
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	claims := handler.jwtManager.GenerateClaims(userId, username, session.ID)
	token, err := handler.jwtManager.GenerateJWT(claims)
	if err != nil {
		utils.WriteAndLogError(c, schemas.InternalServerError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.TokenDTO{Token: token}, http.StatusOK)
}

// LogoutUser deletes the session of the presented token, which invalidates
// the token itself.
func (handler *UserHandler) LogoutUser(c *gin.Context) {
	claims := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
	sessionId := claims["sid"].(string)

	pool := handler.databaseManager.GetPool()
	if _, err := pool.Exec(c, "DELETE FROM blog_schema.sessions WHERE session_id = $1", sessionId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetOwnProfile returns the profile of the logged-in user.
func (handler *UserHandler) GetOwnProfile(c *gin.Context) {
	claims := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
	handler.writeProfile(c, claims["username"].(string))
}

// GetProfile returns the profile of the user named in the path.
func (handler *UserHandler) GetProfile(c *gin.Context) {
	handler.writeProfile(c, c.Param(utils.UsernameKey))
}

func (handler *UserHandler) writeProfile(c *gin.Context, username string) {
	pool := handler.databaseManager.GetPool()

	profile := schemas.ProfileDTO{Username: username}
	var userId string
	queryString := `SELECT u.user_id, u.email, u.first_name, u.last_name, p.bio, p.newsletter_subscription
		FROM blog_schema.users u JOIN blog_schema.profiles p ON p.user_id = u.user_id
		WHERE u.username = $1`
	err := pool.QueryRow(c, queryString, username).
		Scan(&userId, &profile.Email, &profile.FirstName, &profile.LastName, &profile.Bio, &profile.NewsletterSubscription)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	profile.Entries, err = queryEntries(c, pool, entrySelect+" WHERE e.author_id = $1 ORDER BY e.created_at DESC", userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	profile.SavedPosts, err = queryEntries(c, pool,
		entrySelect+" JOIN blog_schema.saved_posts sp ON sp.entry_id = e.entry_id WHERE sp.user_id = $1 ORDER BY sp.created_at DESC", userId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &profile, http.StatusOK)
}

// UpdateProfile changes the account and profile fields of the logged-in
// user. The endpoint keeps its legacy response contract of
// {success, message|error, user?} instead of the CustomError envelope.
func (handler *UserHandler) UpdateProfile(c *gin.Context) {
	claims := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
	userId := claims["sub"].(string)

	var updateRequest schemas.UpdateProfileRequest
	if err := c.ShouldBindJSON(&updateRequest); err != nil {
		utils.WriteAndLogResponse(c, &schemas.ProfileUpdateResponse{Err: "Invalid request"}, http.StatusBadRequest)
		return
	}

	handler.validator.SanitizeData(&updateRequest)
	updateRequest.Username = strings.TrimSpace(updateRequest.Username)
	updateRequest.Email = strings.TrimSpace(updateRequest.Email)
	updateRequest.FirstName = strings.TrimSpace(updateRequest.FirstName)
	updateRequest.LastName = strings.TrimSpace(updateRequest.LastName)
	updateRequest.Bio = strings.TrimSpace(updateRequest.Bio)

	if len(updateRequest.Username) < 3 {
		utils.WriteAndLogResponse(c, &schemas.ProfileUpdateResponse{Err: "Username must be at least 3 characters long"}, http.StatusBadRequest)
		return
	}

	if handler.validator.Validate.Var(updateRequest.Email, "required,email") != nil {
		utils.WriteAndLogResponse(c, &schemas.ProfileUpdateResponse{Err: "Enter a valid email address"}, http.StatusBadRequest)
		return
	}

	tx := utils.BeginTransaction(c, handler.databaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	var taken bool
	if err = tx.QueryRow(c, "SELECT EXISTS(SELECT 1 FROM blog_schema.users WHERE username = $1 AND user_id <> $2)", updateRequest.Username, userId).Scan(&taken); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if taken {
		err = errors.New("username taken")
		utils.WriteAndLogResponse(c, &schemas.ProfileUpdateResponse{Err: "Username already taken"}, http.StatusBadRequest)
		return
	}

	if err = tx.QueryRow(c, "SELECT EXISTS(SELECT 1 FROM blog_schema.users WHERE email = $1 AND user_id <> $2)", updateRequest.Email, userId).Scan(&taken); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if taken {
		err = errors.New("email taken")
		utils.WriteAndLogResponse(c, &schemas.ProfileUpdateResponse{Err: "Email already in use"}, http.StatusBadRequest)
		return
	}

	if _, err = tx.Exec(c, "UPDATE blog_schema.users SET username = $1, email = $2, first_name = $3, last_name = $4 WHERE user_id = $5",
		updateRequest.Username, updateRequest.Email, updateRequest.FirstName, updateRequest.LastName, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if _, err = tx.Exec(c, "UPDATE blog_schema.profiles SET bio = $1 WHERE user_id = $2", updateRequest.Bio, userId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.ProfileUpdateResponse{
		Success: true,
		Message: "Profile updated successfully",
		User: &schemas.ProfileUpdateUserDTO{
			Username:  updateRequest.Username,
			Email:     updateRequest.Email,
			FirstName: updateRequest.FirstName,
			LastName:  updateRequest.LastName,
			Bio:       updateRequest.Bio,
		},
	}, http.StatusOK)
}

// SubscribeNewsletter flips the newsletter flag of the account registered
// under the given email address.
func (handler *UserHandler) SubscribeNewsletter(c *gin.Context) {
	subscribeRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.SubscribeRequest)

	pool := handler.databaseManager.GetPool()
	queryString := `UPDATE blog_schema.profiles p SET newsletter_subscription = TRUE
		FROM blog_schema.users u WHERE u.user_id = p.user_id AND u.email = $1`
	commandTag, err := pool.Exec(c, queryString, subscribeRequest.Email)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if commandTag.RowsAffected() == 0 {
		utils.WriteAndLogError(c, schemas.UserNotFound, http.StatusNotFound, errors.New("no account for email"))
		return
	}

	utils.WriteAndLogResponse(c, &schemas.MessageDTO{Message: "Successfully subscribed to the newsletter"}, http.StatusOK)
}
