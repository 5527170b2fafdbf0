package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"blogserver/internal/managers"
	"blogserver/internal/schemas"
	"blogserver/internal/utils"
)

// SavedPostHdl defines the bookmark operations.
type SavedPostHdl interface {
	ToggleSave(c *gin.Context)
}

// SavedPostHandler provides methods to handle bookmark-specific HTTP requests.
type SavedPostHandler struct {
	databaseManager managers.DatabaseMgr
}

// NewSavedPostHandler returns a new SavedPostHandler with the provided manager.
func NewSavedPostHandler(databaseManager managers.DatabaseMgr) SavedPostHdl {
	return &SavedPostHandler{databaseManager: databaseManager}
}

// ToggleSave flips the bookmark state of an entry for the logged-in user.
// Toggling twice restores the previous state. A concurrent duplicate insert
// trips the unique constraint and is treated as "already saved".
func (handler *SavedPostHandler) ToggleSave(c *gin.Context) {
	entryId := c.Param(utils.EntryIdKey)
	userId, _ := extractUserClaims(c)

	tx := utils.BeginTransaction(c, handler.databaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	var entryExists bool
	if err = tx.QueryRow(c, "SELECT EXISTS(SELECT 1 FROM blog_schema.entries WHERE entry_id = $1)", entryId).Scan(&entryExists); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if !entryExists {
		err = errors.New("entry not found")
		utils.WriteAndLogError(c, schemas.EntryNotFound, http.StatusNotFound, err)
		return
	}

	commandTag, err := tx.Exec(c, "DELETE FROM blog_schema.saved_posts WHERE user_id = $1 AND entry_id = $2", userId, entryId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	var isSaved bool
	var message string
	if commandTag.RowsAffected() > 0 {
		isSaved = false
		message = "Post removed from saved posts"
	} else {
		savedPost := schemas.SavedPost{
			ID:        uuid.NewString(),
			UserID:    userId,
			EntryID:   entryId,
			CreatedAt: time.Now(),
		}

		// The conflict clause absorbs a concurrent toggle without aborting
		// the transaction, the post is saved either way.
		if _, err = tx.Exec(c, "INSERT INTO blog_schema.saved_posts (saved_post_id, user_id, entry_id, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (user_id, entry_id) DO NOTHING",
			savedPost.ID, savedPost.UserID, savedPost.EntryID, savedPost.CreatedAt); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}

		isSaved = true
		message = "Post added to saved posts"
	}

	var savedCount int
	if err = tx.QueryRow(c, "SELECT COUNT(*) FROM blog_schema.saved_posts WHERE entry_id = $1", entryId).Scan(&savedCount); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.ToggleSaveDTO{
		IsSaved:    isSaved,
		Message:    message,
		SavedCount: savedCount,
	}, http.StatusOK)
}
