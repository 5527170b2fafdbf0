package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"blogserver/internal/managers"
	"blogserver/internal/metrics"
	"blogserver/internal/schemas"
	"blogserver/internal/utils"
	"blogserver/internal/worker"
)

// EntryHdl defines the feed, entry and comment operations.
type EntryHdl interface {
	GetHomeFeed(c *gin.Context)
	ListEntries(c *gin.Context)
	GetEntryDetail(c *gin.Context)
	CreateEntry(c *gin.Context)
	EditEntry(c *gin.Context)
	DeleteEntry(c *gin.Context)
	CreateComment(c *gin.Context)
}

// EntryHandler provides methods to handle blog-entry-specific HTTP requests.
type EntryHandler struct {
	databaseManager managers.DatabaseMgr
	mailManager     managers.MailMgr
	workerPool      *worker.Pool
}

// NewEntryHandler returns a new EntryHandler with the provided managers.
// The worker pool carries the post-commit newsletter fan-out.
func NewEntryHandler(databaseManager managers.DatabaseMgr, mailManager managers.MailMgr, workerPool *worker.Pool) EntryHdl {
	return &EntryHandler{
		databaseManager: databaseManager,
		mailManager:     mailManager,
		workerPool:      workerPool,
	}
}

const feedSize = 4

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

const entrySelect = `SELECT e.entry_id, e.title, e.content, e.rating, e.created_at,
	u.username, u.first_name, u.last_name,
	COALESCE(c.category_id::text, ''), COALESCE(c.title, '')
	FROM blog_schema.entries e
	JOIN blog_schema.users u ON u.user_id = e.author_id
	LEFT JOIN blog_schema.categories c ON c.category_id = e.category_id`

const commentSelect = `SELECT cm.comment_id, cm.content, cm.stars, cm.created_at,
	u.username, u.first_name, u.last_name
	FROM blog_schema.comments cm
	JOIN blog_schema.users u ON u.user_id = cm.author_id`

func queryEntries(ctx context.Context, querier rowQuerier, queryString string, args ...interface{}) ([]schemas.EntryDTO, error) {
	rows, err := querier.Query(ctx, queryString, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []schemas.EntryDTO{}
	for rows.Next() {
		var entry schemas.EntryDTO
		var createdAt time.Time
		if err := rows.Scan(&entry.EntryId, &entry.Title, &entry.Content, &entry.Rating, &createdAt,
			&entry.Author.Username, &entry.Author.FirstName, &entry.Author.LastName,
			&entry.Category.CategoryId, &entry.Category.Title); err != nil {
			return nil, err
		}
		entry.CreationDate = createdAt.Format(time.RFC3339)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func queryComments(ctx context.Context, querier rowQuerier, queryString string, args ...interface{}) ([]schemas.CommentDTO, error) {
	rows, err := querier.Query(ctx, queryString, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := []schemas.CommentDTO{}
	for rows.Next() {
		var comment schemas.CommentDTO
		var createdAt time.Time
		if err := rows.Scan(&comment.CommentId, &comment.Content, &comment.Stars, &createdAt,
			&comment.Author.Username, &comment.Author.FirstName, &comment.Author.LastName); err != nil {
			return nil, err
		}
		comment.CreationDate = createdAt.Format(time.RFC3339)
		comments = append(comments, comment)
	}

	return comments, rows.Err()
}

func extractUserClaims(c *gin.Context) (userId, username string) {
	claims := c.Value(utils.ClaimsKey.String()).(jwt.MapClaims)
	userId, _ = claims["sub"].(string)
	username, _ = claims["username"].(string)
	return userId, username
}

// GetHomeFeed returns the newest entries alongside the highest rated ones.
func (handler *EntryHandler) GetHomeFeed(c *gin.Context) {
	pool := handler.databaseManager.GetPool()

	posts, err := queryEntries(c, pool, entrySelect+" ORDER BY e.created_at DESC LIMIT $1", feedSize)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	topRated, err := queryEntries(c, pool, entrySelect+" ORDER BY e.rating DESC, e.created_at DESC LIMIT $1", feedSize)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.HomeFeedDTO{Posts: posts, TopRatedPosts: topRated}, http.StatusOK)
}

// ListEntries returns all entries, optionally narrowed to one category, plus
// the category list for the filter UI. The category match is exact.
func (handler *EntryHandler) ListEntries(c *gin.Context) {
	pool := handler.databaseManager.GetPool()
	category := c.Query(utils.CategoryParamKey)

	var entries []schemas.EntryDTO
	var err error
	if category != "" {
		entries, err = queryEntries(c, pool, entrySelect+" WHERE c.title = $1 ORDER BY e.created_at DESC", category)
	} else {
		entries, err = queryEntries(c, pool, entrySelect+" ORDER BY e.created_at DESC")
	}
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	rows, err := pool.Query(c, "SELECT category_id, title FROM blog_schema.categories ORDER BY title")
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	defer rows.Close()

	categories := []schemas.CategoryDTO{}
	for rows.Next() {
		var category schemas.Category
		if err := rows.Scan(&category.ID, &category.Title); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
			return
		}
		categories = append(categories, schemas.CategoryDTO{CategoryId: category.ID, Title: category.Title})
	}
	if err := rows.Err(); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.EntryListDTO{Entries: entries, Categories: categories}, http.StatusOK)
}

// GetEntryDetail returns one entry with its comments, up to four entries of
// the same category and the viewer's bookmark state.
func (handler *EntryHandler) GetEntryDetail(c *gin.Context) {
	pool := handler.databaseManager.GetPool()
	entryId := c.Param(utils.EntryIdKey)
	viewerId, _ := extractUserClaims(c)

	entries, err := queryEntries(c, pool, entrySelect+" WHERE e.entry_id = $1", entryId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}
	if len(entries) == 0 {
		utils.WriteAndLogError(c, schemas.EntryNotFound, http.StatusNotFound, errors.New("entry not found"))
		return
	}

	comments, err := queryComments(c, pool, commentSelect+" WHERE cm.entry_id = $1 ORDER BY cm.created_at DESC", entryId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	recommended, err := queryEntries(c, pool, entrySelect+` WHERE e.entry_id <> $1 AND e.category_id IS NOT NULL
		AND e.category_id = (SELECT category_id FROM blog_schema.entries WHERE entry_id = $1)
		ORDER BY e.created_at DESC LIMIT $2`, entryId, feedSize)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	var isSaved bool
	if err := pool.QueryRow(c, "SELECT EXISTS(SELECT 1 FROM blog_schema.saved_posts WHERE user_id = $1 AND entry_id = $2)", viewerId, entryId).Scan(&isSaved); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	utils.WriteAndLogResponse(c, &schemas.EntryDetailDTO{
		Entry:              entries[0],
		Comments:           comments,
		RecommendedEntries: recommended,
		IsSaved:            isSaved,
	}, http.StatusOK)
}

// CreateEntry publishes a new entry and, once the transaction has committed,
// hands the subscriber notification to the worker pool.
func (handler *EntryHandler) CreateEntry(c *gin.Context) {
	createRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateEntryRequest)
	authorId, _ := extractUserClaims(c)

	tx := utils.BeginTransaction(c, handler.databaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	var categoryTitle string
	if err = tx.QueryRow(c, "SELECT title FROM blog_schema.categories WHERE category_id = $1", createRequest.CategoryId).Scan(&categoryTitle); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.CategoryInvalid, http.StatusBadRequest, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	author := schemas.AuthorDTO{}
	if err = tx.QueryRow(c, "SELECT username, first_name, last_name FROM blog_schema.users WHERE user_id = $1", authorId).
		Scan(&author.Username, &author.FirstName, &author.LastName); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	entry := schemas.BlogEntry{
		ID:         uuid.NewString(),
		AuthorID:   authorId,
		CategoryID: createRequest.CategoryId,
		Title:      createRequest.Title,
		Content:    createRequest.Content,
		CreatedAt:  time.Now(),
	}
	if _, err = tx.Exec(c, "INSERT INTO blog_schema.entries (entry_id, author_id, category_id, title, content, rating, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
		entry.ID, entry.AuthorID, entry.CategoryID, entry.Title, entry.Content, entry.Rating, entry.CreatedAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	handler.notifySubscribers(c, authorId, entry.Title, entry.ID)

	utils.WriteAndLogResponse(c, &schemas.EntryDTO{
		EntryId:      entry.ID,
		Title:        entry.Title,
		Content:      entry.Content,
		Rating:       entry.Rating,
		CreationDate: entry.CreatedAt.Format(time.RFC3339),
		Author:       author,
		Category:     schemas.CategoryDTO{CategoryId: entry.CategoryID, Title: categoryTitle},
	}, http.StatusCreated)
}

// notifySubscribers collects the newsletter recipients and dispatches the
// mail on the worker pool. It runs after the commit, a mail failure can no
// longer affect the entry.
func (handler *EntryHandler) notifySubscribers(c *gin.Context, authorId, title, entryId string) {
	pool := handler.databaseManager.GetPool()

	rows, err := pool.Query(c, `SELECT u.email FROM blog_schema.users u
		JOIN blog_schema.profiles p ON p.user_id = u.user_id
		WHERE p.newsletter_subscription = TRUE AND u.activated_at IS NOT NULL AND u.user_id <> $1`, authorId)
	if err != nil {
		utils.LogMessageWithFieldsAndError(c, "warn", "Could not load newsletter subscribers", err)
		return
	}
	defer rows.Close()

	var recipients []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			utils.LogMessageWithFieldsAndError(c, "warn", "Could not load newsletter subscribers", err)
			return
		}
		recipients = append(recipients, email)
	}
	if err := rows.Err(); err != nil {
		utils.LogMessageWithFieldsAndError(c, "warn", "Could not load newsletter subscribers", err)
		return
	}

	if len(recipients) == 0 {
		return
	}

	entryLink := serverURL() + "/entries/" + entryId
	mailManager := handler.mailManager
	handler.workerPool.Submit(func() {
		metrics.MailsDispatched.WithLabelValues("new_entry").Inc()
		_ = mailManager.SendNewEntryMail(recipients, title, entryLink)
	})
}

// EditEntry updates an entry. Only the author may edit, and no new
// notification mail goes out.
func (handler *EntryHandler) EditEntry(c *gin.Context) {
	editRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateEntryRequest)
	entryId := c.Param(utils.EntryIdKey)
	userId, _ := extractUserClaims(c)

	tx := utils.BeginTransaction(c, handler.databaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	var authorId string
	var rating float64
	var createdAt time.Time
	if err = tx.QueryRow(c, "SELECT author_id, rating, created_at FROM blog_schema.entries WHERE entry_id = $1", entryId).
		Scan(&authorId, &rating, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.EntryNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if authorId != userId {
		err = errors.New("not the author")
		utils.WriteAndLogError(c, schemas.EditEntryForbidden, http.StatusForbidden, err)
		return
	}

	var categoryTitle string
	if err = tx.QueryRow(c, "SELECT title FROM blog_schema.categories WHERE category_id = $1", editRequest.CategoryId).Scan(&categoryTitle); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.CategoryInvalid, http.StatusBadRequest, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	author := schemas.AuthorDTO{}
	if err = tx.QueryRow(c, "SELECT username, first_name, last_name FROM blog_schema.users WHERE user_id = $1", userId).
		Scan(&author.Username, &author.FirstName, &author.LastName); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if _, err = tx.Exec(c, "UPDATE blog_schema.entries SET title = $1, content = $2, category_id = $3 WHERE entry_id = $4",
		editRequest.Title, editRequest.Content, editRequest.CategoryId, entryId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.EntryDTO{
		EntryId:      entryId,
		Title:        editRequest.Title,
		Content:      editRequest.Content,
		Rating:       rating,
		CreationDate: createdAt.Format(time.RFC3339),
		Author:       author,
		Category:     schemas.CategoryDTO{CategoryId: editRequest.CategoryId, Title: categoryTitle},
	}, http.StatusOK)
}

// DeleteEntry removes an entry and everything hanging off it. Only the
// author may delete.
func (handler *EntryHandler) DeleteEntry(c *gin.Context) {
	entryId := c.Param(utils.EntryIdKey)
	userId, _ := extractUserClaims(c)

	tx := utils.BeginTransaction(c, handler.databaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	var authorId string
	if err = tx.QueryRow(c, "SELECT author_id FROM blog_schema.entries WHERE entry_id = $1", entryId).Scan(&authorId); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.EntryNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if authorId != userId {
		err = errors.New("not the author")
		utils.WriteAndLogError(c, schemas.DeleteEntryForbidden, http.StatusForbidden, err)
		return
	}

	// Comments and saved posts go with the entry via ON DELETE CASCADE.
	if _, err = tx.Exec(c, "DELETE FROM blog_schema.entries WHERE entry_id = $1", entryId); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	c.Status(http.StatusNoContent)
}

// CreateComment adds a comment and recomputes the entry rating as the mean
// of all stars in the same transaction, so rating and comment list never
// drift apart.
func (handler *EntryHandler) CreateComment(c *gin.Context) {
	commentRequest := c.Value(utils.SanitizedPayloadKey.String()).(*schemas.CreateCommentRequest)
	entryId := c.Param(utils.EntryIdKey)
	userId, _ := extractUserClaims(c)

	tx := utils.BeginTransaction(c, handler.databaseManager.GetPool())
	if tx == nil {
		return
	}
	var err error
	defer func() { utils.RollbackTransaction(c, tx, err) }()

	// Lock the entry row so concurrent submissions serialize and the
	// recomputed mean sees every committed comment.
	var locked int
	if err = tx.QueryRow(c, "SELECT 1 FROM blog_schema.entries WHERE entry_id = $1 FOR UPDATE", entryId).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			utils.WriteAndLogError(c, schemas.EntryNotFound, http.StatusNotFound, err)
			return
		}
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	comment := schemas.Comment{
		ID:        uuid.NewString(),
		EntryID:   entryId,
		AuthorID:  userId,
		Content:   commentRequest.Content,
		Stars:     commentRequest.Stars,
		CreatedAt: time.Now(),
	}
	if _, err = tx.Exec(c, "INSERT INTO blog_schema.comments (comment_id, entry_id, author_id, content, stars, created_at) VALUES ($1, $2, $3, $4, $5, $6)",
		comment.ID, comment.EntryID, comment.AuthorID, comment.Content, comment.Stars, comment.CreatedAt); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	var rating float64
	if err = tx.QueryRow(c, `UPDATE blog_schema.entries
		SET rating = (SELECT COALESCE(AVG(stars), 0) FROM blog_schema.comments WHERE entry_id = $1)
		WHERE entry_id = $1 RETURNING rating`, entryId).Scan(&rating); err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	comments, err := queryComments(c, tx, commentSelect+" WHERE cm.entry_id = $1 ORDER BY cm.created_at DESC", entryId)
	if err != nil {
		utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusInternalServerError, err)
		return
	}

	if err = utils.CommitTransaction(c, tx); err != nil {
		return
	}

	utils.WriteAndLogResponse(c, &schemas.CommentListDTO{Rating: rating, Comments: comments}, http.StatusCreated)
}
