package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"community-backend/internal/apperr"
	"community-backend/internal/models"
	"community-backend/internal/moderation"
	"community-backend/internal/quota"
	"community-backend/internal/repository"
	"community-backend/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	MaxContentRunes = 10000
	MaxReasonRunes  = 500
)

type SubmitInput struct {
	Content string
	Title   string
	Summary string
}

// SubmitResult carries the quota usage even when submission is refused.
type SubmitResult struct {
	Post  *models.Post
	Usage quota.Usage
}

type PostService struct {
	Posts         repository.PostRepository
	Notifications *NotificationService
	Quota         *quota.Service
	Gate          moderation.Gate
	Tx            repository.TxRunner
	Now           func() time.Time
}

// Submit creates a pending post for authorID, consuming one daily quota slot.
func (s *PostService) Submit(ctx context.Context, authorID bson.ObjectID, in SubmitInput) (*SubmitResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.Invalid("content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentRunes {
		return nil, apperr.Newf(apperr.KindValidation, "content must be at most %d characters", MaxContentRunes)
	}

	res, ok, err := s.Quota.Reserve(ctx, authorID.Hex())
	if err != nil {
		return &SubmitResult{}, apperr.Internal("reserve daily quota", err)
	}
	if !ok {
		return &SubmitResult{Usage: res.Usage}, apperr.QuotaExceeded("daily post limit reached")
	}

	now := clock(s.Now).now()
	title := utils.Truncate(strings.TrimSpace(in.Title), utils.TitleMaxRunes)
	if title == "" {
		title = utils.DeriveTitle(content)
	}
	summary := utils.Truncate(strings.TrimSpace(in.Summary), utils.SummaryMaxRunes)
	if summary == "" {
		summary = utils.DeriveSummary(content)
	}

	post := &models.Post{
		ID:        bson.NewObjectID(),
		AuthorID:  authorID,
		Title:     title,
		Summary:   summary,
		Content:   content,
		Tags:      utils.ExtractHashtags(content),
		Status:    models.PostPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Posts.Insert(ctx, post); err != nil {
		if rerr := s.Quota.Release(ctx, res); rerr != nil {
			log.Warnf("release quota after failed insert: %v", rerr)
		}
		return nil, apperr.Internal("insert post", err)
	}
	return &SubmitResult{Post: post, Usage: res.Usage}, nil
}

// CheckDailyLimit reports today's quota for userIDHex, fail-closed. The id is
// normalized to the form Submit records usage under.
func (s *PostService) CheckDailyLimit(ctx context.Context, userIDHex string) (quota.Usage, error) {
	uid, err := bson.ObjectIDFromHex(strings.TrimSpace(userIDHex))
	if err != nil {
		return quota.Usage{}, apperr.Invalid("userId must be a valid id")
	}
	u, err := s.Quota.CheckDailyLimit(ctx, uid.Hex())
	if err != nil {
		log.Errorf("check daily limit: %v", err)
	}
	return u, nil
}

func (s *PostService) requireAdmin(ctx context.Context, actorID bson.ObjectID) error {
	ok, err := s.Gate.IsAdmin(ctx, actorID)
	if err != nil {
		return apperr.Internal("check admin", err)
	}
	if !ok {
		return apperr.Forbidden("admin privileges required")
	}
	return nil
}

func (s *PostService) load(ctx context.Context, idHex string) (*models.Post, error) {
	id, err := parseID(idHex, "post")
	if err != nil {
		return nil, err
	}
	p, err := s.Posts.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("post not found")
	}
	if err != nil {
		return nil, apperr.Internal("find post", err)
	}
	return p, nil
}

func conflictFor(p *models.Post) error {
	return apperr.Conflict(fmt.Sprintf("post is already %s", p.Status))
}

// transition moves a pending post to t.To and records the author
// notification in the same transaction. Without a transaction a failed
// notification leaves the status written, so it is reverted to pending.
func (s *PostService) transition(ctx context.Context, post *models.Post, t models.Transition, typ models.NotiType, p models.NotiParams) error {
	moved := false
	err := s.Tx.WithTransaction(ctx, func(tx context.Context) error {
		moved = false
		ok, err := s.Posts.Transition(tx, post.ID, models.PostPending, t)
		if err != nil {
			return apperr.Internal("update post status", err)
		}
		if !ok {
			// Lost a race: re-read to report the state that won.
			cur, err := s.Posts.FindByID(tx, post.ID)
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("post not found")
			}
			if err != nil {
				return apperr.Internal("find post", err)
			}
			return conflictFor(cur)
		}
		moved = true
		if err := s.Notifications.Notify(tx, post.AuthorID, typ, p); err != nil {
			return apperr.Internal("notify author", err)
		}
		return nil
	})
	if err != nil && moved {
		s.revert(ctx, post.ID, t)
	}
	return err
}

// revert undoes t when it is still the post's latest change. After an aborted
// transaction nothing matches and this is a no-op.
func (s *PostService) revert(ctx context.Context, id bson.ObjectID, t models.Transition) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := s.Posts.Revert(ctx, id, t); err != nil {
		log.Errorf("revert post %s to pending: %v", id.Hex(), err)
	}
}

// Approve publishes a pending post. Only admins may approve, and a post that
// already left pending is a conflict.
func (s *PostService) Approve(ctx context.Context, postIDHex string, actorID bson.ObjectID) (*models.Post, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	post, err := s.load(ctx, postIDHex)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostPending {
		return nil, conflictFor(post)
	}

	now := clock(s.Now).now()
	t := models.Transition{To: models.PostApproved, At: now, By: actorID}
	params := models.NotiParams{PostTitle: post.Title, PostID: &post.ID, FromUserID: &actorID}
	if err := s.transition(ctx, post, t, models.NotiPostApproved, params); err != nil {
		return nil, err
	}

	post.Status = models.PostApproved
	post.UpdatedAt = now
	post.ApprovedAt = &now
	post.ApprovedBy = &actorID
	return post, nil
}

// Reject refuses a pending post with a reason that is sent to the author.
func (s *PostService) Reject(ctx context.Context, postIDHex string, actorID bson.ObjectID, reason string) (*models.Post, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Invalid("reason is required")
	}
	if utf8.RuneCountInString(reason) > MaxReasonRunes {
		return nil, apperr.Newf(apperr.KindValidation, "reason must be at most %d characters", MaxReasonRunes)
	}
	post, err := s.load(ctx, postIDHex)
	if err != nil {
		return nil, err
	}
	if post.Status != models.PostPending {
		return nil, conflictFor(post)
	}

	now := clock(s.Now).now()
	t := models.Transition{To: models.PostRejected, At: now, By: actorID, Reason: reason}
	params := models.NotiParams{PostTitle: post.Title, Reason: reason, PostID: &post.ID, FromUserID: &actorID}
	if err := s.transition(ctx, post, t, models.NotiPostRejected, params); err != nil {
		return nil, err
	}

	post.Status = models.PostRejected
	post.UpdatedAt = now
	post.RejectedAt = &now
	post.RejectedBy = &actorID
	post.RejectionReason = reason
	return post, nil
}

// canSeeUnpublished reports whether viewerID is the author or an admin.
func (s *PostService) canSeeUnpublished(ctx context.Context, authorID, viewerID bson.ObjectID) (bool, error) {
	if viewerID.IsZero() {
		return false, nil
	}
	if viewerID == authorID {
		return true, nil
	}
	ok, err := s.Gate.IsAdmin(ctx, viewerID)
	if err != nil {
		return false, apperr.Internal("check admin", err)
	}
	return ok, nil
}

// Get returns a post. Pending and rejected posts are only visible to their
// author and to admins; everyone else gets not found.
func (s *PostService) Get(ctx context.Context, postIDHex string, viewerID bson.ObjectID) (*models.Post, error) {
	post, err := s.load(ctx, postIDHex)
	if err != nil {
		return nil, err
	}
	if post.Status == models.PostApproved {
		return post, nil
	}
	ok, err := s.canSeeUnpublished(ctx, post.AuthorID, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("post not found")
	}
	return post, nil
}

func (s *PostService) find(ctx context.Context, f repository.PostFilter) ([]models.Post, error) {
	posts, err := s.Posts.Find(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list posts", err)
	}
	return posts, nil
}

// ListFeed lists approved posts, newest first.
func (s *PostService) ListFeed(ctx context.Context, limit, offset int64) ([]models.Post, error) {
	return s.find(ctx, repository.PostFilter{
		Statuses: []models.PostStatus{models.PostApproved},
		Limit:    limit,
		Offset:   offset,
	})
}

// ListByAuthor lists one user's posts. Strangers only see approved ones.
func (s *PostService) ListByAuthor(ctx context.Context, authorHex string, viewerID bson.ObjectID, limit, offset int64) ([]models.Post, error) {
	authorID, err := bson.ObjectIDFromHex(strings.TrimSpace(authorHex))
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}
	f := repository.PostFilter{AuthorID: &authorID, Limit: limit, Offset: offset}
	ok, err := s.canSeeUnpublished(ctx, authorID, viewerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		f.Statuses = []models.PostStatus{models.PostApproved}
	}
	return s.find(ctx, f)
}

// ListForReview is the moderation queue. status defaults to pending.
func (s *PostService) ListForReview(ctx context.Context, actorID bson.ObjectID, status string, limit, offset int64) ([]models.Post, error) {
	if err := s.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	st := models.PostStatus(strings.ToLower(strings.TrimSpace(status)))
	if st == "" {
		st = models.PostPending
	}
	if !st.Valid() {
		return nil, apperr.Invalid("status must be pending, approved or rejected")
	}
	return s.find(ctx, repository.PostFilter{
		Statuses: []models.PostStatus{st},
		Limit:    limit,
		Offset:   offset,
	})
}

// RecordView counts one view of an approved post.
func (s *PostService) RecordView(ctx context.Context, postIDHex string) error {
	post, err := s.load(ctx, postIDHex)
	if err != nil {
		return err
	}
	if post.Status != models.PostApproved {
		return apperr.NotFound("post not found")
	}
	if err := s.Posts.IncCounter(ctx, post.ID, models.CounterViews); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("post not found")
		}
		return apperr.Internal("count view", err)
	}
	return nil
}
