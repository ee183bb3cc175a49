package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"community-backend/internal/apperr"
	"community-backend/internal/cursor"
	"community-backend/internal/models"
	"community-backend/internal/repository"
	"community-backend/internal/utils"

	"github.com/gofiber/fiber/v2/log"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const MaxCommentRunes = 2000

type LikeResult struct {
	Liked        bool  `json:"isLiked"`
	AlreadyLiked bool  `json:"alreadyLiked"`
	LikeCount    int64 `json:"likeCount"`
}

type CommentPage struct {
	Items      []models.Comment
	NextCursor *string
}

// EngagementService covers likes and comments on approved posts. Counter
// updates are $inc only, so counts never go down.
type EngagementService struct {
	Posts         repository.PostRepository
	Comments      repository.CommentRepository
	Likes         repository.LikeRepository
	Users         repository.UserRepository
	Notifications *NotificationService
	Tx            repository.TxRunner
	Now           func() time.Time
}

func (s *EngagementService) approvedPost(ctx context.Context, postIDHex string) (*models.Post, error) {
	id, err := parseID(postIDHex, "post")
	if err != nil {
		return nil, err
	}
	p, err := s.Posts.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && p.Status != models.PostApproved) {
		return nil, apperr.NotFound("post not found")
	}
	if err != nil {
		return nil, apperr.Internal("find post", err)
	}
	return p, nil
}

func (s *EngagementService) comment(ctx context.Context, idHex string) (*models.Comment, error) {
	id, err := parseID(idHex, "comment")
	if err != nil {
		return nil, err
	}
	c, err := s.Comments.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("comment not found")
	}
	if err != nil {
		return nil, apperr.Internal("find comment", err)
	}
	return c, nil
}

func (s *EngagementService) actorName(ctx context.Context, id bson.ObjectID) string {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil || u.DisplayName == "" {
		return ""
	}
	return u.DisplayName
}

// notify is best-effort: the like or comment already stands.
func (s *EngagementService) notify(ctx context.Context, to bson.ObjectID, typ models.NotiType, p models.NotiParams) {
	if err := s.Notifications.Notify(ctx, to, typ, p); err != nil {
		log.Warnf("notify %s (%s): %v", to.Hex(), typ, err)
	}
}

func (s *EngagementService) LikePost(ctx context.Context, postIDHex string, userID bson.ObjectID) (*LikeResult, error) {
	post, err := s.approvedPost(ctx, postIDHex)
	if err != nil {
		return nil, err
	}
	dup, err := s.Likes.Insert(ctx, &models.Like{
		UserID:    userID,
		PostID:    post.ID,
		CreatedAt: clock(s.Now).now(),
	})
	if err != nil {
		return nil, apperr.Internal("insert like", err)
	}
	if dup {
		return &LikeResult{Liked: true, AlreadyLiked: true, LikeCount: post.LikeCount}, nil
	}
	if err := s.Posts.IncCounter(ctx, post.ID, models.CounterLikes); err != nil {
		return nil, apperr.Internal("count like", err)
	}

	if post.AuthorID != userID {
		s.notify(ctx, post.AuthorID, models.NotiLike, models.NotiParams{
			PostTitle:  post.Title,
			ActorName:  s.actorName(ctx, userID),
			PostID:     &post.ID,
			FromUserID: &userID,
		})
	}
	return &LikeResult{Liked: true, LikeCount: post.LikeCount + 1}, nil
}

func (s *EngagementService) LikeComment(ctx context.Context, commentIDHex string, userID bson.ObjectID) (*LikeResult, error) {
	c, err := s.comment(ctx, commentIDHex)
	if err != nil {
		return nil, err
	}
	if _, err := s.approvedPost(ctx, c.PostID.Hex()); err != nil {
		return nil, apperr.NotFound("comment not found")
	}

	dup, err := s.Likes.Insert(ctx, &models.Like{
		UserID:    userID,
		PostID:    c.PostID,
		CommentID: &c.ID,
		CreatedAt: clock(s.Now).now(),
	})
	if err != nil {
		return nil, apperr.Internal("insert like", err)
	}
	if dup {
		return &LikeResult{Liked: true, AlreadyLiked: true, LikeCount: c.LikeCount}, nil
	}
	if err := s.Comments.IncLikeCount(ctx, c.ID); err != nil {
		return nil, apperr.Internal("count comment like", err)
	}

	if c.UserID != userID {
		s.notify(ctx, c.UserID, models.NotiCommentLiked, models.NotiParams{
			ActorName:  s.actorName(ctx, userID),
			Excerpt:    utils.Truncate(utils.MaskProfanity(c.Text), 80),
			PostID:     &c.PostID,
			CommentID:  &c.ID,
			FromUserID: &userID,
		})
	}
	return &LikeResult{Liked: true, LikeCount: c.LikeCount + 1}, nil
}

// AddComment stores a comment (or a reply when parentIDHex is set) and bumps
// the post's comment_count in one transaction.
func (s *EngagementService) AddComment(ctx context.Context, postIDHex string, userID bson.ObjectID, text, parentIDHex string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Invalid("text is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentRunes {
		return nil, apperr.Newf(apperr.KindValidation, "text must be at most %d characters", MaxCommentRunes)
	}
	post, err := s.approvedPost(ctx, postIDHex)
	if err != nil {
		return nil, err
	}

	var parent *models.Comment
	if strings.TrimSpace(parentIDHex) != "" {
		parent, err = s.comment(ctx, parentIDHex)
		if err != nil {
			return nil, err
		}
		if parent.PostID != post.ID {
			return nil, apperr.Invalid("parent comment belongs to another post")
		}
	}

	c := &models.Comment{
		ID:        bson.NewObjectID(),
		PostID:    post.ID,
		UserID:    userID,
		Text:      text,
		CreatedAt: clock(s.Now).now(),
	}
	if parent != nil {
		c.ParentID = &parent.ID
	}

	err = s.Tx.WithTransaction(ctx, func(tx context.Context) error {
		if err := s.Comments.Insert(tx, c); err != nil {
			return err
		}
		return s.Posts.IncCounter(tx, post.ID, models.CounterComments)
	})
	if err != nil {
		return nil, apperr.Internal("insert comment", err)
	}

	actor := s.actorName(ctx, userID)
	excerpt := utils.Truncate(utils.MaskProfanity(text), 80)
	if parent != nil && parent.UserID != userID {
		s.notify(ctx, parent.UserID, models.NotiCommentReplied, models.NotiParams{
			PostTitle:  post.Title,
			ActorName:  actor,
			Excerpt:    excerpt,
			PostID:     &post.ID,
			CommentID:  &c.ID,
			FromUserID: &userID,
		})
	}
	// The author already heard about a reply to their own comment.
	if post.AuthorID != userID && (parent == nil || parent.UserID != post.AuthorID) {
		s.notify(ctx, post.AuthorID, models.NotiComment, models.NotiParams{
			PostTitle:  post.Title,
			ActorName:  actor,
			Excerpt:    excerpt,
			PostID:     &post.ID,
			CommentID:  &c.ID,
			FromUserID: &userID,
		})
	}
	return c, nil
}

// ListComments pages a post's comments newest first using an opaque cursor.
// Text is profanity-masked.
func (s *EngagementService) ListComments(ctx context.Context, postIDHex, cursorStr string, limit int64) (*CommentPage, error) {
	post, err := s.approvedPost(ctx, postIDHex)
	if err != nil {
		return nil, err
	}

	var after *repository.CommentCursor
	if cursorStr != "" {
		t, oid, derr := cursor.Decode(cursorStr)
		if derr != nil {
			return nil, apperr.Invalid("invalid cursor")
		}
		after = &repository.CommentCursor{CreatedAt: t, ID: oid}
	}

	all, err := s.Comments.ListByPost(ctx, post.ID, after, limit+1)
	if err != nil {
		return nil, apperr.Internal("list comments", err)
	}

	page := &CommentPage{Items: all}
	if int64(len(all)) > limit {
		page.Items = all[:limit]
		last := page.Items[len(page.Items)-1]
		next := cursor.Encode(last.CreatedAt, last.ID)
		page.NextCursor = &next
	}
	for i := range page.Items {
		page.Items[i].Text = utils.MaskProfanity(page.Items[i].Text)
	}
	return page, nil
}

func (s *EngagementService) IsPostLiked(ctx context.Context, postID, userID bson.ObjectID) bool {
	if userID.IsZero() {
		return false
	}
	ok, err := s.Likes.IsLiked(ctx, userID, postID, nil)
	if err != nil {
		log.Warnf("check like: %v", err)
		return false
	}
	return ok
}
