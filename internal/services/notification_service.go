package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"community-backend/internal/apperr"
	m "community-backend/internal/models"
	"community-backend/internal/repository"
	"community-backend/internal/utils"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BuildTitleMessage renders the text of a notification from its type and params.
func BuildTitleMessage(t m.NotiType, p m.NotiParams) (title, message string, err error) {
	actor := p.ActorName
	if actor == "" {
		actor = "Someone"
	}
	switch t {
	case m.NotiPostApproved:
		if p.PostTitle == "" {
			return "", "", errors.New("missing PostTitle")
		}
		return "Your post was approved",
			fmt.Sprintf("%q is now visible to everyone.", p.PostTitle), nil

	case m.NotiPostRejected:
		if p.PostTitle == "" || p.Reason == "" {
			return "", "", errors.New("missing PostTitle/Reason")
		}
		return "Your post was rejected",
			fmt.Sprintf("%q was rejected: %s", p.PostTitle, p.Reason), nil

	case m.NotiLike:
		return "New like",
			fmt.Sprintf("%s liked your post %q.", actor, p.PostTitle), nil

	case m.NotiComment:
		return "New comment",
			fmt.Sprintf("%s commented on %q: %s", actor, p.PostTitle, p.Excerpt), nil

	case m.NotiCommentReplied:
		return "New reply",
			fmt.Sprintf("%s replied to your comment: %s", actor, p.Excerpt), nil

	case m.NotiCommentLiked:
		return "Comment liked",
			fmt.Sprintf("%s liked your comment: %s", actor, p.Excerpt), nil

	case m.NotiNewUser:
		return "New member",
			fmt.Sprintf("%s just joined the community.", actor), nil
	}
	return "", "", fmt.Errorf("unknown noti type: %s", t)
}

type NotificationService struct {
	Repo repository.NotificationRepository
	Now  func() time.Time
}

func (s *NotificationService) build(userID bson.ObjectID, typ m.NotiType, p m.NotiParams, now time.Time) (m.Notification, error) {
	title, msg, err := BuildTitleMessage(typ, p)
	if err != nil {
		return m.Notification{}, err
	}
	return m.Notification{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Message:    utils.Truncate(msg, 500),
		Read:       false,
		CreatedAt:  now,
		PostID:     p.PostID,
		CommentID:  p.CommentID,
		FromUserID: p.FromUserID,
	}, nil
}

// Notify creates one notification for userID.
func (s *NotificationService) Notify(ctx context.Context, userID bson.ObjectID, typ m.NotiType, p m.NotiParams) error {
	n, err := s.build(userID, typ, p, clock(s.Now).now())
	if err != nil {
		return err
	}
	return s.Repo.Insert(ctx, &n)
}

// NotifyMany fans one notification out to several users in a single batch.
func (s *NotificationService) NotifyMany(ctx context.Context, userIDs []bson.ObjectID, typ m.NotiType, p m.NotiParams) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := clock(s.Now).now()
	batch := make([]m.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		n, err := s.build(uid, typ, p, now)
		if err != nil {
			return err
		}
		batch = append(batch, n)
	}
	return s.Repo.InsertMany(ctx, batch)
}

func (s *NotificationService) List(ctx context.Context, userID bson.ObjectID, unreadOnly bool, limit, offset int64) ([]m.Notification, error) {
	out, err := s.Repo.ListByUser(ctx, userID, repository.NotificationFilter{
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, apperr.Internal("list notifications", err)
	}
	return out, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID bson.ObjectID) (int64, error) {
	n, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("count notifications", err)
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, idHex string, userID bson.ObjectID) (*m.Notification, error) {
	id, err := parseID(idHex, "notification")
	if err != nil {
		return nil, err
	}
	n, err := s.Repo.MarkRead(ctx, id, userID, clock(s.Now).now())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("notification not found")
	}
	if err != nil {
		return nil, apperr.Internal("mark notification read", err)
	}
	return n, nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID bson.ObjectID) (int64, error) {
	n, err := s.Repo.MarkAllRead(ctx, userID, clock(s.Now).now())
	if err != nil {
		return 0, apperr.Internal("mark notifications read", err)
	}
	return n, nil
}

func (s *NotificationService) Delete(ctx context.Context, idHex string, userID bson.ObjectID) error {
	id, err := parseID(idHex, "notification")
	if err != nil {
		return err
	}
	err = s.Repo.Delete(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("notification not found")
	}
	if err != nil {
		return apperr.Internal("delete notification", err)
	}
	return nil
}
