package dto

import (
	"time"

	"community-backend/internal/models"
)

type CreateCommentRequest struct {
	Text     string `json:"text" example:"Great post!"`
	ParentID string `json:"parentId,omitempty"`
}

type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	ParentID  *string   `json:"parentId,omitempty"`
	Text      string    `json:"text"`
	LikeCount int64     `json:"likeCount"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewCommentResponse(c *models.Comment) CommentResponse {
	r := CommentResponse{
		ID:        c.ID.Hex(),
		PostID:    c.PostID.Hex(),
		UserID:    c.UserID.Hex(),
		Text:      c.Text,
		LikeCount: c.LikeCount,
		CreatedAt: c.CreatedAt,
	}
	if c.ParentID != nil {
		p := c.ParentID.Hex()
		r.ParentID = &p
	}
	return r
}

type ListCommentsResponse struct {
	Comments   []CommentResponse `json:"comments"`
	NextCursor *string           `json:"next_cursor"`
	HasMore    bool              `json:"has_more"`
}

type LikeResponse struct {
	Status    string `json:"status" example:"liked"`
	IsLiked   bool   `json:"isLiked" example:"true"`
	LikeCount int64  `json:"likeCount" example:"3"`
}
