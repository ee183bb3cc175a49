package dto

import (
	"time"

	"community-backend/internal/models"
)

// ===== Request =====
type CreatePostRequest struct {
	Content string `json:"content" example:"Hello from the community! #intro"`
	Title   string `json:"title,omitempty" example:"Hello"`
	Summary string `json:"summary,omitempty"`
}

type ApprovePostRequest struct {
	PostID string `json:"postId" example:"66c6248b98c56c39f018e7d2"`
}

type RejectPostRequest struct {
	PostID string `json:"postId" example:"66c6248b98c56c39f018e7d2"`
	Reason string `json:"reason" example:"off topic"`
}

// ===== Response =====
type PostResponse struct {
	ID              string     `json:"id" example:"66c6248b98c56c39f018e7d2"`
	AuthorID        string     `json:"authorId" example:"66c6248b98c56c39f018e7d3"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary"`
	Content         string     `json:"content"`
	Tags            []string   `json:"tags"`
	Status          string     `json:"status" example:"pending"`
	IsApproved      bool       `json:"isApproved"`
	LikeCount       int64      `json:"likeCount"`
	CommentCount    int64      `json:"commentCount"`
	ViewCount       int64      `json:"viewCount"`
	IsLiked         bool       `json:"isLiked"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
}

// NewPostResponse renders p. isApproved is derived from status.
func NewPostResponse(p *models.Post) PostResponse {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:              p.ID.Hex(),
		AuthorID:        p.AuthorID.Hex(),
		Title:           p.Title,
		Summary:         p.Summary,
		Content:         p.Content,
		Tags:            tags,
		Status:          string(p.Status),
		IsApproved:      p.Status == models.PostApproved,
		LikeCount:       p.LikeCount,
		CommentCount:    p.CommentCount,
		ViewCount:       p.ViewCount,
		RejectionReason: p.RejectionReason,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		ApprovedAt:      p.ApprovedAt,
		RejectedAt:      p.RejectedAt,
	}
}

func NewPostList(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for i := range posts {
		out = append(out, NewPostResponse(&posts[i]))
	}
	return out
}

type CreatePostResponse struct {
	ID             string       `json:"id" example:"66c6248b98c56c39f018e7d2"`
	RemainingPosts int          `json:"remainingPosts" example:"1"`
	PostsToday     int          `json:"postsToday" example:"1"`
	Post           PostResponse `json:"post"`
}

type ModerationResponse struct {
	Message string       `json:"message" example:"post approved"`
	Post    PostResponse `json:"post"`
}

type PostListResponse struct {
	Data   []PostResponse `json:"data"`
	Limit  int64          `json:"limit" example:"20"`
	Offset int64          `json:"offset" example:"0"`
}
