package dto

// ===== Error Response =====
type ErrorResponse struct {
	Error string `json:"error" example:"invalid body"`
	Code  string `json:"code,omitempty" example:"invalid_request"`
}

// QuotaErrorResponse is the 429 body of POST /posts.
type QuotaErrorResponse struct {
	Error          string `json:"error" example:"daily post limit reached"`
	Code           string `json:"code" example:"quota_exceeded"`
	RemainingPosts int    `json:"remainingPosts" example:"0"`
	PostsToday     int    `json:"postsToday" example:"2"`
}
