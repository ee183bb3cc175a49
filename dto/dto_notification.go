package dto

import "community-backend/internal/models"

type NotificationListResponse struct {
	Data   []models.Notification `json:"data"`
	Limit  int64                 `json:"limit"`
	Offset int64                 `json:"offset"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count" example:"3"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated" example:"3"`
}
