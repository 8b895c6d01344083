package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rvalverde/assettrack-backend/pkg/enums"
)

// Notification stores in-app notification payloads scoped to users.
type Notification struct {
	ID          uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID              `gorm:"column:recipient_id;type:uuid;not null"`
	Kind        enums.NotificationKind `gorm:"column:kind;type:notification_kind;not null"`
	Title       string                 `gorm:"type:text;not null"`
	Message     string                 `gorm:"type:text;not null"`
	Link        *string                `gorm:"type:text"`
	DedupeKey   *string                `gorm:"column:dedupe_key;uniqueIndex:idx_notifications_dedupe_key,where:dedupe_key IS NOT NULL"`
	ReadAt      *time.Time             `gorm:"type:timestamptz"`
	CreatedAt   time.Time              `gorm:"type:timestamptz;default:now()"`
}
