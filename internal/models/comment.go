package models

import "time"

/** --------------------ENTITIES-------------------- */
// Comment is a message attached to a template
type Comment struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Text       string    `gorm:"not null;type:text" bson:"text" json:"text"`
	UserID     string    `gorm:"index;not null;type:varchar(36)" bson:"user" json:"-"`
	TemplateID string    `gorm:"index:idx_comments_template_created,priority:1;not null;type:varchar(36)" bson:"template" json:"template"`
	CreatedAt  time.Time `gorm:"index:idx_comments_template_created,priority:2,sort:desc" bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`

	// Author is resolved on read.
	Author *Author `gorm:"-" bson:"-" json:"user,omitempty"`
}

// CommentDeleted is broadcast instead of the comment once it is gone
type CommentDeleted struct {
	CommentID string    `json:"commentId"`
	DeletedAt time.Time `json:"deletedAt"`
}
