package models

import (
	"time"

	"github.com/samber/lo"
)

type Access string

const (
	AccessPublic     Access = "public"
	AccessRestricted Access = "restricted"
)

type QuestionType string

const (
	QuestionSingleLine  QuestionType = "singleLine"
	QuestionMultiLine   QuestionType = "multiLine"
	QuestionNumberInput QuestionType = "numberInput"
	QuestionCheckbox    QuestionType = "checkbox"
)

type CheckboxOption struct {
	ID   string `bson:"id" json:"id"`
	Text string `bson:"text" json:"text" binding:"required"`
}

type Question struct {
	ID          string           `bson:"id" json:"id"`
	Type        QuestionType     `bson:"type" json:"type" binding:"required,oneof=singleLine multiLine numberInput checkbox"`
	Required    bool             `bson:"required" json:"required"`
	Text        string           `bson:"text" json:"text" binding:"required"`
	Visible     bool             `bson:"visible" json:"visible"`
	Description string           `bson:"description,omitempty" json:"description,omitempty"`
	Placeholder string           `bson:"placeholder,omitempty" json:"placeholder,omitempty"`
	Multiple    bool             `bson:"multiple,omitempty" json:"multiple,omitempty"`
	Options     []CheckboxOption `bson:"options,omitempty" json:"options,omitempty" binding:"dive"`
}

/** --------------------ENTITIES-------------------- */
// Template is a question set that forms are submitted against
type Template struct {
	ID           string     `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Title        string     `gorm:"index" bson:"title" json:"title"`
	Description  string     `bson:"description" json:"description"`
	Image        string     `bson:"image" json:"image"`
	Topic        string     `bson:"topic" json:"topic"`
	Tags         []string   `gorm:"serializer:json;type:text" bson:"tags" json:"tags"`
	CreatorID    string     `gorm:"index;not null;type:varchar(36)" bson:"creator" json:"creator"`
	Access       Access     `gorm:"type:varchar(20);default:public" bson:"access" json:"access"`
	AllowedUsers []string   `gorm:"serializer:json;type:text" bson:"allowedUsers" json:"allowedUsers"`
	Questions    []Question `gorm:"serializer:json;type:text" bson:"questions" json:"questions"`
	Likes        int        `gorm:"not null;default:0;index" bson:"likes" json:"likes"`
	// LikedBy lives in template_likes for the relational store.
	LikedBy   []string  `gorm:"-" bson:"likedBy" json:"likedBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// TemplateLike is one row of the like set in the relational store
type TemplateLike struct {
	TemplateID string    `gorm:"primaryKey;type:varchar(36)"`
	UserID     string    `gorm:"primaryKey;type:varchar(36)"`
	CreatedAt  time.Time
}

func (t *Template) IsPublic() bool {
	return t.Access != AccessRestricted
}

func (t *Template) IsOwner(userID string) bool {
	return userID != "" && t.CreatorID == userID
}

func (t *Template) IsAllowed(userID string) bool {
	return userID != "" && lo.Contains(t.AllowedUsers, userID)
}

func (t *Template) LikedByUser(userID string) bool {
	return lo.Contains(t.LikedBy, userID)
}

/** -------------------- DTOs -------------------- */
// Request
type CreateTemplateRequest struct {
	Title        string     `json:"title" binding:"required,max=200"`
	Description  string     `json:"description"`
	Image        string     `json:"image"`
	Topic        string     `json:"topic"`
	Tags         []string   `json:"tags"`
	Access       Access     `json:"access" binding:"omitempty,oneof=public restricted"`
	AllowedUsers []string   `json:"allowedUsers"`
	Questions    []Question `json:"questions" binding:"dive"`
}

// UpdateTemplateRequest patches a template, nil fields are left untouched
type UpdateTemplateRequest struct {
	Title        *string     `json:"title" binding:"omitempty,max=200"`
	Description  *string     `json:"description"`
	Image        *string     `json:"image"`
	Topic        *string     `json:"topic"`
	Tags         *[]string   `json:"tags"`
	Access       *Access     `json:"access" binding:"omitempty,oneof=public restricted"`
	AllowedUsers *[]string   `json:"allowedUsers"`
	Questions    *[]Question `json:"questions" binding:"omitempty,dive"`
}

type TemplateIDsRequest struct {
	IDs []string `json:"ids" binding:"required,min=1,dive,required"`
}

// Response
type TagCount struct {
	Tag   string `bson:"_id" json:"tag"`
	Count int    `bson:"count" json:"count"`
}

// LikeResult is the state broadcast after a like toggle
type LikeResult struct {
	TemplateID string `json:"templateId"`
	Likes      int    `json:"likes"`
	Action     string `json:"action"`
	UserID     string `json:"userId"`
}

const (
	LikeIncreased = "increased"
	LikeDecreased = "decreased"
)
