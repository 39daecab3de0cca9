package models

import "time"

type Answer struct {
	Index  int    `bson:"index" json:"index"`
	Text   string `bson:"text" json:"text"`
	ID     string `bson:"id" json:"id" binding:"required"`
	Answer any    `bson:"answer" json:"answer"`
}

/** --------------------ENTITIES-------------------- */
// Form is one submission of a template
type Form struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" bson:"_id" json:"id"`
	Title      string    `gorm:"index" bson:"title" json:"title"`
	TemplateID string    `gorm:"index;not null;type:varchar(36)" bson:"template" json:"template"`
	CreatorID  string    `gorm:"index;not null;type:varchar(36)" bson:"creator" json:"creator"`
	Answers    []Answer  `gorm:"serializer:json;type:text" bson:"answers" json:"answers"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

/** -------------------- DTOs -------------------- */
type SubmitFormRequest struct {
	Answers []Answer `json:"answers" binding:"dive"`
}

// FormSubmission is a form with the submitter e-mail resolved
type FormSubmission struct {
	Form
	CreatorEmail string `json:"creatorEmail,omitempty"`
}
