package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NewsletterArticle = "article"
	NewsletterVideo   = "video"
)

type NewsletterPost struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Content     string             `bson:"content,omitempty" json:"content,omitempty"`
	ContentHTML string             `bson:"contentHtml,omitempty" json:"contentHtml,omitempty"`
	Type        string             `bson:"type" json:"type"`
	Link        string             `bson:"link,omitempty" json:"link,omitempty"`
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	VideoID     string             `bson:"videoId,omitempty" json:"videoId,omitempty"`
	Image       *Attachment        `bson:"image,omitempty" json:"image,omitempty"`
	Author      string             `bson:"author" json:"author"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
