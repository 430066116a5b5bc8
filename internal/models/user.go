package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the local record of an identity-provider account.
// ExternalID, UserName and Email are each backed by a unique index.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ExternalID string             `bson:"externalId" json:"externalId"` // identity provider subject
	UserName   string             `bson:"userName" json:"userName"`
	Email      string             `bson:"email" json:"email"`
	Img        string             `bson:"img,omitempty" json:"img,omitempty"`
	SavedPosts []string           `bson:"savedPosts" json:"savedPosts"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Author is the public projection of a user embedded in post and comment responses.
type Author struct {
	ID       primitive.ObjectID `json:"_id"`
	UserName string             `json:"userName"`
	Img      string             `json:"img,omitempty"`
}

func (u *User) Author() *Author {
	if u == nil {
		return nil
	}
	return &Author{ID: u.ID, UserName: u.UserName, Img: u.Img}
}
