package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultAvatar is the placeholder shown until the user uploads their own.
// Never deleted from the media store.
const DefaultAvatar = "https://res.cloudinary.com/project-store/image/upload/project-store/defaults/avatar.png"

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName         string             `bson:"fullName" json:"fullName"`
	Username         string             `bson:"username" json:"username"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password" json:"-"`
	Avatar           string             `bson:"avatar" json:"avatar"`
	VerifyCode       string             `bson:"verifyCode" json:"-"`
	VerifyCodeExpiry time.Time          `bson:"verifyCodeExpiry" json:"-"`
	IsMailVerified   bool               `bson:"isMailVerified" json:"isMailVerified"`
	RefreshToken     string             `bson:"refreshToken" json:"-"`
}
