package model

import "time"

// User 用户（问答系统的身份主体）
type User struct {
	ID           string    `json:"id" bson:"_id" db:"id"`
	Username     string    `json:"username" bson:"username" db:"username"`
	Email        string    `json:"email" bson:"email" db:"email"`
	FirstName    string    `json:"first_name" bson:"first_name" db:"first_name"`
	LastName     string    `json:"last_name" bson:"last_name" db:"last_name"`
	PasswordHash string    `json:"-" bson:"password_hash" db:"password_hash"` // never expose in JSON
	CreatedAt    time.Time `json:"-" bson:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"-" bson:"updated_at" db:"updated_at"`
}

// OwnerID 用户资源的所有者即其本人
func (u *User) OwnerID() string {
	return u.ID
}
