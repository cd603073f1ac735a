// Package model defines the persisted entities of the webforge panel.
package model

import (
	"time"
)

// User is a panel account. Accounts are never hard-deleted.
type User struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Username    string    `json:"username" gorm:"uniqueIndex;not null"`
	Email       string    `json:"email" gorm:"uniqueIndex;not null"`
	Password    string    `json:"-" gorm:"not null"`
	DisplayName string    `json:"displayName" form:"displayName"`
	Avatar      string    `json:"avatar"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Website is the single site a user may own. The unique index on UserId
// backs the one-website-per-account rule at the data-model level so a direct
// insert cannot bypass the workflow check.
type Website struct {
	Id            int       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserId        int       `json:"userId" gorm:"uniqueIndex;not null"`
	Name          string    `json:"name" form:"name"`
	Subdomain     string    `json:"subdomain" gorm:"uniqueIndex;not null"`
	Description   string    `json:"description" form:"description"`
	CurrentScript string    `json:"currentScript"`
	Enable        bool      `json:"enable" gorm:"default:true"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	User User         `json:"-" gorm:"foreignKey:UserId;constraint:OnDelete:CASCADE"`
	Logs []WebsiteLog `json:"-" gorm:"foreignKey:WebsiteId;constraint:OnDelete:CASCADE"`
}

// Template is a named, versioned reference to an uploaded zip archive. The
// backing file lives in the template store directory; its presence on disk
// is checked live rather than trusted from this row.
type Template struct {
	Id          int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string    `json:"name" form:"name" gorm:"uniqueIndex;not null"`
	DisplayName string    `json:"displayName" form:"displayName"`
	Description string    `json:"description" form:"description"`
	Version     string    `json:"version" form:"version"`
	FileName    string    `json:"fileName" gorm:"not null"`
	Enable      bool      `json:"enable" gorm:"default:true"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WebsiteLog is an append-only audit entry for one website. Entries are
// never updated or deleted except through the website cascade.
type WebsiteLog struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	WebsiteId int       `json:"websiteId" gorm:"index;not null"`
	Action    string    `json:"action" gorm:"not null"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
