package lookups

import (
	"fmt"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Country is a country users can pick in their profile.
type Country struct {
	gorm.Model
	Name *string `gorm:"not null;unique" json:"name"`
	// Code is the ISO 3166-1 alpha-2 code
	Code string `gorm:"type:varchar(2)" json:"code"`
}

// Countries is an array of Country
type Countries []Country

// Role is a user role shown in profiles.
type Role struct {
	gorm.Model
	Name  *string `gorm:"not null;unique" json:"name"`
	Title string  `json:"title"`
}

// Roles is an array of Role
type Roles []Role

// CountryInput is used to create and update countries.
type CountryInput struct {
	Name string `json:"name" form:"name" validate:"required,max=128"`
	Code string `json:"code" form:"code" validate:"omitempty,len=2"`
}

// RoleInput is used to create and update roles.
type RoleInput struct {
	Name  string `json:"name" form:"name" validate:"required,max=64,alphanumspace"`
	Title string `json:"title" form:"title" validate:"max=255"`
}

func notFound(err error, id uint) *gz.ErrMsg {
	if gorm.IsRecordNotFoundError(err) {
		return gz.NewErrorMessageWithArgs(gz.ErrorIDNotFound, err, []string{fmt.Sprint(id)})
	}
	return gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
}
