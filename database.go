package main

// Import this file's dependencies
import (
	"context"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/gallery"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/lookups"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	_ "github.com/go-sql-driver/mysql"
	"github.com/jinzhu/gorm"
)

// DBMigrate auto migrates database tables
func DBMigrate(ctx context.Context, db *gorm.DB) {
	// Note about Migration from GORM doc: http://jinzhu.me/gorm/database.html#migration
	//
	// WARNING: AutoMigrate will ONLY create tables, missing columns and missing indexes,
	// and WON'T change existing column's type or delete unused columns to protect your data.
	//

	if db != nil {
		db.AutoMigrate(
			&gz.AccessToken{},
			&users.User{},
			&users.IgnoreUser{},
			&lookups.Country{},
			&lookups.Role{},
			&reputation.Entry{},
			&forum.Section{},
			&forum.Topic{},
			&gallery.Item{},
			&comments.Comment{},
			&ElasticSearchConfig{},
			globals.Permissions.DBTable(),
		)
		gz.LoggerFromContext(ctx).Debug("Database tables migrated")
	}
}

// DBDropModels drops all tables from DB. Used by tests.
func DBDropModels(ctx context.Context, db *gorm.DB) {
	if db != nil {
		db.DropTableIfExists(
			&comments.Comment{},
			&gallery.Item{},
			&forum.Topic{},
			&forum.Section{},
			&reputation.Entry{},
			&lookups.Role{},
			&lookups.Country{},
			&users.IgnoreUser{},
			&users.User{},
			&gz.AccessToken{},
			&ElasticSearchConfig{},
			globals.Permissions.DBTable(),
		)
	}
}

// lookupDesc is used by DBAddDefaultData.
type lookupDesc struct {
	name  string
	title string
}

// DBAddDefaultData adds default data. Eg. the general forum section and the
// default user roles.
func DBAddDefaultData(ctx context.Context, db *gorm.DB) {
	if db == nil {
		return
	}

	var count int
	db.Model(&forum.Section{}).Where("is_general = ?", true).Count(&count)
	if count == 0 {
		general := lookupDesc{"general", "General discussion"}
		s := forum.Section{
			Name:      &general.name,
			Slug:      &general.name,
			Title:     general.title,
			IsActive:  true,
			IsGeneral: true,
		}
		// This Create will return error if the value already exist.
		if err := db.Create(&s).Error; err != nil {
			gz.LoggerFromContext(ctx).Info("Could not create the general forum section:", err)
		}
	}

	defaultRoles := []lookupDesc{
		{"user", "User"},
		{"moderator", "Moderator"},
	}
	for _, r := range defaultRoles {
		role := lookups.Role{Name: &r.name, Title: r.title}
		db.Where(lookups.Role{Name: &r.name}).FirstOrCreate(&role)
	}
}
