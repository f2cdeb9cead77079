package lookups

import (
	"context"

	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// Service is the main struct exported by this Lookups Service. Admin edits
// go through the request transaction. Callers must Invalidate the Cache once
// the transaction is committed.
type Service struct {
	Cache *Cache
}

// CountryList returns the cached countries.
func (ls *Service) CountryList() (Countries, *gz.ErrMsg) {
	list, err := ls.Cache.Countries()
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return list, nil
}

// RoleList returns the cached roles.
func (ls *Service) RoleList() (Roles, *gz.ErrMsg) {
	list, err := ls.Cache.Roles()
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	return list, nil
}

// CreateCountry creates a country.
func (ls *Service) CreateCountry(ctx context.Context, tx *gorm.DB, in *CountryInput) (*Country, *gz.ErrMsg) {
	var count int
	if err := tx.Model(&Country{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if count > 0 {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorResourceExists, nil, []string{in.Name})
	}
	c := Country{Name: &in.Name, Code: in.Code}
	if err := tx.Create(&c).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	gz.LoggerFromContext(ctx).Info("Country created. Name=", in.Name)
	return &c, nil
}

// UpdateCountry updates a country.
func (ls *Service) UpdateCountry(ctx context.Context, tx *gorm.DB, id uint, in *CountryInput) (*Country, *gz.ErrMsg) {
	var c Country
	if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err, id)
	}
	if err := tx.Model(&c).Updates(map[string]interface{}{"name": in.Name, "code": in.Code}).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	gz.LoggerFromContext(ctx).Info("Country updated. ID=", id)
	return &c, nil
}

// DeleteCountry removes a country.
func (ls *Service) DeleteCountry(ctx context.Context, tx *gorm.DB, id uint) (*Country, *gz.ErrMsg) {
	var c Country
	if err := tx.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, notFound(err, id)
	}
	if err := tx.Delete(&c).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	gz.LoggerFromContext(ctx).Info("Country removed. ID=", id)
	return &c, nil
}

// CreateRole creates a role.
func (ls *Service) CreateRole(ctx context.Context, tx *gorm.DB, in *RoleInput) (*Role, *gz.ErrMsg) {
	var count int
	if err := tx.Model(&Role{}).Where("name = ?", in.Name).Count(&count).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorNoDatabase, err)
	}
	if count > 0 {
		return nil, gz.NewErrorMessageWithArgs(gz.ErrorResourceExists, nil, []string{in.Name})
	}
	r := Role{Name: &in.Name, Title: in.Title}
	if err := tx.Create(&r).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	gz.LoggerFromContext(ctx).Info("Role created. Name=", in.Name)
	return &r, nil
}

// UpdateRole updates a role.
func (ls *Service) UpdateRole(ctx context.Context, tx *gorm.DB, id uint, in *RoleInput) (*Role, *gz.ErrMsg) {
	var r Role
	if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
		return nil, notFound(err, id)
	}
	if err := tx.Model(&r).Updates(map[string]interface{}{"name": in.Name, "title": in.Title}).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbSave, err)
	}
	gz.LoggerFromContext(ctx).Info("Role updated. ID=", id)
	return &r, nil
}

// DeleteRole removes a role.
func (ls *Service) DeleteRole(ctx context.Context, tx *gorm.DB, id uint) (*Role, *gz.ErrMsg) {
	var r Role
	if err := tx.Where("id = ?", id).First(&r).Error; err != nil {
		return nil, notFound(err, id)
	}
	if err := tx.Delete(&r).Error; err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorDbDelete, err)
	}
	gz.LoggerFromContext(ctx).Info("Role removed. ID=", id)
	return &r, nil
}
