package main

import (
	"net/http"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/gallery"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// GalleryList returns the gallery items of every user, newest first.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/gallery
func GalleryList(p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Gallery.ItemList(p, tx, user)
}

// UserGalleryList returns the gallery of a user. Users blocking each other
// cannot see each other's gallery.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/user/{id}/gallery
func UserGalleryList(id uint, p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Gallery.UserItems(p, tx, id, user)
}

// GalleryItemIndex returns a gallery item.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/gallery/{id}
func GalleryItemIndex(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	return globals.Gallery.GetItem(tx, id, user)
}

// GalleryItemCreate uploads an image to the gallery of the JWT user.
// You can request this method with the following cURL request:
//
//	curl -k -X POST -F file=@/path/to/image.png -F caption="My robot"
//	  https://localhost:4430/1.0/gallery
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func GalleryItemCreate(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	user, em := userFromRequest(tx, r, true)
	if em != nil {
		return nil, em
	}

	f, fh, em := getRequestFile(r)
	if em != nil {
		return nil, em
	}
	defer f.Close()

	ct, err := fileContentType(f, fh)
	if err != nil {
		return nil, gz.NewErrorMessageWithBase(gz.ErrorForm, err)
	}

	// The multipart form was already parsed by getRequestFile.
	var ci gallery.CreateItem
	if em := ParseStruct(&ci, r, true); em != nil {
		return nil, em
	}

	response, em := globals.Gallery.CreateItem(r.Context(), tx, user, f, fh.Filename, ct, &ci)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// GalleryItemUpdate updates the caption of a gallery item.
// You can request this method with the following cURL request:
//
//	curl -k -X PATCH -d '{"caption":"New caption"}'
//	  https://localhost:4430/1.0/gallery/{id}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func GalleryItemUpdate(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var ui gallery.UpdateItem
	if em := parseBody(&ui, r); em != nil {
		return nil, em
	}

	response, em := globals.Gallery.UpdateItem(r.Context(), tx, id, &ui, user)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// GalleryItemRemove removes a gallery item and its image.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE https://localhost:4430/1.0/gallery/{id}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func GalleryItemRemove(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	item, em := globals.Gallery.RemoveItem(r.Context(), tx, id, user)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	globals.Gallery.ItemRemoved(r.Context(), item)
	return item, nil
}
