package main

import (
	"net/http"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// CommentList returns the comments posted on an object, oldest first.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/forum-topic/{id}/comments
func CommentList(id uint, p *gz.PaginationRequest, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {

	rel, em := readRelation(r, "relation")
	if em != nil {
		return nil, nil, em
	}
	return globals.Comments.CommentList(p, tx, rel, id)
}

// CommentCreate posts a comment on an object.
// You can request this method with the following cURL request:
//
//	curl -k -H "Content-Type: application/json" -X POST -d '{"content":"Nice!"}'
//	  https://localhost:4430/1.0/user-gallery/{id}/comments
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func CommentCreate(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	rel, em := readRelation(r, "relation")
	if em != nil {
		return nil, em
	}
	var cc comments.CreateComment
	if em := parseBody(&cc, r); em != nil {
		return nil, em
	}

	c, em := globals.Comments.CreateComment(r.Context(), tx, user, rel, id, &cc)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return c, nil
}

// CommentRemove removes a comment and the votes it received.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE https://localhost:4430/1.0/comments/{id}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func CommentRemove(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	c, em := globals.Comments.RemoveComment(r.Context(), tx, id, user)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	return c, nil
}
