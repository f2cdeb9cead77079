package main

import (
	"net/http"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// RatingList returns a handler listing the votes given to an object of the
// given relation.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/forum/topic/{id}/get_rating
func RatingList(rel reputation.Relation) gz.HandlerWithResult {
	return IDPaginationHandler("id", func(id uint, p *gz.PaginationRequest, _ *users.User, tx *gorm.DB,
		w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
		return globals.Reputation.GetVotes(p, tx, id, rel)
	})
}

// UserRatingList returns the votes received by a user on any of their content.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/user/{id}/get_rating
func UserRatingList(id uint, p *gz.PaginationRequest, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Reputation.GetUserVotes(p, tx, id)
}

// RatingSubmit returns a handler that records the vote of the JWT user on an
// object of the given relation. A previous vote is replaced. It responds
// with the new score of the object.
// You can request this method with the following cURL request:
//
//	curl -k -H "Content-Type: application/json" -X POST -d '{"rating":1}'
//	  https://localhost:4430/1.0/forum/topic/{id}/set_rating
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func RatingSubmit(rel reputation.Relation) gz.HandlerWithResult {
	return IDHandler("id", true, func(id uint, user *users.User, tx *gorm.DB,
		w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

		var in reputation.VoteInput
		if em := parseBody(&in, r); em != nil {
			return nil, em
		}
		score, em := globals.Reputation.SubmitVote(r.Context(), tx, user, id, rel, &in)
		if em != nil {
			return nil, em
		}
		if em := commit(tx, gz.ErrorDbSave); em != nil {
			return nil, em
		}
		return score, nil
	})
}

// RatingRemove returns a handler that removes the vote of the JWT user on an
// object of the given relation. It responds with the new score of the object.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE https://localhost:4430/1.0/forum/topic/{id}/set_rating
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func RatingRemove(rel reputation.Relation) gz.HandlerWithResult {
	return IDHandler("id", true, func(id uint, user *users.User, tx *gorm.DB,
		w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

		score, em := globals.Reputation.RemoveVote(r.Context(), tx, user, id, rel)
		if em != nil {
			return nil, em
		}
		if em := commit(tx, gz.ErrorDbDelete); em != nil {
			return nil, em
		}
		return score, nil
	})
}
