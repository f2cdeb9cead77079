package main

import (
	"net/http"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
)

// latestTopicsCount is the number of topics listed per section in the forum
// index.
const latestTopicsCount = 5

// ForumIndex returns the active sections with their latest topics.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/forum
func ForumIndex(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	return globals.Forum.LatestTopicsPerSection(tx, latestTopicsCount)
}

// SectionList returns the active forum sections.
func SectionList(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	return globals.Forum.SectionList(tx, false)
}

// SectionTopics returns the visible topics of a section.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/forum/sections/{id}/topics
func SectionTopics(id uint, p *gz.PaginationRequest, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Forum.TopicsBySection(p, tx, id)
}

// UserTopics returns the topics created by a user.
func UserTopics(id uint, p *gz.PaginationRequest, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Forum.TopicsByUser(p, tx, id, user)
}

// TopicSearch searches the visible topics.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/forum/topics/search?q=robots
func TopicSearch(p *gz.PaginationRequest, _ *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.PaginationResult, *gz.ErrMsg) {
	return globals.Forum.SearchTopics(r.Context(), p, tx, r.URL.Query().Get("q"))
}

// TopicIndex returns a topic and counts the view.
// You can request this method with the following cURL request:
//
//	curl -k -X GET --url https://localhost:4430/1.0/forum/topic/{id}
func TopicIndex(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	response, em := globals.Forum.GetTopic(r.Context(), tx, id, user)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// TopicCreate creates a new topic.
// You can request this method with the following cURL request:
//
//	curl -k -H "Content-Type: application/json" -X POST
//	  -d '{"section_id":1, "title":"Hello", "content":"World"}'
//	  https://localhost:4430/1.0/forum/topic
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func TopicCreate(tx *gorm.DB, w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {
	user, em := userFromRequest(tx, r, true)
	if em != nil {
		return nil, em
	}

	var ct forum.CreateTopic
	if em := parseBody(&ct, r); em != nil {
		return nil, em
	}

	response, em := globals.Forum.CreateTopic(r.Context(), tx, user, &ct)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// TopicUpdate updates a topic.
// You can request this method with the following cURL request:
//
//	curl -k -X PATCH -d '{"title":"New title"}'
//	  https://localhost:4430/1.0/forum/topic/{id}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func TopicUpdate(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var ut forum.UpdateTopic
	if em := parseBody(&ut, r); em != nil {
		return nil, em
	}

	response, em := globals.Forum.UpdateTopic(r.Context(), tx, id, &ut, user)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// TopicRebase moves a topic to another section.
// You can request this method with the following cURL request:
//
//	curl -k -X POST -d '{"section_id":2}'
//	  https://localhost:4430/1.0/forum/topic/{id}/rebase
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func TopicRebase(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	var rt forum.RebaseTopic
	if em := parseBody(&rt, r); em != nil {
		return nil, em
	}

	response, em := globals.Forum.RebaseTopic(r.Context(), tx, id, &rt, user)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbSave); em != nil {
		return nil, em
	}
	return response, nil
}

// TopicRemove removes a topic, its comments and their reputation entries.
// You can request this method with the following cURL request:
//
//	curl -k -X DELETE https://localhost:4430/1.0/forum/topic/{id}
//	  --header 'authorization: Bearer <A_VALID_AUTH0_JWT_TOKEN>'
func TopicRemove(id uint, user *users.User, tx *gorm.DB,
	w http.ResponseWriter, r *http.Request) (interface{}, *gz.ErrMsg) {

	topic, em := globals.Forum.RemoveTopic(r.Context(), tx, id, user)
	if em != nil {
		return nil, em
	}
	if em := commit(tx, gz.ErrorDbDelete); em != nil {
		return nil, em
	}
	return topic, nil
}
