package main

import (
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/gazebo-web/gz-go/v7"
)

// ///////////////////////////////////////////////
// / Declare the routes. See also application.go
var routes = gz.Routes{

	///////////
	// Users //
	///////////

	gz.Route{
		"Login",
		"Login is used to retrieve the user behind a JWT",
		"/login",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Login a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(Login)},
				},
			},
		},
	},
	gz.Route{
		"Users",
		"Route for all users",
		"/users",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get all users, ranked by rating",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Users", PaginationHandler(UserList))},
				},
			},
		},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Creates the user behind the JWT",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(UserCreate)},
				},
			},
		},
	},
	gz.Route{
		"IgnoredUsers",
		"Users blocked by the JWT user",
		"/users/ignored",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Get the users blocked by the JWT user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Users", PaginationHandlerWithUser(IgnoredList, true))},
				},
			},
		},
	},
	gz.Route{
		"UserIndex",
		"Access information about a single user",
		"/user/{id}",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the profile of a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", false, UserIndex))},
				},
			},
		},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Updates a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, UserUpdate))},
				},
			},
		},
	},
	gz.Route{
		"UserIgnore",
		"Block list of the JWT user",
		"/user/{id}/ignore",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Block a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, IgnoreCreate))},
				},
			},
			gz.Method{
				"DELETE",
				"Unblock a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, IgnoreRemove))},
				},
			},
		},
	},
	gz.Route{
		"UserGetRating",
		"Votes received by a user on any of their content",
		"/user/{id}/get_rating",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the votes received by a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Votes", IDPaginationHandler("id", UserRatingList))},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"UserSetRating",
		"Vote on a user profile",
		"/user/{id}/set_rating",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Vote on a user profile",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingSubmit(reputation.RelationProfile))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove the vote on a user profile",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingRemove(reputation.RelationProfile))},
				},
			},
		},
	},
	gz.Route{
		"UserGallery",
		"Gallery of a user",
		"/user/{id}/gallery",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the gallery of a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("GalleryItems", IDPaginationHandler("id", UserGalleryList))},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"UserTopics",
		"Forum topics created by a user",
		"/user/{id}/topics",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the topics created by a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Topics", IDPaginationHandler("id", UserTopics))},
				},
			},
		},
		gz.SecureMethods{},
	},

	///////////
	// Forum //
	///////////

	gz.Route{
		"Forum",
		"Forum index",
		"/forum",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the active sections with their latest topics",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(ForumIndex)},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"ForumSections",
		"Forum sections",
		"/forum/sections",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the active forum sections",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(SectionList)},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"SectionTopics",
		"Topics of a forum section",
		"/forum/sections/{id}/topics",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the topics of a section",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Topics", IDPaginationHandler("id", SectionTopics))},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"TopicSearch",
		"Full text search of forum topics",
		"/forum/topics/search",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Search forum topics with the 'q' parameter",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Topics", PaginationHandler(TopicSearch))},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"Topics",
		"Route to create forum topics",
		"/forum/topic",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Create a new topic",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(TopicCreate)},
				},
			},
		},
	},
	gz.Route{
		"TopicIndex",
		"Access a single forum topic",
		"/forum/topic/{id}",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get a topic",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", false, TopicIndex))},
				},
			},
		},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Update a topic",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, TopicUpdate))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove a topic",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, TopicRemove))},
				},
			},
		},
	},
	gz.Route{
		"TopicRebase",
		"Move a topic to another section",
		"/forum/topic/{id}/rebase",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Move a topic to another section",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, TopicRebase))},
				},
			},
		},
	},
	gz.Route{
		"TopicGetRating",
		"Votes given to a forum topic",
		"/forum/topic/{id}/get_rating",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the votes given to a topic",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Votes", RatingList(reputation.RelationForumTopic))},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"TopicSetRating",
		"Vote on a forum topic",
		"/forum/topic/{id}/set_rating",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Vote on a topic",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingSubmit(reputation.RelationForumTopic))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove the vote on a topic",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingRemove(reputation.RelationForumTopic))},
				},
			},
		},
	},

	/////////////
	// Gallery //
	/////////////

	gz.Route{
		"Gallery",
		"Route for all gallery items",
		"/gallery",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get all gallery items",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("GalleryItems", PaginationHandler(GalleryList))},
				},
			},
		},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Upload an image to the gallery of the JWT user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(GalleryItemCreate)},
				},
			},
		},
	},
	gz.Route{
		"GalleryItem",
		"Access a single gallery item",
		"/gallery/{id}",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get a gallery item",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", false, GalleryItemIndex))},
				},
			},
		},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Update a gallery item",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, GalleryItemUpdate))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove a gallery item",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, GalleryItemRemove))},
				},
			},
		},
	},
	gz.Route{
		"GalleryGetRating",
		"Votes given to a gallery item",
		"/gallery/{id}/get_rating",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the votes given to a gallery item",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Votes", RatingList(reputation.RelationUserGallery))},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"GallerySetRating",
		"Vote on a gallery item",
		"/gallery/{id}/set_rating",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Vote on a gallery item",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingSubmit(reputation.RelationUserGallery))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove the vote on a gallery item",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingRemove(reputation.RelationUserGallery))},
				},
			},
		},
	},

	//////////////
	// Comments //
	//////////////

	gz.Route{
		"CommentGetRating",
		"Votes given to a comment",
		"/comment/{id}/get_rating",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the votes given to a comment",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Votes", RatingList(reputation.RelationComment))},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"CommentSetRating",
		"Vote on a comment",
		"/comment/{id}/set_rating",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Vote on a comment",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingSubmit(reputation.RelationComment))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove the vote on a comment",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RatingRemove(reputation.RelationComment))},
				},
			},
		},
	},
	gz.Route{
		"CommentRemove",
		"Remove a comment",
		"/comments/{id}",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"DELETE",
				"Remove a comment",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, CommentRemove))},
				},
			},
		},
	},
	gz.Route{
		"ObjectComments",
		"Comments of a forum topic ({relation}=forum-topic) or a gallery item ({relation}=user-gallery)",
		"/{relation}/{id}/comments",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the comments of an object",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Comments", IDPaginationHandler("id", CommentList))},
				},
			},
		},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Post a comment on an object",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(IDHandler("id", true, CommentCreate))},
				},
			},
		},
	},

	/////////////
	// Lookups //
	/////////////

	gz.Route{
		"Countries",
		"Countries users can pick in their profile",
		"/countries",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the countries",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(CountryList)},
				},
			},
		},
		gz.SecureMethods{},
	},
	gz.Route{
		"Roles",
		"Profile roles",
		"/roles",
		gz.AuthHeadersOptional,
		gz.Methods{
			gz.Method{
				"GET",
				"Get the profile roles",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RoleList)},
				},
			},
		},
		gz.SecureMethods{},
	},

	///////////
	// Admin //
	///////////

	gz.Route{
		"AdminSections",
		"Forum sections administration",
		"/admin/sections",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Get every forum section",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminSectionList)},
				},
			},
			gz.Method{
				"POST",
				"Create a forum section",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminSectionCreate)},
				},
			},
		},
	},
	gz.Route{
		"AdminSection",
		"Forum section administration",
		"/admin/sections/{id}",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Update a forum section",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminSectionUpdate))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove a forum section and its topics",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminSectionRemove))},
				},
			},
		},
	},
	gz.Route{
		"AdminTopics",
		"Forum topics moderation",
		"/admin/topics",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Search the started topics, approved or not, with their votes and comment counts",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONListResult("Topics", PaginationHandlerWithUser(AdminTopicList, true))},
				},
			},
		},
	},
	gz.Route{
		"AdminTopic",
		"Forum topic moderation",
		"/admin/topics/{id}",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Approve, hide or promote a topic to the news",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminTopicModerate))},
				},
			},
		},
	},
	gz.Route{
		"AdminCountries",
		"Countries administration",
		"/admin/countries",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Create a country",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminCountryCreate)},
				},
			},
		},
	},
	gz.Route{
		"AdminCountry",
		"Country administration",
		"/admin/countries/{id}",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Update a country",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminCountryUpdate))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove a country",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminCountryRemove))},
				},
			},
		},
	},
	gz.Route{
		"AdminRoles",
		"Profile roles administration",
		"/admin/roles",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Create a profile role",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminRoleCreate)},
				},
			},
		},
	},
	gz.Route{
		"AdminRole",
		"Profile role administration",
		"/admin/roles/{id}",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Update a profile role",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminRoleUpdate))},
				},
			},
			gz.Method{
				"DELETE",
				"Remove a profile role",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminRoleRemove))},
				},
			},
		},
	},
	gz.Route{
		"AdminUserBan",
		"Ban users",
		"/admin/users/{id}/ban",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Ban a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminUserBan(true))},
				},
			},
			gz.Method{
				"DELETE",
				"Unban a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminUserBan(false))},
				},
			},
		},
	},
	gz.Route{
		"AdminUserRole",
		"Set the profile role of a user",
		"/admin/users/{id}/role",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Set the profile role of a user",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminUserSetRole))},
				},
			},
		},
	},
	gz.Route{
		"AdminRecomputeRating",
		"Recompute the rating of a user",
		"/admin/users/{id}/recompute_rating",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"POST",
				"Recompute the rating of a user from the votes received",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(AdminIDHandler(AdminRecomputeRating))},
				},
			},
		},
	},
	gz.Route{
		"ElasticSearch",
		"Route to create and list elastic search configurations",
		"/admin/search",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Gets a list of the ElasticSearch configs",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(ListElasticSearchHandler)},
				},
			},
			gz.Method{
				"POST",
				"Creates an ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(CreateElasticSearchHandler)},
				},
			},
		},
	},
	gz.Route{
		"ElasticSearch",
		"Route to modify and delete elastic search configurations",
		"/admin/search/{config_id}",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"PATCH",
				"Modifies an ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(ModifyElasticSearchHandler)},
				},
			},
			gz.Method{
				"DELETE",
				"Deletes an ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(DeleteElasticSearchHandler)},
				},
			},
		},
	},
	gz.Route{
		"ElasticSearch",
		"Route to reconnect to the primary elastic search config",
		"/admin/search/reconnect",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Reconnect to the primary ElasticSearch config",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(ReconnectElasticSearchHandler)},
				},
			},
		},
	},
	gz.Route{
		"ElasticSearch",
		"Route to rebuild the forum topics index",
		"/admin/search/rebuild",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Rebuild the forum topics index",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(RebuildElasticSearchHandler)},
				},
			},
		},
	},
	gz.Route{
		"ElasticSearch",
		"Route to update the forum topics index",
		"/admin/search/update",
		gz.AuthHeadersRequired,
		gz.Methods{},
		gz.SecureMethods{
			gz.Method{
				"GET",
				"Index every forum topic again",
				gz.FormatHandlers{
					gz.FormatHandler{"", gz.JSONResult(UpdateElasticSearchHandler)},
				},
			},
		},
	},
}
