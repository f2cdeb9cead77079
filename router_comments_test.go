package main

import (
	"fmt"
	"testing"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentTest is a TestComments test case.
type commentTest struct {
	uriTest
	content string
}

// TestComments tests posting, listing and removing comments.
func TestComments(t *testing.T) {
	setup()
	author := createUser(t)
	commenter := createUser(t)
	blocked := createUser(t)
	topic := createTopic(t, author, generalSection(t).ID, "Commented")

	assertRequest(t, "POST", fmt.Sprintf("/1.0/user/%d/ignore", blocked.ID), &author.JWT, nil, nil, nil)

	uri := fmt.Sprintf("/1.0/forum-topic/%d/comments", topic.ID)
	invalid := generics.NewUnprocessableError(nil, nil)
	tests := []commentTest{
		{uriTest{"first comment", uri, commenter.jwtDef(), nil, false}, "First"},
		{uriTest{"author comment", uri, author.jwtDef(), nil, false}, "Thanks"},
		{uriTest{"empty content", uri, commenter.jwtDef(), invalid, false}, ""},
		{uriTest{"blocked user", uri, blocked.jwtDef(), generics.NewForbiddenError(""), false}, "Hi"},
		{uriTest{"unknown relation", fmt.Sprintf("/1.0/robots/%d/comments", topic.ID), commenter.jwtDef(),
			invalid, false}, "Hi"},
		{uriTest{"profiles cannot be commented", fmt.Sprintf("/1.0/profile/%d/comments", author.ID),
			commenter.jwtDef(), invalid, false}, "Hi"},
		{uriTest{"unknown topic", "/1.0/forum-topic/999999/comments", commenter.jwtDef(),
			gz.NewErrorMessage(gz.ErrorIDNotFound), false}, "Hi"},
	}
	for _, test := range tests {
		t.Run(test.testDesc, func(t *testing.T) {
			var c comments.Comment
			assertRequest(t, "POST", test.URL, getJWTToken(t, test.jwtGen),
				comments.CreateComment{Content: test.content}, test.expErrMsg, &c)
			if test.expErrMsg == nil {
				assert.Equal(t, test.content, c.Content)
				assert.NotZero(t, c.ID)
			}
		})
	}

	var list comments.CommentResponses
	assertRequest(t, "GET", uri, nil, nil, nil, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "First", list[0].Content, "oldest first")
	assert.Equal(t, commenter.Username, list[0].AuthorUsername)
	assert.Equal(t, author.Username, list[1].AuthorUsername)

	// Commenting bumps the topic in its section
	var tr forum.TopicResponse
	assertRequest(t, "GET", fmt.Sprintf("/1.0/forum/topic/%d", topic.ID), nil, nil, nil, &tr)
	require.NotNil(t, tr.CommentedAt)
	assert.True(t, tr.CommentedAt.After(tr.CreatedAt) || tr.CommentedAt.Equal(tr.CreatedAt))

	// Only the author of a comment can remove it
	first := list[0]
	removeURI := fmt.Sprintf("/1.0/comments/%d", first.ID)
	assertRequest(t, "DELETE", removeURI, &author.JWT, nil, generics.NewForbiddenError(""), nil)
	assertRequest(t, "DELETE", removeURI, &commenter.JWT, nil, nil, nil)
	assertRequest(t, "DELETE", removeURI, &commenter.JWT, nil, gz.NewErrorMessage(gz.ErrorIDNotFound), nil)

	assertRequest(t, "GET", uri, nil, nil, nil, &list)
	assert.Len(t, list, 1)
}

// TestModeratorRemovesComment checks moderators can remove any comment.
func TestModeratorRemovesComment(t *testing.T) {
	setup()
	admin := createSysAdminUser(t)
	author := createUser(t)
	moderator := createUser(t)
	topic := createTopic(t, author, generalSection(t).ID, "Moderated")

	var c comments.Comment
	assertRequest(t, "POST", fmt.Sprintf("/1.0/forum-topic/%d/comments", topic.ID), &author.JWT,
		comments.CreateComment{Content: "Spam"}, nil, &c)

	removeURI := fmt.Sprintf("/1.0/comments/%d", c.ID)
	assertRequest(t, "DELETE", removeURI, &moderator.JWT, nil, generics.NewForbiddenError(""), nil)

	setUserRole(t, admin, moderator, moderatorRoleName)
	assertRequest(t, "DELETE", removeURI, &moderator.JWT, nil, nil, nil)
}
