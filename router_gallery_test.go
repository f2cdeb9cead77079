package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/gallery"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/generics"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gazebo-web/gz-go/v7"
	gztest "github.com/gazebo-web/gz-go/v7/testhelpers"
	"github.com/johannesboyne/gofakes3"
	"github.com/johannesboyne/gofakes3/backend/s3mem"
	"github.com/stretchr/testify/assert"
	mocket "github.com/Selvatico/go-mocket"
	"github.com/stretchr/testify/require"
)

// Tests for gallery routes

// pngContents is the signature of a PNG file, enough to be detected as
// an image.
const pngContents = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01"

// setFakeStorage replaces the gallery storage with an in-memory S3 server.
// It returns a function that restores the original storage.
func setFakeStorage(t *testing.T) func() {
	return setFakeStorageWithBackend(t, s3mem.New())
}

// setFakeStorageWithBackend is like setFakeStorage, serving the given
// in-memory backend so tests can inspect the stored objects.
func setFakeStorageWithBackend(t *testing.T, backend gofakes3.Backend) func() {
	faker := gofakes3.New(backend)
	srv := httptest.NewServer(faker.Server())

	sess, err := session.NewSession(&aws.Config{
		Credentials:      credentials.NewStaticCredentials("ACCESS_KEY", "SECRET_KEY", ""),
		Endpoint:         aws.String(srv.URL),
		Region:           aws.String("us-east-1"),
		DisableSSL:       aws.Bool(true),
		S3ForcePathStyle: aws.Bool(true),
	})
	require.NoError(t, err)
	bucket := gallery.NewS3Bucket(sess, "gallery-router-test")
	require.NoError(t, bucket.EnsureBucket(context.Background()))

	orig := globals.Gallery.Storage
	globals.Gallery.Storage = bucket
	return func() {
		globals.Gallery.Storage = orig
		srv.Close()
	}
}

// uploadImage posts a gallery item and returns the created item.
func uploadImage(t *testing.T, u *testUser, caption string) gallery.ItemResponse {
	params := map[string]string{"caption": caption}
	files := []gztest.FileDesc{{Path: "robot.png", Contents: pngContents}}
	code, bslice, ok := gztest.SendMultipartPOST(t.Name(), t, "/1.0/gallery", &u.JWT, params, files)
	require.True(t, ok)
	require.Equal(t, http.StatusOK, code, "Unexpected response body [%s]", string(*bslice))
	var item gallery.ItemResponse
	require.NoError(t, json.Unmarshal(*bslice, &item))
	return item
}

// TestGalleryUploadErrors tests invalid uploads.
func TestGalleryUploadErrors(t *testing.T) {
	setup()
	user := createUser(t)

	// No storage configured
	orig := globals.Gallery.Storage
	globals.Gallery.Storage = nil
	files := []gztest.FileDesc{{Path: "robot.png", Contents: pngContents}}
	code, bslice, _ := gztest.SendMultipartPOST(t.Name(), t, "/1.0/gallery", &user.JWT, nil, files)
	assert.Equal(t, gz.ErrorMessage(gz.ErrorUnexpected).StatusCode, code)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorUnexpected, t)
	globals.Gallery.Storage = orig

	restore := setFakeStorage(t)
	defer restore()

	// Not an image
	files = []gztest.FileDesc{{Path: "notes.txt", Contents: "just some text"}}
	code, bslice, _ = gztest.SendMultipartPOST(t.Name(), t, "/1.0/gallery", &user.JWT, nil, files)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorFormInvalidValue, t)

	// No file
	code, bslice, _ = gztest.SendMultipartPOST(t.Name(), t, "/1.0/gallery", &user.JWT,
		map[string]string{"caption": "empty"}, nil)
	assert.Equal(t, gz.ErrorMessage(gz.ErrorFormMissingFiles).StatusCode, code)
	gztest.AssertBackendErrorCode(t.Name(), bslice, gz.ErrorFormMissingFiles, t)
}

// TestGalleryLifecycle tests uploading, listing, rating and removing
// gallery items.
func TestGalleryLifecycle(t *testing.T) {
	setup()
	restore := setFakeStorage(t)
	defer restore()

	author := createUser(t)
	other := createUser(t)
	forbidden := generics.NewForbiddenError("")

	first := uploadImage(t, author, "First robot")
	second := uploadImage(t, author, "Second robot")
	assert.Equal(t, "First robot", first.Caption)
	assert.NotEmpty(t, first.FileURL)
	assert.Equal(t, author.Username, first.AuthorUsername)

	var items gallery.ItemResponses
	assertRequest(t, "GET", "/1.0/gallery", nil, nil, nil, &items)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID, "newest first")
	assertRequest(t, "GET", fmt.Sprintf("/1.0/user/%d/gallery", author.ID), &other.JWT, nil, nil, &items)
	assert.Len(t, items, 2)
	assertRequest(t, "GET", fmt.Sprintf("/1.0/user/%d/gallery", other.ID), nil, nil, nil, &items)
	assert.Empty(t, items)

	// Single items link to their neighbours
	var item gallery.ItemResponse
	assertRequest(t, "GET", fmt.Sprintf("/1.0/gallery/%d", first.ID), nil, nil, nil, &item)
	assert.Nil(t, item.PrevID)
	require.NotNil(t, item.NextID)
	assert.Equal(t, second.ID, *item.NextID)

	// Update
	uri := fmt.Sprintf("/1.0/gallery/%d", first.ID)
	assertRequest(t, "PATCH", uri, &author.JWT, gallery.UpdateItem{Caption: sptr("Renamed")}, nil, &item)
	assert.Equal(t, "Renamed", item.Caption)
	assertRequest(t, "PATCH", uri, &other.JWT, gallery.UpdateItem{Caption: sptr("Hacked")}, forbidden, nil)

	// Votes and comments
	vote(t, other, uri, 1, nil)
	vote(t, author, uri, 1, forbidden)
	var c comments.Comment
	assertRequest(t, "POST", fmt.Sprintf("/1.0/user-gallery/%d/comments", first.ID), &other.JWT,
		comments.CreateComment{Content: "Cool"}, nil, &c)
	assertRequest(t, "GET", uri, nil, nil, nil, &item)
	assert.Equal(t, 1, item.Score)

	// Blocked users cannot see each other's gallery
	assertRequest(t, "POST", fmt.Sprintf("/1.0/user/%d/ignore", other.ID), &author.JWT, nil, nil, nil)
	assertRequest(t, "GET", fmt.Sprintf("/1.0/user/%d/gallery", author.ID), &other.JWT, nil, forbidden, nil)
	assertRequest(t, "GET", uri, &other.JWT, nil, forbidden, nil)
	assertRequest(t, "GET", "/1.0/gallery", &other.JWT, nil, nil, &items)
	assert.Empty(t, items)

	// Removal
	assertRequest(t, "DELETE", uri, &other.JWT, nil, forbidden, nil)
	assertRequest(t, "DELETE", uri, &author.JWT, nil, nil, nil)
	assertRequest(t, "GET", uri, nil, nil, gz.NewErrorMessage(gz.ErrorIDNotFound), nil)
	assertRequest(t, "GET", fmt.Sprintf("/1.0/user-gallery/%d/comments", first.ID), nil, nil,
		gz.NewErrorMessage(gz.ErrorIDNotFound), nil)
}

// TestGalleryRemoveDbMock checks that a failed removal keeps the stored image.
func TestGalleryRemoveDbMock(t *testing.T) {
	setup()
	backend := s3mem.New()
	restore := setFakeStorageWithBackend(t, backend)
	defer restore()

	key := "gallery/101/kept.png"
	_, err := globals.Gallery.Storage.Upload(context.Background(), strings.NewReader(pngContents), key, "image/png")
	require.NoError(t, err)

	origDb := globals.Server.Db
	defer SetGlobalDB(origDb)
	defer ClearMockBadCommit()

	mockDb := SetupDbMockCatcher()
	SetGlobalDB(mockDb)
	SetupCommonMockResponses("mockuser")
	mocket.Catcher.Attach([]*mocket.FakeResponse{
		{
			Pattern:  "SELECT * FROM \"user_galleries\"  WHERE",
			Response: []map[string]interface{}{{"id": "7", "author_id": "101", "file_key": key}},
		},
	})

	jwt := createValidJWTForIdentity(mockIdentity, t)
	SetupMockBadCommit()
	assertRequest(t, "DELETE", "/1.0/gallery/7", &jwt, nil, gz.NewErrorMessage(gz.ErrorDbDelete), nil)

	_, err = backend.HeadObject("gallery-router-test", key)
	assert.NoError(t, err)
}
