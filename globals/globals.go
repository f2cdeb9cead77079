package globals

import (
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/gallery"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/lookups"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/config"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"gopkg.in/go-playground/validator.v9"
)

// TODO: remove as much as possible from globals

/////////////////////////////////////////////////
/// Define global variables here

// Server encapsulates database, router, and auth0
var Server *gz.Server

// APIVersion is route api version.
// See also routes and routers
var APIVersion = "1.0"

// Config holds the settings loaded at startup.
var Config *config.Config

// Validate references the global structs validator.
// See https://github.com/go-playground/validator.
// We use a single instance of validator, as it caches struct info
var Validate *validator.Validate

// FormDecoder holds a reference to the global Form Decoder.
// See https://github.com/go-playground/form.
// We use a single instance of Decoder, as it caches struct info
var FormDecoder *form.Decoder

// Permissions manages permissions for users, roles and resources.
var Permissions *permissions.Permissions

// ElasticSearch is the forum topics index. Its client is nil while no
// Elasticsearch server is connected.
var ElasticSearch *forum.ElasticIndex

// SessionS3 contains an AWS session used to perform S3 operations.
var SessionS3 *session.Session

// Storage holds the bucket where gallery images are uploaded.
var Storage *gallery.S3Bucket

// Lookups is the read-through cache of countries and roles.
var Lookups *lookups.Cache

// Services
var (
	Users      *users.Service
	Reputation *reputation.Service
	Comments   *comments.Service
	Forum      *forum.Service
	Gallery    *gallery.Service
	LookupsSvc *lookups.Service
)
