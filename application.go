// Package main Community Server REST API
//
// This package provides a REST API to the community server: forum,
// user galleries, comments, profiles and the reputation given to all of them.
//
// Schemes: https
// BasePath: /1.0
// Version: 0.1.0
package main

// Import this file's dependencies
import (
	"context"
	"flag"
	"log"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/comments"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/forum"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/gallery"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/lookups"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/config"
	"github.com/IamWorkDev/yevhen-k-laravel/globals"
	"github.com/IamWorkDev/yevhen-k-laravel/migrate"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/go-playground/form"
	"github.com/jinzhu/gorm"
	"gopkg.in/go-playground/validator.v9"
)

// Impl note: we move this as a constant as it is used by tests.
const sysAdminForTest = "rootfortests"

/////////////////////////////////////////////////
/// Initialize this package
///
/// Environment variables:
///    IGN_DB_USERNAME  : Mysql username
///    IGN_DB_PASSWORD  : Mysql password
///    IGN_DB_ADDRESS   : Mysql address (host:port)
///    IGN_DB_NAME      : Mysql database name
///    COMMUNITY_CONFIG_FILE : Optional config file. See the config package
///                            for the COMMUNITY_* variables.
func init() {
	var err error

	configFile, _ := gz.ReadEnvVar("COMMUNITY_CONFIG_FILE")
	cfg, err := config.Load(configFile)
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}
	globals.Config = cfg

	logStd := gz.ReadStdLogEnvVar()
	logger := gz.NewLogger("init", logStd, cfg.Verbosity)
	logCtx := gz.NewContextWithLogger(context.Background(), logger)

	isGoTest := flag.Lookup("test.v") != nil

	if cfg.JWTPublicKey == "" {
		logger.Info("Missing COMMUNITY_JWT_PUBLIC_KEY. Authentication will not work.")
	}

	globals.Server, err = gz.Init(cfg.JWTPublicKey, "", nil)
	// Create the main Router and set it to the server.
	s := globals.Server
	mainRouter := gz.NewRouter()
	apiPrefix := "/" + globals.APIVersion
	r := mainRouter.PathPrefix(apiPrefix).Subrouter()
	s.ConfigureRouterWithRoutes(apiPrefix, r, routes)
	globals.Server.SetRouter(mainRouter)

	globals.Validate = initValidator()
	globals.FormDecoder = form.NewDecoder()

	// initialize permissions
	// override sys admin for tests
	sysAdmin := cfg.SystemAdmins
	if isGoTest {
		sysAdmin = sysAdminForTest
	}
	if sysAdmin == "" {
		logger.Info("No COMMUNITY_SYSTEM_ADMINS set. " +
			"No system administrator role will be created")
	}
	globals.Permissions = initPermissions(logCtx, globals.Server.Db, sysAdmin)

	if err != nil {
		logger.Error(err)
	} else {
		logger.Info("[application.go] Started using database: ",
			globals.Server.DbConfig.Name)

		// Migrate database tables
		DBMigrate(logCtx, globals.Server.Db)
		DBAddDefaultData(logCtx, globals.Server.Db)
	}

	if cfg.HasStorage() {
		if err := initStorage(logCtx, cfg); err != nil {
			logger.Error("Gallery storage is not available:", err)
		}
	} else {
		logger.Info("No gallery bucket configured. Uploads will be rejected.")
	}

	globals.ElasticSearch = forum.NewElasticIndex(nil, forum.TopicsIndex)
	if !isGoTest {
		// Topic searches use SQL until a server is connected.
		_ = connectToElasticSearch(logCtx, globals.Server.Db)
	}

	globals.Lookups = lookups.NewCache(globals.Server.Db, cfg.LookupsTTL)

	initServices()

	if globals.Server.Db != nil {
		if cfg.RecomputeRatingsOnStart {
			if err := migrate.RecomputeUserRatings(logCtx, globals.Server.Db, globals.Reputation); err != nil {
				logger.Error(err)
			}
		}
		if cfg.MigrateCasbin {
			if _, err := migrate.CasbinPermissions(logCtx, globals.Server.Db, globals.Permissions); err != nil {
				logger.Error(err)
			}
		}
	}
}

func initValidator() *validator.Validate {
	validate := validator.New()
	InstallCustomValidators(validate)
	return validate
}

// initPermissions creates the casbin backed permissions. Policies are stored
// in the DB when available, in memory otherwise.
func initPermissions(ctx context.Context, db *gorm.DB, sysAdmin string) *permissions.Permissions {
	logger := gz.LoggerFromContext(ctx)
	if db != nil {
		p, err := permissions.New(db, sysAdmin)
		if err == nil {
			return p
		}
		logger.Error("Could not load permissions from the database:", err)
	}
	p, err := permissions.NewInMemory(sysAdmin)
	if err != nil {
		log.Fatal("Could not initialize permissions: ", err)
	}
	return p
}

// initStorage creates the S3 session and the gallery bucket.
func initStorage(ctx context.Context, cfg *config.Config) error {
	awsCfg := aws.NewConfig().
		WithRegion(cfg.S3.Region).
		WithS3ForcePathStyle(cfg.S3.ForcePathStyle)
	if cfg.S3.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.S3.Endpoint)
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return err
	}
	bucket := gallery.NewS3Bucket(sess, cfg.S3.Bucket)
	if err := bucket.EnsureBucket(ctx); err != nil {
		return err
	}
	globals.SessionS3 = sess
	globals.Storage = bucket
	return nil
}

// initServices creates the services and connects the rated and commented
// objects to the reputation ledger and the comments service.
func initServices() {
	p := globals.Permissions

	globals.Users = &users.Service{Permissions: p}
	globals.Reputation = reputation.NewService()
	globals.Comments = comments.NewService(globals.Reputation, p)
	globals.Forum = &forum.Service{
		Reputation:  globals.Reputation,
		Comments:    globals.Comments,
		Permissions: p,
		Index:       globals.ElasticSearch,
	}
	globals.Gallery = &gallery.Service{
		Reputation:  globals.Reputation,
		Comments:    globals.Comments,
		Permissions: p,
	}
	// Avoid storing a typed nil in the Storage interface.
	if globals.Storage != nil {
		globals.Gallery.Storage = globals.Storage
	}
	globals.LookupsSvc = &lookups.Service{Cache: globals.Lookups}

	globals.Reputation.Register(reputation.RelationForumTopic, globals.Forum)
	globals.Reputation.Register(reputation.RelationUserGallery, globals.Gallery)
	globals.Reputation.Register(reputation.RelationComment, reputation.ResolverFunc(comments.Owner))

	globals.Comments.RegisterTarget(reputation.RelationForumTopic, globals.Forum)
	globals.Comments.RegisterTarget(reputation.RelationUserGallery, globals.Gallery)
}

/////////////////////////////////////////////////
// Run the router and server
func main() {
	globals.Server.Run()
}
