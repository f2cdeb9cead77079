// The rating repair tool recomputes the rating of every user from the
// reputation entries they received. It can also grant authors the write
// permission on the content they created.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/bundles/users"
	"github.com/IamWorkDev/yevhen-k-laravel/migrate"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/mysql"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

const (
	maxParallelUpdates = 15
)

func main() {
	withPermissions := flag.Bool("permissions", false, "also grant authors the write permission on their content")
	flag.Parse()

	db, err := setupDB()
	if err != nil {
		log.Fatalln("Failed to set up to MySQL database conn:", err)
	}
	defer gz.Close(db)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	logger := gz.NewLoggerNoRollbar("rating-repair", gz.VerbosityWarning)
	ctx = gz.NewContextWithLogger(ctx, logger)

	started := time.Now()
	if err := run(ctx, db, reputation.NewService()); err != nil {
		log.Fatalln("Failed to recompute ratings:", err)
	}
	log.Println("Ratings were recomputed. Took:", time.Since(started).Seconds(), "seconds")

	if *withPermissions {
		p, err := permissions.New(db, "")
		if err != nil {
			log.Fatalln("Failed to load permissions:", err)
		}
		added, err := migrate.CasbinPermissions(ctx, db, p)
		if err != nil {
			log.Fatalln(err)
		}
		log.Println("Added", added, "permissions")
	}
}

// run recomputes the rating of every user, removed ones included. Each user
// is updated in its own transaction.
func run(ctx context.Context, db *gorm.DB, rep *reputation.Service) error {
	var ids []uint
	if err := db.Model(&users.User{}).Unscoped().Pluck("id", &ids).Error; err != nil {
		return err
	}

	bar := newProgressBar(len(ids))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUpdates)
	for _, id := range ids {
		id := id
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			defer func() { _ = bar.Add(1) }()
			return recompute(ctx, db, rep, id)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func recompute(ctx context.Context, db *gorm.DB, rep *reputation.Service, id uint) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if _, em := rep.RecomputeUserScore(ctx, tx, id); em != nil {
		tx.Rollback()
		log.Printf("Failed to recompute the rating of user [%d]: %s\n", id, em.Msg)
		return em.BaseError
	}
	return tx.Commit().Error
}

func newProgressBar(size int) *progressbar.ProgressBar {
	return progressbar.NewOptions(size,
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Recomputing ratings"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func setupDB() (*gorm.DB, error) {
	cfg, err := gz.NewDatabaseConfigFromEnvVars()
	if err != nil {
		return nil, err
	}
	return gz.InitDbWithCfg(&cfg)
}
