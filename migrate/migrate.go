package migrate

import (
	"context"
	"fmt"

	"github.com/IamWorkDev/yevhen-k-laravel/bundles/reputation"
	"github.com/IamWorkDev/yevhen-k-laravel/permissions"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/jinzhu/gorm"
	"github.com/pkg/errors"
)

// RecomputeUserRatings rewrites the denormalized rating of every user from
// the reputation entries they received.
func RecomputeUserRatings(ctx context.Context, db *gorm.DB, rep *reputation.Service) error {
	logger := gz.LoggerFromContext(ctx)
	logger.Info("[MIGRATION] Running 'Recompute User Ratings' migration script")
	tx := db.Begin()
	if em := rep.RecomputeAllUserScores(ctx, tx); em != nil {
		tx.Rollback()
		return errors.Errorf("[MIGRATION] error while recomputing user ratings: %s", em.Msg)
	}
	if err := tx.Commit().Error; err != nil {
		return errors.Wrap(err, "[MIGRATION] error while committing user ratings")
	}
	logger.Info("[MIGRATION] Successfully finished 'Recompute User Ratings' migration script")
	return nil
}

// authoredTables lists the tables whose rows are owned by an author, with
// the casbin resource prefix used for them.
var authoredTables = []struct {
	table    string
	resource string
}{
	{"forum_topics", "forum_topics"},
	{"user_galleries", "user_galleries"},
	{"comments", "comments"},
}

type authored struct {
	ID       uint
	Username string
}

// CasbinPermissions grants authors the write permission on the content they
// created. Used to populate casbin for content created before permissions
// were stored.
func CasbinPermissions(ctx context.Context, db *gorm.DB, p *permissions.Permissions) (int, error) {
	logger := gz.LoggerFromContext(ctx)
	logger.Info("[MIGRATION] Running Casbin Permissions migration script")
	added := 0
	for _, at := range authoredTables {
		var rows []authored
		err := db.Table(at.table).
			Select(at.table + ".id AS id, users.username AS username").
			Joins("JOIN users ON users.id = " + at.table + ".author_id").
			Where(at.table + ".deleted_at IS NULL").
			Scan(&rows).Error
		if err != nil {
			return added, errors.Wrapf(err, "[MIGRATION] error finding %s to add permissions", at.table)
		}
		for _, row := range rows {
			resource := fmt.Sprintf("%s/%d", at.resource, row.ID)
			// AddPermission fails for policies that already exist
			if ok, _ := p.AddPermission(row.Username, resource, permissions.Write); ok {
				added++
			}
		}
	}
	logger.Info("[MIGRATION] Added ", added, " casbin permissions")
	return added, nil
}
