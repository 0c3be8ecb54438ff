package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"

	"github.com/rpupo63/mycms/errs"
	"github.com/rpupo63/mycms/models"
)

// maxSlugAttempts bounds both the free-slug search and the insert retries
// after a concurrent writer claimed the same slug.
const maxSlugAttempts = 5

type BlogPostRepo struct {
	db        *gorm.DB
	now       func() time.Time
	slugTaken func(db *gorm.DB, slug string, excludeID uint) (bool, error)
}

func NewBlogPostRepo(db *gorm.DB) *BlogPostRepo {
	return &BlogPostRepo{
		db:        db,
		now:       time.Now,
		slugTaken: slugTaken,
	}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *BlogPostRepo) GetDB() *gorm.DB {
	return r.db
}

// FindByAuthor returns the posts written by authorID, newest pub_date first
func (r *BlogPostRepo) FindByAuthor(ctx context.Context, authorID uint) ([]*models.BlogPost, error) {
	blogPosts := []*models.BlogPost{}
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("pub_date DESC").
		Order("id DESC").
		Find(&blogPosts).Error
	return blogPosts, err
}

// FindByID returns a blog post by its ID, with its author loaded when present
func (r *BlogPostRepo) FindByID(ctx context.Context, id uint) (*models.BlogPost, error) {
	var blogPost models.BlogPost
	err := r.db.WithContext(ctx).Preload("Author").First(&blogPost, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFound("blog post")
	}
	if err != nil {
		return nil, err
	}
	return &blogPost, nil
}

// FindPublishedByUsername returns the published posts of the named user. An
// unknown username yields an empty slice, not an error.
func (r *BlogPostRepo) FindPublishedByUsername(ctx context.Context, username string) ([]*models.BlogPost, error) {
	blogPosts := []*models.BlogPost{}
	if username == "" {
		return blogPosts, nil
	}
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = blog_posts.author_id").
		Where("users.username = ? AND blog_posts.status = ?", username, models.StatusPublished).
		Order("blog_posts.id ASC").
		Find(&blogPosts).Error
	return blogPosts, err
}

// Add inserts a new blog post. Without an explicit slug one is derived from the title.
func (r *BlogPostRepo) Add(ctx context.Context, blogPost *models.BlogPost) error {
	return r.saveWithSlug(ctx, blogPost, func(db *gorm.DB) error {
		return db.Omit(clause.Associations).Create(blogPost).Error
	})
}

// Update writes every mutable column of an existing post. A post whose slug
// was cleared gets a newly derived one.
func (r *BlogPostRepo) Update(ctx context.Context, blogPost *models.BlogPost) error {
	if blogPost.ID == 0 {
		return errs.NewBadRequestError("blog post has no id")
	}
	return r.saveWithSlug(ctx, blogPost, func(db *gorm.DB) error {
		res := db.Model(blogPost).
			Select("title", "body", "slug", "status", "pub_date", "author_id").
			Omit(clause.Associations).
			Updates(blogPost)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errs.NewNotFound("blog post")
		}
		return nil
	})
}

// Delete removes a blog post from the database by id
func (r *BlogPostRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.BlogPost{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.NewNotFound("blog post")
	}
	return nil
}

// SlugExists reports whether any post other than excludeID uses slug
func (r *BlogPostRepo) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	return slugTaken(r.db.WithContext(ctx), slug, excludeID)
}

// saveWithSlug runs write with a slug that was free when checked. The check is
// racy, so the unique index has the final word: a duplicate key on a derived
// slug sends us back to pick another one.
func (r *BlogPostRepo) saveWithSlug(ctx context.Context, blogPost *models.BlogPost, write func(db *gorm.DB) error) error {
	db := r.db.WithContext(ctx)

	if blogPost.Slug != "" {
		err := write(db)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewSlugConflictError(blogPost.Slug, err)
		}
		return err
	}

	base := models.BaseSlug(blogPost.Title)
	slug, err := r.freeSlug(db, base, blogPost.ID)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		blogPost.Slug = slug
		err := write(db)
		if err == nil {
			return nil
		}
		blogPost.Slug = ""
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return err
		}

		lastErr = err
		log.Warn().
			Str("slug", slug).
			Int("attempt", attempt).
			Msg("slug claimed by a concurrent write, retrying")
		// the check that found slug free can't be trusted again, so
		// skip straight to a fresh suffix
		slug = models.SuffixedSlug(base, r.now())
	}
	return errs.NewSlugConflictError(base, lastErr)
}

// freeSlug returns base if unused, otherwise base with a timestamp suffix
func (r *BlogPostRepo) freeSlug(db *gorm.DB, base string, excludeID uint) (string, error) {
	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		taken, err := r.slugTaken(db, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = models.SuffixedSlug(base, r.now())
	}
	return "", errs.NewSlugConflictError(base, nil)
}

func slugTaken(db *gorm.DB, slug string, excludeID uint) (bool, error) {
	var count int64
	// a lagging replica would hide the row we are about to collide with
	q := db.Clauses(dbresolver.Write).Model(&models.BlogPost{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
