package service

import (
	"context"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"
)

// FeedService composes the read-side post feeds.
type FeedService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
	}
}

// GlobalFeed returns every post, newest first. The anonymous view is served
// cache-aside; per-viewer views skip the cache because the liked flag is
// viewer-specific.
func (s *FeedService) GlobalFeed(ctx context.Context, viewerID uint) ([]*models.Post, error) {
	if viewerID == 0 {
		var posts []*models.Post
		err := cache.Aside(ctx, cache.GlobalFeedKey(), &posts, cache.GlobalFeedTTL, func() error {
			fetched, err := s.postRepo.ListAll(ctx, 0)
			if err != nil {
				return err
			}
			posts = fetched
			return nil
		})
		if err != nil {
			return nil, err
		}
		return emptyIfNil(posts), nil
	}

	posts, err := s.postRepo.ListAll(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(posts), nil
}

// FollowingFeed returns the posts authored by everyone the user follows,
// newest first. A user following nobody gets an empty feed.
func (s *FeedService) FollowingFeed(ctx context.Context, userID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	followeeIDs, err := s.followRepo.FolloweeIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(followeeIDs) == 0 {
		return []*models.Post{}, nil
	}

	posts, err := s.postRepo.ListByOwners(ctx, followeeIDs, userID)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(posts), nil
}

// UserFeed returns all posts authored by the named user, newest first.
func (s *FeedService) UserFeed(ctx context.Context, username string, viewerID uint) ([]*models.Post, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	posts, err := s.postRepo.ListByOwner(ctx, user.ID, viewerID)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(posts), nil
}

// LikedFeed returns the posts a user has liked, in store order.
func (s *FeedService) LikedFeed(ctx context.Context, targetUserID, viewerID uint) ([]*models.Post, error) {
	if _, err := s.userRepo.GetByID(ctx, targetUserID); err != nil {
		return nil, err
	}

	posts, err := s.postRepo.ListLikedBy(ctx, targetUserID, viewerID)
	if err != nil {
		return nil, err
	}
	return emptyIfNil(posts), nil
}

func emptyIfNil(posts []*models.Post) []*models.Post {
	if posts == nil {
		return []*models.Post{}
	}
	return posts
}
