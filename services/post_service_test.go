package services

import (
	"testing"
	"time"

	"proost/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newPostService(t *testing.T, db *gorm.DB) *PostService {
	t.Helper()

	achievements := NewAchievementService(db, nil)
	require.NoError(t, achievements.Seed(DefaultAchievementDefs()))
	return NewPostService(db, NewCompetitionService(db), achievements)
}

func TestCreatePostRequiresTimingOrVDL(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := newPostService(t, db)

	_, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 1})
	assert.ErrorIs(t, err, ErrInvalidState)

	res, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 1, IsVDL: true})
	require.NoError(t, err)
	assert.True(t, res.Post.IsVDL)
	assert.Nil(t, res.Post.DrinkTimeSeconds)
}

func TestCreatePostClampsBeerCount(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := newPostService(t, db)

	res, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 99, IsVDL: true})
	require.NoError(t, err)
	assert.Equal(t, MaxBeersPerPost, res.Post.BeerCount)

	res, err = svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 0, IsVDL: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Post.BeerCount)
}

func TestCreatePostMarksPersonalBest(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := newPostService(t, db)

	first, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 1, DrinkTimeSeconds: floatPtr(5.0)})
	require.NoError(t, err)
	assert.True(t, first.Post.IsPersonalBest)

	slower, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 1, DrinkTimeSeconds: floatPtr(6.0)})
	require.NoError(t, err)
	assert.False(t, slower.Post.IsPersonalBest)

	faster, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 1, DrinkTimeSeconds: floatPtr(4.0)})
	require.NoError(t, err)
	assert.True(t, faster.Post.IsPersonalBest)
}

func TestCreatePostDropsForeignGroups(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	other := createUser(t, db, "willem")
	mine := createGroupWith(t, db, user.ID)
	theirs := createGroupWith(t, db, other.ID)
	svc := newPostService(t, db)

	res, err := svc.Create(CreatePostInput{
		UserID:   user.ID,
		IsVDL:    true,
		GroupIDs: []uint{mine.ID, theirs.ID},
	})
	require.NoError(t, err)

	var links []models.PostGroup
	require.NoError(t, db.Where("post_id = ?", res.Post.ID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, mine.ID, links[0].GroupID)
}

func TestCreatePostReturnsUnlocksAndProgress(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	group := createGroupWith(t, db, user.ID)
	svc := newPostService(t, db)

	comp, err := NewCompetitionService(db).Create(group.ID, user.ID, "Sprint", "", 10)
	require.NoError(t, err)

	res, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 3, IsVDL: true})
	require.NoError(t, err)

	require.Len(t, res.Progress, 1)
	assert.Equal(t, comp.ID, res.Progress[0].CompetitionID)
	assert.Equal(t, 3, res.Progress[0].Total)

	unlockSlugs := make([]string, 0, len(res.Unlocked))
	for _, a := range res.Unlocked {
		unlockSlugs = append(unlockSlugs, a.Slug)
	}
	assert.Contains(t, unlockSlugs, "bier_1")
}

func TestCreatePostSurvivesEvaluationFailure(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := newPostService(t, db)

	// Break achievement evaluation only; the post write path stays intact.
	require.NoError(t, db.Migrator().DropTable(&models.UserAchievement{}))

	res, err := svc.Create(CreatePostInput{UserID: user.ID, BeerCount: 2, IsVDL: true})
	require.Error(t, err)
	require.NotNil(t, res)
	require.NotNil(t, res.Post)

	// The post committed despite the failed evaluation.
	var count int64
	db.Model(&models.Post{}).Where("id = ?", res.Post.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateTimingOwnerOnly(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	other := createUser(t, db, "willem")
	svc := newPostService(t, db)

	res, err := svc.Create(CreatePostInput{UserID: user.ID, IsVDL: true})
	require.NoError(t, err)

	_, err = svc.UpdateTiming(res.Post.ID, other.ID, floatPtr(3.0), false)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.UpdateTiming(res.Post.ID, user.ID, floatPtr(3.0), false)
	require.NoError(t, err)
	assert.False(t, updated.IsVDL)
	require.NotNil(t, updated.DrinkTimeSeconds)
	assert.Equal(t, 3.0, *updated.DrinkTimeSeconds)
}

func TestDeletePostCascades(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	group := createGroupWith(t, db, user.ID)
	svc := newPostService(t, db)

	_, err := NewCompetitionService(db).Create(group.ID, user.ID, "Sprint", "", 10)
	require.NoError(t, err)

	res, err := svc.Create(CreatePostInput{
		UserID:   user.ID,
		IsVDL:    true,
		GroupIDs: []uint{group.ID},
	})
	require.NoError(t, err)
	postID := res.Post.ID

	require.NoError(t, svc.Delete(postID, user.ID))

	var posts, links, progress int64
	db.Model(&models.Post{}).Where("id = ?", postID).Count(&posts)
	db.Model(&models.PostGroup{}).Where("post_id = ?", postID).Count(&links)
	db.Model(&models.CompetitionProgress{}).Where("post_id = ?", postID).Count(&progress)
	assert.Equal(t, int64(0), posts)
	assert.Equal(t, int64(0), links)
	assert.Equal(t, int64(0), progress)
}

func TestRemovePhotoLeavesMarker(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := newPostService(t, db)

	name := "beer.jpg"
	res, err := svc.Create(CreatePostInput{UserID: user.ID, IsVDL: true, PhotoFilename: &name})
	require.NoError(t, err)

	require.NoError(t, svc.RemovePhoto(res.Post.ID, user.ID))
	assert.ErrorIs(t, svc.RemovePhoto(res.Post.ID, user.ID), ErrInvalidState)

	var post models.Post
	require.NoError(t, db.First(&post, res.Post.ID).Error)
	assert.Nil(t, post.PhotoFilename)
	assert.True(t, post.PhotoRemoved)
}

func TestFeedForCollectsOwnConnectionAndGroupPosts(t *testing.T) {
	db := newTestDB(t)
	viewer := createUser(t, db, "joris")
	friend := createUser(t, db, "willem")
	groupie := createUser(t, db, "daan")
	stranger := createUser(t, db, "pieter")
	svc := newPostService(t, db)

	connectUsers(t, db, viewer.ID, friend.ID)
	group := createGroupWith(t, db, groupie.ID, viewer.ID)

	now := time.Now().UTC()
	own := insertPost(t, db, viewer.ID, 1, nil, now)
	friends := insertPost(t, db, friend.ID, 1, nil, now)
	shared := insertPost(t, db, groupie.ID, 1, nil, now)
	require.NoError(t, db.Create(&models.PostGroup{PostID: shared.ID, GroupID: group.ID}).Error)
	insertPost(t, db, stranger.ID, 1, nil, now) // public but unrelated

	posts, err := svc.FeedFor(viewer.ID, 0)
	require.NoError(t, err)

	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Contains(t, ids, own.ID)
	assert.Contains(t, ids, friends.ID)
	assert.Contains(t, ids, shared.ID)
	assert.Len(t, ids, 3)
}

func TestEventsForUserWindowAndOrder(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db, "joris")
	svc := newPostService(t, db)

	now := time.Now().UTC()
	insertPost(t, db, user.ID, 1, nil, now.AddDate(0, 0, -10))
	insertPost(t, db, user.ID, 2, nil, now.AddDate(0, 0, -1))
	insertPost(t, db, user.ID, 3, nil, now)

	since := now.AddDate(0, 0, -7)
	posts, err := svc.EventsForUser(user.ID, &since, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, 3, posts[0].BeerCount) // newest first
	assert.Equal(t, 2, posts[1].BeerCount)
}
