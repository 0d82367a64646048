package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arawak/showroom/internal/store"
	"github.com/arawak/showroom/internal/testsupport"
)

func TestDesignCRUD(t *testing.T) {
	ctx := context.Background()
	st := testsupport.MustOpenStore(t)

	created, err := st.CreateDesign(ctx, store.DesignCreate{Title: "Modern Loft", Description: "Open-plan", Image: "1-1.jpg"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := st.GetDesign(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Modern Loft", got.Title)
	assert.Equal(t, "Open-plan", got.Description)
	assert.Equal(t, "1-1.jpg", got.Image)
	assert.False(t, got.CreatedAt.IsZero())

	updated, prev, err := st.UpdateDesign(ctx, created.ID, store.DesignUpdate{Title: "Loft", Description: "Closed"})
	require.NoError(t, err)
	assert.Empty(t, prev, "text-only update must not report a previous image")
	assert.Equal(t, "1-1.jpg", updated.Image)

	img := "2-2.png"
	updated, prev, err = st.UpdateDesign(ctx, created.ID, store.DesignUpdate{Title: "Loft", Description: "Closed", Image: &img})
	require.NoError(t, err)
	assert.Equal(t, "1-1.jpg", prev)
	assert.Equal(t, "2-2.png", updated.Image)

	got, err = st.GetDesign(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Loft", got.Title)
	assert.Equal(t, "2-2.png", got.Image)

	deleted, err := st.DeleteDesign(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2-2.png", deleted.Image)

	_, err = st.GetDesign(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.DeleteDesign(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, _, err = st.UpdateDesign(ctx, created.ID, store.DesignUpdate{Title: "x", Description: "y"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListDesignsNewestFirst(t *testing.T) {
	ctx := context.Background()
	st := testsupport.MustOpenStore(t)

	designs, err := st.ListDesigns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, designs)
	assert.Empty(t, designs)

	var ids []int64
	for _, title := range []string{"first", "second", "third"} {
		d, err := st.CreateDesign(ctx, store.DesignCreate{Title: title, Description: "d", Image: title + ".jpg"})
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}

	designs, err = st.ListDesigns(ctx)
	require.NoError(t, err)
	require.Len(t, designs, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{designs[0].Title, designs[1].Title, designs[2].Title})
	assert.Equal(t, ids[2], designs[0].ID)
}

func TestVideoLifecycle(t *testing.T) {
	ctx := context.Background()
	st := testsupport.MustOpenStore(t)

	v, err := st.CreateVideo(ctx, store.VideoCreate{Title: "Tour", Description: "Walkthrough", VideoFile: "video-1-1.mp4"})
	require.NoError(t, err)
	assert.Nil(t, v.YouTubeURL)

	got, err := st.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Nil(t, got.YouTubeURL)
	assert.Nil(t, got.YouTubeVideoID)

	require.NoError(t, st.SetVideoExternal(ctx, v.ID, "https://www.youtube.com/watch?v=abc", "abc"))
	got, err = st.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	require.NotNil(t, got.YouTubeURL)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc", *got.YouTubeURL)
	assert.Equal(t, "abc", *got.YouTubeVideoID)

	videos, err := st.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, videos, 1)

	deleted, err := st.DeleteVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "video-1-1.mp4", deleted.VideoFile)

	_, err = st.DeleteVideo(ctx, v.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, st.SetVideoExternal(ctx, v.ID, "u", "i"), store.ErrNotFound)
}

func TestEnsureAdminCreatesOnce(t *testing.T) {
	ctx := context.Background()
	st := testsupport.MustOpenStore(t)

	created, err := st.EnsureAdmin(ctx, "admin", "hash-one")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = st.EnsureAdmin(ctx, "admin", "hash-two")
	require.NoError(t, err)
	assert.False(t, created)

	a, err := st.AdminByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, "hash-one", a.PasswordHash, "existing credential must not be rotated")

	byID, err := st.AdminByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "admin", byID.Username)

	_, err = st.AdminByUsername(ctx, "Admin")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.AdminByID(ctx, a.ID+1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
