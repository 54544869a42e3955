package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/planward/planward/internal/domain/template"
	"github.com/planward/planward/internal/repository"
	"github.com/stretchr/testify/require"
)

func newTemplate(id string) *template.Template {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return &template.Template{
		ID:     id,
		Label:  "Onboarding",
		Active: true,
		Tasks: []template.TaskDefinition{
			{ID: id + "-d0", Label: "Sign papers", Link: "https://example.com/hr", Index: 0},
			{ID: id + "-d1", Label: "Meet the team", Note: "intro round", Index: 1},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestTemplateRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	tpl := newTemplate("tpl1")
	require.NoError(t, repo.Create(ctx, tpl))

	got, err := repo.GetActive(ctx, "tpl1")
	require.NoError(t, err)
	require.Equal(t, "Onboarding", got.Label)
	require.True(t, got.Active)
	require.Len(t, got.Tasks, 2)
	require.Equal(t, "Sign papers", got.Tasks[0].Label)
	require.Equal(t, "https://example.com/hr", got.Tasks[0].Link)
	require.Equal(t, 0, got.Tasks[0].Index)
	require.Equal(t, "intro round", got.Tasks[1].Note)
	require.Empty(t, got.UsedBy)
}

func TestTemplateRepository_GetActiveMissing(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)

	_, err := repo.GetActive(context.Background(), "nonexistent")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTemplateRepository_ListActiveExcludesDeleted(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTemplate("tpl1")))
	require.NoError(t, repo.Create(ctx, newTemplate("tpl2")))
	require.NoError(t, repo.SoftDelete(ctx, "tpl1"))

	list, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "tpl2", list[0].ID)
	require.Len(t, list[0].Tasks, 2)
}

func TestTemplateRepository_UpdateReplacesTasks(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	tpl := newTemplate("tpl1")
	require.NoError(t, repo.Create(ctx, tpl))

	tpl.Label = "Onboarding v2"
	tpl.Tasks = []template.TaskDefinition{
		{ID: "new-d0", Label: "Only task", Index: 0},
	}
	require.NoError(t, repo.Update(ctx, tpl))

	got, err := repo.GetActive(ctx, "tpl1")
	require.NoError(t, err)
	require.Equal(t, "Onboarding v2", got.Label)
	require.Len(t, got.Tasks, 1)
	require.Equal(t, "Only task", got.Tasks[0].Label)
}

func TestTemplateRepository_UpdateInactive(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	tpl := newTemplate("tpl1")
	require.NoError(t, repo.Create(ctx, tpl))
	require.NoError(t, repo.SoftDelete(ctx, "tpl1"))

	tpl.Label = "resurrected"
	require.ErrorIs(t, repo.Update(ctx, tpl), repository.ErrNotFound)
}

func TestTemplateRepository_SoftDeleteNotIdempotent(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTemplate("tpl1")))

	require.NoError(t, repo.SoftDelete(ctx, "tpl1"))
	require.ErrorIs(t, repo.SoftDelete(ctx, "tpl1"), repository.ErrNotFound)
	require.ErrorIs(t, repo.SoftDelete(ctx, "never-existed"), repository.ErrNotFound)
}

func TestTemplateRepository_AppendUsageOrder(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTemplate("tpl1")))

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, user := range []string{"user1", "user2", "user3"} {
		entry := template.UsageEntry{UserID: user, At: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.AppendUsage(ctx, "tpl1", entry))
	}

	got, err := repo.GetActive(ctx, "tpl1")
	require.NoError(t, err)
	require.Len(t, got.UsedBy, 3)
	require.Equal(t, "user1", got.UsedBy[0].UserID)
	require.Equal(t, "user2", got.UsedBy[1].UserID)
	require.Equal(t, "user3", got.UsedBy[2].UserID)
}

func TestTemplateRepository_AppendUsageMissingTemplate(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTemplateRepository(db)

	err := repo.AppendUsage(context.Background(), "ghost", template.UsageEntry{UserID: "u1", At: time.Now()})
	require.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}
