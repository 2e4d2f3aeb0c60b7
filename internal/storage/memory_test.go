package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applytrack/internal/config"
	"applytrack/pkg/models"
)

// fixedClock returns the same instant on every call
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCreateAssignsIDAndTimestamp(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore().WithClock(fixedClock(at))

	res, err := store.CreateResume(ctx, &models.Resume{UserID: "u1", Filename: "cv.pdf", Skills: []string{"Go"}})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, at, res.CreatedAt)

	got, err := store.GetResume(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res, got)
}

func TestGetUnknownIDReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.GetResume(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetJobDescription(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetApplication(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.UpdateApplication(ctx, "missing", models.ApplicationUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.UpdateResume(ctx, "missing", models.ResumeUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetCoverLetterByApplication(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetInterviewQuestionsByJob(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListsAreNewestFirstAndScopedToUser(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	store := NewMemoryStore().WithClock(func() time.Time { return current })

	first, err := store.CreateJobDescription(ctx, &models.JobDescription{UserID: "u1", Title: "first"})
	require.NoError(t, err)
	current = base.Add(time.Hour)
	second, err := store.CreateJobDescription(ctx, &models.JobDescription{UserID: "u1", Title: "second"})
	require.NoError(t, err)
	_, err = store.CreateJobDescription(ctx, &models.JobDescription{UserID: "u2", Title: "other"})
	require.NoError(t, err)

	jobs, err := store.ListJobDescriptionsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Equal(t, second.ID, jobs[0].ID)
	assert.Equal(t, first.ID, jobs[1].ID)
}

func TestListTiesBreakByInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore().WithClock(fixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)))

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		app, err := store.CreateApplication(ctx, &models.Application{UserID: "u1", Status: models.StatusApplied})
		require.NoError(t, err)
		ids = append(ids, app.ID)
	}

	apps, err := store.ListApplicationsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{apps[0].ID, apps[1].ID, apps[2].ID})
}

func TestListUnknownUserIsEmpty(t *testing.T) {
	store := NewMemoryStore()

	resumes, err := store.ListResumesByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, resumes)
	assert.Empty(t, resumes)
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	res, err := store.CreateResume(ctx, &models.Resume{UserID: "u1", Skills: []string{"Go", "SQL"}})
	require.NoError(t, err)
	res.Skills[0] = "mutated"

	got, err := store.GetResume(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, got.Skills)
}

func TestUpdateApplicationKeepsAppliedAt(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := created
	store := NewMemoryStore().WithClock(func() time.Time { return current })

	app, err := store.CreateApplication(ctx, &models.Application{UserID: "u1", Status: models.StatusApplied, Notes: "n"})
	require.NoError(t, err)

	current = created.Add(48 * time.Hour)
	status := models.StatusInterview
	interview := created.Add(72 * time.Hour)
	updated, err := store.UpdateApplication(ctx, app.ID, models.ApplicationUpdate{Status: &status, InterviewDate: &interview})
	require.NoError(t, err)

	assert.Equal(t, models.StatusInterview, updated.Status)
	assert.Equal(t, created, updated.AppliedAt)
	require.NotNil(t, updated.InterviewDate)
	assert.Equal(t, interview, *updated.InterviewDate)
	assert.Equal(t, "n", updated.Notes)
}

func TestUpdateResumeMergesFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	res, err := store.CreateResume(ctx, &models.Resume{UserID: "u1", Filename: "a.pdf", ATSScore: 40})
	require.NoError(t, err)

	score := 88
	updated, err := store.UpdateResume(ctx, res.ID, models.ResumeUpdate{ATSScore: &score})
	require.NoError(t, err)
	assert.Equal(t, 88, updated.ATSScore)
	assert.Equal(t, "a.pdf", updated.Filename)
}

func TestCreateUserRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.CreateUser(ctx, &models.User{Username: "Ada", Credential: "x"})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, &models.User{Username: "ada", Credential: "y"})
	assert.ErrorIs(t, err, ErrConflict)

	found, err := store.GetUserByUsername(ctx, "ADA")
	require.NoError(t, err)
	assert.Equal(t, "Ada", found.Username)
}

func TestCreateDraftWithCoverLetterLinksRecords(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	app, letter, err := store.CreateDraftWithCoverLetter(ctx,
		&models.Application{UserID: "u1", ResumeID: "r1", JobDescriptionID: "j1", Status: models.StatusDraft},
		&models.CoverLetter{UserID: "u1", Content: "Dear team"})
	require.NoError(t, err)
	assert.Equal(t, app.ID, letter.ApplicationID)

	got, err := store.GetCoverLetterByApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dear team", got.Content)

	letters, err := store.ListCoverLettersByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, letters, 1)
}

func TestCreateDraftWithCoverLetterHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore()

	_, _, err := store.CreateDraftWithCoverLetter(ctx, &models.Application{UserID: "u1"}, &models.CoverLetter{UserID: "u1"})
	require.Error(t, err)

	apps, err := store.ListApplicationsByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, apps)
	letters, err := store.ListCoverLettersByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, letters)
}

func TestLatestInterviewQuestionsWin(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.CreateInterviewQuestions(ctx, &models.InterviewQuestionSet{UserID: "u1", JobDescriptionID: "j1", Questions: []string{"old"}})
	require.NoError(t, err)
	_, err = store.CreateInterviewQuestions(ctx, &models.InterviewQuestionSet{UserID: "u1", JobDescriptionID: "j1", Questions: []string{"new"}})
	require.NoError(t, err)

	got, err := store.GetInterviewQuestionsByJob(ctx, "j1")
	require.NoError(t, err)
	assert.Equal(t, []string{"new"}, got.Questions)
}

func TestConcurrentCreatesAreAllVisible(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.CreateSkillGap(ctx, &models.SkillGap{UserID: "u1", Priority: models.PriorityHigh})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	gaps, err := store.ListSkillGapsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, gaps, 50)
}

func TestOpenSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "memory"

	store, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)
	assert.NoError(t, store.Ping(context.Background()))

	cfg.Database.Driver = "sqlite"
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}
