package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

type row[T any] struct {
	seq   uint64
	value T
}

// MemoryStore keeps every record in process memory. Values are copied on the
// way in and out so callers never share slices with the store.
type MemoryStore struct {
	mu  sync.RWMutex
	seq uint64
	now func() time.Time

	users        map[string]row[models.User]
	resumes      map[string]row[models.Resume]
	jobs         map[string]row[models.JobDescription]
	applications map[string]row[models.Application]
	coverLetters map[string]row[models.CoverLetter]
	questionSets map[string]row[models.InterviewQuestionSet]
	skillGaps    map[string]row[models.SkillGap]
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:          time.Now,
		users:        make(map[string]row[models.User]),
		resumes:      make(map[string]row[models.Resume]),
		jobs:         make(map[string]row[models.JobDescription]),
		applications: make(map[string]row[models.Application]),
		coverLetters: make(map[string]row[models.CoverLetter]),
		questionSets: make(map[string]row[models.InterviewQuestionSet]),
		skillGaps:    make(map[string]row[models.SkillGap]),
	}
}

// WithClock replaces the timestamp source, for tests
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *MemoryStore) next() (string, uint64, time.Time) {
	s.seq++
	return utils.GenerateID(), s.seq, s.now().UTC()
}

// newestFirst orders by timestamp descending, then by insertion order descending
func newestFirst[T any](rows map[string]row[T], keep func(T) bool, ts func(T) time.Time, clone func(T) T) []T {
	matched := make([]row[T], 0)
	for _, r := range rows {
		if keep(r.value) {
			matched = append(matched, r)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		ti, tj := ts(matched[i].value), ts(matched[j].value)
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return matched[i].seq > matched[j].seq
	})

	out := make([]T, len(matched))
	for i, r := range matched {
		out[i] = clone(r.value)
	}
	return out
}

// Users

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.users {
		if strings.EqualFold(r.value.Username, user.Username) {
			return nil, ErrConflict
		}
	}

	stored := *user
	var seq uint64
	stored.ID, seq, stored.CreatedAt = s.next()
	s.users[stored.ID] = row[models.User]{seq: seq, value: stored}

	out := stored
	return &out, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := r.value
	return &out, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.users {
		if strings.EqualFold(r.value.Username, username) {
			out := r.value
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// Resumes

func cloneResume(r models.Resume) models.Resume {
	r.Skills = utils.CloneStrings(r.Skills)
	r.Strengths = utils.CloneStrings(r.Strengths)
	r.Weaknesses = utils.CloneStrings(r.Weaknesses)
	return r
}

func (s *MemoryStore) CreateResume(ctx context.Context, resume *models.Resume) (*models.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneResume(*resume)
	var seq uint64
	stored.ID, seq, stored.CreatedAt = s.next()
	s.resumes[stored.ID] = row[models.Resume]{seq: seq, value: stored}

	out := cloneResume(stored)
	return &out, nil
}

func (s *MemoryStore) GetResume(ctx context.Context, id string) (*models.Resume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.resumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneResume(r.value)
	return &out, nil
}

func (s *MemoryStore) ListResumesByUser(ctx context.Context, userID string) ([]models.Resume, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newestFirst(s.resumes,
		func(r models.Resume) bool { return r.UserID == userID },
		func(r models.Resume) time.Time { return r.CreatedAt },
		cloneResume,
	), nil
}

func (s *MemoryStore) UpdateResume(ctx context.Context, id string, update models.ResumeUpdate) (*models.Resume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.resumes[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(&r.value)
	s.resumes[id] = r

	out := cloneResume(r.value)
	return &out, nil
}

// Job descriptions

func cloneJob(j models.JobDescription) models.JobDescription {
	j.RequiredSkills = utils.CloneStrings(j.RequiredSkills)
	return j
}

func (s *MemoryStore) CreateJobDescription(ctx context.Context, job *models.JobDescription) (*models.JobDescription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneJob(*job)
	var seq uint64
	stored.ID, seq, stored.CreatedAt = s.next()
	s.jobs[stored.ID] = row[models.JobDescription]{seq: seq, value: stored}

	out := cloneJob(stored)
	return &out, nil
}

func (s *MemoryStore) GetJobDescription(ctx context.Context, id string) (*models.JobDescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneJob(r.value)
	return &out, nil
}

func (s *MemoryStore) ListJobDescriptionsByUser(ctx context.Context, userID string) ([]models.JobDescription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newestFirst(s.jobs,
		func(j models.JobDescription) bool { return j.UserID == userID },
		func(j models.JobDescription) time.Time { return j.CreatedAt },
		cloneJob,
	), nil
}

// Applications

func cloneApplication(a models.Application) models.Application {
	if a.InterviewDate != nil {
		t := *a.InterviewDate
		a.InterviewDate = &t
	}
	return a
}

func (s *MemoryStore) insertApplication(app *models.Application) models.Application {
	stored := cloneApplication(*app)
	var seq uint64
	stored.ID, seq, stored.AppliedAt = s.next()
	s.applications[stored.ID] = row[models.Application]{seq: seq, value: stored}
	return stored
}

func (s *MemoryStore) CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := cloneApplication(s.insertApplication(app))
	return &out, nil
}

func (s *MemoryStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneApplication(r.value)
	return &out, nil
}

func (s *MemoryStore) ListApplicationsByUser(ctx context.Context, userID string) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newestFirst(s.applications,
		func(a models.Application) bool { return a.UserID == userID },
		func(a models.Application) time.Time { return a.AppliedAt },
		cloneApplication,
	), nil
}

func (s *MemoryStore) UpdateApplication(ctx context.Context, id string, update models.ApplicationUpdate) (*models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.applications[id]
	if !ok {
		return nil, ErrNotFound
	}
	update.Apply(&r.value)
	s.applications[id] = r

	out := cloneApplication(r.value)
	return &out, nil
}

// Cover letters

func (s *MemoryStore) insertCoverLetter(letter *models.CoverLetter) models.CoverLetter {
	stored := *letter
	var seq uint64
	stored.ID, seq, stored.CreatedAt = s.next()
	s.coverLetters[stored.ID] = row[models.CoverLetter]{seq: seq, value: stored}
	return stored
}

func (s *MemoryStore) ListCoverLettersByUser(ctx context.Context, userID string) ([]models.CoverLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newestFirst(s.coverLetters,
		func(c models.CoverLetter) bool { return c.UserID == userID },
		func(c models.CoverLetter) time.Time { return c.CreatedAt },
		func(c models.CoverLetter) models.CoverLetter { return c },
	), nil
}

func (s *MemoryStore) GetCoverLetterByApplication(ctx context.Context, applicationID string) (*models.CoverLetter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	letters := newestFirst(s.coverLetters,
		func(c models.CoverLetter) bool { return c.ApplicationID == applicationID },
		func(c models.CoverLetter) time.Time { return c.CreatedAt },
		func(c models.CoverLetter) models.CoverLetter { return c },
	)
	if len(letters) == 0 {
		return nil, ErrNotFound
	}
	return &letters[0], nil
}

// CreateDraftWithCoverLetter holds the write lock across both inserts, so no
// reader can observe one without the other.
func (s *MemoryStore) CreateDraftWithCoverLetter(ctx context.Context, app *models.Application, letter *models.CoverLetter) (*models.Application, *models.CoverLetter, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	storedApp := s.insertApplication(app)

	withApp := *letter
	withApp.ApplicationID = storedApp.ID
	storedLetter := s.insertCoverLetter(&withApp)

	outApp := cloneApplication(storedApp)
	return &outApp, &storedLetter, nil
}

// Interview questions

func cloneQuestionSet(q models.InterviewQuestionSet) models.InterviewQuestionSet {
	q.Questions = utils.CloneStrings(q.Questions)
	q.TechnicalQuestions = utils.CloneStrings(q.TechnicalQuestions)
	q.BehavioralQuestions = utils.CloneStrings(q.BehavioralQuestions)
	return q
}

func (s *MemoryStore) CreateInterviewQuestions(ctx context.Context, set *models.InterviewQuestionSet) (*models.InterviewQuestionSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneQuestionSet(*set)
	var seq uint64
	stored.ID, seq, stored.CreatedAt = s.next()
	s.questionSets[stored.ID] = row[models.InterviewQuestionSet]{seq: seq, value: stored}

	out := cloneQuestionSet(stored)
	return &out, nil
}

func (s *MemoryStore) GetInterviewQuestionsByJob(ctx context.Context, jobDescriptionID string) (*models.InterviewQuestionSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sets := newestFirst(s.questionSets,
		func(q models.InterviewQuestionSet) bool { return q.JobDescriptionID == jobDescriptionID },
		func(q models.InterviewQuestionSet) time.Time { return q.CreatedAt },
		cloneQuestionSet,
	)
	if len(sets) == 0 {
		return nil, ErrNotFound
	}
	return &sets[0], nil
}

// Skill gaps

func cloneSkillGap(g models.SkillGap) models.SkillGap {
	g.MissingSkills = utils.CloneStrings(g.MissingSkills)
	return g
}

func (s *MemoryStore) CreateSkillGap(ctx context.Context, gap *models.SkillGap) (*models.SkillGap, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := cloneSkillGap(*gap)
	var seq uint64
	stored.ID, seq, stored.CreatedAt = s.next()
	s.skillGaps[stored.ID] = row[models.SkillGap]{seq: seq, value: stored}

	out := cloneSkillGap(stored)
	return &out, nil
}

func (s *MemoryStore) ListSkillGapsByUser(ctx context.Context, userID string) ([]models.SkillGap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return newestFirst(s.skillGaps,
		func(g models.SkillGap) bool { return g.UserID == userID },
		func(g models.SkillGap) time.Time { return g.CreatedAt },
		cloneSkillGap,
	), nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Close() error {
	return nil
}
