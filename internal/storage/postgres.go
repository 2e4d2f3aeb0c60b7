package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"applytrack/internal/config"
	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

// PostgresStore persists records in PostgreSQL through a pgx pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects, pings and migrates
func NewPostgresStore(ctx context.Context, cfg *config.Config) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	poolConfig.MaxConns = cfg.Database.MaxConns
	poolConfig.MinConns = cfg.Database.MinConns
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime

	connectCtx, cancel := context.WithTimeout(ctx, cfg.Database.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if err := RunMigrations(connectCtx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// rowScanner is satisfied by pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// queryer is satisfied by the pool and by transactions
type queryer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func encodeList(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeList(data []byte) ([]string, error) {
	out := []string{}
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to decode list column: %w", err)
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func now() time.Time {
	return time.Now().UTC()
}

// collect scans every row with scan and closes rows
func collect[T any](rows pgx.Rows, scan func(rowScanner) (T, error)) ([]T, error) {
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Users

const userColumns = `id, username, password, created_at`

func scanUser(r rowScanner) (models.User, error) {
	var u models.User
	err := r.Scan(&u.ID, &u.Username, &u.Credential, &u.CreatedAt)
	return u, err
}

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	stored := *user
	stored.ID = utils.GenerateID()
	stored.CreatedAt = now()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, username, password, created_at) VALUES ($1, $2, $3, $4)`,
		stored.ID, stored.Username, stored.Credential, stored.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// Resumes

const resumeColumns = `id, user_id, filename, content, skills, experience, education, ats_score, strengths, weaknesses, suggestions, file_url, created_at`

func scanResume(r rowScanner) (models.Resume, error) {
	var (
		res                           models.Resume
		skills, strengths, weaknesses []byte
	)
	err := r.Scan(&res.ID, &res.UserID, &res.Filename, &res.Content, &skills, &res.Experience, &res.Education,
		&res.ATSScore, &strengths, &weaknesses, &res.Suggestions, &res.FileURL, &res.CreatedAt)
	if err != nil {
		return res, err
	}
	if res.Skills, err = decodeList(skills); err != nil {
		return res, err
	}
	if res.Strengths, err = decodeList(strengths); err != nil {
		return res, err
	}
	res.Weaknesses, err = decodeList(weaknesses)
	return res, err
}

func writeResume(ctx context.Context, q queryer, res *models.Resume, insert bool) error {
	args := []any{res.ID, res.UserID, res.Filename, res.Content, encodeList(res.Skills), res.Experience, res.Education,
		res.ATSScore, encodeList(res.Strengths), encodeList(res.Weaknesses), res.Suggestions, res.FileURL, res.CreatedAt}

	if insert {
		_, err := q.Exec(ctx, `INSERT INTO resumes (`+resumeColumns+`)
			VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9::jsonb, $10::jsonb, $11, $12, $13)`, args...)
		return err
	}
	_, err := q.Exec(ctx, `UPDATE resumes SET user_id = $2, filename = $3, content = $4, skills = $5::jsonb,
		experience = $6, education = $7, ats_score = $8, strengths = $9::jsonb, weaknesses = $10::jsonb,
		suggestions = $11, file_url = $12, created_at = $13 WHERE id = $1`, args...)
	return err
}

func (s *PostgresStore) CreateResume(ctx context.Context, resume *models.Resume) (*models.Resume, error) {
	stored := *resume
	stored.ID = utils.GenerateID()
	stored.CreatedAt = now()

	if err := writeResume(ctx, s.pool, &stored, true); err != nil {
		return nil, fmt.Errorf("failed to create resume: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) GetResume(ctx context.Context, id string) (*models.Resume, error) {
	res, err := scanResume(s.pool.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &res, nil
}

func (s *PostgresStore) ListResumesByUser(ctx context.Context, userID string) ([]models.Resume, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list resumes: %w", err)
	}
	return collect(rows, scanResume)
}

func (s *PostgresStore) UpdateResume(ctx context.Context, id string, update models.ResumeUpdate) (*models.Resume, error) {
	var updated models.Resume
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		res, err := scanResume(tx.QueryRow(ctx, `SELECT `+resumeColumns+` FROM resumes WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err)
		}
		update.Apply(&res)
		if err := writeResume(ctx, tx, &res, false); err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update resume: %w", err)
	}
	return &updated, nil
}

// Job descriptions

const jobColumns = `id, user_id, title, company, content, required_skills, experience_level, location, salary, created_at`

func scanJob(r rowScanner) (models.JobDescription, error) {
	var (
		job    models.JobDescription
		skills []byte
	)
	err := r.Scan(&job.ID, &job.UserID, &job.Title, &job.Company, &job.Content, &skills,
		&job.ExperienceLevel, &job.Location, &job.Salary, &job.CreatedAt)
	if err != nil {
		return job, err
	}
	job.RequiredSkills, err = decodeList(skills)
	return job, err
}

func (s *PostgresStore) CreateJobDescription(ctx context.Context, job *models.JobDescription) (*models.JobDescription, error) {
	stored := *job
	stored.ID = utils.GenerateID()
	stored.CreatedAt = now()

	_, err := s.pool.Exec(ctx, `INSERT INTO job_descriptions (`+jobColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8, $9, $10)`,
		stored.ID, stored.UserID, stored.Title, stored.Company, stored.Content, encodeList(stored.RequiredSkills),
		stored.ExperienceLevel, stored.Location, stored.Salary, stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job description: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) GetJobDescription(ctx context.Context, id string) (*models.JobDescription, error) {
	job, err := scanJob(s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM job_descriptions WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &job, nil
}

func (s *PostgresStore) ListJobDescriptionsByUser(ctx context.Context, userID string) ([]models.JobDescription, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+jobColumns+` FROM job_descriptions WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list job descriptions: %w", err)
	}
	return collect(rows, scanJob)
}

// Applications

const applicationColumns = `id, user_id, resume_id, job_description_id, status, match_percentage, applied_at, interview_date, notes`

func scanApplication(r rowScanner) (models.Application, error) {
	var (
		app    models.Application
		status string
	)
	err := r.Scan(&app.ID, &app.UserID, &app.ResumeID, &app.JobDescriptionID, &status, &app.MatchPercentage,
		&app.AppliedAt, &app.InterviewDate, &app.Notes)
	app.Status = models.ApplicationStatus(status)
	return app, err
}

func insertApplication(ctx context.Context, q queryer, app *models.Application) error {
	_, err := q.Exec(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		app.ID, app.UserID, app.ResumeID, app.JobDescriptionID, string(app.Status), app.MatchPercentage,
		app.AppliedAt, app.InterviewDate, app.Notes)
	return err
}

func (s *PostgresStore) CreateApplication(ctx context.Context, app *models.Application) (*models.Application, error) {
	stored := *app
	stored.ID = utils.GenerateID()
	stored.AppliedAt = now()

	if err := insertApplication(ctx, s.pool, &stored); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	app, err := scanApplication(s.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &app, nil
}

func (s *PostgresStore) ListApplicationsByUser(ctx context.Context, userID string) ([]models.Application, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 ORDER BY applied_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return collect(rows, scanApplication)
}

func (s *PostgresStore) UpdateApplication(ctx context.Context, id string, update models.ApplicationUpdate) (*models.Application, error) {
	var updated models.Application
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		app, err := scanApplication(tx.QueryRow(ctx, `SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFound(err)
		}
		update.Apply(&app)
		_, err = tx.Exec(ctx, `UPDATE applications SET status = $2, match_percentage = $3, interview_date = $4, notes = $5 WHERE id = $1`,
			app.ID, string(app.Status), app.MatchPercentage, app.InterviewDate, app.Notes)
		if err != nil {
			return err
		}
		updated = app
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return &updated, nil
}

// Cover letters

const coverLetterColumns = `id, user_id, application_id, content, created_at`

func scanCoverLetter(r rowScanner) (models.CoverLetter, error) {
	var c models.CoverLetter
	err := r.Scan(&c.ID, &c.UserID, &c.ApplicationID, &c.Content, &c.CreatedAt)
	return c, err
}

func insertCoverLetter(ctx context.Context, q queryer, letter *models.CoverLetter) error {
	_, err := q.Exec(ctx, `INSERT INTO cover_letters (`+coverLetterColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		letter.ID, letter.UserID, letter.ApplicationID, letter.Content, letter.CreatedAt)
	return err
}

func (s *PostgresStore) ListCoverLettersByUser(ctx context.Context, userID string) ([]models.CoverLetter, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+coverLetterColumns+` FROM cover_letters WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cover letters: %w", err)
	}
	return collect(rows, scanCoverLetter)
}

func (s *PostgresStore) GetCoverLetterByApplication(ctx context.Context, applicationID string) (*models.CoverLetter, error) {
	c, err := scanCoverLetter(s.pool.QueryRow(ctx, `SELECT `+coverLetterColumns+` FROM cover_letters
		WHERE application_id = $1 ORDER BY created_at DESC, seq DESC LIMIT 1`, applicationID))
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *PostgresStore) CreateDraftWithCoverLetter(ctx context.Context, app *models.Application, letter *models.CoverLetter) (*models.Application, *models.CoverLetter, error) {
	storedApp := *app
	storedApp.ID = utils.GenerateID()
	storedApp.AppliedAt = now()

	storedLetter := *letter
	storedLetter.ID = utils.GenerateID()
	storedLetter.ApplicationID = storedApp.ID
	storedLetter.CreatedAt = storedApp.AppliedAt

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := insertApplication(ctx, tx, &storedApp); err != nil {
			return err
		}
		return insertCoverLetter(ctx, tx, &storedLetter)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create draft application with cover letter: %w", err)
	}
	return &storedApp, &storedLetter, nil
}

// Interview questions

const questionColumns = `id, user_id, job_description_id, questions, technical_questions, behavioral_questions, created_at`

func scanQuestionSet(r rowScanner) (models.InterviewQuestionSet, error) {
	var (
		q                              models.InterviewQuestionSet
		general, technical, behavioral []byte
	)
	err := r.Scan(&q.ID, &q.UserID, &q.JobDescriptionID, &general, &technical, &behavioral, &q.CreatedAt)
	if err != nil {
		return q, err
	}
	if q.Questions, err = decodeList(general); err != nil {
		return q, err
	}
	if q.TechnicalQuestions, err = decodeList(technical); err != nil {
		return q, err
	}
	q.BehavioralQuestions, err = decodeList(behavioral)
	return q, err
}

func (s *PostgresStore) CreateInterviewQuestions(ctx context.Context, set *models.InterviewQuestionSet) (*models.InterviewQuestionSet, error) {
	stored := *set
	stored.ID = utils.GenerateID()
	stored.CreatedAt = now()

	_, err := s.pool.Exec(ctx, `INSERT INTO interview_questions (`+questionColumns+`)
		VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6::jsonb, $7)`,
		stored.ID, stored.UserID, stored.JobDescriptionID, encodeList(stored.Questions),
		encodeList(stored.TechnicalQuestions), encodeList(stored.BehavioralQuestions), stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create interview questions: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) GetInterviewQuestionsByJob(ctx context.Context, jobDescriptionID string) (*models.InterviewQuestionSet, error) {
	q, err := scanQuestionSet(s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM interview_questions
		WHERE job_description_id = $1 ORDER BY created_at DESC, seq DESC LIMIT 1`, jobDescriptionID))
	if err != nil {
		return nil, notFound(err)
	}
	return &q, nil
}

// Skill gaps

const skillGapColumns = `id, user_id, missing_skills, priority, recommendations, created_at`

func scanSkillGap(r rowScanner) (models.SkillGap, error) {
	var (
		g        models.SkillGap
		missing  []byte
		priority string
	)
	err := r.Scan(&g.ID, &g.UserID, &missing, &priority, &g.Recommendations, &g.CreatedAt)
	if err != nil {
		return g, err
	}
	g.Priority = models.SkillPriority(priority)
	g.MissingSkills, err = decodeList(missing)
	return g, err
}

func (s *PostgresStore) CreateSkillGap(ctx context.Context, gap *models.SkillGap) (*models.SkillGap, error) {
	stored := *gap
	stored.ID = utils.GenerateID()
	stored.CreatedAt = now()

	_, err := s.pool.Exec(ctx, `INSERT INTO skill_gaps (`+skillGapColumns+`) VALUES ($1, $2, $3::jsonb, $4, $5, $6)`,
		stored.ID, stored.UserID, encodeList(stored.MissingSkills), string(stored.Priority), stored.Recommendations, stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create skill gap: %w", err)
	}
	return &stored, nil
}

func (s *PostgresStore) ListSkillGapsByUser(ctx context.Context, userID string) ([]models.SkillGap, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+skillGapColumns+` FROM skill_gaps WHERE user_id = $1 ORDER BY created_at DESC, seq DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill gaps: %w", err)
	}
	return collect(rows, scanSkillGap)
}
