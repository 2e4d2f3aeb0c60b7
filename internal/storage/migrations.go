package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"applytrack/internal/logging"
)

// Migration is one idempotent schema step
type Migration struct {
	Name string
	SQL  string
}

// Migrations are applied in order at startup. Every statement must be safe to re-run.
var Migrations = []Migration{
	{
		Name: "create_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
			id         VARCHAR PRIMARY KEY,
			seq        BIGSERIAL,
			username   TEXT NOT NULL UNIQUE,
			password   TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "create_resumes",
		SQL: `CREATE TABLE IF NOT EXISTS resumes (
			id          VARCHAR PRIMARY KEY,
			seq         BIGSERIAL,
			user_id     VARCHAR NOT NULL,
			filename    TEXT NOT NULL,
			content     TEXT NOT NULL,
			skills      JSONB NOT NULL DEFAULT '[]'::jsonb,
			experience  TEXT NOT NULL DEFAULT '',
			education   TEXT NOT NULL DEFAULT '',
			ats_score   INTEGER NOT NULL DEFAULT 0,
			strengths   JSONB NOT NULL DEFAULT '[]'::jsonb,
			weaknesses  JSONB NOT NULL DEFAULT '[]'::jsonb,
			suggestions TEXT NOT NULL DEFAULT '',
			file_url    TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "create_job_descriptions",
		SQL: `CREATE TABLE IF NOT EXISTS job_descriptions (
			id               VARCHAR PRIMARY KEY,
			seq              BIGSERIAL,
			user_id          VARCHAR NOT NULL,
			title            TEXT NOT NULL,
			company          TEXT NOT NULL,
			content          TEXT NOT NULL,
			required_skills  JSONB NOT NULL DEFAULT '[]'::jsonb,
			experience_level TEXT NOT NULL DEFAULT '',
			location         TEXT NOT NULL DEFAULT '',
			salary           TEXT NOT NULL DEFAULT '',
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "create_applications",
		SQL: `CREATE TABLE IF NOT EXISTS applications (
			id                 VARCHAR PRIMARY KEY,
			seq                BIGSERIAL,
			user_id            VARCHAR NOT NULL,
			resume_id          VARCHAR NOT NULL REFERENCES resumes(id),
			job_description_id VARCHAR NOT NULL REFERENCES job_descriptions(id),
			status             TEXT NOT NULL DEFAULT 'applied',
			match_percentage   INTEGER NOT NULL DEFAULT 0,
			applied_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
			interview_date     TIMESTAMPTZ,
			notes              TEXT NOT NULL DEFAULT ''
		)`,
	},
	{
		Name: "create_cover_letters",
		SQL: `CREATE TABLE IF NOT EXISTS cover_letters (
			id             VARCHAR PRIMARY KEY,
			seq            BIGSERIAL,
			user_id        VARCHAR NOT NULL,
			application_id VARCHAR NOT NULL REFERENCES applications(id),
			content        TEXT NOT NULL,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "create_interview_questions",
		SQL: `CREATE TABLE IF NOT EXISTS interview_questions (
			id                   VARCHAR PRIMARY KEY,
			seq                  BIGSERIAL,
			user_id              VARCHAR NOT NULL,
			job_description_id   VARCHAR NOT NULL REFERENCES job_descriptions(id),
			questions            JSONB NOT NULL DEFAULT '[]'::jsonb,
			technical_questions  JSONB NOT NULL DEFAULT '[]'::jsonb,
			behavioral_questions JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "create_skill_gaps",
		SQL: `CREATE TABLE IF NOT EXISTS skill_gaps (
			id              VARCHAR PRIMARY KEY,
			seq             BIGSERIAL,
			user_id         VARCHAR NOT NULL,
			missing_skills  JSONB NOT NULL DEFAULT '[]'::jsonb,
			priority        TEXT NOT NULL,
			recommendations TEXT NOT NULL DEFAULT '',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	},
	{
		Name: "index_user_lookups",
		SQL: `CREATE INDEX IF NOT EXISTS idx_resumes_user ON resumes (user_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_job_descriptions_user ON job_descriptions (user_id, created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_applications_user ON applications (user_id, applied_at DESC);
			CREATE INDEX IF NOT EXISTS idx_cover_letters_application ON cover_letters (application_id);
			CREATE INDEX IF NOT EXISTS idx_interview_questions_job ON interview_questions (job_description_id, created_at DESC)`,
	},
}

// RunMigrations applies every migration, stopping at the first failure
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	logger := logging.GetGlobalLogger()
	logger.Info("Starting database migrations", map[string]interface{}{"count": len(Migrations)})

	for _, m := range Migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			logger.Error("Migration failed", map[string]interface{}{"name": m.Name, "error": err.Error()})
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		logger.Debug("Migration applied", map[string]interface{}{"name": m.Name})
	}

	logger.Info("All migrations completed successfully")
	return nil
}
