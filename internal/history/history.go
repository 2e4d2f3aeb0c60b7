// Package history keeps a bounded, expiring trail of the analyses run
// against each resume.
package history

import (
	"context"
	"sync"
	"time"

	"applytrack/pkg/models"
	"applytrack/pkg/utils"
)

// Entry kinds
const (
	KindResumeAnalysis = "resume_analysis"
	KindJobMatch       = "job_match"
	KindSkillGap       = "skill_gap"
	KindCoverLetter    = "cover_letter"
)

// appendEntry stamps entry, appends it and keeps only the newest maxEntries
func appendEntry(h *models.AnalysisHistory, entry models.AnalysisHistoryEntry, maxEntries int, now time.Time) models.AnalysisHistoryEntry {
	entry.ID = utils.GenerateRequestID()
	entry.Timestamp = now
	h.Entries = append(h.Entries, entry)
	h.UpdatedAt = now

	if maxEntries > 0 && len(h.Entries) > maxEntries {
		h.Entries = append([]models.AnalysisHistoryEntry(nil), h.Entries[len(h.Entries)-maxEntries:]...)
	}
	return entry
}

func newHistory(resumeID string, now time.Time) *models.AnalysisHistory {
	return &models.AnalysisHistory{
		ResumeID:  resumeID,
		Entries:   []models.AnalysisHistoryEntry{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MemoryHistory is the in-process history used when Redis is not configured.
// Entries do not expire.
type MemoryHistory struct {
	mu         sync.Mutex
	maxEntries int
	byResume   map[string]*models.AnalysisHistory
	now        func() time.Time
}

// NewMemoryHistory creates an empty in-process history
func NewMemoryHistory(maxEntries int) *MemoryHistory {
	return &MemoryHistory{
		maxEntries: maxEntries,
		byResume:   make(map[string]*models.AnalysisHistory),
		now:        time.Now,
	}
}

func (m *MemoryHistory) Record(ctx context.Context, resumeID string, entry models.AnalysisHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now().UTC()
	h, ok := m.byResume[resumeID]
	if !ok {
		h = newHistory(resumeID, now)
		m.byResume[resumeID] = h
	}
	appendEntry(h, entry, m.maxEntries, now)
	return nil
}

func (m *MemoryHistory) Get(ctx context.Context, resumeID string) (*models.AnalysisHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.byResume[resumeID]
	if !ok {
		return newHistory(resumeID, m.now().UTC()), nil
	}
	out := *h
	out.Entries = append([]models.AnalysisHistoryEntry{}, h.Entries...)
	return &out, nil
}

func (m *MemoryHistory) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryHistory) Close() error {
	return nil
}
