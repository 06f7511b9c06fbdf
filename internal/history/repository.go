// Package history stores the study sessions a learner started, one row per
// goal and study mode.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyblossom/internal/infra"
	"studyblossom/internal/sqlinline"
	"studyblossom/internal/validation"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
	MinStudyTime     = 1
	MaxStudyTime     = 24
	// duplicateWindow suppresses double submissions of the same session.
	duplicateWindow = 2 * time.Second
)

var (
	ErrNotFound     = errors.New("history: session not found")
	ErrInvalidEntry = errors.New("history: invalid session")
)

// Modes are the study modes a session can be started in.
var Modes = []string{"text", "visual", "audio", "map", "pomodoro", "voice-tutor", "video"}

type Entry struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	GoalName  string    `json:"goal_name"`
	StudyTime int       `json:"study_time"`
	Topic     string    `json:"topic"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
}

// NewEntry is the caller supplied part of an Entry. StudyTime is in hours.
type NewEntry struct {
	UserID    string
	GoalName  string
	StudyTime int
	Topic     string
	Mode      string
}

// InvalidEntryError lists why an entry was refused. It matches ErrInvalidEntry.
type InvalidEntryError struct {
	Problem    string
	Rejections []validation.Result
}

func (e *InvalidEntryError) Error() string {
	if e.Problem != "" {
		return "history: invalid session: " + e.Problem
	}
	reasons := make([]string, 0, len(e.Rejections))
	for _, r := range e.Rejections {
		reasons = append(reasons, r.Field.String()+"="+string(r.Reason))
	}
	return "history: invalid session: " + strings.Join(reasons, ", ")
}

func (e *InvalidEntryError) Is(target error) bool {
	return target == ErrInvalidEntry
}

type Repository struct {
	db infra.TxExecutor
}

func NewRepository(db infra.TxExecutor) *Repository {
	return &Repository{db: db}
}

// EnsureSchema creates the study_sessions table and its index when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{sqlinline.QCreateStudySessionsTable, sqlinline.QCreateStudySessionsUserIndex} {
		if _, err := r.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("history: ensure schema: %w", err)
		}
	}
	return nil
}

// Create validates and stores a session. A repeat of the same goal, topic and
// mode within two seconds returns the stored entry instead of a new row.
// Concurrent creates of the same session serialize on a transaction scoped
// advisory lock, so the duplicate check and the insert act as one step.
func (r *Repository) Create(ctx context.Context, in NewEntry) (Entry, error) {
	in, err := normalize(in)
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	err = r.db.WithinTx(ctx, func(ctx context.Context, tx infra.SQLExecutor) error {
		if _, err := tx.Exec(ctx, sqlinline.QLockStudySessionKey, sessionKey(in)); err != nil {
			return fmt.Errorf("history: lock session: %w", err)
		}

		existing, err := scanEntry(tx.QueryRow(ctx, sqlinline.QSelectRecentDuplicateSession,
			in.UserID, in.GoalName, in.Topic, in.Mode, int(duplicateWindow/time.Second)))
		switch {
		case err == nil:
			entry = existing
			return nil
		case !infra.IsNoRows(err):
			return fmt.Errorf("history: check duplicate: %w", err)
		}

		entry = Entry{
			ID:        uuid.New(),
			UserID:    in.UserID,
			GoalName:  in.GoalName,
			StudyTime: in.StudyTime,
			Topic:     in.Topic,
			Mode:      in.Mode,
		}
		if err := tx.QueryRow(ctx, sqlinline.QInsertStudySession,
			entry.ID, entry.UserID, entry.GoalName, entry.StudyTime, entry.Topic, entry.Mode,
		).Scan(&entry.CreatedAt); err != nil {
			return fmt.Errorf("history: insert session: %w", err)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// sessionKey identifies the sessions the duplicate window compares.
func sessionKey(in NewEntry) string {
	return strings.Join([]string{in.UserID, in.GoalName, in.Topic, in.Mode}, "\x1f")
}

// List returns the newest sessions of userID first.
func (r *Repository) List(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, &InvalidEntryError{Problem: "user id is required"}
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	rows, err := r.db.Query(ctx, sqlinline.QListStudySessions, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("history: list sessions: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scan session: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list sessions: %w", err)
	}
	return entries, nil
}

func (r *Repository) Get(ctx context.Context, userID string, id uuid.UUID) (Entry, error) {
	e, err := scanEntry(r.db.QueryRow(ctx, sqlinline.QSelectStudySession, userID, id))
	if err != nil {
		if infra.IsNoRows(err) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("history: get session: %w", err)
	}
	return e, nil
}

func (r *Repository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeleteStudySession, userID, id)
	if err != nil {
		return fmt.Errorf("history: delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.UserID, &e.GoalName, &e.StudyTime, &e.Topic, &e.Mode, &e.CreatedAt)
	return e, err
}

func normalize(in NewEntry) (NewEntry, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return in, &InvalidEntryError{Problem: "user id is required"}
	}
	if in.StudyTime < MinStudyTime || in.StudyTime > MaxStudyTime {
		return in, &InvalidEntryError{Problem: fmt.Sprintf("study time must be between %d and %d hours", MinStudyTime, MaxStudyTime)}
	}
	in.Mode = strings.ToLower(strings.TrimSpace(in.Mode))
	if !validMode(in.Mode) {
		return in, &InvalidEntryError{Problem: fmt.Sprintf("unknown mode %q", in.Mode)}
	}
	verdict := validation.ValidateGoal(in.GoalName, in.Topic, false)
	if !verdict.Valid() {
		return in, &InvalidEntryError{Rejections: verdict.Rejections()}
	}
	in.GoalName = verdict.Sanitized.GoalName
	in.Topic = verdict.Sanitized.Topic
	return in, nil
}

func validMode(mode string) bool {
	for _, m := range Modes {
		if m == mode {
			return true
		}
	}
	return false
}
