// Package mirror projects the ledger's attendance state for each event into
// a file tree tracked by a local Git repository. The ledger is authoritative;
// the mirror is derived, refreshed wholesale after every RSVP mutation, and
// never allowed to fail a request.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"rsvpapp/models"
)

// AttendeeSource is the ledger view the mirror re-reads on every refresh.
// Re-reading full current state (instead of applying deltas) is what makes
// out-of-order refresh completions converge.
type AttendeeSource interface {
	ListAttendees(eventID int64) ([]models.Attendee, error)
}

type Config struct {
	Path        string
	AuthorName  string
	AuthorEmail string
	// Timeout bounds one scheduled refresh. Zero means 30s.
	Timeout time.Duration
}

// Service owns one local Git repository. All write-then-commit sequences are
// serialized through mu; go-git worktrees are not safe for concurrent
// mutation.
type Service struct {
	cfg  Config
	repo *git.Repository
	src  AttendeeSource

	mu sync.Mutex
	wg sync.WaitGroup
}

// Open initializes the mirror repository at cfg.Path, reusing it if it
// already exists.
func Open(cfg Config, src AttendeeSource) (*Service, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create mirror directory: %w", err)
	}

	repo, err := git.PlainInit(cfg.Path, false)
	if errors.Is(err, git.ErrRepositoryAlreadyExists) {
		repo, err = git.PlainOpen(cfg.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open mirror repository: %w", err)
	}

	return &Service{cfg: cfg, repo: repo, src: src}, nil
}

// ScheduleWorkspace creates the event's directory in the background. The
// caller's request never waits on it or sees its errors.
func (s *Service) ScheduleWorkspace(eventID int64, title string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		if err := s.EnsureEventWorkspace(ctx, eventID, title); err != nil {
			log.Printf("mirror: workspace creation for event %d failed: %v", eventID, err)
		}
	}()
}

// ScheduleRefresh re-renders the event's attendance file in the background.
// Fire-and-forget: failures are logged and lost until the next RSVP write
// triggers a fresh attempt.
func (s *Service) ScheduleRefresh(eventID int64, title string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Timeout)
		defer cancel()
		if err := s.Refresh(ctx, eventID, title); err != nil {
			log.Printf("mirror: refresh for event %d failed: %v", eventID, err)
		}
	}()
}

// Wait blocks until all scheduled background work has finished. Used at
// shutdown and in tests.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) eventDir(eventID int64) string {
	return filepath.Join(s.cfg.Path, "events", strconv.FormatInt(eventID, 10))
}

// EnsureEventWorkspace creates events/<id>/ and commits it. Idempotent: an
// existing workspace is left untouched.
func (s *Service) EnsureEventWorkspace(ctx context.Context, eventID int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := s.eventDir(eventID)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create event directory: %w", err)
	}

	keep := filepath.Join(dir, ".gitkeep")
	if err := os.WriteFile(keep, nil, 0o644); err != nil {
		return fmt.Errorf("failed to write .gitkeep: %w", err)
	}

	rel := path(eventID, ".gitkeep")
	msg := fmt.Sprintf("Create workspace for event %d: %s", eventID, title)
	return s.commit(rel, msg)
}

// Refresh re-reads the full attendee list from the ledger, rewrites the
// event's attendance file and commits the change. An unchanged rendering
// produces no new revision.
func (s *Service) Refresh(ctx context.Context, eventID int64, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	attendees, err := s.src.ListAttendees(eventID)
	if err != nil {
		return fmt.Errorf("failed to read attendees: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	dir := s.eventDir(eventID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create event directory: %w", err)
	}
	file := filepath.Join(dir, "attendees.md")
	if err := os.WriteFile(file, Render(title, attendees), 0o644); err != nil {
		return fmt.Errorf("failed to write attendance file: %w", err)
	}

	rel := path(eventID, "attendees.md")
	msg := fmt.Sprintf("Update attendance for event %d: %s", eventID, title)
	return s.commit(rel, msg)
}

// path returns the worktree-relative slash path of a file in an event's
// workspace.
func path(eventID int64, name string) string {
	return "events/" + strconv.FormatInt(eventID, 10) + "/" + name
}

// commit stages rel and commits it unless the worktree is already clean.
func (s *Service) commit(rel, msg string) error {
	wt, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}
	if _, err := wt.Add(rel); err != nil {
		return fmt.Errorf("failed to stage %s: %w", rel, err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		return nil
	}

	_, err = wt.Commit(msg, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.cfg.AuthorName,
			Email: s.cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
