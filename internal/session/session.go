package session

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

// Spec carries the operator-supplied naming fields.
type Spec struct {
	Year      string
	Project   string
	AuditType string
	Sequence  int
}

// Session is a created session directory. Spec holds the sanitized fields
// and the effective sequence number.
type Session struct {
	Spec      Spec
	Name      string
	Path      string
	CreatedAt time.Time
}

// FolderName renders the directory name for an already sanitized spec.
func FolderName(spec Spec) string {
	return fmt.Sprintf("%s-%s-%s-%03d", spec.Year, spec.Project, spec.AuditType, spec.Sequence)
}

// Normalize sanitizes the text fields, validates them and clamps the
// sequence to at least one.
func Normalize(spec Spec) (Spec, error) {
	out := Spec{
		Year:      Sanitize(spec.Year),
		Project:   Sanitize(spec.Project),
		AuditType: Sanitize(spec.AuditType),
		Sequence:  spec.Sequence,
	}
	for _, field := range []struct {
		name  string
		value string
	}{
		{"year", out.Year},
		{"project", out.Project},
		{"audit type", out.AuditType},
	} {
		if field.value == "" {
			return Spec{}, &ValidationError{Field: field.name, Reason: "required"}
		}
	}
	if out.Sequence < 1 {
		out.Sequence = 1
	}
	return out, nil
}

// Manager creates session directories and owns the active session.
type Manager struct {
	outputDir string
	now       func() time.Time

	mu     sync.Mutex
	stored Spec

	active atomic.Pointer[Session]
}

// NewManager returns a manager rooted at outputDir. defaults seeds the
// stored naming fields used by Advance and Ensure.
func NewManager(outputDir string, defaults Spec) *Manager {
	return &Manager{
		outputDir: outputDir,
		now:       time.Now,
		stored:    defaults,
	}
}

// Create validates spec, creates its directory and makes it the active
// session. On error the active session and stored fields are unchanged.
func (m *Manager) Create(spec Spec) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(spec)
}

func (m *Manager) createLocked(spec Spec) (*Session, error) {
	normalized, err := Normalize(spec)
	if err != nil {
		return nil, err
	}

	name := FolderName(normalized)
	path := filepath.Join(m.outputDir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create session folder %q: %w", path, err)
	}

	s := &Session{
		Spec:      normalized,
		Name:      name,
		Path:      path,
		CreatedAt: m.now(),
	}
	m.stored = Spec{
		Year:      spec.Year,
		Project:   spec.Project,
		AuditType: spec.AuditType,
		Sequence:  normalized.Sequence,
	}
	m.active.Store(s)
	return s, nil
}

// Advance increments the stored sequence and creates the next session from
// the stored naming fields.
func (m *Manager) Advance() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.stored
	next.Sequence = max(1, next.Sequence+1)
	return m.createLocked(next)
}

// Ensure returns the active session, creating one from the stored fields
// when none exists yet.
func (m *Manager) Ensure() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s := m.active.Load(); s != nil {
		return s, nil
	}
	return m.createLocked(m.stored)
}

// Active returns the active session or nil.
func (m *Manager) Active() *Session {
	return m.active.Load()
}

// ActivePath returns the active session directory, or "" when no session
// has been created.
func (m *Manager) ActivePath() string {
	if s := m.active.Load(); s != nil {
		return s.Path
	}
	return ""
}

// Current returns the stored naming fields, including the sequence that
// the next Advance will increment.
func (m *Manager) Current() Spec {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stored
}
