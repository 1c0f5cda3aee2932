package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/projecthub/projecthub-cli/internal/core/domain"
)

// account is a stored user: the public identity plus the password hash,
// which never leaves this package.
type account struct {
	domain.Identity
	PasswordHash string
}

// Store is the devserver's SQLite persistence layer. One writer, WAL mode;
// good enough for a local development backend.
type Store struct {
	db *sql.DB
}

// OpenStore opens (and migrates) the SQLite database at dbPath.
// An empty path yields an in-memory database that lives for the process.
func OpenStore(dbPath string) (*Store, error) {
	dsn := ":memory:"
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("db dir: %w", err)
		}
		dsn = dbPath + "?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'planning',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS project_owners (
			project_id TEXT NOT NULL,
			username TEXT NOT NULL,
			PRIMARY KEY (project_id, username),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS project_members (
			project_id TEXT NOT NULL,
			username TEXT NOT NULL,
			PRIMARY KEY (project_id, username),
			FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			project_id TEXT NOT NULL DEFAULT '',
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			priority TEXT NOT NULL DEFAULT 'medium',
			assignee TEXT NOT NULL DEFAULT '',
			due_date TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);`,
		`CREATE TABLE IF NOT EXISTS comments (
			id TEXT PRIMARY KEY,
			task_id TEXT NOT NULL,
			content TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at TEXT NOT NULL,
			FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_task ON comments(task_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

// ── Users ────────────────────────────────────────────────────────────────

func (s *Store) CreateUser(ctx context.Context, username, email, passwordHash, role string) (*account, error) {
	acct := &account{
		Identity: domain.Identity{
			ID:       uuid.NewString(),
			Username: username,
			Email:    email,
			Role:     role,
		},
		PasswordHash: passwordHash,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		acct.ID, acct.Username, acct.Email, acct.PasswordHash, acct.Role, now())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return acct, nil
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*account, error) {
	var acct account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, role FROM users WHERE username = ?`, username).
		Scan(&acct.ID, &acct.Username, &acct.Email, &acct.PasswordHash, &acct.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &acct, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.Identity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, username, email, role FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.Identity
	for rows.Next() {
		var u domain.Identity
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// ── Projects ─────────────────────────────────────────────────────────────

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	p.ID = uuid.NewString()
	if p.Status == "" {
		p.Status = domain.ProjectPlanning
	}
	ts := now()
	p.CreatedAt = parseTime(ts)
	p.UpdatedAt = p.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Description, string(p.Status), ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	if err := s.replaceMemberRows(ctx, p.ID, p.Owners, p.Members); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, p.ID)
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var p domain.Project
	var status, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, status, created_at, updated_at FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.Name, &p.Description, &status, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	p.Status = domain.ProjectStatus(status)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)

	if p.Owners, err = s.memberColumn(ctx, "project_owners", id); err != nil {
		return nil, err
	}
	if p.Members, err = s.memberColumn(ctx, "project_members", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM projects ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	projects := make([]domain.Project, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		p.Name, p.Description, string(p.Status), now(), p.ID)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrProjectNotFound
	}
	return s.GetProject(ctx, p.ID)
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// ReplaceMembers swaps the project's owner and member sets.
func (s *Store) ReplaceMembers(ctx context.Context, projectID string, owners, members []string) (*domain.Project, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.replaceMemberRows(ctx, projectID, owners, members); err != nil {
		return nil, err
	}
	return s.GetProject(ctx, projectID)
}

func (s *Store) replaceMemberRows(ctx context.Context, projectID string, owners, members []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for table, names := range map[string][]string{
		"project_owners":  domain.DedupeUsernames(owners),
		"project_members": domain.DedupeUsernames(members),
	} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE project_id = ?`, projectID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
		for _, name := range names {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO `+table+` (project_id, username) VALUES (?, ?)`, projectID, name); err != nil {
				return fmt.Errorf("insert %s: %w", table, err)
			}
		}
	}
	return tx.Commit()
}

func (s *Store) memberColumn(ctx context.Context, table, projectID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username FROM `+table+` WHERE project_id = ? ORDER BY username`, projectID)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// ── Tasks ────────────────────────────────────────────────────────────────

func (s *Store) CreateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	t.ID = uuid.NewString()
	if t.Status == "" {
		t.Status = domain.TaskPending
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	ts := now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, project_id, title, description, status, priority, assignee, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority), t.Assignee, t.DueDate, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, t.ID)
}

func (s *Store) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	var t domain.Task
	var status, priority, createdAt, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, title, description, status, priority, assignee, due_date, created_at, updated_at
		 FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &priority, &t.Assignee, &t.DueDate, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	t.CreatedAt = parseTime(createdAt)
	t.UpdatedAt = parseTime(updatedAt)
	return &t, nil
}

func (s *Store) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	query := `SELECT id FROM tasks ORDER BY created_at`
	args := []any{}
	if projectID != "" {
		query = `SELECT id FROM tasks WHERE project_id = ? ORDER BY created_at`
		args = append(args, projectID)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		t, err := s.GetTask(ctx, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

func (s *Store) UpdateTask(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, assignee = ?, due_date = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, string(t.Status), string(t.Priority), t.Assignee, t.DueDate, now(), t.ID)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return s.GetTask(ctx, t.ID)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ── Comments ─────────────────────────────────────────────────────────────

func (s *Store) CreateComment(ctx context.Context, taskID, content, author string) (*domain.Comment, error) {
	c := &domain.Comment{
		ID:      uuid.NewString(),
		TaskID:  taskID,
		Content: content,
		Author:  author,
	}
	ts := now()
	c.CreatedAt = parseTime(ts)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, task_id, content, author, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, c.Content, c.Author, ts)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}
	return c, nil
}

func (s *Store) ListComments(ctx context.Context, taskID string) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, task_id, content, author, created_at FROM comments WHERE task_id = ? ORDER BY created_at`, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		var createdAt string
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Content, &c.Author, &createdAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func isUniqueViolation(err error) bool {
	// modernc/sqlite surfaces constraint failures in the error text.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
