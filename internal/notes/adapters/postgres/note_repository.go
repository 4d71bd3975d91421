// Package postgres provides PostgreSQL implementations of repositories.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"securenotes/internal/notes/domain/entities"
	"securenotes/internal/notes/ports/repositories"
	"securenotes/pkg/logger"
	"securenotes/pkg/resilience"
)

// DefaultQueryTimeout ограничивает одну операцию хранилища, если не задано иное.
const DefaultQueryTimeout = 5 * time.Second

// DBPool - подмножество pgxpool.Pool, используемое репозиторием.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var noteColumns = []string{"id", "owner", "title", "body", "category", "created_at", "updated_at"}

var (
	returningColumns = "RETURNING " + strings.Join(noteColumns, ", ")
	psql             = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
)

const (
	queryCreateNote = `INSERT INTO notes (owner, title, body, category) VALUES ($1, $2, $3, $4) ` +
		`RETURNING id, owner, title, body, category, created_at, updated_at`
	queryGetNote = `SELECT id, owner, title, body, category, created_at, updated_at ` +
		`FROM notes WHERE id = $1 AND owner = $2`
	queryDeleteNote = `DELETE FROM notes WHERE id = $1 AND owner = $2`
	queryNoteStats  = `SELECT category, COUNT(*) FROM notes WHERE owner = $1 GROUP BY category ORDER BY category`
)

// NoteRepository реализует интерфейс repositories.NoteRepository.
type NoteRepository struct {
	pool         DBPool
	policy       *resilience.Policy
	queryTimeout time.Duration
	onFailure    func(ctx context.Context)
}

// Option настраивает NoteRepository.
type Option func(*NoteRepository)

// WithQueryTimeout задает предельное время одной операции.
func WithQueryTimeout(timeout time.Duration) Option {
	return func(r *NoteRepository) {
		if timeout > 0 {
			r.queryTimeout = timeout
		}
	}
}

// WithPolicy включает повтор и Circuit Breaker для операций.
func WithPolicy(policy *resilience.Policy) Option {
	return func(r *NoteRepository) {
		r.policy = policy
	}
}

// WithFailureObserver задает обработчик сбоев соединения и отказов
// Circuit Breaker, например db.Gateway.ReportFailure.
func WithFailureObserver(fn func(ctx context.Context)) Option {
	return func(r *NoteRepository) {
		r.onFailure = fn
	}
}

// NewNoteRepository создает новый репозиторий заметок.
func NewNoteRepository(pool DBPool, opts ...Option) repositories.NoteRepository {
	r := &NoteRepository{
		pool:         pool,
		queryTimeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// run выполняет операцию с ограничением по времени. Контекст отвязан от отмены
// клиентом, чтобы начатая запись не обрывалась на середине.
func (r *NoteRepository) run(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.queryTimeout)
	defer cancel()

	var err error
	if r.policy == nil {
		err = fn(opCtx)
	} else {
		err = r.policy.Execute(opCtx, operation, fn)
	}

	if r.onFailure != nil && IsConnectivityFailure(err) {
		r.onFailure(context.WithoutCancel(ctx))
	}
	return err
}

// Create сохраняет новую заметку; id и отметки времени назначает база.
func (r *NoteRepository) Create(ctx context.Context, draft entities.NoteDraft) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Create"))
	log.Debug(ctx, "creating new note", zap.String("owner", draft.Owner))

	var note *entities.Note
	err := r.run(ctx, "create", func(ctx context.Context) error {
		var err error
		note, err = scanNote(r.pool.QueryRow(ctx, queryCreateNote,
			draft.Owner, draft.Title, draft.Body, draft.Category))
		return err
	})
	if err != nil {
		log.Error(ctx, "failed to create note", zap.Error(err))
		return nil, persistenceError("failed to create note", err)
	}

	log.Debug(ctx, "note created", zap.String("noteID", note.ID))
	return note, nil
}

// GetByID получает заметку по id, только если она принадлежит owner.
func (r *NoteRepository) GetByID(ctx context.Context, noteID, owner string) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.GetByID"))
	log.Debug(ctx, "getting note", zap.String("noteID", noteID))

	var note *entities.Note
	err := r.run(ctx, "get", func(ctx context.Context) error {
		var err error
		note, err = scanNote(r.pool.QueryRow(ctx, queryGetNote, noteID, owner))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			log.Debug(ctx, "note not found", zap.String("noteID", noteID))
			return nil, repositories.ErrNoteNotFound
		}
		log.Error(ctx, "failed to get note", zap.Error(err))
		return nil, persistenceError("failed to get note", err)
	}

	return note, nil
}

// List возвращает заметки владельца от новых к старым. Пустой результат -
// пустой срез, а не ошибка.
func (r *NoteRepository) List(ctx context.Context, owner string, filter entities.NoteFilter) ([]*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.List"))
	log.Debug(ctx, "listing notes",
		zap.String("category", filter.Category),
		zap.Int("limit", filter.Limit),
		zap.Int("offset", filter.Offset))

	query := psql.Select(noteColumns...).
		From("notes").
		Where(sq.Eq{"owner": owner})
	if filter.Category != "" {
		query = query.Where(sq.Eq{"category": filter.Category})
	}
	query = query.OrderBy("created_at DESC", "id")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, persistenceError("failed to build list query", err)
	}

	var notes []*entities.Note
	err = r.run(ctx, "list", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		notes = make([]*entities.Note, 0)
		for rows.Next() {
			note, err := scanNote(rows)
			if err != nil {
				return err
			}
			notes = append(notes, note)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error(ctx, "failed to list notes", zap.Error(err))
		return nil, persistenceError("failed to list notes", err)
	}

	return notes, nil
}

// Update применяет патч к заметке владельца и обновляет updated_at.
func (r *NoteRepository) Update(ctx context.Context, noteID, owner string, patch entities.NotePatch) (*entities.Note, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Update"))
	log.Debug(ctx, "updating note", zap.String("noteID", noteID))

	query := psql.Update("notes")
	if patch.Title != nil {
		query = query.Set("title", *patch.Title)
	}
	if patch.Body != nil {
		query = query.Set("body", *patch.Body)
	}
	if patch.Category != nil {
		query = query.Set("category", *patch.Category)
	}
	query = query.Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": noteID, "owner": owner}).
		Suffix(returningColumns)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, persistenceError("failed to build update query", err)
	}

	var note *entities.Note
	err = r.run(ctx, "update", func(ctx context.Context) error {
		var err error
		note, err = scanNote(r.pool.QueryRow(ctx, sql, args...))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			log.Debug(ctx, "note not found or not owned by caller", zap.String("noteID", noteID))
			return nil, repositories.ErrNoteNotFound
		}
		log.Error(ctx, "failed to update note", zap.Error(err))
		return nil, persistenceError("failed to update note", err)
	}

	return note, nil
}

// Delete удаляет заметку владельца.
func (r *NoteRepository) Delete(ctx context.Context, noteID, owner string) error {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Delete"))
	log.Debug(ctx, "deleting note", zap.String("noteID", noteID))

	var result pgconn.CommandTag
	err := r.run(ctx, "delete", func(ctx context.Context) error {
		var err error
		result, err = r.pool.Exec(ctx, queryDeleteNote, noteID, owner)
		return err
	})
	if err != nil {
		if isInvalidID(err) {
			return repositories.ErrNoteNotFound
		}
		log.Error(ctx, "failed to delete note", zap.Error(err))
		return persistenceError("failed to delete note", err)
	}

	if result.RowsAffected() == 0 {
		log.Debug(ctx, "note not found or not owned by caller", zap.String("noteID", noteID))
		return repositories.ErrNoteNotFound
	}

	return nil
}

// Stats считает заметки владельца по категориям.
func (r *NoteRepository) Stats(ctx context.Context, owner string) (*entities.NoteStats, error) {
	log := logger.Log(ctx).With(zap.String("method", "NoteRepository.Stats"))
	log.Debug(ctx, "collecting note stats")

	var stats *entities.NoteStats
	err := r.run(ctx, "stats", func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, queryNoteStats, owner)
		if err != nil {
			return err
		}
		defer rows.Close()

		stats = &entities.NoteStats{Categories: make(map[string]int)}
		for rows.Next() {
			var (
				category string
				count    int64
			)
			if err := rows.Scan(&category, &count); err != nil {
				return err
			}
			stats.Categories[category] = int(count)
			stats.Total += int(count)
		}
		return rows.Err()
	})
	if err != nil {
		log.Error(ctx, "failed to collect note stats", zap.Error(err))
		return nil, persistenceError("failed to collect note stats", err)
	}

	return stats, nil
}

func scanNote(row pgx.Row) (*entities.Note, error) {
	var note entities.Note
	if err := row.Scan(&note.ID, &note.Owner, &note.Title, &note.Body, &note.Category,
		&note.CreatedAt, &note.UpdatedAt); err != nil {
		return nil, err
	}
	return &note, nil
}

func persistenceError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", repositories.ErrPersistence, msg, err)
}
