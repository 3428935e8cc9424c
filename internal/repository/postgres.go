package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/partygames/waitlist/internal/auth"
	"github.com/partygames/waitlist/internal/model"
	"github.com/partygames/waitlist/migrations"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Postgres stores subscribers and users in PostgreSQL.
type Postgres struct {
	pool   *pgxpool.Pool
	hasher *auth.Hasher
}

// NewPostgres creates a Postgres store with a connection pool.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Postgres{pool: pool, hasher: auth.NewHasher(auth.DefaultParams)}, nil
}

// Migrate applies the embedded schema. Every migration is idempotent.
func (p *Postgres) Migrate(ctx context.Context) error {
	scripts, err := migrations.Up()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	for i, script := range scripts {
		if _, err := p.pool.Exec(ctx, script); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", i+1, err)
		}
	}

	return nil
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Postgres.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

// FindByEmail implements SubscriberStore.
func (p *Postgres) FindByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	query := `
		SELECT id, email, subscribed_at
		FROM email_subscribers
		WHERE email = $1
	`

	var s model.Subscriber
	err := p.pool.QueryRow(ctx, query, email).Scan(&s.ID, &s.Email, &s.SubscribedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to get subscriber by email: %w", err)
	}

	return &s, nil
}

// Create implements SubscriberStore. The unique constraint on email makes
// the insert atomic; a conflicting row produces no RETURNING row.
func (p *Postgres) Create(ctx context.Context, email string) (*model.Subscriber, error) {
	query := `
		INSERT INTO email_subscribers (id, email, subscribed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, email, subscribed_at
	`

	var s model.Subscriber
	err := p.pool.QueryRow(ctx, query,
		uuid.New().String(),
		email,
		time.Now().UTC(),
	).Scan(&s.ID, &s.Email, &s.SubscribedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create subscriber: %w", err)
	}

	return &s, nil
}

// List implements SubscriberStore.
func (p *Postgres) List(ctx context.Context) ([]*model.Subscriber, error) {
	query := `
		SELECT id, email, subscribed_at
		FROM email_subscribers
		ORDER BY subscribed_at, id
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]*model.Subscriber, 0)
	for rows.Next() {
		var s model.Subscriber
		if err := rows.Scan(&s.ID, &s.Email, &s.SubscribedAt); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber: %w", err)
		}
		subscribers = append(subscribers, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscribers: %w", err)
	}

	return subscribers, nil
}

// CreateUser implements UserStore.
func (p *Postgres) CreateUser(ctx context.Context, username, password string) (*model.User, error) {
	hash, err := p.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
	}

	query := `
		INSERT INTO users (id, username, password_hash)
		VALUES ($1, $2, $3)
	`

	if _, err := p.pool.Exec(ctx, query, user.ID, user.Username, user.PasswordHash); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUser implements UserStore.
func (p *Postgres) GetUser(ctx context.Context, id string) (*model.User, error) {
	return p.getUser(ctx, "id", id)
}

// GetUserByUsername implements UserStore.
func (p *Postgres) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return p.getUser(ctx, "username", username)
}

func (p *Postgres) getUser(ctx context.Context, column, value string) (*model.User, error) {
	// column is one of two constants above, never user input.
	query := `SELECT id, username, password_hash FROM users WHERE ` + column + ` = $1`

	var u model.User
	err := p.pool.QueryRow(ctx, query, value).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}

	return &u, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
