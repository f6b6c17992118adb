package auth

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresUserStore persists users in Postgres. It exists so the social
// graph can be seeded from durable accounts at startup; the session core
// never consults it per-operation.
type PostgresUserStore struct {
	db *sql.DB
}

// OpenPostgresUserStore connects to Postgres with the given DSN and
// bootstraps the users table.
func OpenPostgresUserStore(dsn string) (*PostgresUserStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS users (
        userid VARCHAR(36) PRIMARY KEY,
        username VARCHAR(50) UNIQUE NOT NULL,
        password VARCHAR(100) NOT NULL
    );`)
	if err != nil {
		return nil, err
	}
	return &PostgresUserStore{db: db}, nil
}

// ByUsername looks a user up by normalized username.
func (s *PostgresUserStore) ByUsername(username string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT userid, username, password FROM users WHERE username = $1", username).Scan(
		&user.ID,
		&user.Username,
		&user.Password,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Insert stores a new user, assigning an id when absent.
func (s *PostgresUserStore) Insert(user *User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	_, err := s.db.Exec("INSERT INTO users (userid, username, password) VALUES ($1, $2, $3)",
		user.ID, user.Username, user.Password,
	)
	if err != nil {
		// Unique violation on username is the only expected conflict.
		return ErrUsernameTaken
	}
	return nil
}

// All returns every stored user for startup seeding.
func (s *PostgresUserStore) All() ([]*User, error) {
	rows, err := s.db.Query("SELECT userid, username, password FROM users")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Username, &user.Password); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// Close releases the underlying connection pool.
func (s *PostgresUserStore) Close() error {
	return s.db.Close()
}
