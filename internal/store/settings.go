package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// GetSessionSecret retrieves the cookie-signing secret from the database.
// If no secret exists, it generates one, stores it, and returns it.
// Uses INSERT OR IGNORE + re-SELECT to avoid TOCTOU race on concurrent startup.
func GetSessionSecret(ctx context.Context, db *sql.DB) (string, error) {
	// Try to generate and insert first (safe against races).
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	candidate := hex.EncodeToString(buf)

	_, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('session_secret', ?)`,
		candidate,
	)
	if err != nil {
		return "", fmt.Errorf("storing session_secret: %w", err)
	}

	// Always read back (either our insert or the existing value).
	var secret string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'session_secret'`,
	).Scan(&secret)
	if err != nil {
		return "", fmt.Errorf("querying session_secret: %w", err)
	}

	return secret, nil
}

// EnsureAdminPassphrase makes sure an admin passphrase hash exists. On
// first run it generates a random passphrase, stores its bcrypt hash and
// returns the plaintext so it can be shown once; afterwards it returns
// an empty string.
func EnsureAdminPassphrase(ctx context.Context, db *sql.DB) (string, error) {
	var existing string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'admin_passphrase_hash'`,
	).Scan(&existing)
	if err == nil {
		return "", nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("querying admin passphrase: %w", err)
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating admin passphrase: %w", err)
	}
	passphrase := hex.EncodeToString(buf)

	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing admin passphrase: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT OR IGNORE INTO settings (key, value) VALUES ('admin_passphrase_hash', ?)`,
		string(hash),
	)
	if err != nil {
		return "", fmt.Errorf("storing admin passphrase: %w", err)
	}

	// Another instance may have won the race; only report the passphrase
	// if our hash is the one that stuck.
	var stored string
	err = db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'admin_passphrase_hash'`,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("querying admin passphrase: %w", err)
	}
	if stored != string(hash) {
		return "", nil
	}
	return passphrase, nil
}

// VerifyAdminPassphrase checks a passphrase against the stored hash.
func VerifyAdminPassphrase(ctx context.Context, db *sql.DB, passphrase string) (bool, error) {
	var hash string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = 'admin_passphrase_hash'`,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying admin passphrase: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(passphrase))
	if err == bcrypt.ErrMismatchedHashAndPassword {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("comparing admin passphrase: %w", err)
	}
	return true, nil
}
