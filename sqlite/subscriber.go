package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ntquang/mailreg"
)

type subscriberService struct {
	db *DB
}

func NewSubscriberService(db *DB) mailreg.SubscriberService {
	return &subscriberService{
		db: db,
	}
}

// FindByID finds a subscriber by ID
func (ss *subscriberService) FindByID(id int) (*mailreg.Subscriber, error) {
	row := ss.db.sqlDB.QueryRow(
		"SELECT id, email, date_joined, is_active, deactivation_key FROM subscribers WHERE id = ?", id)
	return scanSubscriber(row, "FindByID")
}

// FindByEmail finds a subscriber by email address, case-insensitively
func (ss *subscriberService) FindByEmail(email string) (*mailreg.Subscriber, error) {
	row := ss.db.sqlDB.QueryRow(
		"SELECT id, email, date_joined, is_active, deactivation_key FROM subscribers WHERE LOWER(email) = LOWER(?)", email)
	return scanSubscriber(row, "FindByEmail")
}

// FindByDeactivationKey finds a subscriber by deactivation key
func (ss *subscriberService) FindByDeactivationKey(key string) (*mailreg.Subscriber, error) {
	row := ss.db.sqlDB.QueryRow(
		"SELECT id, email, date_joined, is_active, deactivation_key FROM subscribers WHERE deactivation_key = ?", key)
	return scanSubscriber(row, "FindByDeactivationKey")
}

// Insert inserts a new subscriber
func (ss *subscriberService) Insert(s *mailreg.Subscriber) error {
	res, err := ss.db.sqlDB.Exec(
		"INSERT INTO subscribers (email, date_joined, is_active, deactivation_key) VALUES (?, ?, ?, ?)",
		s.Email, s.DateJoined, s.IsActive, s.DeactivationKey)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read insert id: %w", err)
	}
	s.ID = int(id)

	return nil
}

// Update saves changes to an existing subscriber
func (ss *subscriberService) Update(s *mailreg.Subscriber) error {
	_, err := ss.db.sqlDB.Exec(
		"UPDATE subscribers SET email = ?, date_joined = ?, is_active = ?, deactivation_key = ? WHERE id = ?",
		s.Email, s.DateJoined, s.IsActive, s.DeactivationKey, s.ID)
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}
	return nil
}

// Delete removes a subscriber
func (ss *subscriberService) Delete(id int) error {
	_, err := ss.db.sqlDB.Exec("DELETE FROM subscribers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

func scanSubscriber(row *sql.Row, op string) (*mailreg.Subscriber, error) {
	var s mailreg.Subscriber
	err := row.Scan(&s.ID, &s.Email, &s.DateJoined, &s.IsActive, &s.DeactivationKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &mailreg.Error{Code: mailreg.ErrNotFound, Op: "sqlite." + op, Err: err}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &s, nil
}
