package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ntquang/mailreg"
)

type profileService struct {
	db *DB
}

func NewProfileService(db *DB) mailreg.ProfileService {
	return &profileService{
		db: db,
	}
}

// FindByActivationKey finds a registration profile by activation key
func (ps *profileService) FindByActivationKey(key string) (*mailreg.RegistrationProfile, error) {
	row := ps.db.sqlDB.QueryRow(
		"SELECT id, subscriber_id, activation_key FROM registration_profiles WHERE activation_key = ?", key)
	return scanProfile(row, "FindByActivationKey")
}

// FindBySubscriberID finds the profile belonging to a subscriber
func (ps *profileService) FindBySubscriberID(id int) (*mailreg.RegistrationProfile, error) {
	row := ps.db.sqlDB.QueryRow(
		"SELECT id, subscriber_id, activation_key FROM registration_profiles WHERE subscriber_id = ?", id)
	return scanProfile(row, "FindBySubscriberID")
}

// All returns every registration profile
func (ps *profileService) All() ([]mailreg.RegistrationProfile, error) {
	rows, err := ps.db.sqlDB.Query("SELECT id, subscriber_id, activation_key FROM registration_profiles")
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []mailreg.RegistrationProfile
	for rows.Next() {
		var p mailreg.RegistrationProfile
		if err := rows.Scan(&p.ID, &p.SubscriberID, &p.ActivationKey); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

// Insert inserts a new profile
func (ps *profileService) Insert(p *mailreg.RegistrationProfile) error {
	res, err := ps.db.sqlDB.Exec(
		"INSERT INTO registration_profiles (subscriber_id, activation_key) VALUES (?, ?)",
		p.SubscriberID, p.ActivationKey)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read insert id: %w", err)
	}
	p.ID = int(id)

	return nil
}

// Update saves changes to an existing profile
func (ps *profileService) Update(p *mailreg.RegistrationProfile) error {
	_, err := ps.db.sqlDB.Exec(
		"UPDATE registration_profiles SET subscriber_id = ?, activation_key = ? WHERE id = ?",
		p.SubscriberID, p.ActivationKey, p.ID)
	if err != nil {
		return fmt.Errorf("failed to update: %w", err)
	}
	return nil
}

// Delete removes a profile
func (ps *profileService) Delete(id int) error {
	_, err := ps.db.sqlDB.Exec("DELETE FROM registration_profiles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}
	return nil
}

// CreateInactive inserts a subscriber and its profile in one transaction.
// beforeCommit runs after both inserts; any error rolls the transaction
// back so neither row survives.
func (ps *profileService) CreateInactive(s *mailreg.Subscriber, p *mailreg.RegistrationProfile, beforeCommit func() error) error {
	tx, err := ps.db.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.Exec(
		"INSERT INTO subscribers (email, date_joined, is_active, deactivation_key) VALUES (?, ?, ?, ?)",
		s.Email, s.DateJoined, s.IsActive, s.DeactivationKey)
	if err != nil {
		return fmt.Errorf("failed to insert subscriber: %w", err)
	}
	subID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read insert id: %w", err)
	}
	s.ID = int(subID)

	p.SubscriberID = s.ID
	res, err = tx.Exec(
		"INSERT INTO registration_profiles (subscriber_id, activation_key) VALUES (?, ?)",
		p.SubscriberID, p.ActivationKey)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	profileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read insert id: %w", err)
	}
	p.ID = int(profileID)

	if beforeCommit != nil {
		if err := beforeCommit(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func scanProfile(row *sql.Row, op string) (*mailreg.RegistrationProfile, error) {
	var p mailreg.RegistrationProfile
	err := row.Scan(&p.ID, &p.SubscriberID, &p.ActivationKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &mailreg.Error{Code: mailreg.ErrNotFound, Op: "sqlite." + op, Err: err}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}
