package bolt

import (
	"github.com/asdine/storm/v3"
	"github.com/go-errors/errors"

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
	var p mailreg.RegistrationProfile
	if err := ps.db.stormDB.One("ActivationKey", key, &p); err != nil {
		return nil, profileErr(err)
	}

	return &p, nil
}

// FindBySubscriberID finds the profile belonging to a subscriber
func (ps *profileService) FindBySubscriberID(id int) (*mailreg.RegistrationProfile, error) {
	var p mailreg.RegistrationProfile
	if err := ps.db.stormDB.One("SubscriberID", id, &p); err != nil {
		return nil, profileErr(err)
	}

	return &p, nil
}

// All returns every registration profile
func (ps *profileService) All() ([]mailreg.RegistrationProfile, error) {
	var profiles []mailreg.RegistrationProfile
	if err := ps.db.stormDB.All(&profiles); err != nil {
		return nil, errors.Errorf("failed to list profiles: %v", err)
	}

	return profiles, nil
}

// Insert inserts a new profile into stormDB
func (ps *profileService) Insert(p *mailreg.RegistrationProfile) error {
	if err := ps.db.stormDB.Save(p); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// Update saves changes to an existing profile
func (ps *profileService) Update(p *mailreg.RegistrationProfile) error {
	if err := ps.db.stormDB.Update(p); err != nil {
		return errors.Errorf("failed to update: %v", err)
	}

	return nil
}

// Delete removes a profile
func (ps *profileService) Delete(id int) error {
	if err := ps.db.stormDB.DeleteStruct(&mailreg.RegistrationProfile{ID: id}); err != nil {
		return errors.Errorf("failed to delete: %v", err)
	}

	return nil
}

// CreateInactive saves a subscriber and its profile in one storm
// transaction. beforeCommit runs after both saves; any error rolls the
// transaction back so neither record survives.
func (ps *profileService) CreateInactive(s *mailreg.Subscriber, p *mailreg.RegistrationProfile, beforeCommit func() error) error {
	tx, err := ps.db.stormDB.Begin(true)
	if err != nil {
		return errors.Errorf("failed to begin transaction: %v", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := tx.Save(s); err != nil {
		return errors.Errorf("failed to save subscriber: %v", err)
	}

	p.SubscriberID = s.ID
	if err := tx.Save(p); err != nil {
		return errors.Errorf("failed to save profile: %v", err)
	}

	if beforeCommit != nil {
		if err := beforeCommit(); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func profileErr(err error) error {
	if err == storm.ErrNotFound {
		return &mailreg.Error{Code: mailreg.ErrNotFound, Op: "bolt.profile", Err: err}
	}
	return errors.Errorf("profile lookup failed: %v", err)
}
