package bolt

import (
	"strings"

	"github.com/asdine/storm/v3"
	"github.com/go-errors/errors"

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
	var s mailreg.Subscriber
	if err := ss.db.stormDB.One("ID", id, &s); err != nil {
		return nil, subscriberErr(err)
	}

	return &s, nil
}

// FindByEmail finds a subscriber by email address. storm indexes are
// case-sensitive, so the comparison is done over a full scan.
func (ss *subscriberService) FindByEmail(email string) (*mailreg.Subscriber, error) {
	var subscribers []mailreg.Subscriber
	if err := ss.db.stormDB.All(&subscribers); err != nil {
		return nil, errors.Errorf("failed to list subscribers: %v", err)
	}

	for i := range subscribers {
		if strings.EqualFold(subscribers[i].Email, email) {
			return &subscribers[i], nil
		}
	}

	return nil, &mailreg.Error{Code: mailreg.ErrNotFound, Op: "bolt.FindByEmail"}
}

// FindByDeactivationKey finds a subscriber by deactivation key
func (ss *subscriberService) FindByDeactivationKey(key string) (*mailreg.Subscriber, error) {
	var s mailreg.Subscriber
	if err := ss.db.stormDB.One("DeactivationKey", key, &s); err != nil {
		return nil, subscriberErr(err)
	}

	return &s, nil
}

// Insert inserts a new subscriber into stormDB
func (ss *subscriberService) Insert(s *mailreg.Subscriber) error {
	if err := ss.db.stormDB.Save(s); err != nil {
		return errors.Errorf("failed to save: %v", err)
	}

	return nil
}

// Update saves changes to an existing subscriber
func (ss *subscriberService) Update(s *mailreg.Subscriber) error {
	if err := ss.db.stormDB.Update(s); err != nil {
		return errors.Errorf("failed to update: %v", err)
	}

	return nil
}

// Delete removes a subscriber
func (ss *subscriberService) Delete(id int) error {
	if err := ss.db.stormDB.DeleteStruct(&mailreg.Subscriber{ID: id}); err != nil {
		return errors.Errorf("failed to delete: %v", err)
	}

	return nil
}

func subscriberErr(err error) error {
	if err == storm.ErrNotFound {
		return &mailreg.Error{Code: mailreg.ErrNotFound, Op: "bolt.subscriber", Err: err}
	}
	return errors.Errorf("subscriber lookup failed: %v", err)
}
