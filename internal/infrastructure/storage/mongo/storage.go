// Package mongo provides an alternative durable client storage for
// deployments that already run MongoDB and no Redis.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/talentbridge/gateway/internal/core/domain"
	"github.com/talentbridge/gateway/internal/core/ports"
)

const sessionCollection = "client_sessions"

// Factory binds the shared database to per-client session documents.
type Factory struct {
	coll *mongo.Collection
}

// NewFactory creates a Factory over db.
func NewFactory(db *mongo.Database) *Factory {
	return &Factory{coll: db.Collection(sessionCollection)}
}

// ForClient returns the storage bound to one client's document.
func (f *Factory) ForClient(clientID string) ports.SessionStorage {
	return &Storage{coll: f.coll, clientID: clientID}
}

// Storage implements ports.SessionStorage over a MongoDB collection, one
// document per client keyed by the client id. The raw token field mirrors
// the Redis legacy key so older readers keep working.
type Storage struct {
	coll     *mongo.Collection
	clientID string
}

var _ ports.SessionStorage = (*Storage)(nil)

type mongoUser struct {
	ID       int64  `bson:"id"`
	Name     string `bson:"name,omitempty"`
	Email    string `bson:"email,omitempty"`
	UserType string `bson:"user_type"`
	Status   string `bson:"account_status,omitempty"`
}

type mongoSession struct {
	ID              string     `bson:"_id"`
	User            *mongoUser `bson:"user,omitempty"`
	Token           string     `bson:"token"`
	RawToken        string     `bson:"token_raw"`
	IsAuthenticated bool       `bson:"is_authenticated"`
	UpdatedAt       int64      `bson:"updated_at"`
}

// Available reports whether a collection is wired in.
func (s *Storage) Available() bool {
	return s.coll != nil
}

// Load returns the persisted session, or (nil, nil) when absent.
func (s *Storage) Load(ctx context.Context) (*domain.PersistedSession, error) {
	var doc mongoSession
	err := s.coll.FindOne(ctx, bson.M{"_id": s.clientID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	persisted := &domain.PersistedSession{
		Token:           doc.Token,
		IsAuthenticated: doc.IsAuthenticated,
	}
	if doc.User != nil {
		persisted.User = &domain.User{
			ID:       doc.User.ID,
			Name:     doc.User.Name,
			Email:    doc.User.Email,
			UserType: domain.Role(doc.User.UserType),
			Status:   doc.User.Status,
		}
	}
	return persisted, nil
}

// Save upserts the session document, last-write-wins.
func (s *Storage) Save(ctx context.Context, persisted *domain.PersistedSession) error {
	doc := mongoSession{
		ID:              s.clientID,
		Token:           persisted.Token,
		RawToken:        persisted.Token,
		IsAuthenticated: persisted.IsAuthenticated,
		UpdatedAt:       time.Now().UTC().Unix(),
	}
	if persisted.User != nil {
		doc.User = &mongoUser{
			ID:       persisted.User.ID,
			Name:     persisted.User.Name,
			Email:    persisted.User.Email,
			UserType: string(persisted.User.UserType),
			Status:   persisted.User.Status,
		}
	}

	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.clientID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Clear removes the session document.
func (s *Storage) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.clientID}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
