package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ticketdesk/dashboard/internal/core/ports"
)

const sessionCollection = "sessions"

// TokenStore keeps bearer tokens in MongoDB, one document per browser
// session. Expired documents are removed by a TTL index on expires_at.
type TokenStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewTokenStore(db *mongo.Database) *TokenStore {
	return &TokenStore{coll: db.Collection(sessionCollection), now: time.Now}
}

type sessionDoc struct {
	ID        string     `bson:"_id"`
	Token     string     `bson:"token"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
	UpdatedAt int64      `bson:"updated_at"`
}

func (s *TokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ports.ErrTokenNotFound
		}
		return "", fmt.Errorf("find session: %w", err)
	}
	// The TTL monitor runs about once a minute.
	if doc.ExpiresAt != nil && !s.now().Before(*doc.ExpiresAt) {
		return "", ports.ErrTokenNotFound
	}
	return doc.Token, nil
}

// Set stores the token. A ttl of zero keeps it until deleted.
func (s *TokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	now := s.now()
	doc := sessionDoc{ID: sessionID, Token: token, UpdatedAt: now.Unix()}
	if ttl > 0 {
		exp := now.Add(ttl).UTC()
		doc.ExpiresAt = &exp
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": sessionID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *TokenStore) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": sessionID}); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// EnsureIndexes creates the TTL index on the sessions collection.
func (s *TokenStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0),
	}
	_, err := s.coll.Indexes().CreateOne(ctx, index)
	return err
}
