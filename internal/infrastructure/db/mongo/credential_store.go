package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/carddemo/portal/internal/core/domain"
	"github.com/carddemo/portal/internal/core/ports"
)

const sessionCollection = "portal_sessions"

// CredentialStore keeps one document per profile. Writing the whole document
// in one ReplaceOne is what makes Save atomic across the three keys.
type CredentialStore struct {
	coll    *mongo.Collection
	profile string
}

var (
	_ ports.CredentialStore = (*CredentialStore)(nil)
	_ ports.Pinger          = (*CredentialStore)(nil)
)

func NewCredentialStore(db *mongo.Database, profile string) *CredentialStore {
	if profile == "" {
		profile = "default"
	}
	return &CredentialStore{coll: db.Collection(sessionCollection), profile: profile}
}

type sessionDoc struct {
	Profile      string `bson:"_id"`
	AccessToken  string `bson:"access_token"`
	RefreshToken string `bson:"refresh_token"`
	User         string `bson:"user"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func (s *CredentialStore) Save(ctx context.Context, pair domain.CredentialPair, identity domain.Identity) error {
	values, err := domain.EncodeStoredSession(pair, identity)
	if err != nil {
		return err
	}
	doc := toDoc(s.profile, values, time.Now().UTC())

	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": s.profile}, doc, opts); err != nil {
		return fmt.Errorf("save credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) Load(ctx context.Context) (*domain.StoredSession, error) {
	var doc sessionDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": s.profile}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	stored, ok := domain.DecodeStoredSession(doc.values())
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": s.profile}); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func toDoc(profile string, values map[string]string, now time.Time) sessionDoc {
	return sessionDoc{
		Profile:      profile,
		AccessToken:  values[domain.KeyAccessToken],
		RefreshToken: values[domain.KeyRefreshToken],
		User:         values[domain.KeyUser],
		UpdatedAt:    now.Unix(),
	}
}

func (d sessionDoc) values() map[string]string {
	return map[string]string{
		domain.KeyAccessToken:  d.AccessToken,
		domain.KeyRefreshToken: d.RefreshToken,
		domain.KeyUser:         d.User,
	}
}
