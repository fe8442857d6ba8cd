package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/haripriya/clinic-backend/internal/core/domain"
)

const (
	collectionUsers = "users"

	indexUserEmail = "uniq_email"
	indexUserPhone = "uniq_phone"
)

// UserRepository implements ports.UserStore using MongoDB.
type UserRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, col: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID           int64     `bson:"_id"`
	FullName     string    `bson:"full_name"`
	Email        string    `bson:"email"`
	Phone        string    `bson:"phone,omitempty"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	AuthProvider string    `bson:"auth_provider"`
	Active       bool      `bson:"is_active"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		ID:           u.ID,
		FullName:     u.FullName,
		Email:        u.Email,
		Phone:        u.Phone,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		AuthProvider: string(u.AuthProvider),
		Active:       u.Active,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:           mu.ID,
		FullName:     mu.FullName,
		Email:        mu.Email,
		Phone:        mu.Phone,
		PasswordHash: mu.PasswordHash,
		Role:         domain.Role(mu.Role),
		AuthProvider: domain.AuthProvider(mu.AuthProvider),
		Active:       mu.Active,
		CreatedAt:    mu.CreatedAt.UTC(),
		UpdatedAt:    mu.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.col.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, bson.M{"email": email})
}

func (r *UserRepository) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	if phone == "" {
		return false, nil
	}
	return r.exists(ctx, bson.M{"phone": phone})
}

func (r *UserRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return n > 0, nil
}

// Save inserts user when it has no id yet, otherwise replaces the stored
// document. Unique index violations surface as domain.ErrDuplicateEmail or
// domain.ErrDuplicatePhone.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	saved := *user
	var err error
	if saved.ID == 0 {
		saved.ID, err = nextSequence(ctx, r.db, collectionUsers)
		if err != nil {
			return nil, err
		}
		_, err = r.col.InsertOne(ctx, toMongoUser(&saved))
	} else {
		var res *mongo.UpdateResult
		res, err = r.col.ReplaceOne(ctx, bson.M{"_id": saved.ID}, toMongoUser(&saved))
		if err == nil && res.MatchedCount == 0 {
			return nil, domain.ErrUserNotFound
		}
	}

	switch {
	case err == nil:
		return &saved, nil
	case isDuplicateOn(err, indexUserEmail):
		return nil, domain.ErrDuplicateEmail
	case isDuplicateOn(err, indexUserPhone):
		return nil, domain.ErrDuplicatePhone
	default:
		return nil, fmt.Errorf("save user: %w", err)
	}
}

// EnsureIndexes creates the unique indexes on the users collection. Phone is
// only unique among accounts that have one.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName(indexUserEmail).SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().
				SetName(indexUserPhone).
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"phone": bson.M{"$gt": ""}}),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
