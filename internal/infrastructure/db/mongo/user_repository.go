package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aueb-cf/users-api/internal/core/domain"
)

const collectionUsers = "users"

type UserRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		col: db.Collection(collectionUsers),
		now: func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

type addressDocument struct {
	Area   string `bson:"area,omitempty"`
	Street string `bson:"street,omitempty"`
	Number string `bson:"number,omitempty"`
}

type phoneDocument struct {
	Type   string `bson:"type,omitempty"`
	Number string `bson:"number"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	PasswordHash string             `bson:"password"`
	Firstname    string             `bson:"firstname,omitempty"`
	Lastname     string             `bson:"lastname,omitempty"`
	Email        string             `bson:"email,omitempty"`
	Address      *addressDocument   `bson:"address,omitempty"`
	Phone        []phoneDocument    `bson:"phone,omitempty"`
	Roles        []string           `bson:"roles"`
	CreatedAt    time.Time          `bson:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at"`
}

// EnsureIndexes creates necessary indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("username_unique"),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// List returns every user ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

// FindByID returns ErrUserNotFound both for unknown and unparsable ids.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc userDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// Create inserts user and returns it with its generated id.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fromDomain(user)
	doc.ID = primitive.NewObjectID()
	// BSON dates keep milliseconds only.
	doc.CreatedAt = doc.CreatedAt.Truncate(time.Millisecond)
	doc.UpdatedAt = doc.UpdatedAt.Truncate(time.Millisecond)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = r.now()
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = doc.CreatedAt
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}

// Update applies p and returns the stored document after the change.
func (r *UserRepository) Update(ctx context.Context, id string, p domain.UserPatch) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": r.patchSet(p)}, opts).Decode(&doc)
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			return nil, domain.ErrUserNotFound
		case mongo.IsDuplicateKeyError(err):
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) patchSet(p domain.UserPatch) bson.M {
	set := bson.M{"updated_at": r.now()}
	if p.Username != nil {
		set["username"] = *p.Username
	}
	if p.PasswordHash != nil {
		set["password"] = *p.PasswordHash
	}
	if p.Firstname != nil {
		set["firstname"] = *p.Firstname
	}
	if p.Lastname != nil {
		set["lastname"] = *p.Lastname
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Address != nil {
		set["address"] = toAddressDocument(p.Address)
	}
	if p.Phones != nil {
		set["phone"] = toPhoneDocuments(*p.Phones)
	}
	if p.Roles != nil {
		roles := *p.Roles
		if roles == nil {
			roles = []string{}
		}
		set["roles"] = roles
	}
	return set
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// --- Mapping ---

func fromDomain(u *domain.User) userDocument {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	return userDocument{
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		Firstname:    u.Firstname,
		Lastname:     u.Lastname,
		Email:        u.Email,
		Address:      toAddressDocument(u.Address),
		Phone:        toPhoneDocuments(u.Phones),
		Roles:        roles,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d *userDocument) toDomain() *domain.User {
	u := &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.PasswordHash,
		Firstname:    d.Firstname,
		Lastname:     d.Lastname,
		Email:        d.Email,
		Roles:        d.Roles,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
	if u.Roles == nil {
		u.Roles = []string{}
	}
	if d.Address != nil {
		u.Address = &domain.Address{Area: d.Address.Area, Street: d.Address.Street, Number: d.Address.Number}
	}
	if len(d.Phone) > 0 {
		u.Phones = make([]domain.Phone, 0, len(d.Phone))
		for _, p := range d.Phone {
			u.Phones = append(u.Phones, domain.Phone{Type: p.Type, Number: p.Number})
		}
	}
	return u
}

func toAddressDocument(a *domain.Address) *addressDocument {
	if a == nil {
		return nil
	}
	return &addressDocument{Area: a.Area, Street: a.Street, Number: a.Number}
}

func toPhoneDocuments(phones []domain.Phone) []phoneDocument {
	out := make([]phoneDocument, 0, len(phones))
	for _, p := range phones {
		out = append(out, phoneDocument{Type: p.Type, Number: p.Number})
	}
	return out
}
