package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ignatzorin/tastytrail-backend/internal/models"
)

// AccountsCollection имя коллекции аккаунтов в MongoDB.
const AccountsCollection = "accounts"

// accountDocument представление аккаунта в MongoDB.
// Идентификатор храним строкой uuid, чтобы токены не зависели от выбранного хранилища.
type accountDocument struct {
	ID            string     `bson:"_id"`
	FullName      string     `bson:"full_name"`
	Email         string     `bson:"email"`
	Mobile        string     `bson:"mobile"`
	PasswordHash  *string    `bson:"password_hash,omitempty"`
	Role          string     `bson:"role"`
	ResetOtp      *int       `bson:"reset_otp"`
	OtpExpiresAt  *time.Time `bson:"otp_expires_at"`
	IsOtpVerified bool       `bson:"is_otp_verified"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}

func toAccountDocument(a *models.Account) accountDocument {
	return accountDocument{
		ID:            a.ID.String(),
		FullName:      a.FullName,
		Email:         a.Email,
		Mobile:        a.Mobile,
		PasswordHash:  a.PasswordHash,
		Role:          a.Role,
		ResetOtp:      a.ResetOtp,
		OtpExpiresAt:  a.OtpExpiresAt,
		IsOtpVerified: a.IsOtpVerified,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func (d accountDocument) toModel() (*models.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("account mongo repository: некорректный _id %q: %w", d.ID, err)
	}
	return &models.Account{
		ID:            id,
		FullName:      d.FullName,
		Email:         d.Email,
		Mobile:        d.Mobile,
		PasswordHash:  d.PasswordHash,
		Role:          d.Role,
		ResetOtp:      d.ResetOtp,
		OtpExpiresAt:  d.OtpExpiresAt,
		IsOtpVerified: d.IsOtpVerified,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

// AccountMongoRepository хранит аккаунты в коллекции MongoDB.
type AccountMongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewAccountMongoRepository создаёт репозиторий поверх базы MongoDB.
func NewAccountMongoRepository(db *mongo.Database) *AccountMongoRepository {
	return newAccountMongoRepository(db.Collection(AccountsCollection))
}

func newAccountMongoRepository(coll *mongo.Collection) *AccountMongoRepository {
	return &AccountMongoRepository{
		coll: coll,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes создаёт уникальный индекс по email.
func (r *AccountMongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("accounts_email_unique"),
	})
	if err != nil {
		return fmt.Errorf("account mongo repository: create index %w", err)
	}
	return nil
}

// GetByEmail возвращает аккаунт по email.
func (r *AccountMongoRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByID возвращает аккаунт по идентификатору.
func (r *AccountMongoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *AccountMongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var doc accountDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("account mongo repository: %w", ErrAccountNotFound)
		}
		return nil, fmt.Errorf("account mongo repository: find %w", err)
	}
	return doc.toModel()
}

// Create сохраняет новый аккаунт.
func (r *AccountMongoRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := r.now()
	account.CreatedAt = now
	account.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, toAccountDocument(account)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("account mongo repository: create %w", err)
	}
	return nil
}

// Save перезаписывает изменяемые поля аккаунта.
func (r *AccountMongoRepository) Save(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = r.now()
	doc := toAccountDocument(account)

	update := bson.M{
		"$set": bson.M{
			"full_name":       doc.FullName,
			"mobile":          doc.Mobile,
			"password_hash":   doc.PasswordHash,
			"reset_otp":       doc.ResetOtp,
			"otp_expires_at":  doc.OtpExpiresAt,
			"is_otp_verified": doc.IsOtpVerified,
			"updated_at":      doc.UpdatedAt,
		},
	}

	res, err := r.coll.UpdateByID(ctx, doc.ID, update)
	if err != nil {
		return fmt.Errorf("account mongo repository: save %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Ping проверяет доступность MongoDB.
func (r *AccountMongoRepository) Ping(ctx context.Context) error {
	return r.coll.Database().Client().Ping(ctx, nil)
}
