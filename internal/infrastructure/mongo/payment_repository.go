package mongo

import (
	"context"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentRepository は追記専用の決済台帳を MongoDB で扱う実装リポジトリ。
type PaymentRepository struct {
	payments *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database, collectionName string) *PaymentRepository {
	return &PaymentRepository{payments: db.Collection(collectionName)}
}

// Append は決済レコードを 1 件追記する。既存レコードの更新は行わない。
func (r *PaymentRepository) Append(ctx context.Context, record *domain.PaymentRecord) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := PaymentDocument{
		ID:          primitive.NewObjectID(),
		PayerEmail:  record.PayerEmail,
		AmountCents: record.AmountCents,
		IntentID:    record.IntentID,
		ReceiptID:   record.ReceiptID,
		CreatedAt:   createdAt,
	}

	if _, err := r.payments.InsertOne(ctx, doc); err != nil {
		return storeError(err)
	}

	record.ID = doc.ID.Hex()
	record.CreatedAt = doc.CreatedAt
	return nil
}

// Find は全レコードを新しい順で返す。
func (r *PaymentRepository) Find(ctx context.Context) ([]domain.PaymentRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.payments.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	records := make([]domain.PaymentRecord, 0)
	for cursor.Next(ctx) {
		var doc PaymentDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeError(err)
		}
		records = append(records, domain.PaymentRecord{
			ID:          doc.ID.Hex(),
			PayerEmail:  doc.PayerEmail,
			AmountCents: doc.AmountCents,
			IntentID:    doc.IntentID,
			ReceiptID:   doc.ReceiptID,
			CreatedAt:   doc.CreatedAt,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, storeError(err)
	}
	return records, nil
}
