package mongo

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VoteDocument は votes 配列の要素。email は配列内で一意。
type VoteDocument struct {
	Email     string    `bson:"email"`
	Choice    string    `bson:"choice"`
	CreatedAt time.Time `bson:"createdAt"`
}

// FeedbackDocument は reports / comments 配列共通の要素。email は配列内で一意。
type FeedbackDocument struct {
	Email     string    `bson:"email"`
	Message   string    `bson:"message,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
}

// SurveyDocument は MongoDB 上でのアンケートスキーマ。
// 各カウンタは対応する配列と同一の条件付き更新内でのみ増分され、中間状態は観測されない。
type SurveyDocument struct {
	ID           primitive.ObjectID `bson:"_id"`
	OwnerEmail   string             `bson:"ownerEmail"`
	Title        string             `bson:"title"`
	Category     string             `bson:"category,omitempty"`
	Description  string             `bson:"description,omitempty"`
	Status       string             `bson:"status"`
	VotedCount   int                `bson:"votedCount"`
	ReportCount  int                `bson:"reportCount"`
	CommentCount int                `bson:"commentCount"`
	LikeCount    int                `bson:"likeCount"`
	DislikeCount int                `bson:"dislikeCount"`
	Votes        []VoteDocument     `bson:"votes,omitempty"`
	Reports      []FeedbackDocument `bson:"reports,omitempty"`
	Comments     []FeedbackDocument `bson:"comments,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

// UserDocument は email を一意キーとするユーザースキーマ。
type UserDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name,omitempty"`
	Role      string             `bson:"role,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

// PaymentDocument は追記専用の決済レコードスキーマ。
type PaymentDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	PayerEmail  string             `bson:"payerEmail"`
	AmountCents int64              `bson:"amountCents"`
	IntentID    string             `bson:"intentId,omitempty"`
	ReceiptID   string             `bson:"receiptId"`
	CreatedAt   time.Time          `bson:"createdAt"`
}
