package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository はユーザードキュメントを MongoDB で扱う実装リポジトリ。
type UserRepository struct {
	users *mongo.Collection
}

func NewUserRepository(db *mongo.Database, collectionName string) *UserRepository {
	return &UserRepository{users: db.Collection(collectionName)}
}

// EnsureIndexes は email の一意インデックスを作成する。upsert の挿入経路が並行実行で
// 重複ドキュメントを生まないことは、このインデックスによるストア側の一意性制約に依存する。
// 起動時に必ず呼ぶこと。
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.users.Indexes().CreateOne(ctx, userEmailIndex()); err != nil {
		return storeError(err)
	}
	return nil
}

func userEmailIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
}

// FindByEmail はメールアドレスで単一ユーザーを取得する。
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var doc UserDocument
	if err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeError(err)
	}

	user := mapUserDocument(doc)
	return &user, nil
}

// EnsureUser は初回サインイン時の insert-if-new を $setOnInsert 付き upsert 1 回で行う。
// 同一メールアドレスの並行サインインは email の一意インデックスで直列化され、
// 敗者側の挿入は重複キーとして弾かれるため「既存」として扱う。
// 新規作成された場合のみ true を返す。
func (r *UserRepository) EnsureUser(ctx context.Context, email, name string) (bool, error) {
	update := bson.M{
		"$setOnInsert": bson.M{
			"email":     email,
			"name":      name,
			"createdAt": time.Now().UTC(),
		},
	}
	opts := options.Update().SetUpsert(true)
	result, err := r.users.UpdateOne(ctx, bson.M{"email": email}, update, opts)
	return ensureUserOutcome(result, err)
}

// ensureUserOutcome は upsert の結果を (created, error) へ写像する。
// 重複キーは並行 upsert の敗者であり、ドキュメントは既に存在するためエラーにしない。
func ensureUserOutcome(result *mongo.UpdateResult, err error) (bool, error) {
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, storeError(err)
	}
	return result.UpsertedCount > 0, nil
}

// UpdateRole は対象 ID のロールを無条件に置き換える last-writer-wins 書き込み。
func (r *UserRepository) UpdateRole(ctx context.Context, targetID string, role domain.Role) error {
	objectID, err := parseObjectID(targetID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	update := roleUpdate(role)
	result, err := r.users.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return storeError(err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// UpdateRoleByEmail は決済起点の昇格で使う。未登録の支払者はここで作成される
// （サインイン前に決済を完了したユーザーを取りこぼさないための upsert）。
func (r *UserRepository) UpdateRoleByEmail(ctx context.Context, email string, role domain.Role) error {
	update := roleUpdate(role)
	update["$setOnInsert"] = bson.M{
		"email":     email,
		"createdAt": time.Now().UTC(),
	}
	opts := options.Update().SetUpsert(true)
	_, err := r.users.UpdateOne(ctx, bson.M{"email": email}, update, opts)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		// 並行 upsert の敗者。ドキュメントは確実に存在するため upsert なしで再適用する。
		_, err = r.users.UpdateOne(ctx, bson.M{"email": email}, roleUpdate(role))
	}
	if err != nil {
		return storeError(err)
	}
	return nil
}

// Find は全ユーザーを登録順で返す。管理側の一覧でのみ使用する。
func (r *UserRepository) Find(ctx context.Context) ([]domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.users.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	users := make([]domain.User, 0)
	for cursor.Next(ctx) {
		var doc UserDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeError(err)
		}
		users = append(users, mapUserDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

// Delete は対象 ID のユーザーを削除する。
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	result, err := r.users.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return storeError(err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func roleUpdate(role domain.Role) bson.M {
	if role == domain.RoleNone {
		return bson.M{"$unset": bson.M{"role": ""}}
	}
	return bson.M{"$set": bson.M{"role": string(role)}}
}

func mapUserDocument(doc UserDocument) domain.User {
	return domain.User{
		ID:        doc.ID.Hex(),
		Email:     doc.Email,
		Name:      doc.Name,
		Role:      domain.Role(doc.Role),
		CreatedAt: doc.CreatedAt,
	}
}
