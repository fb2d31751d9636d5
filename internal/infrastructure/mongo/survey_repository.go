package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SurveyRepository はアンケート集約を MongoDB で扱う実装リポジトリ。
// 寄与の一意追記・カウンタ増分・公開遷移はすべて単一の条件付き更新として発行し、
// アプリケーション側のロックに頼らずストアを一貫性の唯一の裁定者とする。
type SurveyRepository struct {
	surveys *mongo.Collection
}

// NewSurveyRepository はアンケートコレクションを束縛したリポジトリを構築する。
func NewSurveyRepository(db *mongo.Database, collectionName string) *SurveyRepository {
	return &SurveyRepository{surveys: db.Collection(collectionName)}
}

// FindPublished は公開済みアンケートのみを新しい順で返す。
func (r *SurveyRepository) FindPublished(ctx context.Context) ([]domain.Survey, error) {
	return r.find(ctx, bson.M{"status": string(domain.StatusPublished)})
}

// FindByOwner は所有者メールアドレスで絞り込んだ一覧を返す。
func (r *SurveyRepository) FindByOwner(ctx context.Context, email string) ([]domain.Survey, error) {
	return r.find(ctx, bson.M{"ownerEmail": email})
}

// FindWithFeedback は指定種別のフィードバック配列が空でないアンケートを所有者別に返す。
func (r *SurveyRepository) FindWithFeedback(ctx context.Context, email string, kind domain.ContributionKind) ([]domain.Survey, error) {
	arrayField, _ := contributionFields(kind)
	filter := bson.M{
		"ownerEmail":      email,
		arrayField + ".0": bson.M{"$exists": true},
	}
	return r.find(ctx, filter)
}

// FindAll は公開状態を問わず全アンケートを返す。管理側の射影でのみ使用する。
func (r *SurveyRepository) FindAll(ctx context.Context) ([]domain.Survey, error) {
	return r.find(ctx, bson.M{})
}

// FindByID は ID 指定で単一アンケートを取得する。
func (r *SurveyRepository) FindByID(ctx context.Context, id string) (*domain.Survey, error) {
	objectID, err := parseObjectID(id)
	if err != nil {
		return nil, domain.ErrSurveyNotFound
	}

	var doc SurveyDocument
	if err := r.surveys.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSurveyNotFound
		}
		return nil, storeError(err)
	}

	survey := mapSurveyDocument(doc)
	return &survey, nil
}

// Create は下書きアンケートを追加し、採番された ID をドメインモデルへ反映する。
func (r *SurveyRepository) Create(ctx context.Context, survey *domain.Survey) error {
	now := time.Now().UTC()
	createdAt := survey.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	doc := SurveyDocument{
		ID:          primitive.NewObjectID(),
		OwnerEmail:  survey.OwnerEmail,
		Title:       survey.Title,
		Category:    survey.Category,
		Description: survey.Description,
		Status:      string(survey.Status),
		CreatedAt:   createdAt,
	}
	if doc.Status == "" {
		doc.Status = string(domain.StatusDraft)
	}

	if _, err := r.surveys.InsertOne(ctx, doc); err != nil {
		return storeError(err)
	}

	survey.ID = doc.ID.Hex()
	survey.Status = domain.SurveyStatus(doc.Status)
	survey.CreatedAt = doc.CreatedAt
	return nil
}

// Publish は draft のドキュメントだけを published へ更新する条件付き書き込み。
// 一致しなかった場合は存在確認を行い、不存在と公開済みを区別して返す。
func (r *SurveyRepository) Publish(ctx context.Context, id string) error {
	objectID, err := parseObjectID(id)
	if err != nil {
		return domain.ErrSurveyNotFound
	}

	filter := bson.M{"_id": objectID, "status": string(domain.StatusDraft)}
	update := bson.M{"$set": bson.M{"status": string(domain.StatusPublished)}}

	result, err := r.surveys.UpdateOne(ctx, filter, update)
	if err != nil {
		return storeError(err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	if err := r.surveys.FindOne(ctx, bson.M{"_id": objectID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrSurveyNotFound
		}
		return storeError(err)
	}
	return domain.ErrAlreadyPublished
}

// AppendContribution は「この行為者のエントリがまだ無ければ、配列へ追記しカウンタを +1 する」を
// 1 回の UpdateOne で発行する。エントリの存在とカウンタ増分が別々に観測されることはなく、
// 同一キーへの並行呼び出しはストア側で直列化されて勝者がちょうど 1 つになる。
func (r *SurveyRepository) AppendContribution(ctx context.Context, surveyID string, kind domain.ContributionKind, entry domain.Contribution) error {
	objectID, err := parseObjectID(surveyID)
	if err != nil {
		return domain.ErrSurveyNotFound
	}

	arrayField, counterField := contributionFields(kind)

	element := bson.M{
		"email":     entry.ActorEmail,
		"createdAt": time.Now().UTC(),
	}
	if kind == domain.KindVote {
		element["choice"] = entry.Choice
	} else if entry.Message != "" {
		element["message"] = entry.Message
	}

	// $ne はフィールド欠落時にも真になるため、配列が未作成のドキュメントにも一致する。
	filter := bson.M{
		"_id":                 objectID,
		arrayField + ".email": bson.M{"$ne": entry.ActorEmail},
	}
	update := bson.M{
		"$push": bson.M{arrayField: element},
		"$inc":  bson.M{counterField: 1},
	}

	result, err := r.surveys.UpdateOne(ctx, filter, update)
	if err != nil {
		return storeError(err)
	}
	if result.ModifiedCount > 0 {
		return nil
	}

	// 一致しなかった理由は「アンケート不存在」か「既に寄与済み」のどちらか。
	// 成功経路の原子性には影響しないため、ここでの追加読み取りは許容される。
	if err := r.surveys.FindOne(ctx, bson.M{"_id": objectID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrSurveyNotFound
		}
		return storeError(err)
	}
	return domain.ErrAlreadyContributed
}

// IncrementReaction は行為者を問わない無条件加算。更新後のカウンタ一式を返す。
func (r *SurveyRepository) IncrementReaction(ctx context.Context, surveyID string, reaction domain.Reaction) (domain.SurveyCounters, error) {
	objectID, err := parseObjectID(surveyID)
	if err != nil {
		return domain.SurveyCounters{}, domain.ErrSurveyNotFound
	}

	counterField := "likeCount"
	if reaction == domain.ReactionDislike {
		counterField = "dislikeCount"
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated SurveyDocument
	err = r.surveys.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, bson.M{"$inc": bson.M{counterField: 1}}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.SurveyCounters{}, domain.ErrSurveyNotFound
		}
		return domain.SurveyCounters{}, storeError(err)
	}

	return mapSurveyCounters(updated), nil
}

// find はフィルタを適用して全件をドメインモデルへ変換する共通経路。
func (r *SurveyRepository) find(ctx context.Context, filter bson.M) ([]domain.Survey, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.surveys.Find(ctx, filter, opts)
	if err != nil {
		return nil, storeError(err)
	}
	defer cursor.Close(ctx)

	surveys := make([]domain.Survey, 0)
	for cursor.Next(ctx) {
		var doc SurveyDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeError(err)
		}
		surveys = append(surveys, mapSurveyDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, storeError(err)
	}
	return surveys, nil
}

// contributionFields は寄与種別を配列フィールド名とカウンタフィールド名の組へ写像する。
func contributionFields(kind domain.ContributionKind) (arrayField, counterField string) {
	switch kind {
	case domain.KindVote:
		return "votes", "votedCount"
	case domain.KindReport:
		return "reports", "reportCount"
	default:
		return "comments", "commentCount"
	}
}

// mapSurveyDocument は Mongo ドキュメントをドメイン Survey へマッピングする。
func mapSurveyDocument(doc SurveyDocument) domain.Survey {
	votes := make([]domain.Vote, 0, len(doc.Votes))
	for _, v := range doc.Votes {
		votes = append(votes, domain.Vote{ActorEmail: v.Email, Choice: v.Choice, CreatedAt: v.CreatedAt})
	}

	return domain.Survey{
		ID:          doc.ID.Hex(),
		OwnerEmail:  doc.OwnerEmail,
		Title:       doc.Title,
		Category:    doc.Category,
		Description: doc.Description,
		Status:      domain.SurveyStatus(doc.Status),
		Counters:    mapSurveyCounters(doc),
		Votes:       votes,
		Reports:     mapFeedbackDocuments(doc.Reports),
		Comments:    mapFeedbackDocuments(doc.Comments),
		CreatedAt:   doc.CreatedAt,
	}
}

func mapSurveyCounters(doc SurveyDocument) domain.SurveyCounters {
	return domain.SurveyCounters{
		Voted:   doc.VotedCount,
		Report:  doc.ReportCount,
		Comment: doc.CommentCount,
		Like:    doc.LikeCount,
		Dislike: doc.DislikeCount,
	}
}

func mapFeedbackDocuments(docs []FeedbackDocument) []domain.Feedback {
	if len(docs) == 0 {
		return nil
	}
	result := make([]domain.Feedback, 0, len(docs))
	for _, doc := range docs {
		result = append(result, domain.Feedback{ActorEmail: doc.Email, Message: doc.Message, CreatedAt: doc.CreatedAt})
	}
	return result
}

// parseObjectID は前後空白を除去して ObjectID を解釈する。
func parseObjectID(id string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(strings.TrimSpace(id))
}

// storeError はストア I/O 起因の失敗を再試行可能エラーとして分類する。
func storeError(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrUnavailable, err)
}
