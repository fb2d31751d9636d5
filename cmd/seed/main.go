package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/surveynest/surveynest-services/api/internal/config"
	mongodoc "github.com/surveynest/surveynest-services/api/internal/infrastructure/mongo"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type seedOptions struct {
	surveyCount     int
	voterCount      int
	dropCollections bool
	randomSeed      int64
}

var seedCategories = []string{"technology", "health", "education", "entertainment", "finance"}

var seedChoices = []string{"yes", "no", "maybe"}

// ローカル開発用のデモデータ投入コマンド。admin / surveyor / 一般ユーザーと、
// 投票・コメント済みの公開アンケートを用意する。カウンタは配列と整合する値で書き込む。
func main() {
	_ = godotenv.Load()

	opts := parseFlags()
	cfg := config.Load()
	logger := log.New(os.Stdout, "[surveynest-seed] ", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(cfg.MongoURI).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Fatalf("MongoDB 接続に失敗しました: %v", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Printf("MongoDB 切断時にエラー: %v", err)
		}
	}()

	db := client.Database(cfg.MongoDatabase)
	users := db.Collection(cfg.UserCollection)
	surveys := db.Collection(cfg.SurveyCollection)

	if opts.dropCollections {
		for _, coll := range []*mongo.Collection{users, surveys} {
			if err := coll.Drop(ctx); err != nil {
				logger.Fatalf("コレクション %s の削除に失敗: %v", coll.Name(), err)
			}
		}
		logger.Printf("既存コレクションを削除しました")
	}

	if err := mongodoc.NewUserRepository(db, cfg.UserCollection).EnsureIndexes(ctx); err != nil {
		logger.Fatalf("ユーザーインデックスの作成に失敗: %v", err)
	}

	rng := rand.New(rand.NewSource(opts.randomSeed))

	userDocs := buildUsers(opts.voterCount)
	if _, err := users.InsertMany(ctx, userDocs); err != nil {
		logger.Fatalf("ユーザーの投入に失敗: %v", err)
	}
	logger.Printf("ユーザーを %d 件投入しました", len(userDocs))

	surveyDocs := buildSurveys(opts, rng)
	if _, err := surveys.InsertMany(ctx, surveyDocs); err != nil {
		logger.Fatalf("アンケートの投入に失敗: %v", err)
	}
	logger.Printf("アンケートを %d 件投入しました", len(surveyDocs))
}

func parseFlags() seedOptions {
	opts := seedOptions{}
	flag.IntVar(&opts.surveyCount, "surveys", 10, "number of surveys to insert")
	flag.IntVar(&opts.voterCount, "voters", 8, "number of respondent users to insert")
	flag.BoolVar(&opts.dropCollections, "drop", false, "drop user/survey collections before seeding")
	flag.Int64Var(&opts.randomSeed, "seed", time.Now().UnixNano(), "random seed")
	flag.Parse()
	return opts
}

func buildUsers(voterCount int) []any {
	now := time.Now().UTC()
	docs := []any{
		mongodoc.UserDocument{ID: primitive.NewObjectID(), Email: "admin@surveynest.dev", Name: "Seed Admin", Role: "admin", CreatedAt: now},
		mongodoc.UserDocument{ID: primitive.NewObjectID(), Email: "surveyor@surveynest.dev", Name: "Seed Surveyor", Role: "surveyor", CreatedAt: now},
		mongodoc.UserDocument{ID: primitive.NewObjectID(), Email: "pro@surveynest.dev", Name: "Seed Pro", Role: "pro_user", CreatedAt: now},
	}
	for i := 0; i < voterCount; i++ {
		docs = append(docs, mongodoc.UserDocument{
			ID:        primitive.NewObjectID(),
			Email:     voterEmail(i),
			Name:      fmt.Sprintf("Seed Voter %d", i+1),
			CreatedAt: now,
		})
	}
	return docs
}

func buildSurveys(opts seedOptions, rng *rand.Rand) []any {
	docs := make([]any, 0, opts.surveyCount)
	now := time.Now().UTC()

	for i := 0; i < opts.surveyCount; i++ {
		doc := mongodoc.SurveyDocument{
			ID:          primitive.NewObjectID(),
			OwnerEmail:  "surveyor@surveynest.dev",
			Title:       fmt.Sprintf("Demo Survey %d", i+1),
			Category:    seedCategories[i%len(seedCategories)],
			Description: "Seeded survey for local development.",
			Status:      "published",
			CreatedAt:   now.Add(-time.Duration(i*24) * time.Hour),
		}
		if i%4 == 3 {
			doc.Status = "draft"
		}

		if doc.Status == "published" {
			voterTotal := rng.Intn(opts.voterCount + 1)
			for v := 0; v < voterTotal; v++ {
				doc.Votes = append(doc.Votes, mongodoc.VoteDocument{
					Email:     voterEmail(v),
					Choice:    seedChoices[rng.Intn(len(seedChoices))],
					CreatedAt: doc.CreatedAt.Add(time.Duration(v+1) * time.Minute),
				})
			}
			if voterTotal > 0 && rng.Intn(2) == 0 {
				doc.Comments = append(doc.Comments, mongodoc.FeedbackDocument{
					Email:     voterEmail(0),
					Message:   "Interesting questions, thanks.",
					CreatedAt: doc.CreatedAt.Add(time.Hour),
				})
			}
			doc.VotedCount = len(doc.Votes)
			doc.CommentCount = len(doc.Comments)
			doc.LikeCount = rng.Intn(20)
			doc.DislikeCount = rng.Intn(5)
		}

		docs = append(docs, doc)
	}
	return docs
}

func voterEmail(i int) string {
	return fmt.Sprintf("voter%d@surveynest.dev", i+1)
}
