package domain

import "time"

// SurveyStatus は公開状態を表す。draft から published への一方向遷移のみを許可する。
type SurveyStatus string

const (
	StatusDraft     SurveyStatus = "draft"
	StatusPublished SurveyStatus = "published"
)

// ContributionKind は回答者がアンケートへ残せる寄与の種別。
type ContributionKind string

const (
	KindVote    ContributionKind = "vote"
	KindReport  ContributionKind = "report"
	KindComment ContributionKind = "comment"
)

// Reaction は重複排除なしで加算されるリアクション種別。
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
)

// Vote は 1 回答者につき 1 件だけ存在する投票エントリ。
type Vote struct {
	ActorEmail string
	Choice     string
	CreatedAt  time.Time
}

// Feedback は report / comment 共通のエントリ。ActorEmail ごとに一意。
type Feedback struct {
	ActorEmail string
	Message    string
	CreatedAt  time.Time
}

// Contribution は台帳へ追記する際の入力。Kind に応じて Choice か Message のどちらかを使う。
type Contribution struct {
	ActorEmail string
	Choice     string
	Message    string
}

// SurveyCounters は寄与集合と常に同期される非正規化カウンタ。
// Voted / Report / Comment は各集合の要素数、Like / Dislike はリアクション累計。
type SurveyCounters struct {
	Voted   int
	Report  int
	Comment int
	Like    int
	Dislike int
}

// Survey はエンゲージメント台帳の共有単位となる集約。
type Survey struct {
	ID          string
	OwnerEmail  string
	Title       string
	Category    string
	Description string
	Status      SurveyStatus
	Counters    SurveyCounters
	Votes       []Vote
	Reports     []Feedback
	Comments    []Feedback
	CreatedAt   time.Time
}

// HasVoted は指定メールアドレスの投票が既に存在するか判定する。
func (s *Survey) HasVoted(email string) bool {
	for _, v := range s.Votes {
		if v.ActorEmail == email {
			return true
		}
	}
	return false
}

// ValidKind は台帳が受け付ける寄与種別か判定する。
func ValidKind(kind ContributionKind) bool {
	switch kind {
	case KindVote, KindReport, KindComment:
		return true
	}
	return false
}

// ValidReaction はリアクション種別の妥当性を判定する。
func ValidReaction(reaction Reaction) bool {
	return reaction == ReactionLike || reaction == ReactionDislike
}
