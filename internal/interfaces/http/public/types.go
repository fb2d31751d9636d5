package public

import (
	"time"

	"github.com/surveynest/surveynest-services/api/internal/public/domain"
)

type countersResponse struct {
	VotedCount   int `json:"votedCount"`
	ReportCount  int `json:"reportCount"`
	CommentCount int `json:"commentCount"`
	LikeCount    int `json:"likeCount"`
	DislikeCount int `json:"dislikeCount"`
}

type surveySummaryResponse struct {
	ID         string           `json:"id"`
	OwnerEmail string           `json:"ownerEmail"`
	Title      string           `json:"title"`
	Category   string           `json:"category,omitempty"`
	Status     string           `json:"status"`
	Counters   countersResponse `json:"counters"`
	CreatedAt  string           `json:"createdAt"`
}

type voteResponse struct {
	Email     string `json:"email"`
	Choice    string `json:"choice"`
	CreatedAt string `json:"createdAt"`
}

type feedbackResponse struct {
	Email     string `json:"email"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"createdAt"`
}

type surveyDetailResponse struct {
	surveySummaryResponse
	Description string             `json:"description,omitempty"`
	IsUserVoted bool               `json:"isUserVoted"`
	Votes       []voteResponse     `json:"votes,omitempty"`
	Reports     []feedbackResponse `json:"reports,omitempty"`
	Comments    []feedbackResponse `json:"comments,omitempty"`
}

type appendResultResponse struct {
	Applied bool `json:"applied"`
}

type createSurveyRequest struct {
	Title       string `json:"title"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

type contributionRequest struct {
	Choice  string `json:"choice"`
	Message string `json:"message"`
}

type upsertUserRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type capabilitiesResponse struct {
	IsAdmin    bool `json:"isAdmin"`
	IsSurveyor bool `json:"isSurveyor"`
	IsProUser  bool `json:"isProUser"`
}

type paymentIntentRequest struct {
	Price float64 `json:"price"`
}

type paymentIntentResponse struct {
	IntentID     string `json:"intentId"`
	ClientSecret string `json:"clientSecret"`
}

type paymentNotificationRequest struct {
	IntentID string  `json:"intentId"`
	Price    float64 `json:"price"`
}

type paymentRecordResponse struct {
	ID          string `json:"id"`
	PayerEmail  string `json:"payerEmail"`
	AmountCents int64  `json:"amountCents"`
	IntentID    string `json:"intentId,omitempty"`
	ReceiptID   string `json:"receiptId"`
	CreatedAt   string `json:"createdAt"`
}

func buildSurveySummary(survey domain.Survey) surveySummaryResponse {
	return surveySummaryResponse{
		ID:         survey.ID,
		OwnerEmail: survey.OwnerEmail,
		Title:      survey.Title,
		Category:   survey.Category,
		Status:     string(survey.Status),
		Counters: countersResponse{
			VotedCount:   survey.Counters.Voted,
			ReportCount:  survey.Counters.Report,
			CommentCount: survey.Counters.Comment,
			LikeCount:    survey.Counters.Like,
			DislikeCount: survey.Counters.Dislike,
		},
		CreatedAt: survey.CreatedAt.Format(time.RFC3339),
	}
}

func buildSurveySummaries(surveys []domain.Survey) []surveySummaryResponse {
	summaries := make([]surveySummaryResponse, 0, len(surveys))
	for _, survey := range surveys {
		summaries = append(summaries, buildSurveySummary(survey))
	}
	return summaries
}

func buildSurveyDetail(survey domain.Survey, isUserVoted bool) surveyDetailResponse {
	votes := make([]voteResponse, 0, len(survey.Votes))
	for _, v := range survey.Votes {
		votes = append(votes, voteResponse{
			Email:     v.ActorEmail,
			Choice:    v.Choice,
			CreatedAt: v.CreatedAt.Format(time.RFC3339),
		})
	}

	return surveyDetailResponse{
		surveySummaryResponse: buildSurveySummary(survey),
		Description:           survey.Description,
		IsUserVoted:           isUserVoted,
		Votes:                 votes,
		Reports:               buildFeedbackResponses(survey.Reports),
		Comments:              buildFeedbackResponses(survey.Comments),
	}
}

func buildFeedbackResponses(entries []domain.Feedback) []feedbackResponse {
	if len(entries) == 0 {
		return nil
	}
	result := make([]feedbackResponse, 0, len(entries))
	for _, entry := range entries {
		result = append(result, feedbackResponse{
			Email:     entry.ActorEmail,
			Message:   entry.Message,
			CreatedAt: entry.CreatedAt.Format(time.RFC3339),
		})
	}
	return result
}

func buildPaymentRecord(record domain.PaymentRecord) paymentRecordResponse {
	return paymentRecordResponse{
		ID:          record.ID,
		PayerEmail:  record.PayerEmail,
		AmountCents: record.AmountCents,
		IntentID:    record.IntentID,
		ReceiptID:   record.ReceiptID,
		CreatedAt:   record.CreatedAt.Format(time.RFC3339),
	}
}
