package domain

import (
	"context"
	"time"
)

// Recommendation is an append-only fact: user was shown recommended on date.
// Records are never mutated or deleted.
type Recommendation struct {
	ID                int64     `json:"id"`
	UserID            int64     `json:"user_id"`
	RecommendedUserID int64     `json:"recommended_user_id"`
	Date              time.Time `json:"date"`
}

// RecommendedUser is the client-facing projection of a recommended profile.
type RecommendedUser struct {
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Age      string `json:"age"`
	Hobbies  string `json:"hobbies"`
	Location string `json:"location"`
	VideoURL string `json:"video_url"`
}

func NewRecommendedUser(u User) RecommendedUser {
	return RecommendedUser{
		UserID:   u.ID,
		Name:     u.Name,
		Age:      u.Age,
		Hobbies:  u.Hobbies,
		Location: u.Location,
		VideoURL: u.VideoURL,
	}
}

type RecommendationRepository interface {
	Create(ctx context.Context, rec *Recommendation) error
	// ListRecommendedIDs returns the ids shown to userID on date, in the
	// order they were recorded.
	ListRecommendedIDs(ctx context.Context, userID int64, date time.Time) ([]int64, error)
}

type RecommendationUsecase interface {
	// GetDaily returns today's free quota, topping it up with ranked nearby
	// candidates. Repeated same-day calls return the same set.
	GetDaily(ctx context.Context, userID int64) ([]User, error)
	// GetAdditional fetches up to count extra nearby candidates without
	// ranking. No payment logic here; an empty result is a normal outcome.
	GetAdditional(ctx context.Context, userID int64, count int) ([]User, error)
}

// PurchaseUsecase composes the point ledger with paid actions. Each method
// is a single unit of work: the debit and the paid effect commit together
// or not at all.
type PurchaseUsecase interface {
	BuyAdditional(ctx context.Context, userID int64, count int) ([]User, error)
	InitiateContact(ctx context.Context, userID, targetID int64) (*Room, error)
}
