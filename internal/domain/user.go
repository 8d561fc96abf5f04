package domain

import (
	"context"
	"encoding/json"
	"io"
	"time"
)

// Status is the lifecycle of a profile's video analysis. Transitions are
// monotonic: once COMPLETE or FAILED, a profile never returns to PROCESSING.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusComplete   Status = "COMPLETE"
	StatusFailed     Status = "FAILED"
)

// Terminal reports whether no further automatic transition occurs.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// ParseGender maps a worker-provided token to a Gender tag. Unrecognized
// tokens are not an error; the caller logs and leaves the tag unset.
func ParseGender(raw string) (Gender, bool) {
	switch Gender(raw) {
	case GenderMale:
		return GenderMale, true
	case GenderFemale:
		return GenderFemale, true
	}
	return "", false
}

type User struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name,omitempty"`
	Age          string   `json:"age,omitempty"` // free text, e.g. "60대 후반"
	Hobbies      string   `json:"hobbies,omitempty"` // JSON array stored as text
	Gender       *Gender  `json:"gender,omitempty"`
	VideoURL     string   `json:"video_url"`
	ProfileURL   string   `json:"profile_url,omitempty"`
	Location     string   `json:"location,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	Point        int      `json:"point"`
	Status       Status   `json:"status"`
	Introduction string   `json:"introduction,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HobbyList parses the stored hobbies text. The field is a serialization
// boundary: the worker promises a JSON array but is not trusted, so any
// unparsable payload yields nil instead of an error.
func (u *User) HobbyList() []string {
	if u.Hobbies == "" {
		return nil
	}
	var hobbies []string
	if err := json.Unmarshal([]byte(u.Hobbies), &hobbies); err != nil {
		return nil
	}
	return hobbies
}

func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}

// OnboardingInput carries the multipart upload already decoded by the
// delivery layer. Photo is optional; Video is required.
type OnboardingInput struct {
	VideoName string
	Video     io.Reader
	PhotoName string
	Photo     io.Reader
	Latitude  *float64
	Longitude *float64
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	// GetByID returns (nil, nil) when no such user exists.
	GetByID(ctx context.Context, id int64) (*User, error)
	// GetByIDs returns the found users in the order of ids.
	GetByIDs(ctx context.Context, ids []int64) ([]User, error)
	// UpdateFromAnalysis persists merged analysis fields and the COMPLETE
	// status. The update is guarded on status=PROCESSING so terminal states
	// stay terminal; it reports whether a row was actually updated.
	UpdateFromAnalysis(ctx context.Context, user *User) (bool, error)
	// MarkAnalysisFailed transitions a PROCESSING profile to FAILED.
	MarkAnalysisFailed(ctx context.Context, id int64) error
	// FindNearby returns up to limit users within radiusKm of (lat, lon),
	// excluding the given ids, in deterministic order.
	FindNearby(ctx context.Context, lat, lon, radiusKm float64, excludeIDs []int64, limit int) ([]User, error)
	// DebitPoints atomically decrements the balance, failing without any
	// change when the balance is lower than amount.
	DebitPoints(ctx context.Context, id int64, amount int) error
}

type UserUsecase interface {
	// Onboard stores the upload, creates a PROCESSING profile and returns it
	// immediately; analysis runs in a detached background task.
	Onboard(ctx context.Context, in *OnboardingInput) (*User, error)
	GetProfile(ctx context.Context, id int64) (*User, error)
}

// PointLedger guards every paid action. Debit is the only legal way to
// mutate a balance.
type PointLedger interface {
	Debit(ctx context.Context, userID int64, amount int) error
}

// TxRunner composes several repository operations into one all-or-nothing
// unit of work.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
