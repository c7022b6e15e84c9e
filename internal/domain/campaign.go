package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// CampaignStatus is the moderation state of a campaign.
type CampaignStatus string

const (
	StatusPending  CampaignStatus = "pending"
	StatusApproved CampaignStatus = "approved"
	StatusRejected CampaignStatus = "rejected"
)

// Valid reports whether s is a known campaign status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further moderation transition applies.
func (s CampaignStatus) Terminal() bool {
	return s == StatusRejected
}

// Campaign is a fundraising campaign record. Amounts are integer cents;
// current_amount_cents only ever grows via the donation increment.
type Campaign struct {
	ID                 string
	Title              string
	Description        string
	Category           string
	ImageURL           string
	GoalAmountCents    int64
	CurrentAmountCents int64
	CreatorID          string
	CreatorEmail       string
	Status             CampaignStatus
	CreatedAt          time.Time
}

// campaignJSON carries the wire shape; amounts are decimal units.
type campaignJSON struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	ImageURL      string         `json:"image_url,omitempty"`
	GoalAmount    float64        `json:"goal_amount"`
	CurrentAmount float64        `json:"current_amount"`
	CreatorID     string         `json:"creator_id"`
	CreatorEmail  string         `json:"creator_email"`
	Status        CampaignStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
}

// MarshalJSON renders cent amounts as decimal units.
func (c Campaign) MarshalJSON() ([]byte, error) {
	return json.Marshal(campaignJSON{
		ID:            c.ID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		ImageURL:      c.ImageURL,
		GoalAmount:    CentsToUnits(c.GoalAmountCents),
		CurrentAmount: CentsToUnits(c.CurrentAmountCents),
		CreatorID:     c.CreatorID,
		CreatorEmail:  c.CreatorEmail,
		Status:        c.Status,
		CreatedAt:     c.CreatedAt,
	})
}

// NewCampaignInput holds creator-supplied fields for a new campaign.
type NewCampaignInput struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	Category    string `validate:"required"`
	ImageURL    string `validate:"omitempty,url"`
	GoalCents   int64  `validate:"gt=0"`
}

var validate = validator.New()

// ValidateNewCampaign checks creator input. The returned error wraps
// ErrValidation with a human-readable reason.
func ValidateNewCampaign(in NewCampaignInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	if err := validate.Struct(in); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("%w: %s", ErrValidation, fieldMessage(errs[0]))
		}
		return fmt.Errorf("%w: invalid input", ErrValidation)
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "GoalCents":
		return "goal amount must be a positive number"
	case "ImageURL":
		return "image url must be a valid url"
	default:
		return strings.ToLower(fe.Field()) + " is required"
	}
}

// ParseAmount converts a decimal money string into cents. At most two
// fraction digits are accepted; anything non-numeric, non-finite, zero or
// negative wraps ErrValidation.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: amount is required", ErrValidation)
	}
	neg := strings.HasPrefix(s, "-")
	whole, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")
	if whole == "" && frac == "" {
		return 0, fmt.Errorf("%w: amount must be a number", ErrValidation)
	}
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: amount supports at most two decimal places", ErrValidation)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount must be a number", ErrValidation)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: amount must be a number", ErrValidation)
	}
	// units*100+cents must stay inside int64; unchecked it wraps to a
	// positive garbage value that would pass the > 0 check below.
	if units > (math.MaxInt64-cents)/100 {
		return 0, fmt.Errorf("%w: amount is too large", ErrValidation)
	}
	total := units*100 + cents
	if neg || total <= 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	}
	return total, nil
}

// CentsToUnits converts integer cents into decimal units for responses.
func CentsToUnits(cents int64) float64 {
	return float64(cents) / 100
}
