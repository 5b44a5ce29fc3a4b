package dto

// CreateReviewRequest represents request to review an attended event
type CreateReviewRequest struct {
	EventID string `json:"event_id" binding:"required,notblank"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty" binding:"max=2000"`
}

// ReviewEligibilityResponse tells the caller whether they may review an event
type ReviewEligibilityResponse struct {
	EventID   string `json:"event_id"`
	CanReview bool   `json:"can_review"`
}
