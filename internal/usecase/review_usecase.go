package usecase

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"wholesale/internal/domain/model"
	repo "wholesale/internal/repository"

	"go.uber.org/zap"
)

const (
	reviewListLimit      = 50
	maxReviewNameLength  = 100
	maxReviewCommentSize = 2000
)

type ReviewUsecase struct {
	reviews repo.ReviewRepository
	ids     IDGenerator
	clock   Clock
	logger  *zap.Logger
}

func NewReviewUsecase(reviews repo.ReviewRepository, ids IDGenerator, clock Clock, logger *zap.Logger) *ReviewUsecase {
	if clock == nil {
		clock = systemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewUsecase{reviews: reviews, ids: ids, clock: clock, logger: logger}
}

type CreateReviewInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewListOutput struct {
	Reviews []model.Review      `json:"reviews"`
	Summary model.RatingSummary `json:"summary"`
}

type CreateReviewOutput struct {
	Review  model.Review        `json:"review"`
	Summary model.RatingSummary `json:"summary"`
}

// 新しい順に50件と評価サマリ
func (u *ReviewUsecase) ListReviews(ctx context.Context, productID string) (ReviewListOutput, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return ReviewListOutput{}, NewHTTPError(http.StatusBadRequest, "Product id is required.")
	}

	reviews, err := u.reviews.ListByProductID(ctx, productID, reviewListLimit)
	if err != nil {
		u.logger.Error("list reviews failed", zap.String("product_id", productID), zap.Error(err))
		return ReviewListOutput{}, NewHTTPError(http.StatusInternalServerError, "Failed to load reviews.")
	}
	summary, err := u.reviews.Summary(ctx, productID)
	if err != nil {
		u.logger.Error("summarize reviews failed", zap.String("product_id", productID), zap.Error(err))
		return ReviewListOutput{}, NewHTTPError(http.StatusInternalServerError, "Failed to load reviews.")
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	return ReviewListOutput{Reviews: reviews, Summary: summary}, nil
}

func (u *ReviewUsecase) CreateReview(ctx context.Context, productID string, in CreateReviewInput) (CreateReviewOutput, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return CreateReviewOutput{}, NewHTTPError(http.StatusBadRequest, "Product id is required.")
	}
	name := strings.TrimSpace(in.Name)
	comment := strings.TrimSpace(in.Comment)
	email := strings.TrimSpace(in.Email)

	if name == "" || utf8.RuneCountInString(name) > maxReviewNameLength {
		return CreateReviewOutput{}, NewHTTPError(http.StatusBadRequest, "Name is required (max 100 characters).")
	}
	if in.Rating < 1 || in.Rating > 5 {
		return CreateReviewOutput{}, NewHTTPError(http.StatusBadRequest, "Rating must be between 1 and 5.")
	}
	if comment == "" || utf8.RuneCountInString(comment) > maxReviewCommentSize {
		return CreateReviewOutput{}, NewHTTPError(http.StatusBadRequest, "Comment is required (max 2000 characters).")
	}
	if email != "" && !strings.Contains(email, "@") {
		return CreateReviewOutput{}, NewHTTPError(http.StatusBadRequest, "Email is invalid.")
	}

	review := model.Review{
		ID:        "REV-" + u.ids.NewID(),
		ProductID: productID,
		Name:      name,
		Email:     email,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: u.clock.Now(),
	}
	if err := u.reviews.Create(ctx, review); err != nil {
		u.logger.Error("create review failed", zap.String("product_id", productID), zap.Error(err))
		return CreateReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "Failed to save review.")
	}

	summary, err := u.reviews.Summary(ctx, productID)
	if err != nil {
		u.logger.Error("summarize reviews failed", zap.String("product_id", productID), zap.Error(err))
		return CreateReviewOutput{}, NewHTTPError(http.StatusInternalServerError, "Failed to save review.")
	}
	return CreateReviewOutput{Review: review, Summary: summary}, nil
}
