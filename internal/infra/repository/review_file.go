package repository

import (
	"context"
	"sort"

	"wholesale/internal/domain/model"
)

// data/reviews.json
type ReviewFileRepository struct {
	file *jsonFile[model.Review]
}

func NewReviewFileRepository(dataDir string) *ReviewFileRepository {
	return &ReviewFileRepository{file: newJSONFile[model.Review](dataDir, "reviews.json")}
}

func (r *ReviewFileRepository) Create(ctx context.Context, review model.Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.file.update(func(reviews []model.Review) ([]model.Review, error) {
		return append([]model.Review{review}, reviews...), nil
	})
}

func (r *ReviewFileRepository) byProduct(ctx context.Context, productID string) ([]model.Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reviews, err := r.file.read()
	if err != nil {
		return nil, err
	}

	out := make([]model.Review, 0)
	for _, rv := range reviews {
		if rv.ProductID == productID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (r *ReviewFileRepository) ListByProductID(ctx context.Context, productID string, limit int) ([]model.Review, error) {
	reviews, err := r.byProduct(ctx, productID)
	if err != nil {
		return []model.Review{}, err
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
	})
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews, nil
}

func (r *ReviewFileRepository) Summary(ctx context.Context, productID string) (model.RatingSummary, error) {
	reviews, err := r.byProduct(ctx, productID)
	if err != nil {
		return model.RatingSummary{}, err
	}
	return model.SummarizeRatings(reviews), nil
}
