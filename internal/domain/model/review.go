package model

import "time"

type Review struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id" bson:"id"`
	ProductID string    `gorm:"type:varchar(255);not null;index" json:"productId" bson:"productId"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name" bson:"name"`
	Email     string    `gorm:"type:varchar(255)" json:"email,omitempty" bson:"email,omitempty"`
	Rating    int       `gorm:"not null" json:"rating" bson:"rating"`
	Comment   string    `gorm:"type:text;not null" json:"comment" bson:"comment"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt" bson:"createdAt"`
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// レビュー一覧から平均と件数を出す
func SummarizeRatings(reviews []Review) RatingSummary {
	if len(reviews) == 0 {
		return RatingSummary{}
	}
	var sum int64
	for _, r := range reviews {
		sum += int64(r.Rating)
	}
	return RatingSummary{
		Average: float64(sum) / float64(len(reviews)),
		Count:   int64(len(reviews)),
	}
}
