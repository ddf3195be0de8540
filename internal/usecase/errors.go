package usecase

import (
	"errors"
	"fmt"
	"strings"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 在庫不足（errors.Isで判定できる）
var ErrSoldOut = errors.New("some items are sold out")

// 在庫が足りない商品名をまとめて持つ
type SoldOutError struct {
	Items []string
}

func (e *SoldOutError) Error() string {
	return "Some items are sold out: " + strings.Join(e.Items, ", ")
}

func (e *SoldOutError) Is(target error) bool {
	return target == ErrSoldOut
}
