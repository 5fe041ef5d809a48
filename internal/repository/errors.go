package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")
	// payment_idのunique制約違反。同一イベントの同時配送で負けた側が受け取る。
	ErrDuplicatePayment = errors.New("duplicate payment id")
)
