package repository

import "context"

// トランザクション内で使う約束。
// 注文＋明細の最終書き込みだけをtxで包む（ベンダー呼び出し中にtxを開いたままにしない）。
type TxRepos interface {
	Orders() OrderRepository
	OrderItems() OrderItemRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
