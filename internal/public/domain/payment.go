package domain

import "time"

// PaymentRecord は決済完了通知 1 件につき 1 レコード追記される台帳エントリ。
// 重複通知もそのまま追記する。作成後に更新されることはない。
type PaymentRecord struct {
	ID          string
	PayerEmail  string
	AmountCents int64
	IntentID    string
	ReceiptID   string
	CreatedAt   time.Time
}
