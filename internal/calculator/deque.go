package calculator

// payerQueue is a double-ended queue of outstanding payer debits.
// Payers are consumed from the front; partial remainders go to the back.
type payerQueue struct {
	items []Transaction
	head  int
}

func newPayerQueue(payers []Transaction) *payerQueue {
	return &payerQueue{items: append([]Transaction(nil), payers...)}
}

func (q *payerQueue) Len() int {
	return len(q.items) - q.head
}

// PopFront removes and returns the first transaction. ok is false when empty.
func (q *payerQueue) PopFront() (tx Transaction, ok bool) {
	if q.Len() == 0 {
		return Transaction{}, false
	}
	tx = q.items[q.head]
	q.items[q.head] = Transaction{}
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return tx, true
}

func (q *payerQueue) PushBack(tx Transaction) {
	q.items = append(q.items, tx)
}

// Remaining returns a copy of the queued transactions, front first.
func (q *payerQueue) Remaining() []Transaction {
	return append([]Transaction(nil), q.items[q.head:]...)
}
