package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"pipmatrix/internal/types"
)

type fakeRow struct {
	userID int64
	amount decimal.Decimal
	status string
	ref    string
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.userID
	*dest[1].(*decimal.Decimal) = r.amount
	*dest[2].(*string) = r.status
	*dest[3].(*string) = r.ref
	return nil
}

type fakeQuerier struct {
	row fakeRow
}

func (q fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return q.row
}

// Approving or rejecting a request that already left the pending state
// must fail before any balance write happens.
func TestPendingTxRejectsSettledRequests(t *testing.T) {
	amount := decimal.RequireFromString("250")
	cases := []struct {
		name    string
		row     fakeRow
		wantErr error
	}{
		{"pending passes", fakeRow{userID: 7, amount: amount, status: "pending", ref: "DEP123"}, nil},
		{"already completed", fakeRow{userID: 7, amount: amount, status: "completed"}, ErrNotPending},
		{"already rejected", fakeRow{userID: 7, amount: amount, status: "rejected"}, ErrNotPending},
		{"missing row", fakeRow{err: pgx.ErrNoRows}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userID, got, ref, err := pendingTx(context.Background(), fakeQuerier{row: tc.row}, 1, types.TransactionTypeDeposit)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr != nil {
				return
			}
			if userID != 7 || !got.Equal(amount) || ref != "DEP123" {
				t.Errorf("got user %d amount %s ref %q", userID, got, ref)
			}
		})
	}
}
