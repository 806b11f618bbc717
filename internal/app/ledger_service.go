package app

import (
	"context"
	"fmt"

	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/clock"
	"github.com/farhanisrakalvy/university-of-waikato-smart-parking/internal/domain"
)

type LedgerRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// GetWalletForUpdate locks the user's wallet row, materializing a zero
	// balance for a user this core has not seen before.
	GetWalletForUpdate(ctx context.Context, userID string) (domain.Wallet, error)
	UpdateBalance(ctx context.Context, userID string, balance domain.Cents) error
	AppendTransaction(ctx context.Context, txn domain.WalletTransaction) error
	GetBalance(ctx context.Context, userID string) (domain.Cents, error)
	ListTransactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error)
	SumTransactions(ctx context.Context, userID string) (domain.Cents, error)
}

// LedgerService maintains per-user non-negative balances and their
// append-only transaction history. The balance read-modify-write is
// serialized per user by the wallet row lock; different users' wallets are
// independent.
type LedgerService struct {
	repo  LedgerRepository
	clock clock.Clock
}

func NewLedgerService(repo LedgerRepository, clk clock.Clock) *LedgerService {
	return &LedgerService{repo: repo, clock: clk}
}

// Debit decrements the balance and appends a negative ledger row, atomically.
// A debit that would drive the balance below zero mutates nothing and fails
// with ErrInsufficientFunds.
func (s *LedgerService) Debit(ctx context.Context, userID string, amount domain.Cents, description, bookingID string) (domain.WalletTransaction, error) {
	if amount <= 0 {
		return domain.WalletTransaction{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	txn := domain.WalletTransaction{
		ID:          newUUID(),
		UserID:      userID,
		Amount:      -amount,
		Description: description,
		BookingID:   bookingID,
		CreatedAt:   now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		wallet, err := s.repo.GetWalletForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		if amount > wallet.Balance {
			return domain.ErrInsufficientFunds
		}
		if err := s.repo.UpdateBalance(txCtx, userID, wallet.Balance-amount); err != nil {
			return err
		}
		return s.repo.AppendTransaction(txCtx, txn)
	})
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	return txn, nil
}

// Credit increments the balance and appends a positive ledger row, atomically.
func (s *LedgerService) Credit(ctx context.Context, userID string, amount domain.Cents, description, bookingID string) (domain.WalletTransaction, error) {
	if amount <= 0 {
		return domain.WalletTransaction{}, domain.ErrInvalidAmount
	}

	now := s.clock.Now()
	txn := domain.WalletTransaction{
		ID:          newUUID(),
		UserID:      userID,
		Amount:      amount,
		Description: description,
		BookingID:   bookingID,
		CreatedAt:   now,
	}

	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		wallet, err := s.repo.GetWalletForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		if err := s.repo.UpdateBalance(txCtx, userID, wallet.Balance+amount); err != nil {
			return err
		}
		return s.repo.AppendTransaction(txCtx, txn)
	})
	if err != nil {
		return domain.WalletTransaction{}, err
	}
	return txn, nil
}

// Balance returns the materialized balance; zero for a never-seen user.
func (s *LedgerService) Balance(ctx context.Context, userID string) (domain.Cents, error) {
	return s.repo.GetBalance(ctx, userID)
}

// Transactions returns the user's ledger history, newest first.
func (s *LedgerService) Transactions(ctx context.Context, userID string) ([]domain.WalletTransaction, error) {
	return s.repo.ListTransactions(ctx, userID)
}

// Reconcile replays the transaction history and verifies the materialized
// balance equals its sum. A mismatch means the ledger invariant is broken.
func (s *LedgerService) Reconcile(ctx context.Context, userID string) (domain.Cents, error) {
	var balance domain.Cents
	err := s.repo.WithTx(ctx, func(txCtx context.Context) error {
		wallet, err := s.repo.GetWalletForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		sum, err := s.repo.SumTransactions(txCtx, userID)
		if err != nil {
			return err
		}
		if sum != wallet.Balance {
			return fmt.Errorf("wallet %s out of sync: balance=%d history sum=%d", userID, wallet.Balance, sum)
		}
		balance = wallet.Balance
		return nil
	})
	if err != nil {
		return 0, err
	}
	return balance, nil
}
