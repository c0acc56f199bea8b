package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"garage_finance/internal/repository"

	"github.com/sirupsen/logrus"
)

// Sequencer atomically reserves the next value of a named counter.
// Backed by Redis INCR or the code_sequences table.
type Sequencer interface {
	Next(ctx context.Context, key string) (int64, error)
}

// CodeGenerator formats warranty codes, claim numbers and transaction
// numbers from reserved sequence values.
type CodeGenerator struct {
	seq        Sequencer
	retryLimit int
	retryDelay time.Duration
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewCodeGenerator(seq Sequencer, retryLimit int, retryDelay time.Duration, logger logrus.FieldLogger) *CodeGenerator {
	if retryLimit < 1 {
		retryLimit = 1
	}
	return &CodeGenerator{
		seq:        seq,
		retryLimit: retryLimit,
		retryDelay: retryDelay,
		logger:     logger,
		now:        time.Now,
	}
}

func (g *CodeGenerator) WarrantyCode(ctx context.Context, serviceOrderID uint) (string, error) {
	date := g.now().UTC().Format("20060102")
	n, err := g.seq.Next(ctx, fmt.Sprintf("WAR%s-%06d", date, serviceOrderID))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("WAR%s-%06d-%02d", date, serviceOrderID, n), nil
}

func (g *CodeGenerator) ClaimNumber(ctx context.Context, warrantyID uint) (string, error) {
	date := g.now().UTC().Format("20060102")
	n, err := g.seq.Next(ctx, fmt.Sprintf("CLM%s-%06d", date, warrantyID))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CLM%s-%06d-%02d", date, warrantyID, n), nil
}

func (g *CodeGenerator) TransactionNumber(ctx context.Context) (string, error) {
	date := g.now().UTC().Format("20060102")
	n, err := g.seq.Next(ctx, "FIN"+date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("FIN%s-%04d", date, n), nil
}

// InsertWithCode reserves a code and runs insert with it. A duplicate key
// reserves a fresh code and tries again, up to the retry limit.
func (g *CodeGenerator) InsertWithCode(ctx context.Context, next func(context.Context) (string, error), insert func(code string) error) error {
	for attempt := 1; attempt <= g.retryLimit; attempt++ {
		code, err := next(ctx)
		if err != nil {
			return fmt.Errorf("failed to reserve code: %w", err)
		}

		err = insert(code)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrDuplicateKey) {
			return err
		}

		g.logger.WithFields(logrus.Fields{
			"code":    code,
			"attempt": attempt,
		}).Warn("generated code already taken, retrying")

		if attempt < g.retryLimit && g.retryDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(g.retryDelay):
			}
		}
	}
	return fmt.Errorf("%w: no free code after %d attempts", ErrConflict, g.retryLimit)
}
