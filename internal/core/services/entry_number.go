package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/utils"
)

const (
	defaultEntryNumberPrefix = "JE"
	entryNumberSuffixDigits  = 4
	maxEntryNumberAttempts   = 10
)

// entryNumberGenerator allocates numbers of the form PREFIX-YYYYMMDD-NNNN,
// drawing a fresh random suffix while the candidate is already taken.
type entryNumberGenerator struct {
	prefix string
	suffix func() (string, error)
	exists func(ctx context.Context, entryNumber string) (bool, error)
}

func newEntryNumberGenerator(prefix string, journals portsrepo.JournalReader) *entryNumberGenerator {
	if prefix == "" {
		prefix = defaultEntryNumberPrefix
	}
	return &entryNumberGenerator{
		prefix: prefix,
		suffix: func() (string, error) { return utils.GenerateRandomDigits(entryNumberSuffixDigits) },
		exists: journals.EntryNumberExists,
	}
}

// Next returns an entry number not yet used by any stored entry.
func (g *entryNumberGenerator) Next(ctx context.Context, entryDate time.Time) (string, error) {
	for attempt := 0; attempt < maxEntryNumberAttempts; attempt++ {
		suffix, err := g.suffix()
		if err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s-%s-%s", g.prefix, entryDate.Format("20060102"), suffix)
		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check entry number %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: no free entry number for %s after %d attempts",
		apperrors.ErrConflict, entryDate.Format("2006-01-02"), maxEntryNumberAttempts)
}
