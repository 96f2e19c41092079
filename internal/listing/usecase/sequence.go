package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/listing/domain"
	"github.com/Ismail-Mert-Eksi/GuvenOto/internal/platform/logger"
)

const (
	DefaultSequencePad      = 6
	DefaultSequenceBaseline = 10
)

// DefaultPrefixes maps counter categories to listing number prefixes.
var DefaultPrefixes = map[string]string{
	"car":       "ARC-",
	"sparepart": "YDK-",
}

type SequenceOptions struct {
	Pad      int
	Baseline int64
	Prefixes map[string]string
}

// SequenceAllocator issues listing numbers from per-category store counters.
type SequenceAllocator struct {
	repo     domain.CounterRepository
	pad      int
	baseline int64
	prefixes map[string]string
	logger   *logger.Logger
}

func NewSequenceAllocator(repo domain.CounterRepository, opts SequenceOptions, log *logger.Logger) *SequenceAllocator {
	if opts.Pad < 1 {
		opts.Pad = DefaultSequencePad
	}
	if opts.Baseline < 0 {
		opts.Baseline = 0
	}
	if opts.Prefixes == nil {
		opts.Prefixes = DefaultPrefixes
	}
	return &SequenceAllocator{
		repo:     repo,
		pad:      opts.Pad,
		baseline: opts.Baseline,
		prefixes: opts.Prefixes,
		logger:   log.Named("SequenceAllocator"),
	}
}

// NextID advances the category's counter and formats the new value.
func (a *SequenceAllocator) NextID(ctx context.Context, category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return "", fmt.Errorf("%w: sequence category is required", domain.ErrInvalidArgument)
	}

	seq, err := a.repo.Increment(ctx, category, a.baseline)
	if err != nil {
		a.logger.Error("SequenceAllocator.NextID: counter increment failed", zap.String("category", category), zap.Error(err))
		return "", fmt.Errorf("%w: allocate listing number: %w", domain.ErrUpstreamFailure, err)
	}
	return FormatListingNumber(a.prefixes[category], seq, a.pad), nil
}

// FormatListingNumber zero-pads seq to pad digits. Wider numbers are kept whole.
func FormatListingNumber(prefix string, seq int64, pad int) string {
	return fmt.Sprintf("%s%0*d", prefix, pad, seq)
}
