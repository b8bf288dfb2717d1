package treasury

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core"
)

const cacheKey = "treasury:value"

type (
	// BalanceReader reads an account balance in wei.
	BalanceReader interface {
		BalanceAt(ctx context.Context, address string) (*big.Int, error)
	}

	// Value is the DAO treasury balance.
	Value struct {
		Wei       string `json:"wei"`
		Formatted string `json:"formatted"` // in ether (or in the token's unit)
	}

	Service interface {
		Value(ctx context.Context) (Value, error)
	}

	service struct {
		reader   BalanceReader
		address  string
		decimals int
		cache    core.Cache
		cacheTTL time.Duration
		logger   core.Logger
	}
)

var _ Service = (*service)(nil)

// NewService returns the treasury Service. cache may be nil; a nil reader reports an empty treasury.
func NewService(reader BalanceReader, cache core.Cache, logger core.Logger, conf *core.Config) Service {
	return &service{
		reader:   reader,
		address:  conf.Treasury.Address,
		decimals: conf.Treasury.Decimals,
		cache:    cache,
		cacheTTL: conf.Redis.TTL,
		logger:   logger,
	}
}

func (svc *service) Value(ctx context.Context) (Value, error) {
	if svc.address == "" || svc.reader == nil {
		return Value{Wei: "0", Formatted: FormatUnits(big.NewInt(0), svc.decimals)}, nil
	}

	if svc.cache != nil {
		var val Value
		found, err := svc.cache.Get(ctx, cacheKey, &val)
		if err != nil {
			svc.logger.Warn("reading treasury value from cache", err)
		} else if found {
			return val, nil
		}
	}

	wei, err := svc.reader.BalanceAt(ctx, svc.address)
	if err != nil {
		return Value{}, errors.Wrap(err, "reading treasury balance")
	}
	val := Value{Wei: wei.String(), Formatted: FormatUnits(wei, svc.decimals)}

	if svc.cache != nil {
		if err = svc.cache.Set(ctx, cacheKey, val, svc.cacheTTL); err != nil {
			svc.logger.Warn("writing treasury value to cache", err)
		}
	}
	return val, nil
}

// FormatUnits renders an integer amount with `decimals` decimal places, trimming trailing zeros
// but always keeping one fractional digit (ex: 1500000000000000000 with 18 decimals -> "1.5", 0 -> "0.0").
func FormatUnits(amount *big.Int, decimals int) string {
	if amount == nil {
		amount = new(big.Int)
	}
	neg := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()

	if decimals <= 0 {
		if neg {
			digits = "-" + digits
		}
		return digits + ".0"
	}

	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	whole := digits[:len(digits)-decimals]
	frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if frac == "" {
		frac = "0"
	}

	s := whole + "." + frac
	if neg {
		s = "-" + s
	}
	return s
}
