package currency

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borctakip/debt-tracker/internal/domain"
	customError "github.com/borctakip/debt-tracker/pkg/errors"
)

type stubSource struct {
	mu    sync.Mutex
	calls int
	rates map[domain.Currency]decimal.Decimal
	err   error
}

func (s *stubSource) Fetch(ctx context.Context) (map[domain.Currency]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.rates, nil
}

func (s *stubSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testRates() map[domain.Currency]decimal.Decimal {
	return map[domain.Currency]decimal.Decimal{
		domain.CurrencyTRY: decimal.NewFromInt(1),
		domain.CurrencyUSD: decimal.NewFromInt(30),
		domain.CurrencyEUR: decimal.NewFromInt(37),
	}
}

func freshConverter(t *testing.T, ttl time.Duration) (*Converter, *stubSource) {
	t.Helper()

	source := &stubSource{rates: testRates()}
	converter := NewConverter(source, nil, ttl)
	require.NoError(t, converter.Refresh(context.Background()))

	return converter, source
}

func TestConvert_IdentityReturnsAmountUnchanged(t *testing.T) {
	// Identity conversions need no rate snapshot at all.
	converter := NewConverter(&stubSource{err: errors.New("feed down")}, nil, time.Hour)

	amount := decimal.RequireFromString("10.555")
	conversion, err := converter.Convert(context.Background(), amount, domain.CurrencyTRY, domain.CurrencyTRY)

	require.NoError(t, err)
	assert.True(t, conversion.Amount.Equal(amount))
	assert.False(t, conversion.Stale)
}

func TestConvert_USDToTRY(t *testing.T) {
	converter, _ := freshConverter(t, time.Hour)

	conversion, err := converter.Convert(context.Background(),
		decimal.NewFromInt(100), domain.CurrencyUSD, domain.CurrencyTRY)

	require.NoError(t, err)
	assert.True(t, conversion.Amount.Equal(decimal.NewFromInt(3000)))
	assert.False(t, conversion.Stale)
}

func TestConvert_CrossRate(t *testing.T) {
	converter, _ := freshConverter(t, time.Hour)

	// 100 EUR = 3700 TRY = 3700/30 USD = 123.333... -> 123.33
	conversion, err := converter.Convert(context.Background(),
		decimal.NewFromInt(100), domain.CurrencyEUR, domain.CurrencyUSD)

	require.NoError(t, err)
	assert.True(t, conversion.Amount.Equal(decimal.RequireFromString("123.33")))
}

func TestConvert_RoundsHalfUp(t *testing.T) {
	converter, _ := freshConverter(t, time.Hour)

	// 1.0005 * 30 = 30.015 -> 30.02
	conversion, err := converter.Convert(context.Background(),
		decimal.RequireFromString("1.0005"), domain.CurrencyUSD, domain.CurrencyTRY)

	require.NoError(t, err)
	assert.True(t, conversion.Amount.Equal(decimal.RequireFromString("30.02")))
}

func TestConvert_Deterministic(t *testing.T) {
	converter, _ := freshConverter(t, time.Hour)
	amount := decimal.RequireFromString("123.45")

	first, err := converter.Convert(context.Background(), amount, domain.CurrencyUSD, domain.CurrencyTRY)
	require.NoError(t, err)

	second, err := converter.Convert(context.Background(), amount, domain.CurrencyUSD, domain.CurrencyTRY)
	require.NoError(t, err)

	assert.True(t, first.Amount.Equal(second.Amount))
}

func TestConvert_NoRateEverCached(t *testing.T) {
	source := &stubSource{err: errors.New("feed down")}
	converter := NewConverter(source, nil, time.Hour)

	_, err := converter.Convert(context.Background(),
		decimal.NewFromInt(100), domain.CurrencyUSD, domain.CurrencyTRY)

	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrRateUnavailable))

	var bizErr *customError.BusinessError
	require.True(t, errors.As(err, &bizErr))
	assert.Equal(t, customError.ErrCodeRateUnavailable, bizErr.Code)
}

func TestConvert_StaleSnapshotStillUsed(t *testing.T) {
	converter, source := freshConverter(t, time.Hour)

	// Age the snapshot past the TTL.
	converter.mu.Lock()
	converter.fetchedAt = time.Now().Add(-2 * time.Hour)
	converter.mu.Unlock()

	before := source.callCount()
	conversion, err := converter.Convert(context.Background(),
		decimal.NewFromInt(100), domain.CurrencyUSD, domain.CurrencyTRY)

	require.NoError(t, err)
	assert.True(t, conversion.Stale)
	assert.True(t, conversion.Amount.Equal(decimal.NewFromInt(3000)))

	// The stale hit kicks off a background refresh without blocking.
	assert.Eventually(t, func() bool {
		return source.callCount() > before
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		converter.mu.RLock()
		defer converter.mu.RUnlock()
		return time.Since(converter.fetchedAt) < time.Hour
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRefresh_ReplacesSnapshot(t *testing.T) {
	converter, source := freshConverter(t, time.Hour)

	source.mu.Lock()
	source.rates = map[domain.Currency]decimal.Decimal{
		domain.CurrencyTRY: decimal.NewFromInt(1),
		domain.CurrencyUSD: decimal.NewFromInt(35),
		domain.CurrencyEUR: decimal.NewFromInt(40),
	}
	source.mu.Unlock()

	require.NoError(t, converter.Refresh(context.Background()))

	conversion, err := converter.Convert(context.Background(),
		decimal.NewFromInt(10), domain.CurrencyUSD, domain.CurrencyTRY)

	require.NoError(t, err)
	assert.True(t, conversion.Amount.Equal(decimal.NewFromInt(350)))
}
