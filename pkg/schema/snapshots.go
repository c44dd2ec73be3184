package schema

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MarketDailySnapshot is the append-only daily rollup of one market. The
// cumulative fields are carried forward from the live market at event time;
// the Daily* deltas accumulate only inside the bucket and reset implicitly
// when the bucket number rolls over.
type MarketDailySnapshot struct {
	ID          string `json:"id"`
	Market      string `json:"market"`
	Protocol    string `json:"protocol"`
	Day         int64  `json:"day"`
	BlockNumber uint64 `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`

	TotalValueLockedUSD    decimal.Decimal `json:"totalValueLockedUSD"`
	TotalDepositBalanceUSD decimal.Decimal `json:"totalDepositBalanceUSD"`
	TotalBorrowBalanceUSD  decimal.Decimal `json:"totalBorrowBalanceUSD"`
	InputTokenBalance      *big.Int        `json:"inputTokenBalance"`
	InputTokenPriceUSD     decimal.Decimal `json:"inputTokenPriceUSD"`
	OutputTokenSupply      *big.Int        `json:"outputTokenSupply"`
	ExchangeRate           decimal.Decimal `json:"exchangeRate"`

	CumulativeDepositUSD             decimal.Decimal `json:"cumulativeDepositUSD"`
	CumulativeBorrowUSD              decimal.Decimal `json:"cumulativeBorrowUSD"`
	CumulativeLiquidateUSD           decimal.Decimal `json:"cumulativeLiquidateUSD"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulativeSupplySideRevenueUSD"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulativeProtocolSideRevenueUSD"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulativeTotalRevenueUSD"`

	DailyDepositUSD             decimal.Decimal `json:"dailyDepositUSD"`
	DailyWithdrawUSD            decimal.Decimal `json:"dailyWithdrawUSD"`
	DailyBorrowUSD              decimal.Decimal `json:"dailyBorrowUSD"`
	DailyRepayUSD               decimal.Decimal `json:"dailyRepayUSD"`
	DailyLiquidateUSD           decimal.Decimal `json:"dailyLiquidateUSD"`
	DailySupplySideRevenueUSD   decimal.Decimal `json:"dailySupplySideRevenueUSD"`
	DailyProtocolSideRevenueUSD decimal.Decimal `json:"dailyProtocolSideRevenueUSD"`
	DailyTotalRevenueUSD        decimal.Decimal `json:"dailyTotalRevenueUSD"`

	// RateIDs reference bucket-frozen InterestRate copies, never the live
	// records.
	RateIDs []string `json:"rates"`
}

// MarketHourlySnapshot is the hourly analogue of MarketDailySnapshot.
type MarketHourlySnapshot struct {
	ID          string `json:"id"`
	Market      string `json:"market"`
	Protocol    string `json:"protocol"`
	Hour        int64  `json:"hour"`
	BlockNumber uint64 `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`

	TotalValueLockedUSD    decimal.Decimal `json:"totalValueLockedUSD"`
	TotalDepositBalanceUSD decimal.Decimal `json:"totalDepositBalanceUSD"`
	TotalBorrowBalanceUSD  decimal.Decimal `json:"totalBorrowBalanceUSD"`
	InputTokenBalance      *big.Int        `json:"inputTokenBalance"`
	InputTokenPriceUSD     decimal.Decimal `json:"inputTokenPriceUSD"`
	OutputTokenSupply      *big.Int        `json:"outputTokenSupply"`
	ExchangeRate           decimal.Decimal `json:"exchangeRate"`

	CumulativeDepositUSD             decimal.Decimal `json:"cumulativeDepositUSD"`
	CumulativeBorrowUSD              decimal.Decimal `json:"cumulativeBorrowUSD"`
	CumulativeLiquidateUSD           decimal.Decimal `json:"cumulativeLiquidateUSD"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulativeSupplySideRevenueUSD"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulativeProtocolSideRevenueUSD"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulativeTotalRevenueUSD"`

	HourlyDepositUSD             decimal.Decimal `json:"hourlyDepositUSD"`
	HourlyWithdrawUSD            decimal.Decimal `json:"hourlyWithdrawUSD"`
	HourlyBorrowUSD              decimal.Decimal `json:"hourlyBorrowUSD"`
	HourlyRepayUSD               decimal.Decimal `json:"hourlyRepayUSD"`
	HourlyLiquidateUSD           decimal.Decimal `json:"hourlyLiquidateUSD"`
	HourlySupplySideRevenueUSD   decimal.Decimal `json:"hourlySupplySideRevenueUSD"`
	HourlyProtocolSideRevenueUSD decimal.Decimal `json:"hourlyProtocolSideRevenueUSD"`
	HourlyTotalRevenueUSD        decimal.Decimal `json:"hourlyTotalRevenueUSD"`

	RateIDs []string `json:"rates"`
}

// FinancialsDailySnapshot is the protocol-wide daily financial rollup.
type FinancialsDailySnapshot struct {
	ID          string `json:"id"`
	Protocol    string `json:"protocol"`
	Day         int64  `json:"day"`
	BlockNumber uint64 `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`

	TotalValueLockedUSD    decimal.Decimal `json:"totalValueLockedUSD"`
	TotalDepositBalanceUSD decimal.Decimal `json:"totalDepositBalanceUSD"`
	TotalBorrowBalanceUSD  decimal.Decimal `json:"totalBorrowBalanceUSD"`

	CumulativeDepositUSD             decimal.Decimal `json:"cumulativeDepositUSD"`
	CumulativeBorrowUSD              decimal.Decimal `json:"cumulativeBorrowUSD"`
	CumulativeLiquidateUSD           decimal.Decimal `json:"cumulativeLiquidateUSD"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulativeSupplySideRevenueUSD"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulativeProtocolSideRevenueUSD"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulativeTotalRevenueUSD"`

	DailyDepositUSD             decimal.Decimal `json:"dailyDepositUSD"`
	DailyWithdrawUSD            decimal.Decimal `json:"dailyWithdrawUSD"`
	DailyBorrowUSD              decimal.Decimal `json:"dailyBorrowUSD"`
	DailyRepayUSD               decimal.Decimal `json:"dailyRepayUSD"`
	DailyLiquidateUSD           decimal.Decimal `json:"dailyLiquidateUSD"`
	DailySupplySideRevenueUSD   decimal.Decimal `json:"dailySupplySideRevenueUSD"`
	DailyProtocolSideRevenueUSD decimal.Decimal `json:"dailyProtocolSideRevenueUSD"`
	DailyTotalRevenueUSD        decimal.Decimal `json:"dailyTotalRevenueUSD"`
}

// UsageMetricsDailySnapshot counts transactions and active users per day.
type UsageMetricsDailySnapshot struct {
	ID          string `json:"id"`
	Protocol    string `json:"protocol"`
	Day         int64  `json:"day"`
	BlockNumber uint64 `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`

	DailyActiveUsers      int64 `json:"dailyActiveUsers"`
	CumulativeUniqueUsers int64 `json:"cumulativeUniqueUsers"`
	DailyTransactionCount int64 `json:"dailyTransactionCount"`
	DailyDepositCount     int64 `json:"dailyDepositCount"`
	DailyWithdrawCount    int64 `json:"dailyWithdrawCount"`
	DailyBorrowCount      int64 `json:"dailyBorrowCount"`
	DailyRepayCount       int64 `json:"dailyRepayCount"`
	DailyLiquidateCount   int64 `json:"dailyLiquidateCount"`
	TotalPoolCount        int32 `json:"totalPoolCount"`
}

// UsageMetricsHourlySnapshot counts transactions and active users per hour.
type UsageMetricsHourlySnapshot struct {
	ID          string `json:"id"`
	Protocol    string `json:"protocol"`
	Hour        int64  `json:"hour"`
	BlockNumber uint64 `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`

	HourlyActiveUsers      int64 `json:"hourlyActiveUsers"`
	CumulativeUniqueUsers  int64 `json:"cumulativeUniqueUsers"`
	HourlyTransactionCount int64 `json:"hourlyTransactionCount"`
	HourlyDepositCount     int64 `json:"hourlyDepositCount"`
	HourlyWithdrawCount    int64 `json:"hourlyWithdrawCount"`
	HourlyBorrowCount      int64 `json:"hourlyBorrowCount"`
	HourlyRepayCount       int64 `json:"hourlyRepayCount"`
	HourlyLiquidateCount   int64 `json:"hourlyLiquidateCount"`
}
