package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Configuration errors (100-199)
	ErrCodeInvalidParameter          ErrorCode = 100
	ErrCodeInvalidConfiguration      ErrorCode = 101
	ErrCodeUnknownStrategy           ErrorCode = 102
	ErrCodeUnsupportedDataFormat     ErrorCode = 103
	ErrCodeMalformedDate             ErrorCode = 104
	ErrCodeUnsupportedShortExecution ErrorCode = 105
	ErrCodeInvalidCashFrequency      ErrorCode = 106
	ErrCodeInvalidExecutionType      ErrorCode = 107
	ErrCodeInvalidPeriod             ErrorCode = 108
	ErrCodeMissingParameter          ErrorCode = 109
	ErrCodeUnsupportedChannel        ErrorCode = 110
	ErrCodeInvalidOrder              ErrorCode = 111

	// Data errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeDataUnavailable       ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyAlreadyRegistered ErrorCode = 400
	ErrCodeStrategyRuntimeError      ErrorCode = 401

	// Order errors (500-599)
	ErrCodeSizingRejected ErrorCode = 500
	ErrCodeOrderAborted   ErrorCode = 501
	ErrCodeOrderPending   ErrorCode = 502
	ErrCodeOrderNotFound  ErrorCode = 503

	// Backtest errors (600-699)
	ErrCodeBacktestStateNil      ErrorCode = 600
	ErrCodeBacktestInitFailed    ErrorCode = 601
	ErrCodeBacktestConfigError   ErrorCode = 602
	ErrCodeBacktestDataPathError ErrorCode = 603
	ErrCodeBacktestNoStrategies  ErrorCode = 604
	ErrCodeBacktestNoResultsDir  ErrorCode = 605
	ErrCodeBacktestWriteFailed   ErrorCode = 606

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Notification errors (800-899)
	ErrCodeNotificationFailed ErrorCode = 800
)
