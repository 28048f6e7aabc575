package domain

import "errors"

var (
	// ErrWalletNotFound возвращается когда кошелек не найден
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletInactive возвращается при операции над заблокированным кошельком
	ErrWalletInactive = errors.New("wallet is inactive")

	// ErrInsufficientBalance возвращается когда средств недостаточно
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDailyLimitExceeded возвращается при превышении дневного лимита расходов
	ErrDailyLimitExceeded = errors.New("daily spending limit exceeded")

	// ErrMonthlyLimitExceeded возвращается при превышении месячного лимита расходов
	ErrMonthlyLimitExceeded = errors.New("monthly spending limit exceeded")

	// ErrInvalidAmount возвращается при нулевой или отрицательной сумме операции
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrPaymentNotFound возвращается когда платеж не найден
	ErrPaymentNotFound = errors.New("payment not found")

	// ErrPaymentNotSettleable возвращается при попытке расчета платежа в неподходящем статусе
	ErrPaymentNotSettleable = errors.New("payment is not in a settleable state")

	// ErrProviderNotSupported возвращается для неизвестного платежного провайдера
	ErrProviderNotSupported = errors.New("payment provider not supported")

	// ErrProviderFailure возвращается при сбое платежного провайдера
	ErrProviderFailure = errors.New("payment provider failure")
)
