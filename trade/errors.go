package trade

import "errors"

var (
	// ErrInvalidParams indicates one or more parameters are invalid.
	ErrInvalidParams = errors.New("trade: invalid parameters")

	// ErrContractBuild indicates contract script construction failed.
	ErrContractBuild = errors.New("trade: contract build failed")

	// ErrNotContract indicates a script that is not a trade contract.
	ErrNotContract = errors.New("trade: not a trade contract")

	// ErrInvalidTx indicates a counterparty transaction that does not
	// validate.
	ErrInvalidTx = errors.New("trade: invalid transaction")

	// ErrInsufficientPayment indicates the contract output holds less than
	// agreed.
	ErrInsufficientPayment = errors.New("trade: insufficient payment amount")

	// ErrNoMatchingOutput indicates no output pays to the expected contract.
	ErrNoMatchingOutput = errors.New("trade: no matching output found")

	// ErrSecretNotFound indicates no input of a transaction reveals the
	// secret.
	ErrSecretNotFound = errors.New("trade: secret not found")

	// ErrFundingMismatch indicates a refund that spends a different output
	// than the contract funding.
	ErrFundingMismatch = errors.New("trade: funding outpoint mismatch")

	// ErrInvalidOffer indicates a malformed offer record.
	ErrInvalidOffer = errors.New("trade: invalid offer")
)
