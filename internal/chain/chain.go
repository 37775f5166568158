// Package chain is the JSON-RPC client for the ledger: token holdings,
// balances, transaction submission, and confirmation tracking.
package chain

// Well-known program and mint addresses.
const (
	// TokenProgramID is the legacy token program. It is authoritative for
	// holdings; most outcome tokens live here.
	TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

	// Token2022ProgramID is the extended token program. A fetch failure
	// against it is non-fatal for position matching.
	Token2022ProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"

	// USDCMint is the quote-currency mint (6 decimals).
	USDCMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)
