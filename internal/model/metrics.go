// Package model defines the chain metrics persisted by the service.
package model

import "time"

// Network labels the chain a node serves (mainnet, testnet, ...).
type Network string

var (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Signet  Network = "signet"
	Regtest Network = "regtest"
)

// Valid reports whether n is one of the known networks.
func (n Network) Valid() bool {
	switch n {
	case Mainnet, Testnet, Signet, Regtest:
		return true
	}
	return false
}

// BlockHeight is the singleton record of the latest height reported by the node.
type BlockHeight struct {
	Height    uint64
	UpdatedAt time.Time
}

// DailyTxCount is the number of transactions observed for a UTC calendar day.
type DailyTxCount struct {
	Date    time.Time
	TxCount uint64
}

// MovingAverage is the mean of the most recent daily transaction counts up to Date.
type MovingAverage struct {
	Date        time.Time
	Value       float64
	SampleCount uint8
}

// FeeEstimate is the latest fee rate for a confirmation target, in sat/vByte.
type FeeEstimate struct {
	BlockTarget uint16
	FeeRate     float64
	EstimatedAt time.Time
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
