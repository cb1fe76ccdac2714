package config

import "ledgerlens/pkg/contracts"

// Application constants
const (
	AppName    = "ledgerlens"
	AppVersion = contracts.Version

	DefaultMaxUploadSize = 10 << 20 // 10MB
	DefaultChartWidth    = 800
	DefaultChartHeight   = 400
	DefaultReceiptRows   = 25
)
