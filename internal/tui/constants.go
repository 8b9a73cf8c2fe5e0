package tui

const (
	// Input Dimensions
	InputWidth = 60

	// Layout
	HeaderHeight     = 3
	StatusHeight     = 9
	MinLogHeight     = 6
	ListWidthRatio   = 0.55 // Status and log take 55% of the width
	DefaultPaddingX  = 1
	DefaultPaddingY  = 0
	ProgressBarInset = 4

	// Channel Buffers
	UpdateChannelBuffer = 256
)
