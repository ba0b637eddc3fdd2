package config

const (
	AppName    = "language-learning-tool"
	AppVersion = "1.2.0"
)

// Defaults applied when config.yaml leaves a key unset.
const (
	DefaultServerPort      = ":8080"
	DefaultLogLevel        = "info"
	DefaultTimezone        = "Europe/Amsterdam"
	DefaultCacheTTLSeconds = 300

	DefaultNewWordsPerDay  = 20
	DefaultReviewsPerDay   = 100
	DefaultDeckOverflowMax = 50
	DefaultDeckCutSize     = 25

	DefaultNotificationStartHour = 8
	DefaultNotificationEndHour   = 22
)
