package domain

// LaunchEvent represents a log notification classified as a pool-creation
// candidate. It exists only for the duration of one pipeline run.
type LaunchEvent struct {
	Signature string   // transaction signature from the notification
	Slot      int64    // Solana slot number
	Platform  string   // platform label of the subscription that produced it
	Logs      []string // raw log lines from the notification
}
