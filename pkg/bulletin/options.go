package bulletin

import "time"

type options struct {
	verbosity      string
	location       *time.Location
	vocabularyFile string
	workers        int
}

// Option configures a Bulletin instance.
type Option func(*options)

// WithVerbosity sets the view verbosity: "minimal", "standard", "full".
// Default: "standard".
func WithVerbosity(v string) Option {
	return func(o *options) {
		o.verbosity = v
	}
}

// WithLocation sets the zone human-written timestamps ("March 5, 2025 at
// 2:30 PM") are read in. Default: Asia/Kolkata, or UTC when the zone
// database is unavailable.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		o.location = loc
	}
}

// WithVocabularyFile loads the bot-announcement vocabulary from a JSON file.
// Fields the file omits keep their built-in values.
func WithVocabularyFile(path string) Option {
	return func(o *options) {
		o.vocabularyFile = path
	}
}

// WithWorkers bounds ProcessBatch concurrency. Default: GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func defaultOptions() options {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.UTC
	}
	return options{
		verbosity: "standard",
		location:  loc,
	}
}
