package bench

const (
	// BaseModel is used unless UseLargeModel is set.
	BaseModel = "gpt-3.5-turbo"
	// LargeModel is used when UseLargeModel is set, and for retries.
	LargeModel = "gpt-4"
)

// Settings are the user preferences that affect model selection.
type Settings struct {
	UseLargeModel    bool
	AllowLargerRetry bool
}

// DefaultModel returns the model used for a fresh proposal.
func (s Settings) DefaultModel() string {
	if s.UseLargeModel {
		return LargeModel
	}
	return BaseModel
}

// RetryModel returns the model a retry escalates to. It reports false when
// retrying is disabled, which is always the case once the large model is
// already the default.
func (s Settings) RetryModel() (string, bool) {
	if s.UseLargeModel || !s.AllowLargerRetry {
		return "", false
	}
	return LargeModel, true
}
