package core

// OracleResult is either an assessment or Unavailable with the cause
type OracleResult struct {
	assessment *ContextAssessment
	cause      error
}

// OracleOk wraps a successful assessment
func OracleOk(a *ContextAssessment) OracleResult {
	return OracleResult{assessment: a}
}

// OracleUnavailable records why no assessment exists
func OracleUnavailable(cause error) OracleResult {
	if cause == nil {
		cause = ErrOracleUnavailable
	}
	return OracleResult{cause: cause}
}

// Get returns the assessment and whether it is present
func (r OracleResult) Get() (*ContextAssessment, bool) {
	return r.assessment, r.assessment != nil
}

// Cause is nil when the result is present
func (r OracleResult) Cause() error {
	if r.assessment != nil {
		return nil
	}
	return r.cause
}
