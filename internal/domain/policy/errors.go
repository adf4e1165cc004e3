package policy

import "errors"

var (
	ErrPolicyNotConfigured = errors.New("attendance policy is not configured for this company")
)
