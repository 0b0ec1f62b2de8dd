package domain

import (
	"fmt"
	"strings"
)

// DefaultResearchYears is the default look-back window in years.
const DefaultResearchYears = 3

// CompanyProfile identifies the research target for one agent instance.
type CompanyProfile struct {
	// Name is the company name as typed by the user.
	Name string

	// Years is the look-back window used in queries and prompts.
	Years int

	// Department optionally narrows the account plan.
	Department string
}

// Validate checks the profile is usable.
func (p CompanyProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: company name is required", ErrInvalidInput)
	}
	if CompanySlug(p.Name) == "" {
		return fmt.Errorf("%w: company name %q has no usable characters", ErrInvalidInput, p.Name)
	}
	if p.Years < 0 {
		return fmt.Errorf("%w: years must not be negative", ErrInvalidInput)
	}
	return nil
}

// WithDefaults returns a copy with zero values replaced by defaults.
func (p CompanyProfile) WithDefaults() CompanyProfile {
	p.Name = strings.TrimSpace(p.Name)
	if p.Years == 0 {
		p.Years = DefaultResearchYears
	}
	return p
}

// DepartmentOrDefault returns the department or "not specified".
func (p CompanyProfile) DepartmentOrDefault() string {
	if strings.TrimSpace(p.Department) == "" {
		return "not specified"
	}
	return p.Department
}
