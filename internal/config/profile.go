package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/castlemilk/bizpulse/backend/internal/ledger"
	"github.com/castlemilk/bizpulse/backend/internal/money"
	"gopkg.in/yaml.v3"
)

// LoadProfile reads a company profile from a YAML file such as:
//
//	name: Harbor & Pine Studio
//	employee_count: 14
//	industry: Design
//	base_currency: USD
func LoadProfile(path string) (*ledger.CompanyProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read company profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile decodes and validates a YAML company profile. The currency
// code is normalized to upper case.
func ParseProfile(data []byte) (*ledger.CompanyProfile, error) {
	var p ledger.CompanyProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse company profile: %w", err)
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("company profile: name is required")
	}
	if p.EmployeeCount < 0 {
		return nil, fmt.Errorf("company profile: employee_count must be >= 0, got %d", p.EmployeeCount)
	}
	if p.BaseCurrency != "" {
		code, err := money.ValidateCode(p.BaseCurrency)
		if err != nil {
			return nil, fmt.Errorf("company profile: %w", err)
		}
		p.BaseCurrency = code
	}
	return &p, nil
}
