package handlers

import (
	"errors"
	"strings"
)

func validateResponseDTO(d ResponseDTO) error {
	if strings.TrimSpace(d.Subject) == "" && strings.TrimSpace(d.Content) == "" {
		return errors.New("either subject or content is required")
	}
	return nil
}

func validateRequirementsDTO(d RequirementsDTO) error {
	if len(d.Roles) == 0 && len(d.TechStack) == 0 && d.HiringType == "" &&
		d.Budget == "" && d.Notes == "" {
		return errors.New("requirements must not be empty")
	}
	return nil
}

func validateEmailDTO(d EmailDTO) error {
	if len(d.CompanyIDs) == 0 {
		return errors.New("companyIds is required")
	}
	if len(d.To) == 0 {
		return errors.New("to is required")
	}
	if strings.TrimSpace(d.Subject) == "" {
		return errors.New("subject is required")
	}
	return nil
}
