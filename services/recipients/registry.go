package recipients

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/services"
)

var addressRE = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Registry holds the pre-verified relief organizations and selects the
// recipient for a payout. The registry file is read once at startup;
// changing it means restarting the service.
type Registry struct {
	recipients []models.Recipient
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewRegistry loads the recipient registry from the given JSON file. A
// missing file yields an empty registry, not an error; every selection
// will then fail closed.
func NewRegistry(path string, logger *zap.Logger) (*Registry, error) {
	r := &Registry{
		validate: validator.New(),
		logger:   logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("recipient registry file not found, using empty registry", zap.String("path", path))
			return r, nil
		}
		return nil, services.WrapInternal("failed to read recipient registry", err)
	}

	var recipients []models.Recipient
	if err := json.Unmarshal(data, &recipients); err != nil {
		return nil, services.NewDomainError(services.ErrorTypeValidation, "invalid recipient registry", err)
	}

	for i, rec := range recipients {
		if err := r.validate.Struct(rec); err != nil {
			return nil, services.NewDomainError(services.ErrorTypeValidation,
				fmt.Sprintf("invalid recipient at index %d", i), err)
		}
	}

	r.recipients = recipients
	logger.Info("recipient registry loaded",
		zap.String("path", path),
		zap.Int("recipients", len(recipients)))
	return r, nil
}

// NewRegistryFromRecipients builds a registry from an in-memory list.
func NewRegistryFromRecipients(recipients []models.Recipient, logger *zap.Logger) *Registry {
	return &Registry{
		recipients: recipients,
		validate:   validator.New(),
		logger:     logger,
	}
}

// Select picks the recipient for a disaster. Candidates must be
// verified and support the disaster type (lenient two-way substring
// match, so "earthquake" matches a recipient listing "quake").
// Preference order: region match, then global, then any candidate.
func (r *Registry) Select(disasterType string, lat, lon float64) (*models.Recipient, error) {
	disasterLower := strings.ToLower(disasterType)
	region := regionOf(lat, lon)

	var candidates []models.Recipient
	for _, rec := range r.recipients {
		if rec.Verified && supportsType(rec, disasterLower) {
			candidates = append(candidates, rec)
		}
	}

	if len(candidates) == 0 {
		r.logger.Warn("no verified recipients for disaster type", zap.String("disaster_type", disasterType))
		return nil, services.ErrRecipientNotFound.WithDetail("disaster_type", disasterType)
	}

	for _, rec := range candidates {
		if rec.SupportsRegion(region) {
			r.logger.Info("recipient selected",
				zap.String("recipient", rec.Name),
				zap.String("region", region))
			selected := rec
			return &selected, nil
		}
	}

	for _, rec := range candidates {
		if rec.SupportsRegion("global") {
			r.logger.Info("recipient selected", zap.String("recipient", rec.Name), zap.String("reason", "global fallback"))
			selected := rec
			return &selected, nil
		}
	}

	selected := candidates[0]
	r.logger.Info("recipient selected", zap.String("recipient", selected.Name), zap.String("reason", "any available"))
	return &selected, nil
}

// ByAddress finds a recipient by wallet address, case-insensitively.
func (r *Registry) ByAddress(address string) (*models.Recipient, bool) {
	addressLower := strings.ToLower(address)
	for _, rec := range r.recipients {
		if strings.ToLower(rec.Address) == addressLower {
			found := rec
			return &found, true
		}
	}
	return nil, false
}

// IsVerified reports whether the address belongs to a verified recipient.
func (r *Registry) IsVerified(address string) bool {
	rec, found := r.ByAddress(address)
	return found && rec.Verified
}

// ValidateAddress checks the address format and re-checks verification
// immediately before funds move. The registry could have been edited
// between selection and disbursement.
func (r *Registry) ValidateAddress(address string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return services.ErrInvalidAddress.WithDetail("reason", "address is empty")
	}
	if !strings.HasPrefix(address, "0x") {
		return services.ErrInvalidAddress.WithDetail("reason", "address must start with 0x")
	}
	if len(address) != 42 {
		return services.ErrInvalidAddress.WithDetail("reason", fmt.Sprintf("address must be 42 characters (got %d)", len(address)))
	}
	if !addressRE.MatchString(address) {
		return services.ErrInvalidAddress.WithDetail("reason", "address contains invalid hex characters")
	}
	if !r.IsVerified(address) {
		return services.ErrRecipientUnverified.WithDetail("address", address)
	}
	return nil
}

// Verified returns all verified recipients.
func (r *Registry) Verified() []models.Recipient {
	var out []models.Recipient
	for _, rec := range r.recipients {
		if rec.Verified {
			out = append(out, rec)
		}
	}
	return out
}

// All returns every recipient in the registry.
func (r *Registry) All() []models.Recipient {
	out := make([]models.Recipient, len(r.recipients))
	copy(out, r.recipients)
	return out
}

// supportsType reports a two-way substring match between the disaster
// type and any of the recipient's listed types.
func supportsType(rec models.Recipient, disasterLower string) bool {
	for _, dt := range rec.DisasterTypes {
		dtLower := strings.ToLower(dt)
		if strings.Contains(disasterLower, dtLower) || strings.Contains(dtLower, disasterLower) {
			return true
		}
	}
	return false
}

// regionOf maps coordinates to a coarse region label. Boxes overlap;
// the first match wins, so order matters.
func regionOf(lat, lon float64) string {
	switch {
	case lat >= 10 && lat <= 50 && lon >= 100 && lon <= 150:
		return "asia"
	case lat >= 25 && lat <= 50 && lon >= -130 && lon <= -65:
		return "north_america"
	case lat >= 25 && lat <= 50 && lon >= -100 && lon <= -70:
		return "us"
	case lat >= -50 && lat <= 50:
		return "pacific"
	}
	return "global"
}
