package models

// TriggerConfig describes the parametric trigger thresholds for one bucket.
type TriggerConfig struct {
	MinMagnitude        float64 `json:"min_magnitude,omitempty"`
	PopulationThreshold int     `json:"population_threshold,omitempty"`
	PersistenceHours    int     `json:"persistence_hours,omitempty"`
	ThermalAnomaly      bool    `json:"thermal_anomaly,omitempty"`
	MinCategory         int     `json:"min_category,omitempty"`
	EvacuationOrder     bool    `json:"evacuation_order,omitempty"`
}

// PolicyConfig is the parametric policy surface reported to callers.
// Parameter governance is out of scope; values are fixed per deployment.
type PolicyConfig struct {
	MaxPayoutUSDC         int                      `json:"max_payout_usdc"`
	VaultBalanceUSDC      float64                  `json:"vault_balance_usdc"`
	Triggers              map[string]TriggerConfig `json:"triggers"`
	HighRiskZones         []string                 `json:"high_risk_zones"`
	AIConfidenceThreshold int                      `json:"ai_confidence_threshold"`
}

// DefaultPolicyConfig returns the deployment defaults.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{
		MaxPayoutUSDC:    10000,
		VaultBalanceUSDC: 10000,
		Triggers: map[string]TriggerConfig{
			"quake": {MinMagnitude: 6.5, PopulationThreshold: 50000},
			"fire":  {PersistenceHours: 24, ThermalAnomaly: true},
			"storm": {MinCategory: 3, EvacuationOrder: true},
		},
		HighRiskZones:         []string{"Miami", "Tokyo", "Manila", "Houston", "New Orleans", "Tampa"},
		AIConfidenceThreshold: 70,
	}
}
