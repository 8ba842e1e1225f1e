package docstore

// Fixed seed ids, exported so tests and the CLI can reference the accounts.
const (
	SeedResearcherID  = "usr-researcher"
	SeedParticipantID = "usr-participant"
	SeedAdminID       = "usr-admin"
)

// DefaultSeeds returns the fixed seed set for first-run initialization:
// three role accounts (researcher, participant, admin), two active studies
// and a draft, plus an application, a wallet and a couple of transactions
// tied to the participant. Timestamps are fixed so repeated bootstraps of
// fresh stores produce identical content.
func DefaultSeeds() map[string][]Record {
	return map[string][]Record{
		Users: {
			{
				"id":    SeedResearcherID,
				"email": "researcher@researchhub.local",
				"metadata": map[string]any{
					"full_name": "Rita Vargas",
				},
			},
			{
				"id":    SeedParticipantID,
				"email": "participant@researchhub.local",
				"metadata": map[string]any{
					"full_name": "Pat Okafor",
				},
			},
			{
				"id":    SeedAdminID,
				"email": "admin@researchhub.local",
				"metadata": map[string]any{
					"full_name": "Ada Lindgren",
				},
			},
		},
		Profiles: {
			{
				"id":         "prf-researcher",
				"user_id":    SeedResearcherID,
				"first_name": "Rita",
				"last_name":  "Vargas",
				"role":       "researcher",
				"status":     "active",
				"updated_at": "2025-05-01T09:00:00Z",
			},
			{
				"id":         "prf-participant",
				"user_id":    SeedParticipantID,
				"first_name": "Pat",
				"last_name":  "Okafor",
				"role":       "participant",
				"status":     "active",
				"updated_at": "2025-05-01T09:05:00Z",
			},
			{
				"id":         "prf-admin",
				"user_id":    SeedAdminID,
				"first_name": "Ada",
				"last_name":  "Lindgren",
				"role":       "admin",
				"status":     "active",
				"updated_at": "2025-05-01T09:10:00Z",
			},
		},
		Studies: {
			{
				"id":            "study-sleep",
				"title":         "Sleep and Memory Consolidation",
				"description":   "Two-week diary study on sleep quality and recall.",
				"status":        "active",
				"researcher_id": SeedResearcherID,
				"compensation":  25.0,
				"created_at":    "2025-06-01T12:00:00Z",
			},
			{
				"id":            "study-focus",
				"title":         "Attention Under Interruption",
				"description":   "Lab task measuring focus recovery after notifications.",
				"status":        "active",
				"researcher_id": SeedResearcherID,
				"compensation":  40.0,
				"created_at":    "2025-07-15T12:00:00Z",
			},
			{
				"id":            "study-diet",
				"title":         "Dietary Logging Pilot",
				"description":   "Pilot for the food diary instrument.",
				"status":        "draft",
				"researcher_id": SeedResearcherID,
				"compensation":  15.0,
				"created_at":    "2025-07-20T12:00:00Z",
			},
		},
		Applications: {
			{
				"id":         "app-1",
				"study_id":   "study-sleep",
				"user_id":    SeedParticipantID,
				"status":     "approved",
				"applied_at": "2025-06-03T08:30:00Z",
			},
		},
		Wallet: {
			{
				"id":       "wal-participant",
				"user_id":  SeedParticipantID,
				"balance":  25.0,
				"currency": "USD",
			},
		},
		Transactions: {
			{
				"id":         "txn-1",
				"wallet_id":  "wal-participant",
				"user_id":    SeedParticipantID,
				"study_id":   "study-sleep",
				"type":       "credit",
				"amount":     25.0,
				"created_at": "2025-06-20T16:00:00Z",
			},
			{
				"id":         "txn-2",
				"wallet_id":  "wal-participant",
				"user_id":    SeedParticipantID,
				"type":       "payout",
				"amount":     -10.0,
				"created_at": "2025-06-25T10:00:00Z",
			},
		},
	}
}
